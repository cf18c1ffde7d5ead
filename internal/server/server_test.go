package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xmasshowdown/showdown-server-go/internal/config"
	"github.com/xmasshowdown/showdown-server-go/internal/game"
	"github.com/xmasshowdown/showdown-server-go/internal/protocol"
	"github.com/xmasshowdown/showdown-server-go/internal/room"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.WebSocket.Path = "/ws"
	cfg.Game = config.GameConfig{
		InitialHand:      5,
		HandLimit:        7,
		LandLimit:        10,
		DeckSizePerColor: 12,
		GiftsInDisplay:   8,
		GiftPoolSize:     24,
	}

	logger := zap.NewNop()
	gameCfg := game.Config{
		InitialHand:      cfg.Game.InitialHand,
		HandLimit:        cfg.Game.HandLimit,
		LandLimit:        cfg.Game.LandLimit,
		DeckSizePerColor: cfg.Game.DeckSizePerColor,
		GiftsInDisplay:   cfg.Game.GiftsInDisplay,
		GiftPoolSize:     cfg.Game.GiftPoolSize,
	}

	s := New(cfg, room.NewManager(logger), game.NewManager(gameCfg, logger), nil, logger)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

type testClient struct {
	t    *testing.T
	conn *websocket.Conn
	id   string
}

func dial(t *testing.T, ts *httptest.Server) *testClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	c := &testClient{t: t, conn: conn}
	welcome := c.waitFor(protocol.TypeWelcome)
	var payload protocol.WelcomePayload
	require.NoError(t, json.Unmarshal(welcome, &payload))
	c.id = payload.MemberID
	return c
}

func (c *testClient) send(msgType protocol.MessageType, payload any) {
	c.t.Helper()
	data, err := protocol.Encode(msgType, payload)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteMessage(websocket.TextMessage, data))
}

// waitFor reads frames until one of the wanted type arrives.
func (c *testClient) waitFor(msgType protocol.MessageType) json.RawMessage {
	c.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		require.NoError(c.t, c.conn.SetReadDeadline(deadline))
		_, data, err := c.conn.ReadMessage()
		require.NoError(c.t, err, "waiting for %s", msgType)
		msg, err := protocol.Decode(data)
		require.NoError(c.t, err)
		if msg.Type == msgType {
			return msg.Payload
		}
	}
}

func (c *testClient) createRoom(name string) protocol.RoomInfo {
	c.t.Helper()
	c.send(protocol.TypeCreateRoom, protocol.CreateRoomPayload{Name: name})
	var info protocol.RoomInfo
	require.NoError(c.t, json.Unmarshal(c.waitFor(protocol.TypeRoomState), &info))
	return info
}

func TestConnectAndPing(t *testing.T) {
	s, ts := newTestServer(t)
	c := dial(t, ts)
	require.NotEmpty(t, c.id)

	c.send(protocol.TypePing, nil)
	c.waitFor(protocol.TypePong)

	assert.Equal(t, 1, s.ClientCount())
}

func TestSetName(t *testing.T) {
	_, ts := newTestServer(t)
	c := dial(t, ts)

	c.send(protocol.TypeSetName, protocol.SetNamePayload{Name: "  Alice  "})
	var payload protocol.WelcomePayload
	require.NoError(t, json.Unmarshal(c.waitFor(protocol.TypeWelcome), &payload))
	assert.Equal(t, "Alice", payload.Name)

	c.send(protocol.TypeSetName, protocol.SetNamePayload{Name: ""})
	var errPayload protocol.ErrorPayload
	require.NoError(t, json.Unmarshal(c.waitFor(protocol.TypeError), &errPayload))
	assert.Equal(t, "invalid_name", errPayload.Code)
}

func TestRoomLifecycle(t *testing.T) {
	_, ts := newTestServer(t)
	host := dial(t, ts)
	guest := dial(t, ts)

	host.send(protocol.TypeSetName, protocol.SetNamePayload{Name: "Alice"})
	host.waitFor(protocol.TypeWelcome)
	guest.send(protocol.TypeSetName, protocol.SetNamePayload{Name: "Bob"})
	guest.waitFor(protocol.TypeWelcome)

	info := host.createRoom("Friday Night")
	require.Len(t, info.Members, 1)
	assert.True(t, info.Members[0].IsHost)

	guest.send(protocol.TypeJoinRoom, protocol.JoinRoomPayload{RoomID: info.RoomID})
	var joined protocol.RoomInfo
	require.NoError(t, json.Unmarshal(guest.waitFor(protocol.TypeRoomState), &joined))
	assert.Len(t, joined.Members, 2)

	// The host sees the join too.
	var event protocol.MemberEventPayload
	require.NoError(t, json.Unmarshal(host.waitFor(protocol.TypeMemberJoined), &event))
	assert.Equal(t, guest.id, event.MemberID)
	assert.Equal(t, "Bob", event.Name)

	guest.send(protocol.TypeLeaveRoom, nil)
	var left protocol.MemberEventPayload
	require.NoError(t, json.Unmarshal(host.waitFor(protocol.TypeMemberLeft), &left))
	assert.Equal(t, guest.id, left.MemberID)
}

func TestJoinUnknownRoom(t *testing.T) {
	_, ts := newTestServer(t)
	c := dial(t, ts)

	c.send(protocol.TypeJoinRoom, protocol.JoinRoomPayload{RoomID: "ZZZZZZ"})
	var errPayload protocol.ErrorPayload
	require.NoError(t, json.Unmarshal(c.waitFor(protocol.TypeError), &errPayload))
	assert.Equal(t, "join_room_failed", errPayload.Code)
}

func TestStartGameGuards(t *testing.T) {
	_, ts := newTestServer(t)
	host := dial(t, ts)
	guest := dial(t, ts)

	info := host.createRoom("room")

	// Too few players.
	host.send(protocol.TypeStartGame, nil)
	var errPayload protocol.ErrorPayload
	require.NoError(t, json.Unmarshal(host.waitFor(protocol.TypeError), &errPayload))
	assert.Equal(t, "not_enough_players", errPayload.Code)

	guest.send(protocol.TypeJoinRoom, protocol.JoinRoomPayload{RoomID: info.RoomID})
	guest.waitFor(protocol.TypeRoomState)

	// Only the host can start.
	guest.send(protocol.TypeStartGame, nil)
	require.NoError(t, json.Unmarshal(guest.waitFor(protocol.TypeError), &errPayload))
	assert.Equal(t, "not_host", errPayload.Code)
}

func TestStartGameAndPlay(t *testing.T) {
	s, ts := newTestServer(t)
	host := dial(t, ts)
	guest := dial(t, ts)

	info := host.createRoom("room")
	guest.send(protocol.TypeJoinRoom, protocol.JoinRoomPayload{RoomID: info.RoomID})
	guest.waitFor(protocol.TypeRoomState)

	host.send(protocol.TypeStartGame, nil)

	var started protocol.GameStartedPayload
	require.NoError(t, json.Unmarshal(host.waitFor(protocol.TypeGameStarted), &started))
	require.NotEmpty(t, started.GameID)

	var hostView, guestView game.View
	require.NoError(t, json.Unmarshal(host.waitFor(protocol.TypeGameState), &hostView))
	require.NoError(t, json.Unmarshal(guest.waitFor(protocol.TypeGameState), &guestView))

	// Seat order follows join order, so the host is the active player and
	// has drawn the extra turn card.
	assert.Equal(t, host.id, hostView.Turn.PlayerID)
	assert.Len(t, hostView.Viewer.Hand, 6)
	assert.Len(t, guestView.Viewer.Hand, 5)
	assert.Equal(t, guest.id, guestView.Viewer.MemberID)

	// Acting out of turn fails for the guest only.
	guest.send(protocol.TypeGameAction, protocol.GameActionPayload{
		GameID: started.GameID,
		Action: "end_turn",
	})
	var errPayload protocol.ErrorPayload
	require.NoError(t, json.Unmarshal(guest.waitFor(protocol.TypeError), &errPayload))
	assert.Equal(t, "not_your_turn", errPayload.Code)

	// The host passes the turn and both sides see the new active player.
	host.send(protocol.TypeGameAction, protocol.GameActionPayload{
		GameID: started.GameID,
		Action: "end_turn",
	})
	require.NoError(t, json.Unmarshal(host.waitFor(protocol.TypeGameState), &hostView))
	require.NoError(t, json.Unmarshal(guest.waitFor(protocol.TypeGameState), &guestView))
	assert.Equal(t, guest.id, hostView.Turn.PlayerID)
	assert.Equal(t, guest.id, guestView.Turn.PlayerID)

	assert.Equal(t, 1, s.games.ActiveGameCount())
}

func TestDisconnectAbandonsGame(t *testing.T) {
	s, ts := newTestServer(t)
	host := dial(t, ts)
	guest := dial(t, ts)

	info := host.createRoom("room")
	guest.send(protocol.TypeJoinRoom, protocol.JoinRoomPayload{RoomID: info.RoomID})
	guest.waitFor(protocol.TypeRoomState)

	host.send(protocol.TypeStartGame, nil)
	host.waitFor(protocol.TypeGameState)
	guest.waitFor(protocol.TypeGameState)

	guest.conn.Close()

	var ended protocol.GameEndedPayload
	require.NoError(t, json.Unmarshal(host.waitFor(protocol.TypeGameEnded), &ended))
	assert.Len(t, ended.Scores, 2)

	require.Eventually(t, func() bool {
		return s.games.ActiveGameCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

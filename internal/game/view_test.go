package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xmasshowdown/showdown-server-go/internal/game/mana"
	"github.com/xmasshowdown/showdown-server-go/internal/game/rules"
)

func TestViewHidesOtherHands(t *testing.T) {
	e := twoPlayerEngine()
	e.players[0].Hand = []mana.Color{mana.ColorGreen, mana.ColorRed}
	e.players[1].Hand = []mana.Color{mana.ColorBlue}

	view, err := e.View("alice")
	require.NoError(t, err)

	assert.Equal(t, []string{"G", "R"}, view.Viewer.Hand)
	for _, player := range view.Players {
		if player.MemberID == "bob" {
			assert.Equal(t, 1, player.HandCount)
		}
	}

	// The public player list never carries hand contents, only counts.
	raw, err := json.Marshal(view)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, p := range decoded["players"].([]any) {
		_, exposed := p.(map[string]any)["hand"]
		assert.False(t, exposed)
	}
}

func TestViewUnknownViewer(t *testing.T) {
	e := twoPlayerEngine()
	_, err := e.View("mallory")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestViewsCoverEverySeat(t *testing.T) {
	e := twoPlayerEngine()
	views := e.Views()
	require.Len(t, views, 2)
	assert.Equal(t, "alice", views[0].MemberID)
	assert.Equal(t, "bob", views[1].MemberID)
	assert.Equal(t, "alice", views[0].View.Viewer.MemberID)
	assert.Equal(t, "bob", views[1].View.Viewer.MemberID)
}

func TestViewGiftShapes(t *testing.T) {
	e := twoPlayerEngine()
	e.players[0].Gifts = []*Gift{
		{ID: "g1", Color: mana.ColorRed, Class: rules.GiftClassII, Locks: 5, OwnerID: "alice"},
	}
	e.display = []*Gift{
		{ID: "g2", Color: mana.ColorWhite, Class: rules.GiftClassI},
	}

	view, err := e.View("bob")
	require.NoError(t, err)

	require.Len(t, view.GiftsDisplay, 1)
	assert.Empty(t, view.GiftsDisplay[0].OwnerID)
	assert.False(t, view.GiftsDisplay[0].Sealed)

	owned := view.Players[0].Gifts
	require.Len(t, owned, 1)
	assert.Equal(t, "alice", owned[0].OwnerID)
	assert.True(t, owned[0].Sealed)
	assert.Equal(t, "II", owned[0].GiftClass)
	assert.Equal(t, 2, view.Players[0].Score)
}

func TestViewSnapshotIsDetached(t *testing.T) {
	e := twoPlayerEngine()
	e.players[0].Hand = []mana.Color{mana.ColorGreen}

	view, err := e.View("alice")
	require.NoError(t, err)

	// Mutating the snapshot must not leak back into game state.
	view.Viewer.Hand[0] = "B"
	assert.Equal(t, mana.ColorGreen, e.players[0].Hand[0])
}

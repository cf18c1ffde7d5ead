package server

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xmasshowdown/showdown-server-go/internal/game"
	"github.com/xmasshowdown/showdown-server-go/internal/protocol"
	"github.com/xmasshowdown/showdown-server-go/internal/repository"
	"github.com/xmasshowdown/showdown-server-go/internal/room"
)

const maxNameLength = 24

// dispatch routes one decoded envelope to its handler.
func (s *Server) dispatch(client *Client, msg *protocol.Message) {
	switch msg.Type {
	case protocol.TypeSetName:
		s.handleSetName(client, msg.Payload)
	case protocol.TypeCreateRoom:
		s.handleCreateRoom(client, msg.Payload)
	case protocol.TypeJoinRoom:
		s.handleJoinRoom(client, msg.Payload)
	case protocol.TypeLeaveRoom:
		s.handleLeaveRoom(client)
	case protocol.TypeListRooms:
		s.handleListRooms(client)
	case protocol.TypeStartGame:
		s.handleStartGame(client)
	case protocol.TypeGameAction:
		s.handleGameAction(client, msg.Payload)
	case protocol.TypePing:
		client.SendMessage(protocol.TypePong, nil)
	default:
		s.sendError(client, "unknown_message_type", "Unknown message type.")
	}
}

func (s *Server) sendError(client *Client, code, message string) {
	client.SendMessage(protocol.TypeError, protocol.ErrorPayload{
		Code:    code,
		Message: message,
	})
}

// sendGameError reports a rule violation to the acting player only.
func (s *Server) sendGameError(client *Client, err error) {
	var ruleErr *game.RuleError
	if errors.As(err, &ruleErr) {
		client.SendMessage(protocol.TypeError, protocol.ErrorPayload{
			Code:    ruleErr.Code,
			Message: ruleErr.Message,
		})
		return
	}
	s.sendError(client, "internal_error", "Something went wrong.")
}

// ==================== Lobby handlers ====================

func (s *Server) handleSetName(client *Client, raw json.RawMessage) {
	var p protocol.SetNamePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		s.sendError(client, "invalid_payload", "Malformed payload.")
		return
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		s.sendError(client, "invalid_name", "Name must not be empty.")
		return
	}
	if len(name) > maxNameLength {
		name = name[:maxNameLength]
	}
	client.SetName(name)
	client.SendMessage(protocol.TypeWelcome, protocol.WelcomePayload{
		MemberID: client.memberID,
		Name:     name,
	})
}

func (s *Server) handleCreateRoom(client *Client, raw json.RawMessage) {
	var p protocol.CreateRoomPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		s.sendError(client, "invalid_payload", "Malformed payload.")
		return
	}

	r, err := s.rooms.CreateRoom(strings.TrimSpace(p.Name), client.memberID, client.Name())
	if err != nil {
		s.sendError(client, "create_room_failed", err.Error())
		return
	}
	client.SendMessage(protocol.TypeRoomState, s.roomInfo(r))
}

func (s *Server) handleJoinRoom(client *Client, raw json.RawMessage) {
	var p protocol.JoinRoomPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		s.sendError(client, "invalid_payload", "Malformed payload.")
		return
	}

	r, err := s.rooms.JoinRoom(strings.ToUpper(strings.TrimSpace(p.RoomID)), client.memberID, client.Name())
	if err != nil {
		s.sendError(client, "join_room_failed", err.Error())
		return
	}

	s.broadcastToRoom(r, protocol.TypeMemberJoined, protocol.MemberEventPayload{
		RoomID:   r.ID,
		MemberID: client.memberID,
		Name:     client.Name(),
	})
	s.broadcastToRoom(r, protocol.TypeRoomState, s.roomInfo(r))
}

func (s *Server) handleLeaveRoom(client *Client) {
	s.leaveCurrentRoom(client)
}

func (s *Server) handleListRooms(client *Client) {
	rooms := s.rooms.Rooms()
	infos := make([]protocol.RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		infos = append(infos, s.roomInfo(r))
	}
	client.SendMessage(protocol.TypeRooms, protocol.RoomsPayload{Rooms: infos})
}

// leaveCurrentRoom removes the client from its room, abandoning any running
// game in it.
func (s *Server) leaveCurrentRoom(client *Client) {
	r, disbanded := s.rooms.LeaveRoom(client.memberID)
	if r == nil {
		return
	}

	if r.GameID != "" {
		s.abandonGame(r)
	}

	if disbanded {
		return
	}

	s.broadcastToRoom(r, protocol.TypeMemberLeft, protocol.MemberEventPayload{
		RoomID:   r.ID,
		MemberID: client.memberID,
		Name:     client.Name(),
	})
	s.broadcastToRoom(r, protocol.TypeRoomState, s.roomInfo(r))
}

func (s *Server) roomInfo(r *room.Room) protocol.RoomInfo {
	members := make([]protocol.MemberInfo, 0, len(r.Members))
	for _, m := range r.Members {
		members = append(members, protocol.MemberInfo{
			MemberID: m.ID,
			Name:     m.Name,
			IsHost:   m.ID == r.HostID,
		})
	}
	return protocol.RoomInfo{
		RoomID:  r.ID,
		Name:    r.Name,
		Members: members,
		Started: r.Started,
		GameID:  r.GameID,
	}
}

// ==================== Game handlers ====================

func (s *Server) handleStartGame(client *Client) {
	r, ok := s.rooms.RoomOf(client.memberID)
	if !ok {
		s.sendError(client, "not_in_room", "You are not in a room.")
		return
	}
	if r.HostID != client.memberID {
		s.sendError(client, "not_host", "Only the host can start the game.")
		return
	}
	if r.Started {
		s.sendError(client, "already_started", "The game has already started.")
		return
	}
	if len(r.Members) < 2 {
		s.sendError(client, "not_enough_players", "At least 2 players are required.")
		return
	}

	seats := make([]game.Seat, 0, len(r.Members))
	for _, m := range r.Members {
		seats = append(seats, game.Seat{MemberID: m.ID, Name: m.Name})
	}

	engine, views, err := s.games.CreateGame(r.ID, seats)
	if err != nil {
		s.sendError(client, "start_game_failed", err.Error())
		return
	}
	if err := s.rooms.SetStarted(r.ID, engine.ID()); err != nil {
		s.games.RemoveGame(engine.ID())
		s.sendError(client, "start_game_failed", err.Error())
		return
	}

	s.broadcastToRoom(r, protocol.TypeGameStarted, protocol.GameStartedPayload{
		RoomID: r.ID,
		GameID: engine.ID(),
	})
	s.sendViews(views)
}

func (s *Server) handleGameAction(client *Client, raw json.RawMessage) {
	var p protocol.GameActionPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		s.sendError(client, "invalid_payload", "Malformed payload.")
		return
	}
	if p.GameID == "" || p.Action == "" {
		s.sendError(client, "invalid_payload", "Missing game id or action.")
		return
	}

	views, err := s.games.ApplyAction(p.GameID, client.memberID, p.Action, p.Payload)
	if err != nil {
		s.sendGameError(client, err)
		// Deck exhaustion ends the game; everyone still gets the final
		// state even though the action itself failed.
		if errors.Is(err, game.ErrDeckEmpty) {
			s.finishGame(p.GameID)
		}
		return
	}
	s.sendViews(views)
}

// finishGame broadcasts the final state and standings, persists the result
// when a repository is configured and drops the game.
func (s *Server) finishGame(gameID string) {
	engine, ok := s.games.GetGame(gameID)
	if !ok {
		return
	}

	views := engine.Views()
	s.sendViews(views)

	scores := engine.FinalScores()
	payload := protocol.GameEndedPayload{GameID: gameID}
	for _, entry := range scores {
		payload.Scores = append(payload.Scores, protocol.ScoreInfo{
			MemberID: entry.MemberID,
			Name:     entry.Name,
			Score:    entry.Score,
		})
	}
	for _, memberID := range engine.MemberIDs() {
		if c, ok := s.clientFor(memberID); ok {
			c.SendMessage(protocol.TypeGameEnded, payload)
		}
	}

	if s.results != nil {
		turns := 0
		if len(views) > 0 {
			turns = views[0].View.Turn.Number
		}
		result := repository.GameResult{
			GameID:     gameID,
			RoomID:     engine.RoomID(),
			Turns:      turns,
			FinishedAt: time.Now().UTC(),
		}
		for _, entry := range scores {
			result.Scores = append(result.Scores, repository.PlayerScore{
				MemberID: entry.MemberID,
				Name:     entry.Name,
				Score:    entry.Score,
			})
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.results.Save(ctx, result); err != nil {
			s.logger.Error("failed to persist game result",
				zap.String("game_id", gameID),
				zap.Error(err),
			)
		}
	}

	s.games.RemoveGame(gameID)
	s.rooms.ResetGame(engine.RoomID())
	s.logger.Info("game finished", zap.String("game_id", gameID))
}

// abandonGame drops a game that lost a player mid-match. Abandoned games are
// not persisted.
func (s *Server) abandonGame(r *room.Room) {
	engine, ok := s.games.GetGame(r.GameID)
	if !ok {
		return
	}

	payload := protocol.GameEndedPayload{GameID: r.GameID}
	for _, entry := range engine.FinalScores() {
		payload.Scores = append(payload.Scores, protocol.ScoreInfo{
			MemberID: entry.MemberID,
			Name:     entry.Name,
			Score:    entry.Score,
		})
	}
	s.broadcastToRoom(r, protocol.TypeGameEnded, payload)

	s.games.RemoveGame(r.GameID)
	s.rooms.ResetGame(r.ID)
	s.logger.Info("game abandoned",
		zap.String("game_id", r.GameID),
		zap.String("room_id", r.ID),
	)
}

package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/xmasshowdown/showdown-server-go/internal/config"
	"github.com/xmasshowdown/showdown-server-go/internal/game"
	"github.com/xmasshowdown/showdown-server-go/internal/protocol"
	"github.com/xmasshowdown/showdown-server-go/internal/repository"
	"github.com/xmasshowdown/showdown-server-go/internal/room"
)

// Server is the WebSocket gateway. It owns the connection registry and
// routes protocol messages to the room and game managers. Results is nil
// when persistence is disabled.
type Server struct {
	cfg     *config.Config
	logger  *zap.Logger
	rooms   *room.Manager
	games   *game.Manager
	results *repository.GameResultRepository

	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*Client // member id -> client

	httpServer *http.Server
}

// New creates the gateway.
func New(
	cfg *config.Config,
	rooms *room.Manager,
	games *game.Manager,
	results *repository.GameResultRepository,
	logger *zap.Logger,
) *Server {
	return &Server{
		cfg:     cfg,
		logger:  logger,
		rooms:   rooms,
		games:   games,
		results: results,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[string]*Client),
	}
}

// Handler returns the HTTP handler serving the WebSocket endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.Server.WebSocket.Path, s.handleWebSocket)
	return mux
}

// ListenAndServe runs the gateway until the listener fails or Shutdown is
// called.
func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:    s.cfg.Server.WebSocket.Address,
		Handler: s.Handler(),
	}
	s.logger.Info("websocket server listening",
		zap.String("address", s.cfg.Server.WebSocket.Address),
		zap.String("path", s.cfg.Server.WebSocket.Path),
	)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and closes the existing ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clients = make(map[string]*Client)
	s.mu.Unlock()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := newClient(uuid.NewString(), conn, s)

	s.mu.Lock()
	s.clients[client.memberID] = client
	s.mu.Unlock()

	s.logger.Info("client connected", zap.String("member_id", client.memberID))

	go client.writePump()
	go client.readPump()

	client.SendMessage(protocol.TypeWelcome, protocol.WelcomePayload{
		MemberID: client.memberID,
		Name:     client.Name(),
	})
}

// disconnect unregisters a client and cleans up its room and game.
func (s *Server) disconnect(client *Client) {
	s.mu.Lock()
	if _, ok := s.clients[client.memberID]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.clients, client.memberID)
	s.mu.Unlock()

	client.Close()
	s.leaveCurrentRoom(client)

	s.logger.Info("client disconnected", zap.String("member_id", client.memberID))
}

// clientFor returns the connected client for a member, if any.
func (s *Server) clientFor(memberID string) (*Client, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	client, ok := s.clients[memberID]
	return client, ok
}

// ClientCount returns the number of open connections.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// broadcastToRoom sends one envelope to every connected member of a room.
func (s *Server) broadcastToRoom(r *room.Room, msgType protocol.MessageType, payload any) {
	data, err := protocol.Encode(msgType, payload)
	if err != nil {
		s.logger.Error("failed to encode broadcast",
			zap.String("type", string(msgType)),
			zap.Error(err),
		)
		return
	}
	for _, memberID := range r.MemberIDs() {
		if client, ok := s.clientFor(memberID); ok {
			client.Send(data)
		}
	}
}

// sendViews delivers each member their private snapshot.
func (s *Server) sendViews(views []game.MemberView) {
	for _, view := range views {
		if client, ok := s.clientFor(view.MemberID); ok {
			client.SendMessage(protocol.TypeGameState, view.View)
		}
	}
}

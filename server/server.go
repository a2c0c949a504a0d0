// Package server exposes the voice session over a websocket endpoint and
// fans outbound events through a per-user connection hub.
package server

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tripot-labs/companion-engine/core"
	"github.com/tripot-labs/companion-engine/session"
)

// maxFrameBytes bounds one inbound frame. A turn of base64 audio stays
// well under this.
const maxFrameBytes = 16 << 20

// Server handles websocket upgrades and hands each connection to the
// session orchestrator.
type Server struct {
	hub          *Hub
	orchestrator *session.Orchestrator
	upgrader     websocket.Upgrader
	logger       *zap.Logger
}

// New builds the server around the shared hub and orchestrator.
func New(hub *Hub, orchestrator *session.Orchestrator, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		hub:          hub,
		orchestrator: orchestrator,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Routes returns the HTTP mux for the service.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/senior/ws/{user_id}", s.handleSenior)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// inboundFrame is one read-pump result. A frame with a non-nil err is the
// pump's final one.
type inboundFrame struct {
	data string
	err  error
}

// wsConn adapts a gorilla connection to the orchestrator's view of a
// session connection. Reads come from the pump channel so they can be
// abandoned on context cancellation.
type wsConn struct {
	client *client
	frames chan inboundFrame
}

func (c *wsConn) Receive(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case f := <-c.frames:
		return f.data, f.err
	}
}

func (c *wsConn) Send(ev core.Event) error {
	return c.client.send(ev)
}

func (s *Server) handleSenior(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	if userID == "" {
		http.Error(w, "missing user id", http.StatusBadRequest)
		return
	}
	log := s.logger.With(zap.String("user_id", userID))

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxFrameBytes)

	c := s.hub.bind(userID, conn)
	defer s.hub.unbind(userID, c)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	wsc := &wsConn{client: c, frames: make(chan inboundFrame, 1)}
	go readPump(ctx, conn, wsc.frames)

	if err := s.orchestrator.HandleConnection(ctx, userID, wsc); err != nil {
		log.Warn("session ended with error", zap.Error(err))
	}
}

// readPump forwards text frames from the websocket into the channel until
// the connection errors or ctx is cancelled. The terminal error frame is
// always delivered unless the consumer is already gone.
func readPump(ctx context.Context, conn *websocket.Conn, frames chan<- inboundFrame) {
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case frames <- inboundFrame{err: err}:
			case <-ctx.Done():
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		select {
		case frames <- inboundFrame{data: string(data)}:
		case <-ctx.Done():
			return
		}
	}
}

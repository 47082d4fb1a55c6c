package gateway

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"MarketPulse/internal/broadcast"
)

// Hub is the part of the broadcaster the gateway needs.
type Hub interface {
	Connect(conn broadcast.Conn) (*broadcast.Handle, error)
	Disconnect(h *broadcast.Handle)
}

// Server upgrades HTTP requests to WebSocket subscribers.
type Server struct {
	hub      Hub
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewServer(hub Hub, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		hub: hub,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP registers the upgraded connection and keeps it alive until the
// client goes away. Client messages are read and discarded.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	conn := NewConn(ws)
	h, err := s.hub.Connect(conn)
	if err != nil {
		s.log.Warn("subscriber rejected", zap.Error(err))
		conn.Close()
		return
	}

	go s.keepAlive(conn)
	s.readPump(conn)
	s.hub.Disconnect(h)
}

func (s *Server) readPump(conn *Conn) {
	ws := conn.ws
	ws.SetReadLimit(maxMessageSize)
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("websocket read ended", zap.Error(err))
			}
			return
		}
	}
}

func (s *Server) keepAlive(conn *Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-conn.Done():
			return
		case <-ticker.C:
			if err := conn.ping(); err != nil {
				return
			}
		}
	}
}

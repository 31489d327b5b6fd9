package memory

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/pairview/pairview/internal/application/constant"
	"github.com/pairview/pairview/internal/domain/events"
)

// SocketRepository holds the live websocket connections keyed by connection
// ID. Writes are fire-and-forget: a write to an unknown or already-closed
// connection is logged and dropped, never surfaced to the sender.
type SocketRepository interface {
	Add(connID string, conn *websocket.Conn)
	Remove(connID string)

	Write(connID string, msg events.Message)
}

type safeWS struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

type socketRepository struct {
	// sockets maps connection ID -> write-serialized conn.
	sockets map[string]*safeWS

	mu sync.RWMutex
}

func NewSocketRepository() SocketRepository {
	return &socketRepository{
		sockets: make(map[string]*safeWS, 10),
	}
}

func (s *socketRepository) Add(connID string, conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sockets[connID] = &safeWS{conn: conn}
}

func (s *socketRepository) Remove(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sockets, connID)
}

func (s *socketRepository) Write(connID string, msg events.Message) {
	safews, ok := s.getSafeWS(connID)
	if !ok {
		slog.Debug("write to unknown socket", slog.String(constant.ConnID, connID), slog.String(constant.Event, msg.Type))
		return
	}

	safews.mu.Lock()
	defer safews.mu.Unlock()

	if err := safews.conn.WriteJSON(msg); err != nil {
		slog.Error("write to websocket", slog.String(constant.ConnID, connID), slog.Any(constant.Error, err))
		return
	}
}

func (s *socketRepository) getSafeWS(connID string) (*safeWS, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conn, ok := s.sockets[connID]
	return conn, ok
}

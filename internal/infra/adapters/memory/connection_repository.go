package memory

import (
	"sync"

	"github.com/pairview/pairview/internal/domain/runtime"
)

// ConnectionRepository owns the Connection records of all live websocket
// sessions. Records reference rooms by ID only.
//
// Returned records are snapshots taken under the repository lock; all
// mutation goes through the repository methods.
type ConnectionRepository interface {
	Add(conn *runtime.Connection)
	Get(connID string) (*runtime.Connection, bool)
	SetIdentity(connID, userID, name, email string) bool
	SetRoom(connID, roomID string) bool
	Remove(connID string)

	// Identified returns all connections that have sent user:join.
	Identified() []*runtime.Connection
}

type connectionRepository struct {
	conns map[string]*runtime.Connection
	mu    sync.RWMutex
}

func NewConnectionRepository() ConnectionRepository {
	return &connectionRepository{
		conns: make(map[string]*runtime.Connection),
	}
}

func (r *connectionRepository) Add(conn *runtime.Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[conn.ID] = conn
}

func (r *connectionRepository) Get(connID string) (*runtime.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[connID]
	if !ok {
		return nil, false
	}

	clone := *conn
	return &clone, true
}

func (r *connectionRepository) SetIdentity(connID, userID, name, email string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[connID]
	if !ok {
		return false
	}

	conn.UserID = userID
	conn.Name = name
	conn.Email = email

	return true
}

func (r *connectionRepository) SetRoom(connID, roomID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[connID]
	if !ok {
		return false
	}

	conn.RoomID = roomID

	return true
}

func (r *connectionRepository) Remove(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.conns, connID)
}

func (r *connectionRepository) Identified() []*runtime.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var conns []*runtime.Connection

	for _, conn := range r.conns {
		if conn.UserID != "" {
			clone := *conn
			conns = append(conns, &clone)
		}
	}

	return conns
}

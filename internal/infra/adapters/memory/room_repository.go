package memory

import (
	"sync"

	"github.com/pairview/pairview/internal/domain/runtime"
)

// RoomRepository owns the Room records. Rooms are created lazily on first
// join and must be removed the moment they become empty; the room lifecycle
// usecase is responsible for calling Remove at that point.
//
// Returned records are snapshots taken under the repository lock: callers on
// any goroutine may read them freely, and all mutation goes through the
// repository methods.
type RoomRepository interface {
	// GetOrCreate returns the room, creating it with hostID as host if it
	// does not exist yet. The second result reports whether it was created.
	GetOrCreate(roomID, hostID string) (*runtime.Room, bool)
	Get(roomID string) (*runtime.Room, bool)

	// AddParticipant appends connID to the room in join order. No-op if the
	// room is unknown or the connection is already a member.
	AddParticipant(roomID, connID string)

	// RemoveParticipant removes connID from the room, preserving the join
	// order of the rest.
	RemoveParticipant(roomID, connID string)

	SetHost(roomID, connID string)
	Remove(roomID string)
	Count() int
}

type roomRepository struct {
	rooms map[string]*runtime.Room
	mu    sync.RWMutex
}

func NewRoomRepository() RoomRepository {
	return &roomRepository{
		rooms: make(map[string]*runtime.Room),
	}
}

func (r *roomRepository) GetOrCreate(roomID, hostID string) (*runtime.Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if room, ok := r.rooms[roomID]; ok {
		return cloneRoom(room), false
	}

	room := &runtime.Room{ID: roomID, HostID: hostID}
	r.rooms[roomID] = room

	return cloneRoom(room), true
}

func (r *roomRepository) Get(roomID string) (*runtime.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return nil, false
	}

	return cloneRoom(room), true
}

func (r *roomRepository) AddParticipant(roomID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok || room.Has(connID) {
		return
	}

	room.Participants = append(room.Participants, connID)
}

func (r *roomRepository) RemoveParticipant(roomID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return
	}

	for i, id := range room.Participants {
		if id == connID {
			room.Participants = append(room.Participants[:i], room.Participants[i+1:]...)
			return
		}
	}
}

func (r *roomRepository) SetHost(roomID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if room, ok := r.rooms[roomID]; ok {
		room.HostID = connID
	}
}

func (r *roomRepository) Remove(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rooms, roomID)
}

func (r *roomRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms)
}

func cloneRoom(room *runtime.Room) *runtime.Room {
	return &runtime.Room{
		ID:           room.ID,
		Participants: append([]string(nil), room.Participants...),
		HostID:       room.HostID,
	}
}

package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pairview/pairview/internal/application/constant"
	"github.com/pairview/pairview/internal/application/metric"
	"github.com/pairview/pairview/internal/domain/events"
	"github.com/pairview/pairview/internal/domain/runtime"
	"github.com/pairview/pairview/internal/infra/adapters/memory"
)

// RoomUsecase orchestrates the connection lifecycle: registration, identity,
// room membership and host migration. All registry mutation for one inbound
// event completes before any notification is emitted, so peers never observe
// partial state.
type RoomUsecase interface {
	// RegisterConnection creates an empty Connection record. Called once per
	// websocket connect, before any message is read.
	RegisterConnection(ctx context.Context, connID string)

	// HandleIdentify attaches identity from a user:join message, overwriting
	// any prior identity. Unknown connections are logged and ignored.
	HandleIdentify(ctx context.Context, connID string, ev events.UserJoinEvent)

	// HandleJoinRoom joins (or switches to) a room, leaving the previous room
	// first. Emits room:joined to the joiner and user:joined to everyone else.
	HandleJoinRoom(ctx context.Context, connID string, ev events.RoomJoinEvent) error

	// HandleDisconnect removes the connection, leaving its room with host
	// migration. Called exactly once per connection, on transport disconnect.
	HandleDisconnect(ctx context.Context, connID string)
}

type roomUsecase struct {
	connRepo memory.ConnectionRepository
	roomRepo memory.RoomRepository
	sockets  memory.SocketRepository

	// mu serializes lifecycle operations. Each connection reads messages on
	// its own goroutine, so without it concurrent joins and disconnects
	// could interleave registry mutations across the two repositories.
	mu sync.Mutex
}

func NewRoomUsecase(
	connRepo memory.ConnectionRepository,
	roomRepo memory.RoomRepository,
	sockets memory.SocketRepository,
) RoomUsecase {
	return &roomUsecase{
		connRepo: connRepo,
		roomRepo: roomRepo,
		sockets:  sockets,
	}
}

func (u *roomUsecase) RegisterConnection(ctx context.Context, connID string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.connRepo.Add(&runtime.Connection{ID: connID})
}

func (u *roomUsecase) HandleIdentify(ctx context.Context, connID string, ev events.UserJoinEvent) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if ok := u.connRepo.SetIdentity(connID, ev.UserID, ev.Name, ev.Email); !ok {
		slog.Warn("identify unknown connection", slog.String(constant.ConnID, connID))
		return
	}

	slog.Info(
		"user identified",
		slog.String(constant.ConnID, connID),
		slog.String(constant.UserID, ev.UserID),
		slog.String(constant.UserName, ev.Name),
	)
}

func (u *roomUsecase) HandleJoinRoom(ctx context.Context, connID string, ev events.RoomJoinEvent) error {
	if ev.RoomID == "" {
		return fmt.Errorf("roomId is required")
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	conn, ok := u.connRepo.Get(connID)
	if !ok {
		slog.Warn("join from unknown connection", slog.String(constant.ConnID, connID))
		return nil
	}

	// Switching rooms leaves the previous one first, so a connection is a
	// member of at most one room at a time.
	if conn.RoomID != "" && conn.RoomID != ev.RoomID {
		left := u.leaveLocked(conn)
		u.notifyLeft(conn, left)
	}

	room, created := u.roomRepo.GetOrCreate(ev.RoomID, connID)
	u.roomRepo.AddParticipant(room.ID, connID)
	u.connRepo.SetRoom(connID, room.ID)

	// Re-read for the post-join snapshot: the repository hands out copies,
	// so the record from GetOrCreate predates AddParticipant.
	room, _ = u.roomRepo.Get(room.ID)

	metric.SetActiveRooms(u.roomRepo.Count())

	roster := make([]events.Participant, 0, len(room.Participants))
	for _, id := range room.Participants {
		participant := events.Participant{SocketID: id, IsHost: room.HostID == id}

		// Identity is optional: members that never sent user:join are
		// listed with empty fields.
		if member, ok := u.connRepo.Get(id); ok {
			participant.UserID = member.UserID
			participant.Name = member.Name
		}

		roster = append(roster, participant)
	}

	emit(u.sockets, connID, events.EventRoomJoined, events.RoomJoinedEvent{
		RoomID:       room.ID,
		Participants: roster,
		IsHost:       room.HostID == connID,
	})

	for _, id := range room.Participants {
		if id == connID {
			continue
		}

		emit(u.sockets, id, events.EventUserJoined, events.UserJoinedEvent{
			UserID:   ev.UserID,
			Name:     ev.Name,
			SocketID: connID,
		})
	}

	slog.Info(
		"connection joined room",
		slog.String(constant.ConnID, connID),
		slog.String(constant.RoomID, room.ID),
		slog.Bool("created", created),
		slog.Int("participants", len(room.Participants)),
	)

	return nil
}

func (u *roomUsecase) HandleDisconnect(ctx context.Context, connID string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	conn, ok := u.connRepo.Get(connID)
	if !ok {
		slog.Warn("disconnect of unknown connection", slog.String(constant.ConnID, connID))
		return
	}

	left := u.leaveLocked(conn)
	u.connRepo.Remove(connID)

	metric.SetActiveRooms(u.roomRepo.Count())

	u.notifyLeft(conn, left)

	slog.Info("connection removed", slog.String(constant.ConnID, connID))
}

// leaveResult describes one completed leave: which room was left, who is
// still in it, and whether the host moved.
type leaveResult struct {
	roomID      string
	remaining   []string
	hostChanged bool
	newHostID   string
}

// leaveLocked removes conn from its current room, migrates the host to the
// longest-present remaining participant and deletes the room when it empties.
// Idempotent no-op if the connection is not in a room. Caller holds u.mu.
func (u *roomUsecase) leaveLocked(conn *runtime.Connection) leaveResult {
	if conn.RoomID == "" {
		return leaveResult{}
	}

	roomID := conn.RoomID
	u.connRepo.SetRoom(conn.ID, "")

	u.roomRepo.RemoveParticipant(roomID, conn.ID)

	room, ok := u.roomRepo.Get(roomID)
	if !ok {
		return leaveResult{}
	}

	if len(room.Participants) == 0 {
		u.roomRepo.Remove(roomID)
		return leaveResult{roomID: roomID}
	}

	result := leaveResult{
		roomID:    roomID,
		remaining: room.Participants,
	}

	if room.HostID == conn.ID {
		result.hostChanged = true
		result.newHostID = room.Participants[0]
		u.roomRepo.SetHost(roomID, result.newHostID)
	}

	return result
}

// notifyLeft tells the former roommates that conn left, then, if the host
// moved, who the new host is. The order is fixed so nobody sees a host change
// for a host that never left.
func (u *roomUsecase) notifyLeft(conn *runtime.Connection, left leaveResult) {
	if left.roomID == "" {
		return
	}

	for _, id := range left.remaining {
		emit(u.sockets, id, events.EventUserLeft, events.UserLeftEvent{
			UserID:   conn.UserID,
			Name:     conn.Name,
			SocketID: conn.ID,
		})
	}

	slog.Info(
		"connection left room",
		slog.String(constant.ConnID, conn.ID),
		slog.String(constant.RoomID, left.roomID),
		slog.Bool("host_changed", left.hostChanged),
	)

	if !left.hostChanged {
		return
	}

	var newHostUserID string
	if newHost, ok := u.connRepo.Get(left.newHostID); ok {
		newHostUserID = newHost.UserID
	}

	for _, id := range left.remaining {
		emit(u.sockets, id, events.EventHostChanged, events.HostChangedEvent{
			NewHostSocketID: left.newHostID,
			NewHostUserID:   newHostUserID,
		})
	}
}

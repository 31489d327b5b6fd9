package usecase_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/pairview/pairview/internal/domain/events"
	"github.com/pairview/pairview/internal/domain/models"
	"github.com/pairview/pairview/internal/infra/adapters/memory"
	"github.com/pairview/pairview/internal/usecase"
)

type sentEvent struct {
	ConnID string
	Type   string
	Data   json.RawMessage
}

// socketRecorder captures outbound events instead of writing to a websocket.
type socketRecorder struct {
	mu   sync.Mutex
	sent []sentEvent
}

func (r *socketRecorder) Add(connID string, conn *websocket.Conn) {}

func (r *socketRecorder) Remove(connID string) {}

func (r *socketRecorder) Write(connID string, msg events.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sent = append(r.sent, sentEvent{ConnID: connID, Type: msg.Type, Data: msg.Data})
}

// to returns the events delivered to connID, in order.
func (r *socketRecorder) to(connID string) []sentEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []sentEvent
	for _, ev := range r.sent {
		if ev.ConnID == connID {
			out = append(out, ev)
		}
	}
	return out
}

// ofType returns the events of one type delivered to connID.
func (r *socketRecorder) ofType(connID, eventType string) []sentEvent {
	var out []sentEvent
	for _, ev := range r.to(connID) {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

func (r *socketRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sent = nil
}

func decode[T any](t *testing.T, ev sentEvent) T {
	t.Helper()

	var payload T
	require.NoError(t, json.Unmarshal(ev.Data, &payload))
	return payload
}

type fakeChatRepo struct {
	mu       sync.Mutex
	inserted []*models.ChatMessage
}

func (f *fakeChatRepo) Insert(ctx context.Context, msg *models.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.inserted = append(f.inserted, msg)
	return nil
}

func (f *fakeChatRepo) ListByRoomID(ctx context.Context, roomID string) ([]*models.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*models.ChatMessage
	for _, msg := range f.inserted {
		if msg.RoomID == roomID {
			out = append(out, msg)
		}
	}
	return out, nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions []*models.Session
	statuses map[string]string
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{statuses: make(map[string]string)}
}

func (f *fakeSessionRepo) Create(ctx context.Context, session *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sessions = append(f.sessions, session)
	return nil
}

func (f *fakeSessionRepo) GetByRoomID(ctx context.Context, roomID string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, s := range f.sessions {
		if s.RoomID == roomID {
			return s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeSessionRepo) GetByCode(ctx context.Context, code string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, s := range f.sessions {
		if s.RoomID == code || s.JoinCode == code {
			return s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeSessionRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*models.Session
	for _, s := range f.sessions {
		if s.HostID == userID || (s.ParticipantID != nil && *s.ParticipantID == userID) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) SetParticipant(ctx context.Context, sessionID, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, s := range f.sessions {
		if s.ID == sessionID {
			id := userID
			s.ParticipantID = &id
		}
	}
	return nil
}

func (f *fakeSessionRepo) UpdateStatusByRoomID(ctx context.Context, roomID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.statuses[roomID] = status
	return nil
}

// core bundles a fully wired lifecycle manager and relay over in-memory
// registries and a recording transport.
type core struct {
	rooms     usecase.RoomUsecase
	signaling usecase.SignalingUsecase

	recorder    *socketRecorder
	connRepo    memory.ConnectionRepository
	roomRepo    memory.RoomRepository
	chatRepo    *fakeChatRepo
	sessionRepo *fakeSessionRepo
}

func newCore() *core {
	connRepo := memory.NewConnectionRepository()
	roomRepo := memory.NewRoomRepository()
	recorder := &socketRecorder{}
	chatRepo := &fakeChatRepo{}
	sessionRepo := newFakeSessionRepo()

	return &core{
		rooms:       usecase.NewRoomUsecase(connRepo, roomRepo, recorder),
		signaling:   usecase.NewSignalingUsecase(connRepo, roomRepo, recorder, chatRepo, sessionRepo),
		recorder:    recorder,
		connRepo:    connRepo,
		roomRepo:    roomRepo,
		chatRepo:    chatRepo,
		sessionRepo: sessionRepo,
	}
}

// connect registers a connection and optionally identifies it.
func (c *core) connect(ctx context.Context, connID, userID, name string) {
	c.rooms.RegisterConnection(ctx, connID)
	if userID != "" {
		c.rooms.HandleIdentify(ctx, connID, events.UserJoinEvent{UserID: userID, Name: name})
	}
}

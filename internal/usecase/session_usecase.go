package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pairview/pairview/internal/domain/models"
	"github.com/pairview/pairview/internal/infra/adapters/postgres/repository"
)

var ErrSessionAccessDenied = fmt.Errorf("session access denied")

// SessionUsecase manages interview sessions: scheduling, lookup and joining
// by code. Creating a session mints the opaque room identifier the signaling
// core coordinates on.
type SessionUsecase interface {
	Create(ctx context.Context, hostID uuid.UUID, title string) (*models.Session, error)
	List(ctx context.Context, userID uuid.UUID) ([]*models.Session, error)

	// GetByRoomID returns a session plus its chat history. Only the host and
	// the participant may read it.
	GetByRoomID(ctx context.Context, userID uuid.UUID, roomID string) (*models.Session, []*models.ChatMessage, error)

	// Join resolves a room ID or join code and claims the participant seat
	// if it is still free.
	Join(ctx context.Context, userID uuid.UUID, code string) (*models.Session, error)
}

type sessionUsecase struct {
	sessionRepo repository.SessionRepository
	chatRepo    repository.ChatMessageRepository
}

func NewSessionUsecase(sessionRepo repository.SessionRepository, chatRepo repository.ChatMessageRepository) SessionUsecase {
	return &sessionUsecase{
		sessionRepo: sessionRepo,
		chatRepo:    chatRepo,
	}
}

func (uc *sessionUsecase) Create(ctx context.Context, hostID uuid.UUID, title string) (*models.Session, error) {
	session := &models.Session{
		ID:        uuid.New(),
		RoomID:    uuid.NewString(),
		JoinCode:  newJoinCode(),
		Title:     title,
		HostID:    hostID,
		Status:    models.SessionScheduled,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := uc.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return session, nil
}

func (uc *sessionUsecase) List(ctx context.Context, userID uuid.UUID) ([]*models.Session, error) {
	return uc.sessionRepo.ListByUserID(ctx, userID)
}

func (uc *sessionUsecase) GetByRoomID(ctx context.Context, userID uuid.UUID, roomID string) (*models.Session, []*models.ChatMessage, error) {
	session, err := uc.sessionRepo.GetByRoomID(ctx, roomID)
	if err != nil {
		return nil, nil, fmt.Errorf("get session: %w", err)
	}

	if !canAccess(session, userID) {
		return nil, nil, ErrSessionAccessDenied
	}

	history, err := uc.chatRepo.ListByRoomID(ctx, roomID)
	if err != nil {
		return nil, nil, fmt.Errorf("get chat history: %w", err)
	}

	return session, history, nil
}

func (uc *sessionUsecase) Join(ctx context.Context, userID uuid.UUID, code string) (*models.Session, error) {
	session, err := uc.sessionRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("resolve join code: %w", err)
	}

	if session.HostID != userID && session.ParticipantID == nil {
		if err := uc.sessionRepo.SetParticipant(ctx, session.ID, userID); err != nil {
			return nil, fmt.Errorf("claim participant seat: %w", err)
		}
		session.ParticipantID = &userID
	}

	if !canAccess(session, userID) {
		return nil, ErrSessionAccessDenied
	}

	return session, nil
}

func canAccess(session *models.Session, userID uuid.UUID) bool {
	if session.HostID == userID {
		return true
	}

	return session.ParticipantID != nil && *session.ParticipantID == userID
}

// newJoinCode mints a short human-friendly code for sharing out of band.
func newJoinCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

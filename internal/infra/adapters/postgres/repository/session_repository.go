package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pairview/pairview/internal/domain/models"
)

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByRoomID(ctx context.Context, roomID string) (*models.Session, error)

	// GetByCode resolves either a room ID or a join code.
	GetByCode(ctx context.Context, code string) (*models.Session, error)

	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Session, error)
	SetParticipant(ctx context.Context, sessionID, userID uuid.UUID) error

	// UpdateStatusByRoomID is the only session write the signaling core
	// performs (on session:start / session:end).
	UpdateStatusByRoomID(ctx context.Context, roomID, status string) error
}

type sessionRepo struct {
	db *sqlx.DB
}

func NewSessionRepo(db *sqlx.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Create(ctx context.Context, session *models.Session) error {
	_, err := r.db.ExecContext(
		ctx,
		"INSERT INTO interview_sessions (id, room_id, join_code, title, host_id, status) VALUES ($1, $2, $3, $4, $5, $6)",
		session.ID,
		session.RoomID,
		session.JoinCode,
		session.Title,
		session.HostID,
		session.Status,
	)

	return err
}

func (r *sessionRepo) GetByRoomID(ctx context.Context, roomID string) (*models.Session, error) {
	var session models.Session

	err := r.db.GetContext(ctx, &session, "SELECT * FROM interview_sessions WHERE room_id = $1", roomID)
	if err != nil {
		return nil, err
	}

	return &session, nil
}

func (r *sessionRepo) GetByCode(ctx context.Context, code string) (*models.Session, error) {
	var session models.Session

	err := r.db.GetContext(
		ctx,
		&session,
		"SELECT * FROM interview_sessions WHERE room_id = $1 OR join_code = $1",
		code,
	)
	if err != nil {
		return nil, err
	}

	return &session, nil
}

func (r *sessionRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Session, error) {
	var sessions []*models.Session

	query := `
		SELECT *
		FROM interview_sessions
		WHERE host_id = $1 OR participant_id = $1
		ORDER BY created_at DESC
	`

	err := r.db.SelectContext(ctx, &sessions, query, userID)
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *sessionRepo) SetParticipant(ctx context.Context, sessionID, userID uuid.UUID) error {
	_, err := r.db.ExecContext(
		ctx,
		"UPDATE interview_sessions SET participant_id = $1, updated_at = $2 WHERE id = $3",
		userID,
		time.Now(),
		sessionID,
	)

	return err
}

func (r *sessionRepo) UpdateStatusByRoomID(ctx context.Context, roomID, status string) error {
	_, err := r.db.ExecContext(
		ctx,
		"UPDATE interview_sessions SET status = $1, updated_at = $2 WHERE room_id = $3",
		status,
		time.Now(),
		roomID,
	)

	return err
}

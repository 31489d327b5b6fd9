package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/pairview/pairview/internal/domain/models"
)

// ChatMessageRepository persists room chat. The signaling core only inserts;
// history reads happen in the HTTP handlers.
type ChatMessageRepository interface {
	Insert(ctx context.Context, msg *models.ChatMessage) error
	ListByRoomID(ctx context.Context, roomID string) ([]*models.ChatMessage, error)
}

type chatMessageRepo struct {
	db *sqlx.DB
}

func NewChatMessageRepo(db *sqlx.DB) ChatMessageRepository {
	return &chatMessageRepo{db: db}
}

func (r *chatMessageRepo) Insert(ctx context.Context, msg *models.ChatMessage) error {
	_, err := r.db.ExecContext(
		ctx,
		"INSERT INTO chat_messages (id, room_id, user_id, user_name, message, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		msg.ID,
		msg.RoomID,
		msg.UserID,
		msg.UserName,
		msg.Message,
		msg.CreatedAt,
	)

	return err
}

func (r *chatMessageRepo) ListByRoomID(ctx context.Context, roomID string) ([]*models.ChatMessage, error) {
	var messages []*models.ChatMessage

	query := `
		SELECT id, room_id, user_id, user_name, message, created_at
		FROM chat_messages
		WHERE room_id = $1
		ORDER BY created_at ASC
	`

	err := r.db.SelectContext(ctx, &messages, query, roomID)
	if err != nil {
		return nil, err
	}

	return messages, nil
}

package models

import "time"

// ChatMessage is a persisted room chat message. ID is assigned by the
// signaling core: "<unix-ms>-<connection-id>", unique even for messages sent
// in the same millisecond by different connections.
type ChatMessage struct {
	ID        string    `json:"id" db:"id"`
	RoomID    string    `json:"room_id" db:"room_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	UserName  string    `json:"user_name" db:"user_name"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

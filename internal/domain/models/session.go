package models

import (
	"time"

	"github.com/google/uuid"
)

// Session statuses.
const (
	SessionScheduled = "scheduled"
	SessionActive    = "active"
	SessionCompleted = "completed"
)

// Session is one scheduled interview. RoomID is the opaque key the signaling
// core uses for room coordination; JoinCode is a short human-friendly alias.
type Session struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	RoomID        string     `json:"room_id" db:"room_id"`
	JoinCode      string     `json:"join_code" db:"join_code"`
	Title         string     `json:"title" db:"title"`
	HostID        uuid.UUID  `json:"host_id" db:"host_id"`
	ParticipantID *uuid.UUID `json:"participant_id" db:"participant_id"`
	Status        string     `json:"status" db:"status"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

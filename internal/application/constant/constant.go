package constant

// Common slog attribute keys.
const (
	Error    = "error"
	UserID   = "user_id"
	UserName = "user_name"
	ConnID   = "conn_id"
	RoomID   = "room_id"
	Event    = "event"
)

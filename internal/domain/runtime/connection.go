package runtime

// Connection is the in-memory record of one live websocket session.
// Identity fields stay empty until the client sends user:join; downstream
// code must not assume they are set.
type Connection struct {
	ID     string
	UserID string
	Name   string
	Email  string

	// RoomID is the room this connection currently belongs to, empty if none.
	RoomID string
}

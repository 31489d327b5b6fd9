package events

import "encoding/json"

// Message is the envelope every websocket frame carries: a named event plus
// its raw payload.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// NewMessage marshals payload into an envelope of the given event type.
func NewMessage(eventType string, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}

	return Message{Type: eventType, Data: data}, nil
}

// Client -> server event names.
const (
	EventUserJoin     = "user:join"
	EventRoomJoin     = "room:join"
	EventOffer        = "webrtc:offer"
	EventAnswer       = "webrtc:answer"
	EventIceCandidate = "webrtc:ice-candidate"
	EventMediaToggle  = "media:toggle"
	EventScreenStart  = "screen:start"
	EventScreenStop   = "screen:stop"
	EventCodeChange   = "code:change"
	EventCodeCursor   = "code:cursor"
	EventChatMessage  = "chat:message"
	EventSessionStart = "session:start"
	EventSessionEnd   = "session:end"
	EventPing         = "ping"
)

// Server -> client event names not shared with the client -> server set.
const (
	EventRoomJoined     = "room:joined"
	EventUserJoined     = "user:joined"
	EventUserLeft       = "user:left"
	EventHostChanged    = "host:changed"
	EventSessionStarted = "session:started"
	EventSessionEnded   = "session:ended"
	EventPong           = "pong"
)

// UserJoinEvent identifies the connection. The core trusts these fields as-is;
// authentication happened upstream.
type UserJoinEvent struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// RoomJoinEvent asks to join (or switch to) a room.
type RoomJoinEvent struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// OfferEvent carries an opaque SDP offer addressed to one peer.
type OfferEvent struct {
	To    string          `json:"to"`
	Offer json.RawMessage `json:"offer"`
}

// AnswerEvent carries an opaque SDP answer addressed to one peer.
type AnswerEvent struct {
	To     string          `json:"to"`
	Answer json.RawMessage `json:"answer"`
}

// IceCandidateEvent carries an opaque ICE candidate addressed to one peer.
type IceCandidateEvent struct {
	To        string          `json:"to"`
	Candidate json.RawMessage `json:"candidate"`
}

type MediaToggleEvent struct {
	Type    string `json:"type"`
	Enabled bool   `json:"enabled"`
	RoomID  string `json:"roomId"`
}

type ScreenEvent struct {
	RoomID string `json:"roomId"`
}

type CodeChangeEvent struct {
	RoomID   string `json:"roomId"`
	Code     string `json:"code"`
	Language string `json:"language"`
}

type CodeCursorEvent struct {
	RoomID   string          `json:"roomId"`
	Position json.RawMessage `json:"position"`
	UserID   string          `json:"userId"`
}

type ChatMessageEvent struct {
	RoomID   string `json:"roomId"`
	Message  string `json:"message"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type SessionControlEvent struct {
	RoomID string `json:"roomId"`
}

// Participant is one roster entry in a room:joined event. Identity fields may
// be empty when the member never sent user:join.
type Participant struct {
	SocketID string `json:"socketId"`
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	IsHost   bool   `json:"isHost"`
}

type RoomJoinedEvent struct {
	RoomID       string        `json:"roomId"`
	Participants []Participant `json:"participants"`
	IsHost       bool          `json:"isHost"`
}

type UserJoinedEvent struct {
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	SocketID string `json:"socketId"`
}

type UserLeftEvent struct {
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	SocketID string `json:"socketId"`
}

type HostChangedEvent struct {
	NewHostSocketID string `json:"newHostSocketId"`
	NewHostUserID   string `json:"newHostUserId"`
}

type OfferForward struct {
	From  string          `json:"from"`
	Offer json.RawMessage `json:"offer"`
}

type AnswerForward struct {
	From   string          `json:"from"`
	Answer json.RawMessage `json:"answer"`
}

type IceCandidateForward struct {
	From      string          `json:"from"`
	Candidate json.RawMessage `json:"candidate"`
}

type MediaToggleBroadcast struct {
	UserID   string `json:"userId"`
	SocketID string `json:"socketId"`
	Type     string `json:"type"`
	Enabled  bool   `json:"enabled"`
}

type ScreenStartBroadcast struct {
	UserID   string `json:"userId"`
	SocketID string `json:"socketId"`
	UserName string `json:"userName"`
}

type ScreenStopBroadcast struct {
	UserID   string `json:"userId"`
	SocketID string `json:"socketId"`
}

type CodeChangeBroadcast struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	UserID   string `json:"userId"`
}

type CodeCursorBroadcast struct {
	Position json.RawMessage `json:"position"`
	UserID   string          `json:"userId"`
	SocketID string          `json:"socketId"`
}

type ChatMessageBroadcast struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	Timestamp string `json:"timestamp"`
}

type SessionStartedEvent struct {
	StartedBy string `json:"startedBy"`
	Timestamp string `json:"timestamp"`
}

type SessionEndedEvent struct {
	EndedBy   string `json:"endedBy"`
	Timestamp string `json:"timestamp"`
}

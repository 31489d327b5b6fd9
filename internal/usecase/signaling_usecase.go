package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pairview/pairview/internal/application/constant"
	"github.com/pairview/pairview/internal/application/metric"
	"github.com/pairview/pairview/internal/domain/events"
	"github.com/pairview/pairview/internal/domain/models"
	"github.com/pairview/pairview/internal/infra/adapters/memory"
	"github.com/pairview/pairview/internal/infra/adapters/postgres/repository"
)

// SignalingUsecase is the relay: it forwards negotiation and room events
// without interpreting their payloads. Directed messages go to exactly one
// peer annotated with the true sender; broadcast messages go to the room,
// excluding the sender for everything except chat.
type SignalingUsecase interface {
	HandleOffer(ctx context.Context, connID string, ev events.OfferEvent)
	HandleAnswer(ctx context.Context, connID string, ev events.AnswerEvent)
	HandleCandidate(ctx context.Context, connID string, ev events.IceCandidateEvent)

	HandleMediaToggle(ctx context.Context, connID string, ev events.MediaToggleEvent)
	HandleScreenStart(ctx context.Context, connID string, ev events.ScreenEvent)
	HandleScreenStop(ctx context.Context, connID string, ev events.ScreenEvent)
	HandleCodeChange(ctx context.Context, connID string, ev events.CodeChangeEvent)
	HandleCodeCursor(ctx context.Context, connID string, ev events.CodeCursorEvent)

	HandleChatMessage(ctx context.Context, connID string, ev events.ChatMessageEvent)

	HandleSessionStart(ctx context.Context, connID string, ev events.SessionControlEvent)
	HandleSessionEnd(ctx context.Context, connID string, ev events.SessionControlEvent)

	HandlePing(ctx context.Context, connID string)
}

type signalingUsecase struct {
	connRepo memory.ConnectionRepository
	roomRepo memory.RoomRepository
	sockets  memory.SocketRepository

	chatRepo    repository.ChatMessageRepository
	sessionRepo repository.SessionRepository
}

func NewSignalingUsecase(
	connRepo memory.ConnectionRepository,
	roomRepo memory.RoomRepository,
	sockets memory.SocketRepository,
	chatRepo repository.ChatMessageRepository,
	sessionRepo repository.SessionRepository,
) SignalingUsecase {
	return &signalingUsecase{
		connRepo:    connRepo,
		roomRepo:    roomRepo,
		sockets:     sockets,
		chatRepo:    chatRepo,
		sessionRepo: sessionRepo,
	}
}

// HandleOffer forwards an SDP offer to the addressed peer. The target is not
// checked against the sender's room: clients are trusted to address only
// peers learned from roster events.
func (s *signalingUsecase) HandleOffer(ctx context.Context, connID string, ev events.OfferEvent) {
	metric.IncrementRelayedEvents(events.EventOffer)

	emit(s.sockets, ev.To, events.EventOffer, events.OfferForward{
		From:  connID,
		Offer: ev.Offer,
	})
}

func (s *signalingUsecase) HandleAnswer(ctx context.Context, connID string, ev events.AnswerEvent) {
	metric.IncrementRelayedEvents(events.EventAnswer)

	emit(s.sockets, ev.To, events.EventAnswer, events.AnswerForward{
		From:   connID,
		Answer: ev.Answer,
	})
}

func (s *signalingUsecase) HandleCandidate(ctx context.Context, connID string, ev events.IceCandidateEvent) {
	metric.IncrementRelayedEvents(events.EventIceCandidate)

	emit(s.sockets, ev.To, events.EventIceCandidate, events.IceCandidateForward{
		From:      connID,
		Candidate: ev.Candidate,
	})
}

func (s *signalingUsecase) HandleMediaToggle(ctx context.Context, connID string, ev events.MediaToggleEvent) {
	conn, ok := s.connRepo.Get(connID)
	if !ok || ev.RoomID == "" {
		return
	}

	metric.IncrementRelayedEvents(events.EventMediaToggle)

	s.broadcast(ev.RoomID, connID, events.EventMediaToggle, events.MediaToggleBroadcast{
		UserID:   conn.UserID,
		SocketID: connID,
		Type:     ev.Type,
		Enabled:  ev.Enabled,
	})
}

func (s *signalingUsecase) HandleScreenStart(ctx context.Context, connID string, ev events.ScreenEvent) {
	conn, ok := s.connRepo.Get(connID)
	if !ok {
		return
	}

	metric.IncrementRelayedEvents(events.EventScreenStart)

	s.broadcast(ev.RoomID, connID, events.EventScreenStart, events.ScreenStartBroadcast{
		UserID:   conn.UserID,
		SocketID: connID,
		UserName: conn.Name,
	})
}

func (s *signalingUsecase) HandleScreenStop(ctx context.Context, connID string, ev events.ScreenEvent) {
	conn, ok := s.connRepo.Get(connID)
	if !ok {
		return
	}

	metric.IncrementRelayedEvents(events.EventScreenStop)

	s.broadcast(ev.RoomID, connID, events.EventScreenStop, events.ScreenStopBroadcast{
		UserID:   conn.UserID,
		SocketID: connID,
	})
}

func (s *signalingUsecase) HandleCodeChange(ctx context.Context, connID string, ev events.CodeChangeEvent) {
	var userID string
	if conn, ok := s.connRepo.Get(connID); ok {
		userID = conn.UserID
	}

	metric.IncrementRelayedEvents(events.EventCodeChange)

	s.broadcast(ev.RoomID, connID, events.EventCodeChange, events.CodeChangeBroadcast{
		Code:     ev.Code,
		Language: ev.Language,
		UserID:   userID,
	})
}

func (s *signalingUsecase) HandleCodeCursor(ctx context.Context, connID string, ev events.CodeCursorEvent) {
	metric.IncrementRelayedEvents(events.EventCodeCursor)

	s.broadcast(ev.RoomID, connID, events.EventCodeCursor, events.CodeCursorBroadcast{
		Position: ev.Position,
		UserID:   ev.UserID,
		SocketID: connID,
	})
}

// HandleChatMessage broadcasts a chat message to the whole room, sender
// included, so the sender's UI gets the server-confirmed echo with the
// assigned id and timestamp. The message is also persisted; a storage failure
// is logged and does not block the relay.
func (s *signalingUsecase) HandleChatMessage(ctx context.Context, connID string, ev events.ChatMessageEvent) {
	now := time.Now()

	msg := events.ChatMessageBroadcast{
		ID:        fmt.Sprintf("%d-%s", now.UnixMilli(), connID),
		Message:   ev.Message,
		UserID:    ev.UserID,
		UserName:  ev.UserName,
		Timestamp: now.UTC().Format(time.RFC3339),
	}

	if err := s.chatRepo.Insert(ctx, &models.ChatMessage{
		ID:        msg.ID,
		RoomID:    ev.RoomID,
		UserID:    ev.UserID,
		UserName:  ev.UserName,
		Message:   ev.Message,
		CreatedAt: now,
	}); err != nil {
		slog.Error(
			"persist chat message",
			slog.String(constant.RoomID, ev.RoomID),
			slog.Any(constant.Error, err),
		)
	}

	metric.IncrementRelayedEvents(events.EventChatMessage)

	s.broadcast(ev.RoomID, "", events.EventChatMessage, msg)
}

// HandleSessionStart is honored only when the sender is the room's current
// host; anyone else is silently ignored.
func (s *signalingUsecase) HandleSessionStart(ctx context.Context, connID string, ev events.SessionControlEvent) {
	name, ok := s.hostName(connID, ev.RoomID)
	if !ok {
		return
	}

	if err := s.sessionRepo.UpdateStatusByRoomID(ctx, ev.RoomID, models.SessionActive); err != nil {
		slog.Error(
			"update session status",
			slog.String(constant.RoomID, ev.RoomID),
			slog.Any(constant.Error, err),
		)
	}

	metric.IncrementRelayedEvents(events.EventSessionStart)

	s.broadcast(ev.RoomID, "", events.EventSessionStarted, events.SessionStartedEvent{
		StartedBy: name,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *signalingUsecase) HandleSessionEnd(ctx context.Context, connID string, ev events.SessionControlEvent) {
	name, ok := s.hostName(connID, ev.RoomID)
	if !ok {
		return
	}

	if err := s.sessionRepo.UpdateStatusByRoomID(ctx, ev.RoomID, models.SessionCompleted); err != nil {
		slog.Error(
			"update session status",
			slog.String(constant.RoomID, ev.RoomID),
			slog.Any(constant.Error, err),
		)
	}

	metric.IncrementRelayedEvents(events.EventSessionEnd)

	s.broadcast(ev.RoomID, "", events.EventSessionEnded, events.SessionEndedEvent{
		EndedBy:   name,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *signalingUsecase) HandlePing(ctx context.Context, connID string) {
	emit(s.sockets, connID, events.EventPong, struct{}{})
}

// hostName returns the sender's display name if it is the current host of
// roomID, and whether the control message should be honored.
func (s *signalingUsecase) hostName(connID, roomID string) (string, bool) {
	room, found := s.roomRepo.Get(roomID)
	if !found || room.HostID != connID {
		slog.Debug(
			"session control from non-host ignored",
			slog.String(constant.ConnID, connID),
			slog.String(constant.RoomID, roomID),
		)
		return "", false
	}

	var name string
	if conn, found := s.connRepo.Get(connID); found {
		name = conn.Name
	}

	return name, true
}

// broadcast sends one event to every participant of roomID, skipping exclude
// when set. Unknown rooms are a no-op.
func (s *signalingUsecase) broadcast(roomID, exclude, eventType string, payload any) {
	room, ok := s.roomRepo.Get(roomID)
	if !ok {
		return
	}

	for _, id := range room.Participants {
		if id == exclude {
			continue
		}

		emit(s.sockets, id, eventType, payload)
	}
}

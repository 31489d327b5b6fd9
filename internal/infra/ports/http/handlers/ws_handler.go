package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/pairview/pairview/internal/application/config"
	"github.com/pairview/pairview/internal/application/constant"
	"github.com/pairview/pairview/internal/application/metric"
	"github.com/pairview/pairview/internal/domain/events"
	"github.com/pairview/pairview/internal/infra/adapters/memory"
	"github.com/pairview/pairview/internal/usecase"
)

// WebSocketHandler is the transport edge of the signaling core: it upgrades
// the HTTP connection, assigns the connection ID, pumps inbound events into
// the usecases and reports the disconnect exactly once.
type WebSocketHandler struct {
	upgrader *websocket.Upgrader

	roomUsecase      usecase.RoomUsecase
	signalingUsecase usecase.SignalingUsecase

	sockets memory.SocketRepository
}

func NewWebSocketHandler(
	cfg *config.Config,
	roomUsecase usecase.RoomUsecase,
	signalingUsecase usecase.SignalingUsecase,
	sockets memory.SocketRepository,
) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if cfg.Debug {
					return true
				}

				return r.Header.Get("Origin") == cfg.Domain
			},
		},
		roomUsecase:      roomUsecase,
		signalingUsecase: signalingUsecase,
		sockets:          sockets,
	}
}

func (h *WebSocketHandler) Handle(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"WebSocket upgrade error",
			slog.Any(constant.Error, err),
		)
		return err
	}
	defer ws.Close()

	// Connection IDs are minted here, never reused, and stay stable for the
	// connection's lifetime.
	connID := uuid.NewString()

	h.sockets.Add(connID, ws)
	h.roomUsecase.RegisterConnection(c.Request().Context(), connID)

	metric.IncrementWSActiveConnections()

	slog.Info("websocket connected", slog.String(constant.ConnID, connID))

	defer func() {
		h.roomUsecase.HandleDisconnect(c.Request().Context(), connID)
		h.sockets.Remove(connID)
		metric.DecrementWSActiveConnections()
	}()

	err = ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	if err != nil {
		return err
	}
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			case <-c.Request().Context().Done():
				return
			}
		}
	}()

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		default:
			_, raw, err := ws.ReadMessage()
			if err != nil {
				h.handleWebsocketError(connID, err)
				return nil
			}

			msg := new(events.Message)

			if err = json.Unmarshal(raw, msg); err != nil {
				slog.Error(
					"unmarshal websocket message",
					slog.String(constant.ConnID, connID),
					slog.Any(constant.Error, err),
				)
				continue
			}

			// A bad message from one connection must not take down its
			// handler, let alone anyone else's.
			if err = h.handleMessage(c.Request().Context(), connID, msg); err != nil {
				slog.Error(
					"handle message",
					slog.String(constant.ConnID, connID),
					slog.String(constant.Event, msg.Type),
					slog.Any(constant.Error, err),
				)
			}
		}
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, connID string, msg *events.Message) error {
	switch msg.Type {
	case events.EventUserJoin:
		var ev events.UserJoinEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return fmt.Errorf("unmarshal user join: %w", err)
		}
		h.roomUsecase.HandleIdentify(ctx, connID, ev)

	case events.EventRoomJoin:
		var ev events.RoomJoinEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return fmt.Errorf("unmarshal room join: %w", err)
		}
		if err := h.roomUsecase.HandleJoinRoom(ctx, connID, ev); err != nil {
			return fmt.Errorf("handle room join: %w", err)
		}

	case events.EventOffer:
		var ev events.OfferEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return fmt.Errorf("unmarshal offer: %w", err)
		}
		h.signalingUsecase.HandleOffer(ctx, connID, ev)

	case events.EventAnswer:
		var ev events.AnswerEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return fmt.Errorf("unmarshal answer: %w", err)
		}
		h.signalingUsecase.HandleAnswer(ctx, connID, ev)

	case events.EventIceCandidate:
		var ev events.IceCandidateEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return fmt.Errorf("unmarshal ice candidate: %w", err)
		}
		h.signalingUsecase.HandleCandidate(ctx, connID, ev)

	case events.EventMediaToggle:
		var ev events.MediaToggleEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return fmt.Errorf("unmarshal media toggle: %w", err)
		}
		h.signalingUsecase.HandleMediaToggle(ctx, connID, ev)

	case events.EventScreenStart:
		var ev events.ScreenEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return fmt.Errorf("unmarshal screen start: %w", err)
		}
		h.signalingUsecase.HandleScreenStart(ctx, connID, ev)

	case events.EventScreenStop:
		var ev events.ScreenEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return fmt.Errorf("unmarshal screen stop: %w", err)
		}
		h.signalingUsecase.HandleScreenStop(ctx, connID, ev)

	case events.EventCodeChange:
		var ev events.CodeChangeEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return fmt.Errorf("unmarshal code change: %w", err)
		}
		h.signalingUsecase.HandleCodeChange(ctx, connID, ev)

	case events.EventCodeCursor:
		var ev events.CodeCursorEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return fmt.Errorf("unmarshal code cursor: %w", err)
		}
		h.signalingUsecase.HandleCodeCursor(ctx, connID, ev)

	case events.EventChatMessage:
		var ev events.ChatMessageEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return fmt.Errorf("unmarshal chat message: %w", err)
		}
		h.signalingUsecase.HandleChatMessage(ctx, connID, ev)

	case events.EventSessionStart:
		var ev events.SessionControlEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return fmt.Errorf("unmarshal session start: %w", err)
		}
		h.signalingUsecase.HandleSessionStart(ctx, connID, ev)

	case events.EventSessionEnd:
		var ev events.SessionControlEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return fmt.Errorf("unmarshal session end: %w", err)
		}
		h.signalingUsecase.HandleSessionEnd(ctx, connID, ev)

	case events.EventPing:
		h.signalingUsecase.HandlePing(ctx, connID)

	default:
		return errors.New("unknown message type")
	}

	return nil
}

func (h *WebSocketHandler) handleWebsocketError(connID string, err error) {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		switch closeErr.Code {
		case websocket.CloseNormalClosure, websocket.CloseGoingAway:
			slog.Info("client disconnected from websocket", slog.String(constant.ConnID, connID))
		default:
			slog.Error("websocket close error", slog.String(constant.ConnID, connID), slog.Any(constant.Error, err))
		}
	} else {
		slog.Error(
			"websocket read",
			slog.String(constant.ConnID, connID),
			slog.Any(constant.Error, err),
		)
	}
}

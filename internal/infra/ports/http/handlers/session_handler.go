package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pairview/pairview/internal/application/constant"
	"github.com/pairview/pairview/internal/infra/appctx"
	"github.com/pairview/pairview/internal/infra/ports/http/dto"
	"github.com/pairview/pairview/internal/usecase"
)

type SessionHandler struct {
	sessionUsecase usecase.SessionUsecase
}

func NewSessionHandler(sessionUsecase usecase.SessionUsecase) *SessionHandler {
	return &SessionHandler{
		sessionUsecase: sessionUsecase,
	}
}

func (h *SessionHandler) CreateSession(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user ID in context"})
	}

	var req dto.CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	session, err := h.sessionUsecase.Create(c.Request().Context(), userID, req.Title)
	if err != nil {
		slog.Error("create session failed", slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create session"})
	}

	return c.JSON(http.StatusCreated, session)
}

func (h *SessionHandler) ListSessions(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user ID in context"})
	}

	sessions, err := h.sessionUsecase.List(c.Request().Context(), userID)
	if err != nil {
		slog.Error("list sessions failed", slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not list sessions"})
	}

	return c.JSON(http.StatusOK, sessions)
}

func (h *SessionHandler) GetSession(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user ID in context"})
	}

	session, messages, err := h.sessionUsecase.GetByRoomID(c.Request().Context(), userID, c.Param("roomId"))
	if err != nil {
		if errors.Is(err, usecase.ErrSessionAccessDenied) {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "access denied"})
		}

		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}

	return c.JSON(http.StatusOK, dto.SessionDetailResponse{
		Session:  session,
		Messages: messages,
	})
}

func (h *SessionHandler) JoinSession(c echo.Context) error {
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user ID in context"})
	}

	var req dto.JoinSessionRequest
	if err := c.Bind(&req); err != nil || req.Code == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "code is required"})
	}

	session, err := h.sessionUsecase.Join(c.Request().Context(), userID, req.Code)
	if err != nil {
		if errors.Is(err, usecase.ErrSessionAccessDenied) {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "access denied"})
		}

		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}

	return c.JSON(http.StatusOK, session)
}

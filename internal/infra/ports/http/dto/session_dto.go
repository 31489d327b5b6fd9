package dto

import "github.com/pairview/pairview/internal/domain/models"

type CreateSessionRequest struct {
	Title string `json:"title"`
}

type JoinSessionRequest struct {
	Code string `json:"code"`
}

type SessionDetailResponse struct {
	Session  *models.Session       `json:"session"`
	Messages []*models.ChatMessage `json:"messages"`
}

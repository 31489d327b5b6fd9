package usecase_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pairview/pairview/internal/domain/models"
	"github.com/pairview/pairview/internal/usecase"
)

func TestCreateSessionMintsRoomAndJoinCode(t *testing.T) {
	ctx := context.Background()
	repo := newFakeSessionRepo()
	uc := usecase.NewSessionUsecase(repo, &fakeChatRepo{})
	hostID := uuid.New()

	session, err := uc.Create(ctx, hostID, "Backend screening")
	require.NoError(t, err)

	require.Equal(t, hostID, session.HostID)
	require.Equal(t, models.SessionScheduled, session.Status)
	require.NotEmpty(t, session.RoomID)
	require.Len(t, session.JoinCode, 8)

	other, err := uc.Create(ctx, hostID, "Another")
	require.NoError(t, err)
	require.NotEqual(t, session.RoomID, other.RoomID)
	require.NotEqual(t, session.JoinCode, other.JoinCode)
}

func TestJoinClaimsFreeSeatOnce(t *testing.T) {
	ctx := context.Background()
	repo := newFakeSessionRepo()
	uc := usecase.NewSessionUsecase(repo, &fakeChatRepo{})

	hostID := uuid.New()
	created, err := uc.Create(ctx, hostID, "Pairing round")
	require.NoError(t, err)

	candidate := uuid.New()
	joined, err := uc.Join(ctx, candidate, created.JoinCode)
	require.NoError(t, err)
	require.NotNil(t, joined.ParticipantID)
	require.Equal(t, candidate, *joined.ParticipantID)

	// The seat stays with its first claimant.
	_, err = uc.Join(ctx, uuid.New(), created.JoinCode)
	require.ErrorIs(t, err, usecase.ErrSessionAccessDenied)

	// Rejoining by either party keeps working, by room id too.
	_, err = uc.Join(ctx, candidate, created.RoomID)
	require.NoError(t, err)
	_, err = uc.Join(ctx, hostID, created.JoinCode)
	require.NoError(t, err)
}

func TestGetByRoomIDEnforcesAccessAndReturnsHistory(t *testing.T) {
	ctx := context.Background()
	repo := newFakeSessionRepo()
	chat := &fakeChatRepo{}
	uc := usecase.NewSessionUsecase(repo, chat)

	hostID := uuid.New()
	created, err := uc.Create(ctx, hostID, "System design")
	require.NoError(t, err)

	require.NoError(t, chat.Insert(ctx, &models.ChatMessage{ID: "1-a", RoomID: created.RoomID, Message: "hi"}))
	require.NoError(t, chat.Insert(ctx, &models.ChatMessage{ID: "2-b", RoomID: "other-room", Message: "elsewhere"}))

	session, history, err := uc.GetByRoomID(ctx, hostID, created.RoomID)
	require.NoError(t, err)
	require.Equal(t, created.ID, session.ID)
	require.Len(t, history, 1)
	require.Equal(t, "hi", history[0].Message)

	_, _, err = uc.GetByRoomID(ctx, uuid.New(), created.RoomID)
	require.ErrorIs(t, err, usecase.ErrSessionAccessDenied)
}

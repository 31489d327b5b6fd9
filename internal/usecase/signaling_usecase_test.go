package usecase_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pairview/pairview/internal/domain/events"
	"github.com/pairview/pairview/internal/domain/models"
)

// joinPair puts a (host) and b into roomID and clears the recorder.
func joinPair(t *testing.T, c *core, roomID string) {
	t.Helper()
	ctx := context.Background()

	c.connect(ctx, "a", "u-a", "Alice")
	c.connect(ctx, "b", "u-b", "Bob")
	require.NoError(t, c.rooms.HandleJoinRoom(ctx, "a", events.RoomJoinEvent{RoomID: roomID, UserID: "u-a", Name: "Alice"}))
	require.NoError(t, c.rooms.HandleJoinRoom(ctx, "b", events.RoomJoinEvent{RoomID: roomID, UserID: "u-b", Name: "Bob"}))
	c.recorder.reset()
}

func TestOfferRelayedOnlyToTarget(t *testing.T) {
	ctx := context.Background()
	c := newCore()
	joinPair(t, c, "r1")

	offer := json.RawMessage(`{"type":"offer","sdp":"v=0"}`)
	c.signaling.HandleOffer(ctx, "b", events.OfferEvent{To: "a", Offer: offer})

	got := c.recorder.ofType("a", events.EventOffer)
	require.Len(t, got, 1)

	payload := decode[events.OfferForward](t, got[0])
	require.Equal(t, "b", payload.From, "annotated with the true sender")
	require.JSONEq(t, string(offer), string(payload.Offer))

	require.Empty(t, c.recorder.to("b"), "sender receives nothing back")
}

func TestDirectedRelayIgnoresRoomMembership(t *testing.T) {
	ctx := context.Background()
	c := newCore()

	// Two connections that share no room.
	c.connect(ctx, "x", "u-x", "Xena")
	c.connect(ctx, "y", "u-y", "Yuri")

	c.signaling.HandleCandidate(ctx, "x", events.IceCandidateEvent{
		To:        "y",
		Candidate: json.RawMessage(`{"candidate":"cand"}`),
	})

	got := c.recorder.ofType("y", events.EventIceCandidate)
	require.Len(t, got, 1)
	require.Equal(t, "x", decode[events.IceCandidateForward](t, got[0]).From)
}

func TestAnswerRelayToDisconnectedTargetIsDropped(t *testing.T) {
	ctx := context.Background()
	c := newCore()
	c.connect(ctx, "a", "u-a", "Alice")

	// Target never existed; the relay attempts delivery and the transport
	// drops it silently.
	c.signaling.HandleAnswer(ctx, "a", events.AnswerEvent{To: "gone", Answer: json.RawMessage(`{}`)})

	require.Len(t, c.recorder.to("gone"), 1, "write is attempted; the socket layer drops it")
	require.Empty(t, c.recorder.to("a"))
}

func TestMediaToggleExcludesSender(t *testing.T) {
	ctx := context.Background()
	c := newCore()
	joinPair(t, c, "r1")

	c.signaling.HandleMediaToggle(ctx, "a", events.MediaToggleEvent{Type: "audio", Enabled: false, RoomID: "r1"})

	require.Empty(t, c.recorder.to("a"))

	got := c.recorder.ofType("b", events.EventMediaToggle)
	require.Len(t, got, 1)

	payload := decode[events.MediaToggleBroadcast](t, got[0])
	require.Equal(t, "a", payload.SocketID)
	require.Equal(t, "u-a", payload.UserID)
	require.Equal(t, "audio", payload.Type)
	require.False(t, payload.Enabled)
}

func TestScreenShareBroadcasts(t *testing.T) {
	ctx := context.Background()
	c := newCore()
	joinPair(t, c, "r1")

	c.signaling.HandleScreenStart(ctx, "b", events.ScreenEvent{RoomID: "r1"})
	c.signaling.HandleScreenStop(ctx, "b", events.ScreenEvent{RoomID: "r1"})

	start := c.recorder.ofType("a", events.EventScreenStart)
	require.Len(t, start, 1)
	require.Equal(t, "Bob", decode[events.ScreenStartBroadcast](t, start[0]).UserName)

	stop := c.recorder.ofType("a", events.EventScreenStop)
	require.Len(t, stop, 1)

	require.Empty(t, c.recorder.to("b"))
}

func TestCodeChangeRelayedToOthers(t *testing.T) {
	ctx := context.Background()
	c := newCore()
	joinPair(t, c, "r1")

	c.signaling.HandleCodeChange(ctx, "a", events.CodeChangeEvent{RoomID: "r1", Code: "package main", Language: "go"})

	got := c.recorder.ofType("b", events.EventCodeChange)
	require.Len(t, got, 1)

	payload := decode[events.CodeChangeBroadcast](t, got[0])
	require.Equal(t, "package main", payload.Code)
	require.Equal(t, "go", payload.Language)
	require.Equal(t, "u-a", payload.UserID)

	require.Empty(t, c.recorder.to("a"))
}

func TestChatEchoedToEveryoneIncludingSender(t *testing.T) {
	ctx := context.Background()
	c := newCore()
	joinPair(t, c, "r1")

	before := time.Now().UnixMilli()
	c.signaling.HandleChatMessage(ctx, "a", events.ChatMessageEvent{
		RoomID:   "r1",
		Message:  "hello",
		UserID:   "u-a",
		UserName: "Alice",
	})

	for _, connID := range []string{"a", "b"} {
		got := c.recorder.ofType(connID, events.EventChatMessage)
		require.Len(t, got, 1, "delivered exactly once to %s", connID)

		payload := decode[events.ChatMessageBroadcast](t, got[0])
		require.Equal(t, "hello", payload.Message)
		require.Equal(t, "Alice", payload.UserName)

		// id = "<unix-ms>-<connection-id>"
		require.True(t, strings.HasSuffix(payload.ID, "-a"))
		ms, err := strconv.ParseInt(strings.TrimSuffix(payload.ID, "-a"), 10, 64)
		require.NoError(t, err)
		require.GreaterOrEqual(t, ms, before)

		_, err = time.Parse(time.RFC3339, payload.Timestamp)
		require.NoError(t, err)
	}

	// Persisted once, write-only.
	require.Len(t, c.chatRepo.inserted, 1)
	require.Equal(t, "r1", c.chatRepo.inserted[0].RoomID)
	require.Equal(t, "hello", c.chatRepo.inserted[0].Message)
}

func TestChatIDsDifferForSameMillisecondSenders(t *testing.T) {
	ctx := context.Background()
	c := newCore()
	joinPair(t, c, "r1")

	c.signaling.HandleChatMessage(ctx, "a", events.ChatMessageEvent{RoomID: "r1", Message: "one", UserID: "u-a"})
	c.signaling.HandleChatMessage(ctx, "b", events.ChatMessageEvent{RoomID: "r1", Message: "two", UserID: "u-b"})

	require.Len(t, c.chatRepo.inserted, 2)
	require.NotEqual(t, c.chatRepo.inserted[0].ID, c.chatRepo.inserted[1].ID,
		"connection id suffix keeps ids unique even within one millisecond")
}

func TestSessionStartRequiresHost(t *testing.T) {
	ctx := context.Background()
	c := newCore()
	joinPair(t, c, "r1")

	// Non-host control messages are silently ignored.
	c.signaling.HandleSessionStart(ctx, "b", events.SessionControlEvent{RoomID: "r1"})
	require.Empty(t, c.recorder.sent)
	require.Empty(t, c.sessionRepo.statuses)

	c.signaling.HandleSessionStart(ctx, "a", events.SessionControlEvent{RoomID: "r1"})

	for _, connID := range []string{"a", "b"} {
		got := c.recorder.ofType(connID, events.EventSessionStarted)
		require.Len(t, got, 1)
		require.Equal(t, "Alice", decode[events.SessionStartedEvent](t, got[0]).StartedBy)
	}

	require.Equal(t, models.SessionActive, c.sessionRepo.statuses["r1"])
}

func TestSessionEndRequiresHost(t *testing.T) {
	ctx := context.Background()
	c := newCore()
	joinPair(t, c, "r1")

	c.signaling.HandleSessionEnd(ctx, "b", events.SessionControlEvent{RoomID: "r1"})
	require.Empty(t, c.recorder.sent)

	c.signaling.HandleSessionEnd(ctx, "a", events.SessionControlEvent{RoomID: "r1"})

	got := c.recorder.ofType("b", events.EventSessionEnded)
	require.Len(t, got, 1)
	require.Equal(t, "Alice", decode[events.SessionEndedEvent](t, got[0]).EndedBy)

	require.Equal(t, models.SessionCompleted, c.sessionRepo.statuses["r1"])
}

func TestSessionControlForUnknownRoomIgnored(t *testing.T) {
	ctx := context.Background()
	c := newCore()
	c.connect(ctx, "a", "u-a", "Alice")

	c.signaling.HandleSessionStart(ctx, "a", events.SessionControlEvent{RoomID: "nope"})
	require.Empty(t, c.recorder.sent)
}

func TestPing(t *testing.T) {
	ctx := context.Background()
	c := newCore()
	c.connect(ctx, "a", "", "")

	c.signaling.HandlePing(ctx, "a")

	require.Len(t, c.recorder.ofType("a", events.EventPong), 1)
}

// Each websocket connection pumps events on its own goroutine, so joins,
// disconnects and broadcasts hit the registries concurrently. Run with -race.
func TestConcurrentLifecycleAndRelay(t *testing.T) {
	ctx := context.Background()
	c := newCore()

	// A stable host keeps the room alive for the whole test.
	c.connect(ctx, "host", "u-host", "Host")
	require.NoError(t, c.rooms.HandleJoinRoom(ctx, "host", events.RoomJoinEvent{RoomID: "r1", UserID: "u-host", Name: "Host"}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		connID := fmt.Sprintf("c%d", i)

		wg.Add(1)
		go func() {
			defer wg.Done()

			for j := 0; j < 25; j++ {
				c.connect(ctx, connID, "u-"+connID, connID)
				if err := c.rooms.HandleJoinRoom(ctx, connID, events.RoomJoinEvent{RoomID: "r1", UserID: "u-" + connID, Name: connID}); err != nil {
					t.Errorf("join %s: %v", connID, err)
					return
				}

				c.signaling.HandleChatMessage(ctx, connID, events.ChatMessageEvent{RoomID: "r1", Message: "hi", UserID: "u-" + connID})
				c.signaling.HandleMediaToggle(ctx, connID, events.MediaToggleEvent{Type: "audio", Enabled: true, RoomID: "r1"})
				c.signaling.HandleOffer(ctx, connID, events.OfferEvent{To: "host", Offer: json.RawMessage(`{}`)})

				c.rooms.HandleDisconnect(ctx, connID)
			}
		}()
	}
	wg.Wait()

	// Everyone but the host has left again; the host never migrated.
	room, ok := c.roomRepo.Get("r1")
	require.True(t, ok)
	require.Equal(t, []string{"host"}, room.Participants)
	require.Equal(t, "host", room.HostID)

	require.Len(t, c.chatRepo.inserted, 8*25)
}

// Full scenario: A and B join "r1" in order, B offers to A.
func TestTwoPartyCallScenario(t *testing.T) {
	ctx := context.Background()
	c := newCore()

	c.connect(ctx, "a", "u-a", "Alice")
	require.NoError(t, c.rooms.HandleJoinRoom(ctx, "a", events.RoomJoinEvent{RoomID: "r1", UserID: "u-a", Name: "Alice"}))
	c.connect(ctx, "b", "u-b", "Bob")
	require.NoError(t, c.rooms.HandleJoinRoom(ctx, "b", events.RoomJoinEvent{RoomID: "r1", UserID: "u-b", Name: "Bob"}))

	// A is host; B is not.
	require.True(t, decode[events.RoomJoinedEvent](t, c.recorder.ofType("a", events.EventRoomJoined)[0]).IsHost)
	require.False(t, decode[events.RoomJoinedEvent](t, c.recorder.ofType("b", events.EventRoomJoined)[0]).IsHost)

	c.signaling.HandleOffer(ctx, "b", events.OfferEvent{To: "a", Offer: json.RawMessage(`{"sdp":"x"}`)})

	offers := c.recorder.ofType("a", events.EventOffer)
	require.Len(t, offers, 1)
	require.Equal(t, "b", decode[events.OfferForward](t, offers[0]).From)

	// A heard about B joining, but never about itself.
	joinNotices := c.recorder.ofType("a", events.EventUserJoined)
	require.Len(t, joinNotices, 1)
	require.Equal(t, "b", decode[events.UserJoinedEvent](t, joinNotices[0]).SocketID)
}

package broadcast

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chapterhq/election-api/internal/domain"
)

var testUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// dialSubscriber spins up an upgrade endpoint, connects one subscriber
// and blocks until the hub has the client in its room.
func dialSubscriber(t *testing.T, h *Hub, electionID uint) *websocket.Conn {
	t.Helper()

	joined := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)

		h.Subscribe(conn, electionID)
		close(joined)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	select {
	case <-joined:
	case <-time.After(time.Second):
		t.Fatal("subscriber never joined the room")
	}

	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(data, &event))
	return event
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()

	h := NewHub(nil)
	go h.Run()
	t.Cleanup(h.Stop)
	return h
}

func TestHub_DeliversVoteUpdates(t *testing.T) {
	h := newTestHub(t)
	conn := dialSubscriber(t, h, 1)

	h.PublishVote(domain.VoteResult{
		ElectionID:     1,
		PositionID:     10,
		CandidateID:    100,
		CandidateVotes: 1,
		PositionVotes:  1,
		VotePercentage: 100,
	})

	event := readEvent(t, conn)
	assert.Equal(t, EventVoteUpdate, event.Type)
	assert.Equal(t, uint(1), event.ElectionID)
	assert.False(t, event.Timestamp.IsZero())

	payload, err := json.Marshal(event.Payload)
	require.NoError(t, err)
	var result domain.VoteResult
	require.NoError(t, json.Unmarshal(payload, &result))
	assert.Equal(t, 1, result.CandidateVotes)
	assert.InDelta(t, 100.0, result.VotePercentage, 0.001)
}

func TestHub_DeliversStatusChanges(t *testing.T) {
	h := newTestHub(t)
	conn := dialSubscriber(t, h, 1)

	h.PublishStatus(1, domain.ElectionClosed)

	event := readEvent(t, conn)
	assert.Equal(t, EventElectionStatus, event.Type)
	assert.Equal(t, uint(1), event.ElectionID)
}

// Events for one election reach a subscriber in publish order.
func TestHub_OrderingPerElection(t *testing.T) {
	h := newTestHub(t)
	conn := dialSubscriber(t, h, 1)

	const events = 5
	for i := 1; i <= events; i++ {
		h.PublishVote(domain.VoteResult{
			ElectionID:     1,
			CandidateVotes: i,
			PositionVotes:  i,
		})
	}

	for i := 1; i <= events; i++ {
		event := readEvent(t, conn)

		payload, err := json.Marshal(event.Payload)
		require.NoError(t, err)
		var result domain.VoteResult
		require.NoError(t, json.Unmarshal(payload, &result))

		assert.Equal(t, i, result.CandidateVotes)
	}
}

func TestHub_RoomsAreIsolated(t *testing.T) {
	h := newTestHub(t)
	roomOne := dialSubscriber(t, h, 1)
	roomTwo := dialSubscriber(t, h, 2)

	h.PublishVote(domain.VoteResult{ElectionID: 2, CandidateVotes: 7})

	event := readEvent(t, roomTwo)
	assert.Equal(t, uint(2), event.ElectionID)

	roomOne.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := roomOne.ReadMessage()
	assert.Error(t, err, "room 1 must not see room 2 traffic")
}

// Publishing with no subscribers and after disconnects must never block
// or panic; the vote path depends on it.
func TestHub_PublishWithoutSubscribers(t *testing.T) {
	h := newTestHub(t)

	assert.NotPanics(t, func() {
		for i := 0; i < 10; i++ {
			h.PublishVote(domain.VoteResult{ElectionID: 42, CandidateVotes: i})
		}
	})
}

func TestHub_DisconnectedSubscriberMissesEvents(t *testing.T) {
	h := newTestHub(t)
	conn := dialSubscriber(t, h, 1)

	conn.Close()
	// Give the read pump a moment to notice and unregister.
	time.Sleep(100 * time.Millisecond)

	assert.NotPanics(t, func() {
		h.PublishVote(domain.VoteResult{ElectionID: 1, CandidateVotes: 1})
	})
	// Let the hub drain the queued event before anyone new joins.
	time.Sleep(100 * time.Millisecond)

	// A fresh subscriber starts clean from the next snapshot; the missed
	// event is not replayed.
	fresh := dialSubscriber(t, h, 1)
	h.PublishVote(domain.VoteResult{ElectionID: 1, CandidateVotes: 2})

	event := readEvent(t, fresh)
	payload, err := json.Marshal(event.Payload)
	require.NoError(t, err)
	var result domain.VoteResult
	require.NoError(t, json.Unmarshal(payload, &result))
	assert.Equal(t, 2, result.CandidateVotes)
}

func TestSnapshotEvent_Shape(t *testing.T) {
	chapterID := uint(3)
	election := domain.Election{
		ID:        1,
		Title:     "Chapter Board 2026",
		ChapterID: &chapterID,
		Status:    domain.ElectionActive,
	}

	event := NewSnapshotEvent(election, time.Now())
	assert.Equal(t, EventInitialResults, event.Type)
	assert.Equal(t, uint(1), event.ElectionID)

	data, err := json.Marshal(event)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"initial-results"`)
	assert.Contains(t, string(data), `"Chapter Board 2026"`)
}

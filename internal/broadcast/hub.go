package broadcast

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/chapterhq/election-api/internal/domain"
	"github.com/chapterhq/election-api/internal/metrics"
)

const (
	clientQueueSize = 64
	eventQueueSize  = 256
)

type envelope struct {
	electionID uint
	data       []byte
}

// Hub fans events out to live subscribers, one room per election. The
// room map belongs to the Run goroutine alone; every mutation travels
// through the register and unregister channels, so there is no shared
// registry and no lock.
type Hub struct {
	rooms      map[uint]map[*client]bool
	register   chan *client
	unregister chan *client
	events     chan envelope
	done       chan struct{}
	metrics    *metrics.BroadcastMetrics
	now        func() time.Time
}

func NewHub(m *metrics.BroadcastMetrics) *Hub {
	return &Hub{
		rooms:      make(map[uint]map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		events:     make(chan envelope, eventQueueSize),
		done:       make(chan struct{}),
		metrics:    m,
		now:        time.Now,
	}
}

// Run loops until Stop. Each event is delivered to the room members
// present at processing time; a subscriber whose queue is full gets
// dropped rather than slowing the room down.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			room := h.rooms[c.electionID]
			if room == nil {
				room = make(map[*client]bool)
				h.rooms[c.electionID] = room
			}
			room[c] = true
			if h.metrics != nil {
				h.metrics.Subscribers.Inc()
			}

		case c := <-h.unregister:
			h.drop(c, "")

		case env := <-h.events:
			for c := range h.rooms[env.electionID] {
				select {
				case c.send <- env.data:
					if h.metrics != nil {
						h.metrics.Delivered.Inc()
					}
				default:
					h.drop(c, "slow_client")
				}
			}

		case <-h.done:
			for _, room := range h.rooms {
				for c := range room {
					h.drop(c, "")
				}
			}
			return
		}
	}
}

// Stop ends the Run loop and disconnects every subscriber.
func (h *Hub) Stop() {
	close(h.done)
}

// drop removes the client from its room, once. Unregistering twice is
// a no-op, which covers the race between a hub-side drop and the
// client's own read loop shutting down.
func (h *Hub) drop(c *client, reason string) {
	room, ok := h.rooms[c.electionID]
	if !ok || !room[c] {
		return
	}

	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, c.electionID)
	}
	close(c.send)

	if h.metrics != nil {
		h.metrics.Subscribers.Dec()
		if reason != "" {
			h.metrics.Dropped.WithLabelValues(reason).Inc()
		}
	}
}

// PublishVote implements the tally side of the publisher contract. It
// never blocks: when the event queue is full the event is dropped and
// counted, and the vote that triggered it stays committed.
func (h *Hub) PublishVote(result domain.VoteResult) {
	h.publish(result.ElectionID, NewVoteEvent(result, h.now()))
}

func (h *Hub) PublishStatus(electionID uint, status domain.ElectionStatus) {
	h.publish(electionID, NewStatusEvent(electionID, status, h.now()))
}

func (h *Hub) publish(electionID uint, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		zap.L().Warn("broadcast event marshal failed",
			zap.Uint("election_id", electionID), zap.Error(err))
		return
	}

	select {
	case h.events <- envelope{electionID: electionID, data: data}:
	case <-h.done:
	default:
		zap.L().Warn("broadcast queue full, dropping event",
			zap.Uint("election_id", electionID), zap.String("type", event.Type))
		if h.metrics != nil {
			h.metrics.Dropped.WithLabelValues("queue_full").Inc()
		}
	}
}

// Subscribe joins an upgraded connection to its election's room and
// starts the client pumps. The caller has already authorized the
// subscriber and written the snapshot frame.
func (h *Hub) Subscribe(conn *websocket.Conn, electionID uint) {
	c := &client{
		conn:       conn,
		send:       make(chan []byte, clientQueueSize),
		electionID: electionID,
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump(h)
}

type client struct {
	conn       *websocket.Conn
	send       chan []byte
	electionID uint
}

func (c *client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		w, err := c.conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)
		if err := w.Close(); err != nil {
			return
		}
	}

	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump discards inbound frames; the stream is one-way. Its job is
// noticing the peer went away and unregistering exactly once.
func (c *client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Debug("subscriber read ended", zap.Error(err))
			}
			return
		}
	}
}

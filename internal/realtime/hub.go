// Package realtime pushes appointment and booking-session changes to
// websocket clients subscribed by topic.
package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"doctor-booking-api/internal/model"
	"doctor-booking-api/internal/workflow"
)

const (
	TopicAppointments = "appointments"

	EventAppointmentCreated = "appointment.created"
	EventSessionUpdated     = "session.updated"
)

// SessionTopic is the topic carrying snapshots of one booking session.
func SessionTopic(id string) string { return "sessions/" + id }

type Event struct {
	Type      string          `json:"type"`
	Topic     string          `json:"topic"`
	ID        string          `json:"id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// ClientMessage is what a client sends to change its subscriptions.
type ClientMessage struct {
	Action string   `json:"action"`
	Topics []string `json:"topics"`
}

type Client struct {
	ID     string
	Topics []string
	Send   chan []byte
}

// NewClient returns an unregistered client with a buffered send queue.
func NewClient(topics ...string) *Client {
	return &Client{
		ID:     uuid.New().String(),
		Topics: append([]string{}, topics...),
		Send:   make(chan []byte, 256),
	}
}

type Hub struct {
	log zerolog.Logger
	now func() time.Time

	mu      sync.RWMutex
	clients map[string]map[*Client]struct{} // topic -> subscribers
	all     map[*Client]struct{}
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log:     log.With().Str("component", "realtime").Logger(),
		now:     time.Now,
		clients: make(map[string]map[*Client]struct{}),
		all:     make(map[*Client]struct{}),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.all[c] = struct{}{}
	h.subscribeLocked(c, c.Topics)
}

// Unregister drops c from every topic and closes its send queue.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.all[c]; !ok {
		return
	}
	h.unsubscribeLocked(c, c.Topics)
	delete(h.all, c)
	close(c.Send)
}

func (h *Hub) Subscribe(c *Client, topics []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribeLocked(c, topics)
	for _, t := range topics {
		if !hasTopic(c.Topics, t) {
			c.Topics = append(c.Topics, t)
		}
	}
}

func (h *Hub) Unsubscribe(c *Client, topics []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unsubscribeLocked(c, topics)
	remaining := c.Topics[:0]
	for _, t := range c.Topics {
		if !hasTopic(topics, t) {
			remaining = append(remaining, t)
		}
	}
	c.Topics = remaining
}

func (h *Hub) subscribeLocked(c *Client, topics []string) {
	for _, t := range topics {
		if h.clients[t] == nil {
			h.clients[t] = make(map[*Client]struct{})
		}
		h.clients[t][c] = struct{}{}
	}
}

func (h *Hub) unsubscribeLocked(c *Client, topics []string) {
	for _, t := range topics {
		subs, ok := h.clients[t]
		if !ok {
			continue
		}
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.clients, t)
		}
	}
}

func (h *Hub) ProcessMessage(c *Client, msg ClientMessage) {
	switch msg.Action {
	case "subscribe":
		h.Subscribe(c, msg.Topics)
	case "unsubscribe":
		h.Unsubscribe(c, msg.Topics)
	default:
		h.log.Debug().Str("client_id", c.ID).Str("action", msg.Action).Msg("unknown client action")
	}
}

// Broadcast queues ev for every subscriber of its topic. Clients whose queue
// is full miss the event.
func (h *Hub) Broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error().Err(err).Str("topic", ev.Topic).Msg("marshal event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[ev.Topic] {
		select {
		case c.Send <- data:
		default:
			h.log.Warn().Str("client_id", c.ID).Str("topic", ev.Topic).Msg("client queue full, event dropped")
		}
	}
}

// Publish wraps payload in an Event and broadcasts it.
func (h *Hub) Publish(topic, typ, id string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error().Err(err).Str("topic", topic).Msg("marshal payload")
		return
	}
	h.Broadcast(Event{Type: typ, Topic: topic, ID: id, Timestamp: h.now().UTC(), Data: data})
}

// AppointmentCreated is a store subscriber.
func (h *Hub) AppointmentCreated(a model.Appointment) {
	h.Publish(TopicAppointments, EventAppointmentCreated, a.ID, a)
}

// WatchSession forwards every snapshot of s. The subscription lives as long
// as the session.
func (h *Hub) WatchSession(s *workflow.Session) {
	s.Subscribe(func(snap workflow.Snapshot) {
		h.Publish(SessionTopic(snap.ID), EventSessionUpdated, snap.ID, snap)
	})
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.all)
}

func (h *Hub) TopicCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}

// CloseAll unregisters every client, ending their write pumps.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.all {
		close(c.Send)
	}
	h.all = make(map[*Client]struct{})
	h.clients = make(map[string]map[*Client]struct{})
}

func hasTopic(list []string, t string) bool {
	for _, x := range list {
		if x == t {
			return true
		}
	}
	return false
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Handler upgrades GET /ws and runs the client's read and write pumps.
func (h *Hub) Handler(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	client := NewClient()
	h.Register(client)
	h.log.Debug().Str("client_id", client.ID).Msg("websocket connected")

	go h.writePump(client, ws)
	go h.readPump(client, ws)
	return nil
}

func (h *Hub) readPump(c *Client, ws *websocket.Conn) {
	defer func() {
		h.Unregister(c)
		ws.Close()
	}()
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		h.ProcessMessage(c, msg)
	}
}

func (h *Hub) writePump(c *Client, ws *websocket.Conn) {
	defer ws.Close()
	for msg := range c.Send {
		if err := ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

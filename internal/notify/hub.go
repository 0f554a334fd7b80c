package notify

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/photogallery/server/internal/observability"
)

// Event is the wire frame pushed to connected gallery clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Event types pushed by the server.
const (
	EventToast         = "toast"
	EventAlbumsChanged = "albums_changed"
	EventPhotosChanged = "photos_changed"
	EventSubscribe     = "subscribe"
	EventUnsubscribe   = "unsubscribe"
	EventPing          = "ping"
	EventPong          = "pong"
)

// Topics clients can subscribe to.
const (
	TopicAlbums = "albums"
	TopicPhotos = "photos"
)

// ToastPayload mirrors what the gallery UI renders as a toast.
type ToastPayload struct {
	Kind    string `json:"kind"` // "success" or "error"
	Message string `json:"message"`
}

// Client is one websocket connection registered with the hub.
type Client struct {
	ID     string
	Topics map[string]bool
	Conn   *websocket.Conn
	Send   chan []byte

	hub       *Hub
	writeMu   sync.Mutex
	closeOnce sync.Once
}

// Hub fans events out to connected clients. Registration and broadcast go
// through channels so the fan-out loop is the only writer of client sets.
type Hub struct {
	clients    map[*Client]bool
	topics     map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *frame
	mu         sync.RWMutex
}

type frame struct {
	topic   string
	message []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		topics:     make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *frame, 256),
	}
}

// Run starts the hub's fan-out loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			observability.WithField("client_id", client.ID).Debug("websocket client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				for topic := range client.Topics {
					if subs, ok := h.topics[topic]; ok {
						delete(subs, client)
						if len(subs) == 0 {
							delete(h.topics, topic)
						}
					}
				}
				close(client.Send)
			}
			h.mu.Unlock()
			observability.WithField("client_id", client.ID).Debug("websocket client disconnected")

		case f := <-h.broadcast:
			h.mu.RLock()
			targets := h.clients
			if f.topic != "" {
				targets = h.topics[f.topic]
			}
			for client := range targets {
				select {
				case client.Send <- f.message:
				default:
					// Buffer full, drop the connection.
					go func(c *Client) {
						h.unregister <- c
					}(client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a connection from the hub.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Subscribe adds a client to a topic.
func (h *Hub) Subscribe(client *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client.Topics[topic] = true
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*Client]bool)
	}
	h.topics[topic][client] = true
}

// Unsubscribe removes a client from a topic.
func (h *Hub) Unsubscribe(client *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(client.Topics, topic)
	if subs, ok := h.topics[topic]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
}

// BroadcastAll sends an event to every connected client.
func (h *Hub) BroadcastAll(ev Event) {
	h.send("", ev)
}

// BroadcastToTopic sends an event to the topic's subscribers.
func (h *Hub) BroadcastToTopic(topic string, ev Event) {
	h.send(topic, ev)
}

func (h *Hub) send(topic string, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		observability.Errorf("failed to marshal websocket event: %v", err)
		return
	}
	h.broadcast <- &frame{topic: topic, message: data}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ShowSuccess implements Notifier by pushing a success toast to all clients.
func (h *Hub) ShowSuccess(message string) {
	h.BroadcastAll(Event{Type: EventToast, Payload: ToastPayload{Kind: "success", Message: message}})
}

// ShowError implements Notifier by pushing an error toast to all clients.
func (h *Hub) ShowError(message string) {
	h.BroadcastAll(Event{Type: EventToast, Payload: ToastPayload{Kind: "error", Message: message}})
}

// NewClient wraps a websocket connection for this hub.
func (h *Hub) NewClient(id string, conn *websocket.Conn) *Client {
	return &Client{
		ID:     id,
		Topics: make(map[string]bool),
		Conn:   conn,
		Send:   make(chan []byte, 256),
		hub:    h,
	}
}

// Close tears the connection down and removes it from the hub.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.hub.Unregister(c)
		c.Conn.Close()
	})
}

// WritePump drains the send buffer onto the wire and keeps the connection
// alive with pings. Runs in its own goroutine per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			c.writeMu.Lock()
			err := c.Conn.WriteMessage(websocket.TextMessage, message)
			c.writeMu.Unlock()
			if err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump reads client frames until the connection drops.
func (c *Client) ReadPump(onMessage func(client *Client, data []byte)) {
	defer c.Close()

	c.Conn.SetReadLimit(64 * 1024)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				observability.Errorf("websocket read error: %v", err)
			}
			break
		}
		if onMessage != nil {
			onMessage(c, message)
		}
	}
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/photogallery/server/internal/notify"
	"github.com/photogallery/server/internal/observability"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now - can be restricted in production
		return true
	},
}

// WebSocketHandler upgrades connections and wires them into the hub
type WebSocketHandler struct {
	hub *notify.Hub
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *notify.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// HandleConnection upgrades HTTP to WebSocket and manages the connection
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		observability.Errorf("websocket upgrade failed: %v", err)
		return
	}

	client := h.hub.NewClient(uuid.New().String(), conn)
	h.hub.Register(client)

	go client.WritePump()
	client.ReadPump(h.handleMessage)
}

func (h *WebSocketHandler) handleMessage(client *notify.Client, data []byte) {
	var ev notify.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return
	}

	switch ev.Type {
	case notify.EventSubscribe:
		if topic, ok := ev.Payload.(string); ok && topic != "" {
			h.hub.Subscribe(client, topic)
		}
	case notify.EventUnsubscribe:
		if topic, ok := ev.Payload.(string); ok && topic != "" {
			h.hub.Unsubscribe(client, topic)
		}
	case notify.EventPing:
		payload, _ := json.Marshal(notify.Event{Type: notify.EventPong})
		select {
		case client.Send <- payload:
		default:
		}
	}
}

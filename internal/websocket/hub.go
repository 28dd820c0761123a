package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"ai-canvas-be/internal/model"
	"ai-canvas-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Envelope wraps every frame pushed to a client. Type distinguishes
// notification frames from document stream frames.
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

const (
	FrameNotification  = "notification"
	FrameArtifactEvent = "artifact-event"
	FrameChatDelta     = "chat-delta"
	FrameChatFinish    = "chat-finish"
)

type Hub struct {
	// Registered clients map: UserID -> list of clients (multi-device)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance fan-out
	rdb *redis.Client

	// instanceID lets the subscriber skip messages this instance already
	// delivered locally.
	instanceID string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": client.UserID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// SendNotification delivers a persisted notification to all of a user's
// connections, cluster-wide.
func (h *Hub) SendNotification(userID uuid.UUID, notification model.Notification) {
	data, _ := json.Marshal(Envelope{Type: FrameNotification, Data: notification})
	h.sendRaw(userID, data)
}

// SendEvent delivers one document stream event frame. payload is already the
// serializable event body.
func (h *Hub) SendEvent(userID uuid.UUID, payload interface{}) {
	data, _ := json.Marshal(Envelope{Type: FrameArtifactEvent, Data: payload})
	h.sendRaw(userID, data)
}

// SendFrame delivers an arbitrary typed frame. Chat deltas ride here.
func (h *Hub) SendFrame(userID uuid.UUID, frameType string, payload interface{}) {
	data, _ := json.Marshal(Envelope{Type: frameType, Data: payload})
	h.sendRaw(userID, data)
}

func (h *Hub) sendRaw(userID uuid.UUID, data []byte) {
	// Sends happen under the read lock so they cannot interleave with the
	// unregister path, which closes Send under the write lock. Dropped clients
	// are unregistered after the lock is released; the unregister handler is
	// the only place that closes the channel.
	h.mu.RLock()
	var dropped []*Client
	for _, client := range h.clients[userID] {
		select {
		case client.Send <- data:
		default:
			dropped = append(dropped, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range dropped {
		h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"user_id": userID})
		h.unregister <- client
	}

	// Always publish for clients connected to other instances.
	if h.rdb != nil {
		payload := map[string]interface{}{
			"origin":         h.instanceID,
			"target_user_id": userID.String(),
			"message":        json.RawMessage(data),
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), "cluster_events", jsonPayload)
	}
}

// HasLocalClient reports whether the user has a live connection on this
// instance. Used to skip pipeline work for streams nobody is watching.
func (h *Hub) HasLocalClient(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to the shared channel and filters for the
	// users it holds locally.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_events")
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			Origin       string          `json:"origin"`
			TargetUserID string          `json:"target_user_id"`
			Message      json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		if payload.Origin == h.instanceID {
			continue
		}

		uid, err := uuid.Parse(payload.TargetUserID)
		if err != nil {
			continue
		}

		h.mu.RLock()
		var dropped []*Client
		for _, client := range h.clients[uid] {
			select {
			case client.Send <- payload.Message:
			default:
				dropped = append(dropped, client)
			}
		}
		h.mu.RUnlock()

		for _, client := range dropped {
			h.unregister <- client
		}
	}
}

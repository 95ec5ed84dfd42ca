package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MessageToSend defines the structure for sending a message to a specific user.
type MessageToSend struct {
	TargetUserID uuid.UUID
	Payload      []byte
}

// Broadcaster is the delivery surface the chat engine pushes events through.
// Delivery is fire-and-forget: a slow or disconnected client never blocks the
// sender, and missed events are recovered over HTTP history.
type Broadcaster interface {
	BroadcastToConversation(conversationID uuid.UUID, payload []byte)
	NotifyUser(userID uuid.UUID, payload []byte)
	NotifyUserOutsideConversation(userID, conversationID uuid.UUID, payload []byte)
}

// Hub maintains the set of active clients and routes events to them.
type Hub struct {
	// Registered clients. Maps user ID to a set of active client connections.
	Clients map[uuid.UUID]map[*Client]bool

	// Conversation rooms. Maps conversation ID to the clients subscribed to it.
	Rooms map[uuid.UUID]map[*Client]bool

	// Channel for sending messages to specific users.
	SendDirect chan *MessageToSend

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Mutex to protect concurrent access to the clients and rooms maps.
	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		SendDirect: make(chan *MessageToSend),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Clients:    make(map[uuid.UUID]map[*Client]bool),
		Rooms:      make(map[uuid.UUID]map[*Client]bool),
	}
}

// Run starts the hub's processing loop.
func (h *Hub) Run() {
	log.Println("WebSocket Hub started.")
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.Clients[client.UserID]; !ok {
				h.Clients[client.UserID] = make(map[*Client]bool)
			}
			h.Clients[client.UserID][client] = true
			log.Printf("WebSocket Client registered for User %s. Total connections for user: %d", client.UserID, len(h.Clients[client.UserID]))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if userClients, ok := h.Clients[client.UserID]; ok {
				if _, clientOk := userClients[client]; clientOk {
					delete(userClients, client)
					if len(userClients) == 0 {
						delete(h.Clients, client.UserID)
						log.Printf("WebSocket Client unregistered. User %s has no more connections.", client.UserID)
					} else {
						log.Printf("WebSocket Client unregistered for User %s. Remaining connections: %d", client.UserID, len(userClients))
					}
				}
			}
			// Drop the client from every room it joined.
			for conversationID, room := range h.Rooms {
				if _, ok := room[client]; ok {
					delete(room, client)
					if len(room) == 0 {
						delete(h.Rooms, conversationID)
					}
				}
			}
			h.mu.Unlock()

		case directMessage := <-h.SendDirect:
			h.mu.RLock()
			if userClients, ok := h.Clients[directMessage.TargetUserID]; ok {
				for client := range userClients {
					select {
					case client.Send <- directMessage.Payload:
					default:
						log.Printf("Send channel full for client of User %s. Message dropped for this client.", client.UserID)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// JoinConversation subscribes a client to a conversation room.
func (h *Hub) JoinConversation(client *Client, conversationID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.Rooms[conversationID]; !ok {
		h.Rooms[conversationID] = make(map[*Client]bool)
	}
	h.Rooms[conversationID][client] = true
	log.Printf("User %s joined conversation room %s (%d subscribers)", client.UserID, conversationID, len(h.Rooms[conversationID]))
}

// LeaveConversation removes a client from a conversation room.
func (h *Hub) LeaveConversation(client *Client, conversationID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.Rooms[conversationID]
	if !ok {
		return
	}
	delete(room, client)
	if len(room) == 0 {
		delete(h.Rooms, conversationID)
	}
	log.Printf("User %s left conversation room %s", client.UserID, conversationID)
}

// BroadcastToConversation fans a payload out to every client subscribed to the
// conversation. Clients with a full send buffer are skipped.
func (h *Hub) BroadcastToConversation(conversationID uuid.UUID, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.Rooms[conversationID] {
		select {
		case client.Send <- payload:
		default:
			log.Printf("Broadcast send buffer full for client of User %s", client.UserID)
		}
	}
}

// NotifyUserOutsideConversation sends a payload to the user's connections that
// are not subscribed to the conversation room. Connections watching the
// conversation already receive the event through the room broadcast.
func (h *Hub) NotifyUserOutsideConversation(userID, conversationID uuid.UUID, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room := h.Rooms[conversationID]
	for client := range h.Clients[userID] {
		if room[client] {
			continue
		}
		select {
		case client.Send <- payload:
		default:
			log.Printf("Send channel full for client of User %s. Notification dropped.", client.UserID)
		}
	}
}

// NotifyUser sends a payload to every connection a user has open.
func (h *Hub) NotifyUser(userID uuid.UUID, payload []byte) {
	message := &MessageToSend{
		TargetUserID: userID,
		Payload:      payload,
	}
	select {
	case h.SendDirect <- message:
	case <-time.After(1 * time.Second):
		log.Printf("Timeout queuing message in hub's SendDirect channel for User %s. Hub might be busy or blocked.", userID)
	}
}

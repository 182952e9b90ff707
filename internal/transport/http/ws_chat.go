package http

import (
	"encoding/json"
	"log"
	"net/http"
)

// DefaultChatRoom is used when the client does not name a room.
const DefaultChatRoom = "general"

// chatBacklogLimit caps how many stored messages a joiner receives.
const chatBacklogLimit = 50

type chatPayload struct {
	Text    string `json:"text"`
	ReplyTo string `json:"replyTo,omitempty"`
}

// ServeChat upgrades the connection, replays the room backlog, and then
// relays messages between the socket and the chat hub.
func (h *WSHandler) ServeChat(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	displayName := r.URL.Query().Get("name")
	if userID == "" || displayName == "" {
		http.Error(w, "missing userId or name", http.StatusBadRequest)
		return
	}
	room := r.URL.Query().Get("room")
	if room == "" {
		room = DefaultChatRoom
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	hub := h.service.Chat()
	updates, cancel := hub.Subscribe(room)
	defer cancel()

	send := make(chan outboundMessage[any], 32)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case msg, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "chat", Payload: msg}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	backlog, err := hub.Backlog(r.Context(), room, chatBacklogLimit)
	if err != nil {
		log.Printf("chat backlog for %s failed: %v", room, err)
	}
	for _, msg := range backlog {
		send <- outboundMessage[any]{Type: "chat", Payload: msg}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "chat":
			var payload chatPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Text == "" {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid chat payload"}}
				continue
			}
			hub.Post(r.Context(), room, userID, displayName, payload.Text, payload.ReplyTo)
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

package chat

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"streakpeaked-service/internal/domain"
)

// History persists recent messages so late joiners get a backlog.
type History interface {
	Append(ctx context.Context, msg domain.ChatMessage) error
	Recent(ctx context.Context, room string, limit int) ([]domain.ChatMessage, error)
}

// Hub fans chat messages out to room subscribers. Delivery is best-effort:
// a slow subscriber loses its oldest buffered message rather than blocking
// the broadcast.
type Hub struct {
	history History
	clock   func() time.Time

	mu    sync.RWMutex
	rooms map[string]*room
}

type room struct {
	subscribers map[chan domain.ChatMessage]struct{}
}

func NewHub(history History) *Hub {
	return &Hub{
		history: history,
		clock:   time.Now,
		rooms:   make(map[string]*room),
	}
}

// Subscribe registers a listener on a room. The caller must invoke the
// returned cancel function to avoid leaks.
func (h *Hub) Subscribe(roomName string) (<-chan domain.ChatMessage, func()) {
	ch := make(chan domain.ChatMessage, 16)

	h.mu.Lock()
	r, ok := h.rooms[roomName]
	if !ok {
		r = &room{subscribers: make(map[chan domain.ChatMessage]struct{})}
		h.rooms[roomName] = r
	}
	r.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if r, ok := h.rooms[roomName]; ok {
			if _, ok := r.subscribers[ch]; ok {
				delete(r.subscribers, ch)
				close(ch)
			}
			if len(r.subscribers) == 0 {
				delete(h.rooms, roomName)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Post stamps, persists, and broadcasts a message. History writes are
// best-effort; a failing store never blocks delivery.
func (h *Hub) Post(ctx context.Context, roomName, userID, sender, text, replyTo string) domain.ChatMessage {
	msg := domain.ChatMessage{
		ID:        uuid.NewString(),
		Room:      roomName,
		UserID:    userID,
		Sender:    sender,
		Text:      text,
		ReplyTo:   replyTo,
		Timestamp: h.clock(),
	}

	if h.history != nil {
		if err := h.history.Append(ctx, msg); err != nil {
			log.Printf("chat history append failed: %v", err)
		}
	}

	h.mu.Lock()
	r, ok := h.rooms[roomName]
	if ok {
		for ch := range r.subscribers {
			select {
			case ch <- msg:
			default:
				// Drop the oldest buffered message so a slow reader
				// cannot block the room.
				select {
				case <-ch:
				default:
				}
				ch <- msg
			}
		}
	}
	h.mu.Unlock()
	return msg
}

// Backlog returns the most recent messages for a room, oldest first.
func (h *Hub) Backlog(ctx context.Context, roomName string, limit int) ([]domain.ChatMessage, error) {
	if h.history == nil {
		return nil, nil
	}
	return h.history.Recent(ctx, roomName, limit)
}

package ws

import (
	"encoding/json"
	"sync"
	"time"

	"telegram_arcade/internal/logger"
)

const clientBuffer = 64

// Event is one spectator feed entry: a public game announcement in a chat.
type Event struct {
	Type   string `json:"type"`
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
	TS     string `json:"ts"`
}

// Hub fans public game announcements out to websocket spectators, keyed by
// chat id. Slow subscribers are dropped rather than blocking the engines.
type Hub struct {
	mu   sync.RWMutex
	subs map[int64]map[chan []byte]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int64]map[chan []byte]struct{})}
}

// Subscribe registers a spectator for one chat's feed.
func (h *Hub) Subscribe(chatID int64) chan []byte {
	ch := make(chan []byte, clientBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[chatID] == nil {
		h.subs[chatID] = make(map[chan []byte]struct{})
	}
	h.subs[chatID][ch] = struct{}{}
	return ch
}

// Unsubscribe drops a spectator and closes its channel.
func (h *Hub) Unsubscribe(chatID int64, ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[chatID]
	if !ok {
		return
	}
	if _, ok := set[ch]; !ok {
		return
	}
	delete(set, ch)
	if len(set) == 0 {
		delete(h.subs, chatID)
	}
	close(ch)
}

// Publish broadcasts an announcement to every spectator of the chat.
// A full client buffer drops the event for that client only.
func (h *Hub) Publish(chatID int64, text string) {
	payload, err := json.Marshal(Event{
		Type:   "announcement",
		ChatID: chatID,
		Text:   text,
		TS:     time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		logger.Warn("feed event marshal failed", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[chatID] {
		select {
		case ch <- payload:
		default:
		}
	}
}

// SubscriberCount reports live spectators for a chat.
func (h *Hub) SubscriberCount(chatID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[chatID])
}

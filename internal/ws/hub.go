package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/workmatch/marketplace-backend/internal/goroutine"
	"github.com/workmatch/marketplace-backend/internal/logger"
)

// Hub держит активные подключения пользователей и раздаёт им события.
// Пользователь может быть подключён с нескольких устройств.
type Hub struct {
	mu         sync.RWMutex
	clients    map[uuid.UUID]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	outbox     chan envelope
	done       chan struct{}
	log        *logrus.Entry
}

type envelope struct {
	userID  uuid.UUID
	payload []byte
}

// Event сообщение для клиента: type содержит имя события, data полезную нагрузку.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbox:     make(chan envelope, 64),
		done:       make(chan struct{}),
		log:        logger.WithComponent("ws"),
	}
}

// Run главный цикл хаба; завершается вместе с ctx.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.outbox:
			h.send(msg.userID, msg.payload)
		}
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// PushToUser ставит событие в очередь доставки. Офлайн-пользователь событие не получит,
// оно остаётся только в сохранённых уведомлениях.
func (h *Hub) PushToUser(userID uuid.UUID, event string, data any) error {
	raw, err := json.Marshal(Event{Type: event, Data: data})
	if err != nil {
		return fmt.Errorf("ws: не удалось сериализовать сообщение: %w", err)
	}
	if !h.IsOnline(userID) {
		return nil
	}
	select {
	case h.outbox <- envelope{userID: userID, payload: raw}:
	case <-h.done:
	}
	return nil
}

// IsOnline сообщает, есть ли у пользователя открытые подключения.
func (h *Hub) IsOnline(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]struct{})
	}
	h.clients[client.userID][client] = struct{}{}
	h.log.WithField("user_id", client.userID).Debug("клиент подключён")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.userID]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			close(client.send)
		}
		if len(clients) == 0 {
			delete(h.clients, client.userID)
		}
	}
}

func (h *Hub) send(userID uuid.UUID, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
			// медленный клиент: отключаем
			h.log.WithField("user_id", userID).Warn("буфер клиента переполнен, соединение закрывается")
			goroutine.SafeGo(client.Close)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, clients := range h.clients {
		for client := range clients {
			close(client.send)
			_ = client.conn.Close()
		}
		delete(h.clients, userID)
	}
}

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"device-inspector/internal/domain/entity"
	"device-inspector/internal/domain/port"
	"device-inspector/internal/logger"
)

// writeWait предельное время записи одного сообщения клиенту.
const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub рассылает уведомления об осмотрах подключённым WebSocket-клиентам.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	writeWait  time.Duration
	mutex      sync.RWMutex
	logger     *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Discard()
	}
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		writeWait:  writeWait,
		logger:     log,
	}
}

// Run обслуживает подключения до отмены контекста.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("WebSocket client connected. Total: %d", total)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("WebSocket client disconnected. Total: %d", total)

		case message := <-h.broadcast:
			h.send(message)
		}
	}
}

// send пишет сообщение всем клиентам вне блокировки. Клиент, не принявший
// сообщение за writeWait, отключается.
func (h *Hub) send(message []byte) {
	h.mutex.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mutex.RUnlock()

	var failed []*websocket.Conn
	for _, client := range clients {
		client.SetWriteDeadline(time.Now().Add(h.writeWait))
		if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
			h.logger.Error("Error sending message: %v", err)
			failed = append(failed, client)
		}
	}
	if len(failed) == 0 {
		return
	}

	h.mutex.Lock()
	for _, client := range failed {
		delete(h.clients, client)
		client.Close()
	}
	h.mutex.Unlock()
}

// ServeWS переводит HTTP-запрос в WebSocket и держит соединение до его закрытия клиентом.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warning("Failed to upgrade to WebSocket: %v", err)
		return
	}

	select {
	case h.register <- conn:
	case <-r.Context().Done():
		conn.Close()
		return
	case <-h.done:
		conn.Close()
		return
	}

	go func() {
		defer func() {
			select {
			case h.unregister <- conn:
			case <-h.done:
				conn.Close()
			}
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.logger.Warning("WebSocket error: %v", err)
				}
				return
			}
		}
	}()
}

// Publish ставит уведомление в очередь рассылки. При переполненной очереди уведомление теряется.
func (h *Hub) Publish(ctx context.Context, result *entity.InspectionResult) error {
	message, err := json.Marshal(EventFromResult(result))
	if err != nil {
		return fmt.Errorf("marshal inspection event: %w", err)
	}

	select {
	case h.broadcast <- message:
		return nil
	default:
		h.logger.Warning("Broadcast channel is full, dropping inspection %s", result.ID)
		return nil
	}
}

// ClientCount число подключённых клиентов.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

var _ port.ResultPublisher = (*Hub)(nil)

// gymnast-crm/internal/handlers/events_hub.go

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Лента изменений: после успешной записи обработчики публикуют событие
// {таблица, действие, id}, а подключенные клиенты по нему перезагружают
// списки. Лента только освежает представления — для координации или
// разрешения конфликтов она не используется.

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Для разработки разрешаем все источники
	},
}

// GlobalHub - единственный экземпляр хаба для всего приложения
var GlobalHub = NewHub()

type ChangeEvent struct {
	ID       string `json:"id"`
	Table    string `json:"table"`
	Action   string `json:"action"`
	EntityID uint   `json:"entityId"`
	At       string `json:"at"`
}

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	id   string
}

type Hub struct {
	clients    map[string]*Client
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string]*Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()
			slog.Info("Клиент ленты изменений подключен", "client_id", client.id)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				close(client.send)
			}
			h.mu.Unlock()
			slog.Info("Клиент ленты изменений отключен", "client_id", client.id)

		case data := <-h.broadcast:
			h.mu.Lock()
			for id, client := range h.clients {
				select {
				case client.send <- data:
				default:
					// Медленный клиент: отбрасываем его, а не копим очередь.
					delete(h.clients, id)
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// NotifyChange публикует событие об изменении таблицы. Вызов неблокирующий:
// если хаб не запущен или переполнен, событие просто теряется — лента
// необязательна для корректности данных.
func NotifyChange(table, action string, entityID uint) {
	event := ChangeEvent{
		ID:       uuid.New().String(),
		Table:    table,
		Action:   action,
		EntityID: entityID,
		At:       time.Now().Format(time.RFC3339),
	}
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Не удалось сериализовать событие изменения", "error", err)
		return
	}

	select {
	case GlobalHub.broadcast <- data:
	default:
		slog.Warn("Лента изменений переполнена, событие отброшено", "table", table, "action", action)
	}
}

// EventsWSEndpoint апгрейдит соединение и подключает клиента к ленте.
func EventsWSEndpoint(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("Не удалось установить websocket-соединение", "error", err)
		return
	}

	client := &Client{
		hub:  GlobalHub,
		conn: conn,
		send: make(chan []byte, 16),
		id:   uuid.New().String(),
	}
	GlobalHub.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	for {
		// Клиенты ленты ничего не присылают; читаем только ради
		// обнаружения разрыва соединения.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(50 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

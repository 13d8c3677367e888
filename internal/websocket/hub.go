package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

// Hub ведет учет подключенных клиентов и рассылает им сообщения
type Hub struct {
	// Зарегистрированные клиенты
	clients map[*Client]bool

	// Клиенты по ID пользователя. Пользователь может быть подключен
	// с нескольких устройств одновременно.
	userClients map[string][]*Client

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	// Кластерный слой. Nil в одиночном режиме.
	cluster *ClusterHub

	mu sync.RWMutex
}

// NewHub создает новый хаб
func NewHub() *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		userClients: make(map[string][]*Client),
		broadcast:   make(chan []byte, 256),
		register:    make(chan *Client, 64),
		unregister:  make(chan *Client, 64),
	}
}

// SetCluster подключает хаб к кластерному слою
func (h *Hub) SetCluster(cluster *ClusterHub) {
	h.cluster = cluster
}

// Run запускает главный цикл хаба. Блокирует до отмены контекста.
func (h *Hub) Run(ctx context.Context) {
	log.Println("[Hub] Главный цикл запущен")
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case message := <-h.broadcast:
			h.broadcastLocal(message)
		case <-ctx.Done():
			h.closeAll()
			log.Println("[Hub] Главный цикл остановлен")
			return
		}
	}
}

// Register ставит клиента в очередь на регистрацию
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// BroadcastBytes рассылает сообщение всем клиентам, включая другие
// экземпляры в кластере
func (h *Hub) BroadcastBytes(message []byte) {
	h.broadcastLocalAsync(message)
	if h.cluster != nil {
		if err := h.cluster.BroadcastToCluster(message); err != nil {
			log.Printf("[Hub] Ошибка рассылки в кластер: %v", err)
		}
	}
}

// BroadcastBytesLocal рассылает сообщение только локальным клиентам.
// Используется при получении сообщения из кластера, чтобы не зациклить его.
func (h *Hub) BroadcastBytesLocal(message []byte) {
	h.broadcastLocalAsync(message)
}

// BroadcastJSON сериализует значение и рассылает его всем клиентам
func (h *Hub) BroadcastJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal broadcast message: %w", err)
	}
	h.BroadcastBytes(data)
	return nil
}

// SendToUser отправляет сообщение всем локальным соединениям пользователя.
// Возвращает true, если хотя бы одно соединение приняло сообщение.
func (h *Hub) SendToUser(userID string, message []byte) bool {
	h.mu.RLock()
	clients := h.userClients[userID]
	h.mu.RUnlock()

	sent := false
	for _, client := range clients {
		if client.enqueue(message) {
			sent = true
		}
	}
	return sent
}

// SendJSONToUser сериализует значение и отправляет его пользователю.
// Если пользователь не подключен локально, сообщение уходит в кластер.
func (h *Hub) SendJSONToUser(userID string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message for user %s: %w", userID, err)
	}

	if h.SendToUser(userID, data) {
		return nil
	}

	if h.cluster != nil {
		return h.cluster.SendToUserInCluster(userID, data)
	}

	// Пользователь офлайн, событие теряется; он увидит состояние при
	// следующем запросе
	return nil
}

// ClientCount возвращает количество подключенных клиентов
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	h.userClients[client.UserID] = append(h.userClients[client.UserID], client)
	count := len(h.clients)
	h.mu.Unlock()
	log.Printf("[Hub] Клиент зарегистрирован (UserID: %s, ConnID: %s), всего клиентов: %d", client.UserID, client.ConnectionID, count)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)

	remaining := h.userClients[client.UserID][:0]
	for _, c := range h.userClients[client.UserID] {
		if c != client {
			remaining = append(remaining, c)
		}
	}
	if len(remaining) == 0 {
		delete(h.userClients, client.UserID)
	} else {
		h.userClients[client.UserID] = remaining
	}
	count := len(h.clients)
	h.mu.Unlock()

	client.closeSend()
	log.Printf("[Hub] Клиент отключен (UserID: %s, ConnID: %s), всего клиентов: %d", client.UserID, client.ConnectionID, count)
}

func (h *Hub) broadcastLocal(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		client.enqueue(message)
	}
}

// broadcastLocalAsync кладет сообщение в очередь рассылки, не блокируя отправителя
func (h *Hub) broadcastLocalAsync(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		log.Println("[Hub] Очередь рассылки переполнена, сообщение отброшено")
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.closeSend()
	}
	h.clients = make(map[*Client]bool)
	h.userClients = make(map[string][]*Client)
}

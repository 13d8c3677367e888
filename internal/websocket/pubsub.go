package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/garyai/picks-api/internal/config"
)

// PubSubProvider определяет интерфейс для провайдеров публикации/подписки
type PubSubProvider interface {
	// Publish публикует сообщение в указанный канал
	Publish(channel string, message []byte) error

	// Subscribe подписывается на указанный канал и возвращает канал для сообщений
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)

	// Close закрывает все соединения и освобождает ресурсы
	Close() error
}

// Состояния подписки на канал Pub/Sub
type subscriptionState int

const (
	stateConnected subscriptionState = iota
	stateDisconnected
	stateRetrying
	stateFailed
)

func (s subscriptionState) String() string {
	switch s {
	case stateConnected:
		return "connected"
	case stateDisconnected:
		return "disconnected"
	case stateRetrying:
		return "retrying"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ClusterMessage представляет сообщение, передаваемое между экземплярами Hub
type ClusterMessage struct {
	// MessageType: broadcast - для всех клиентов, direct - для конкретного пользователя
	MessageType string `json:"type"`

	// RecipientID содержит ID получателя для direct-сообщений
	RecipientID string `json:"recipient_id,omitempty"`

	// InstanceID содержит ID отправителя для избежания дублирования
	InstanceID string `json:"instance_id"`

	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// NoOpPubSub реализует PubSubProvider для одиночного режима работы
type NoOpPubSub struct{}

func (p *NoOpPubSub) Publish(channel string, message []byte) error {
	return nil
}

func (p *NoOpPubSub) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	// Пустой канал, который никогда не получит сообщения
	msgCh := make(chan []byte)
	go func() {
		<-ctx.Done()
		close(msgCh)
	}()
	return msgCh, nil
}

func (p *NoOpPubSub) Close() error {
	return nil
}

// ClusterHub связывает локальный хаб с другими экземплярами через Pub/Sub
type ClusterHub struct {
	config     config.ClusterConfig
	hub        *Hub
	provider   PubSubProvider
	instanceID string
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// NewClusterHub создает новый кластерный слой поверх хаба
func NewClusterHub(hub *Hub, cfg config.ClusterConfig, provider PubSubProvider) *ClusterHub {
	ctx, cancel := context.WithCancel(context.Background())
	if provider == nil {
		log.Println("[ClusterHub] Провайдер Pub/Sub не предоставлен, используется NoOpPubSub")
		provider = &NoOpPubSub{}
	}
	if cfg.BroadcastChannel == "" {
		cfg.BroadcastChannel = "picks:ws:broadcast"
	}
	return &ClusterHub{
		config:     cfg,
		hub:        hub,
		provider:   provider,
		instanceID: "instance_" + uuid.New().String(),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start запускает обработку сообщений кластера
func (ch *ClusterHub) Start() error {
	if !ch.config.Enabled {
		log.Println("[ClusterHub] Кластерный режим отключен, работаем в автономном режиме")
		return nil
	}

	log.Printf("[ClusterHub] Запуск кластерного режима, ID экземпляра: %s", ch.instanceID)

	ch.wg.Add(1)
	go func() {
		defer ch.wg.Done()
		ch.handleClusterMessages()
	}()

	return nil
}

// Stop останавливает обработку сообщений кластера
func (ch *ClusterHub) Stop() {
	if !ch.config.Enabled {
		return
	}
	log.Println("[ClusterHub] Остановка кластерного режима")
	ch.cancel()
	ch.wg.Wait()
}

// BroadcastToCluster отправляет широковещательное сообщение всем экземплярам
func (ch *ClusterHub) BroadcastToCluster(payload []byte) error {
	return ch.publish(ClusterMessage{
		MessageType: "broadcast",
		InstanceID:  ch.instanceID,
		Payload:     payload,
		Timestamp:   time.Now(),
	})
}

// SendToUserInCluster отправляет сообщение пользователю, подключенному
// к другому экземпляру
func (ch *ClusterHub) SendToUserInCluster(userID string, payload []byte) error {
	return ch.publish(ClusterMessage{
		MessageType: "direct",
		RecipientID: userID,
		InstanceID:  ch.instanceID,
		Payload:     payload,
		Timestamp:   time.Now(),
	})
}

func (ch *ClusterHub) publish(msg ClusterMessage) error {
	if !ch.config.Enabled {
		return nil
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return ch.provider.Publish(ch.config.BroadcastChannel, data)
}

// handleClusterMessages обрабатывает входящие сообщения кластера
func (ch *ClusterHub) handleClusterMessages() {
	msgCh, err := ch.provider.Subscribe(ch.ctx, ch.config.BroadcastChannel)
	if err != nil {
		log.Printf("[ClusterHub] CRITICAL: Не удалось подписаться на канал %s: %v", ch.config.BroadcastChannel, err)
		return
	}

	log.Printf("[ClusterHub] Начата обработка сообщений канала %s", ch.config.BroadcastChannel)

	for {
		select {
		case <-ch.ctx.Done():
			return
		case data, ok := <-msgCh:
			if !ok {
				log.Println("[ClusterHub] Канал сообщений кластера закрыт")
				return
			}

			var msg ClusterMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				log.Printf("[ClusterHub] Ошибка десериализации сообщения кластера: %v, Сообщение: %s", err, string(data))
				continue
			}

			// Пропускаем сообщения от самого себя
			if msg.InstanceID == ch.instanceID {
				continue
			}

			switch msg.MessageType {
			case "broadcast":
				ch.hub.BroadcastBytesLocal(msg.Payload)
			case "direct":
				if msg.RecipientID != "" {
					_ = ch.hub.SendToUser(msg.RecipientID, msg.Payload)
				}
			default:
				log.Printf("[ClusterHub] Неизвестный тип сообщения кластера от %s: %s", msg.InstanceID, msg.MessageType)
			}
		}
	}
}

// RedisPubSub реализует PubSubProvider с использованием Redis.
// Подписка живет через машину состояний connected -> disconnected ->
// retrying -> connected; после исчерпания повторов переходит в failed.
type RedisPubSub struct {
	client     redis.UniversalClient
	maxRetries int
	ctx        context.Context
	cancel     context.CancelFunc
	mu         sync.Mutex
}

// NewRedisPubSub создает новый Redis Pub/Sub провайдер, используя
// существующий UniversalClient
func NewRedisPubSub(client redis.UniversalClient, maxRetries int) (*RedisPubSub, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil for RedisPubSub")
	}
	if maxRetries <= 0 {
		maxRetries = 5
	}

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("provided redis client failed ping check: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &RedisPubSub{
		client:     client,
		maxRetries: maxRetries,
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// Publish публикует сообщение в указанный канал
func (p *RedisPubSub) Publish(channel string, message []byte) error {
	cmd := p.client.Publish(p.ctx, channel, message)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("failed to publish to Redis channel %s: %w", channel, err)
	}
	return nil
}

// Subscribe подписывается на указанный канал Redis. Разрыв соединения
// запускает переподписку с экспоненциальным бэкоффом; после maxRetries
// неудачных попыток подряд подписка закрывается окончательно.
func (p *RedisPubSub) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	pubsub, err := p.subscribeOnce(channel)
	if err != nil {
		return nil, err
	}

	msgCh := make(chan []byte, 100)

	go func() {
		defer close(msgCh)

		state := stateConnected
		retries := 0

		for {
			if state == stateConnected {
				// Читаем до разрыва
				state = p.pumpMessages(ctx, pubsub, msgCh, channel)
				pubsub.Close()
				if state != stateDisconnected {
					// Штатное завершение по контексту
					return
				}
			}

			// stateDisconnected: пробуем переподписаться
			retries++
			if retries > p.maxRetries {
				log.Printf("RedisPubSub: подписка на '%s' переходит в состояние %s после %d попыток", channel, stateFailed, p.maxRetries)
				return
			}

			state = stateRetrying
			backoff := time.Duration(1<<uint(retries-1)) * time.Second
			if backoff > 30*time.Second {
				backoff = 30 * time.Second
			}
			log.Printf("RedisPubSub: подписка на '%s' в состоянии %s, попытка %d/%d через %v", channel, state, retries, p.maxRetries, backoff)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			case <-p.ctx.Done():
				return
			}

			newSub, err := p.subscribeOnce(channel)
			if err != nil {
				log.Printf("RedisPubSub: переподписка на '%s' не удалась: %v", channel, err)
				state = stateDisconnected
				continue
			}

			log.Printf("RedisPubSub: подписка на '%s' восстановлена", channel)
			pubsub = newSub
			state = stateConnected
			retries = 0
		}
	}()

	return msgCh, nil
}

// subscribeOnce создает подписку и ждет подтверждения от Redis
func (p *RedisPubSub) subscribeOnce(channel string) (*redis.PubSub, error) {
	pubsub := p.client.Subscribe(p.ctx, channel)
	if _, err := pubsub.Receive(p.ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to Redis channel %s: %w", channel, err)
	}
	return pubsub, nil
}

// pumpMessages пересылает сообщения подписки до разрыва или отмены.
// Возвращает stateDisconnected при разрыве канала со стороны Redis.
func (p *RedisPubSub) pumpMessages(ctx context.Context, pubsub *redis.PubSub, msgCh chan<- []byte, channel string) subscriptionState {
	redisCh := pubsub.Channel()
	for {
		select {
		case msg, ok := <-redisCh:
			if !ok {
				log.Printf("RedisPubSub: канал '%s' закрыт со стороны Redis", channel)
				return stateDisconnected
			}
			select {
			case msgCh <- []byte(msg.Payload):
			default:
				log.Printf("RedisPubSub: буфер подписчика канала '%s' переполнен, сообщение отброшено", channel)
			}
		case <-ctx.Done():
			return stateFailed
		case <-p.ctx.Done():
			return stateFailed
		}
	}
}

// Close закрывает провайдера и все активные подписки
func (p *RedisPubSub) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancel()
	return nil
}

package network

import (
	"sync"
)

// Broadcaster занимается только рассылкой сообщений подписчикам.
// Сообщения - готовые JSON-байты: хабу все равно, что внутри.
type Broadcaster struct {
	mu sync.RWMutex
	// Мапа: ID соединения -> Личный канал
	subscribers map[string]chan []byte
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]chan []byte),
	}
}

// Register создает личный канал для соединения
func (b *Broadcaster) Register(connID string) chan []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Если канал был, закрываем
	if old, ok := b.subscribers[connID]; ok {
		close(old)
	}

	ch := make(chan []byte, 100)
	b.subscribers[connID] = ch
	return ch
}

// Unregister удаляет подписчика
func (b *Broadcaster) Unregister(connID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[connID]; ok {
		close(ch)
		delete(b.subscribers, connID)
	}
}

// SendTo отправляет сообщение конкретному соединению (Unicast)
func (b *Broadcaster) SendTo(connID string, msg []byte) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if ch, ok := b.subscribers[connID]; ok {
		select {
		case ch <- msg:
		default:
			// Канал переполнен: медленное соединение теряет сообщение,
			// но не блокирует остальных
		}
	}
}

// Broadcast отправляет всем подключенным симуляциям
func (b *Broadcaster) Broadcast(msg []byte) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- msg:
		default:
		}
	}
}

// HasSubscriber проверяет, есть ли активное соединение с таким ID
func (b *Broadcaster) HasSubscriber(connID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.subscribers[connID]
	return ok
}

// SubscriberCount возвращает количество активных подписчиков.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

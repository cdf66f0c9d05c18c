package agent

import (
	"encoding/json"
	"math/rand"
	"time"

	"github.com/nworb999/night-salon/internal/domain"
	"github.com/nworb999/night-salon/internal/engine"
	"github.com/nworb999/night-salon/internal/network"
	"github.com/nworb999/night-salon/pkg/logger"
	"github.com/nworb999/night-salon/pkg/utils"
)

// Окно "ходьбы" бота: сколько он делает вид, что идет до точки
const (
	walkMin = 2 * time.Second
	walkMax = 6 * time.Second
)

// Bot - headless-заменитель симуляции для одного агента.
// Это пример ВНЕШНЕГО клиента: он подписывается на хаб так же, как
// WebSocket-соединение, получает команды перемещения и отвечает на них
// событиями протокола. Полезен для нагрузочных прогонов и демо без
// подключенного фронтенда.
//
// Жизненный цикл:
//  1. NewBot -> Регистрация в хабе, получение личного канала (Inbox).
//  2. Run -> Запуск в отдельной горутине, слушает свой Inbox.
//  3. Команда move_to_location для своего агента -> пауза "ходьбы" ->
//     событие location_reached обратно в координатор.
type Bot struct {
	AgentID     string
	Coordinator *engine.Service
	Hub         *network.Broadcaster
	Inbox       chan []byte

	connID string
	rng    *rand.Rand
}

func NewBot(agentID string, coordinator *engine.Service, hub *network.Broadcaster) *Bot {
	logger.Log.WithField("agent_id", agentID).Info("Creating headless bot")
	connID := "bot_" + utils.GenerateID()
	return &Bot{
		AgentID:     agentID,
		Coordinator: coordinator,
		Hub:         hub,
		// Бот регистрируется в хабе как обычный клиент
		Inbox:  hub.Register(connID),
		connID: connID,
		rng:    rand.New(rand.NewSource(utils.StringToSeed(agentID))),
	}
}

// Run запускает цикл жизни бота. Должен быть запущен в горутине.
func (b *Bot) Run() {
	defer b.Hub.Unregister(b.connID)

	for msg := range b.Inbox {
		var cmd domain.MoveCommand
		if err := json.Unmarshal(msg, &cmd); err != nil {
			continue // В хаб летят и подтверждения, боту они не интересны
		}
		if cmd.MessageType != "move_to_location" || cmd.AgentID != b.AgentID {
			continue
		}
		b.walkTo(cmd.LocationName)
	}
	logger.Log.WithField("agent_id", b.AgentID).Info("Bot shut down")
}

// walkTo изображает перемещение и докладывает о прибытии
func (b *Bot) walkTo(locationName string) {
	delay := walkMin + time.Duration(b.rng.Int63n(int64(walkMax-walkMin)))
	time.Sleep(delay)

	event := struct {
		MessageType  string `json:"messageType"`
		AgentID      string `json:"agent_id"`
		LocationName string `json:"location_name"`
	}{
		MessageType:  domain.EventLocationReached.String(),
		AgentID:      b.AgentID,
		LocationName: locationName,
	}

	raw, err := json.Marshal(event)
	if err != nil {
		logger.Log.WithError(err).Error("Bot failed to marshal event")
		return
	}

	ack, commands := b.Coordinator.ProcessEvent(raw)
	if ack.Status != "success" {
		logger.Log.WithField("agent_id", b.AgentID).
			WithField("message", ack.Message).
			Warn("Bot event rejected")
		return
	}

	// Следующая команда уходит через хаб: ее увидят и остальные
	// подписчики, и сам бот через свой Inbox
	for _, cmd := range commands {
		if msg, err := json.Marshal(cmd); err == nil {
			b.Hub.Broadcast(msg)
		}
	}
}

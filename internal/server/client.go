package server

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nworb999/night-salon/internal/domain"
	"github.com/nworb999/night-salon/internal/engine"
	"github.com/nworb999/night-salon/internal/network"
	"github.com/nworb999/night-salon/pkg/logger"
	"github.com/nworb999/night-salon/pkg/utils"
)

// Настройки WebSocket
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	// Setup-событие приносит все зоны с точками разом, поэтому лимит щедрый
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client - посредник между WebSocket-соединением симуляции и Service.
// Чтение и запись разнесены по горутинам; подтверждения уходят сразу,
// команды перемещения - с паузой, чтобы движение выглядело обдуманным,
// а не мгновенной реакцией сервера.
type Client struct {
	Coordinator *engine.Service
	Hub         *network.Broadcaster
	Conn        *websocket.Conn
	Send        chan []byte
	ConnID      string

	delayMin time.Duration
	delayMax time.Duration
	rng      *rand.Rand
}

func NewClient(coordinator *engine.Service, hub *network.Broadcaster, conn *websocket.Conn, delayMin, delayMax time.Duration) *Client {
	return &Client{
		Coordinator: coordinator,
		Hub:         hub,
		Conn:        conn,
		Send:        make(chan []byte, 256),
		ConnID:      utils.GenerateID(),
		delayMin:    delayMin,
		delayMax:    delayMax,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// readPump читает события от симуляции
func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister(c.ConnID)
		if err := c.Conn.Close(); err != nil {
			logger.Log.WithError(err).Warn("failed to close websocket connection")
		}
		logger.Log.WithField("conn_id", c.ConnID).Info("Client disconnected")
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logger.Log.WithError(err).Warn("failed to set read deadline")
	}
	c.Conn.SetPongHandler(func(string) error {
		if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			logger.Log.WithError(err).Warn("failed to set pong read deadline")
		}
		return nil
	})

	// Подписка на широковещательные команды (REST API, другие соединения)
	updates := c.Hub.Register(c.ConnID)
	go func() {
		for msg := range updates {
			c.Send <- msg
		}
		close(c.Send)
	}()

	logger.Log.WithField("conn_id", c.ConnID).Info("Client connected")

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Errorf("WS Error: %v", err)
			}
			break
		}

		ack, commands := c.Coordinator.ProcessEvent(raw)

		ackBytes, err := json.Marshal(ack)
		if err != nil {
			logger.Log.WithError(err).Error("Failed to marshal ack")
			continue
		}
		c.Send <- ackBytes

		if len(commands) > 0 {
			// Паузы выбираем здесь, до запуска горутины: c.rng не
			// потокобезопасен, и трогать его можно только из readPump.
			go c.sendDelayed(commands, c.pickDelays(len(commands)))
		}
	}
}

// pickDelays выбирает паузу для каждой из n команд.
// Вызывается только из горутины readPump (единственный владелец c.rng).
func (c *Client) pickDelays(n int) []time.Duration {
	window := c.delayMax - c.delayMin
	delays := make([]time.Duration, n)
	for i := range delays {
		delays[i] = c.delayMin
		if window > 0 {
			delays[i] += time.Duration(c.rng.Int63n(int64(window)))
		}
	}
	return delays
}

// sendDelayed отправляет команды с индивидуальной паузой для каждой.
// Горутина пишет в Hub, а не в сокет напрямую: дисциплина записи
// остается за writePump, а команда доходит до всех подключенных
// симуляций, не только до приславшей событие.
func (c *Client) sendDelayed(commands []domain.MoveCommand, delays []time.Duration) {
	for i, cmd := range commands {
		time.Sleep(delays[i])

		msg, err := json.Marshal(cmd)
		if err != nil {
			logger.Log.WithError(err).Error("Failed to marshal move command")
			continue
		}
		c.Hub.Broadcast(msg)
		logger.Log.WithField("agent_id", cmd.AgentID).
			WithField("location", cmd.LocationName).
			Debug("Move command sent")
	}
}

// writePump отправляет данные симуляции + Ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.Conn.Close(); err != nil {
			logger.Log.WithError(err).Warn("failed to close websocket connection in writePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.Send:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logger.Log.WithError(err).Warn("failed to set write deadline")
			}
			if !ok {
				if err := c.Conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					logger.Log.WithError(err).Debug("write close message failed")
				}
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Log.WithError(err).Debug("write message failed")
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logger.Log.WithError(err).Warn("failed to set ping write deadline")
			}
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Log.WithError(err).Debug("ping failed")
				return
			}
		}
	}
}

package engine

import (
	"encoding/json"
	"math/rand"
	"runtime/debug"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nworb999/night-salon/internal/cognitive"
	"github.com/nworb999/night-salon/internal/domain"
	"github.com/nworb999/night-salon/internal/engine/handlers"
	"github.com/nworb999/night-salon/internal/engine/handlers/events"
	"github.com/nworb999/night-salon/internal/environment"
	"github.com/nworb999/night-salon/internal/storage"
	"github.com/nworb999/night-salon/pkg/api"
	"github.com/nworb999/night-salon/pkg/logger"
)

// Config хранит параметры запуска координатора
type Config struct {
	// Seed - зерно генератора случайных перемещений.
	// 0 = взять текущее время (каждый запуск уникален).
	Seed int64
}

// NewConfig создает конфиг по умолчанию (случайный сид)
func NewConfig() Config {
	return Config{Seed: time.Now().UnixNano()}
}

// Service - протокольное ядро координатора.
// Принимает сырой конверт события, диспатчит его типизированному
// хендлеру и возвращает подтверждение плюс ноль или больше исходящих
// команд. Вся обработка сериализована одним мьютексом: несколько
// соединений делят одно окружение, и инварианты занятости держатся
// только при взаимном исключении.
type Service struct {
	Env      *environment.Controller
	Memories *cognitive.Registry

	// Journal пишет входящие события для оффлайн-прогона. nil = выключен.
	Journal *storage.JournalService

	mu       sync.Mutex
	rng      *rand.Rand
	clock    func() time.Time
	handlers map[domain.EventType]handlers.HandlerFunc
}

// NewService собирает сервис поверх переданного окружения.
// Контроллер создается снаружи и передается по ссылке: им же пользуется
// HTTP-слой, и одна инстанция на процесс - часть контракта.
func NewService(cfg Config, env *environment.Controller, memories *cognitive.Registry) *Service {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Service{
		Env:      env,
		Memories: memories,
		rng:      rand.New(rand.NewSource(seed)),
		clock:    time.Now,
		handlers: make(map[domain.EventType]handlers.HandlerFunc),
	}
	s.registerHandlers()
	return s
}

func (s *Service) registerHandlers() {
	s.handlers[domain.EventSetup] = handlers.WithPayload(events.HandleSetup)
	s.handlers[domain.EventLocationReached] = handlers.WithPayload(events.HandleLocationReached)
	s.handlers[domain.EventProximity] = handlers.WithPayload(events.HandleProximity)
	s.handlers[domain.EventStateChange] = handlers.WithPayload(events.HandleStateChange)
	s.handlers[domain.EventDestinationChange] = handlers.WithPayload(events.HandleDestinationChange)
}

// SetClock подменяет часы (тесты).
func (s *Service) SetClock(clock func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}

// ProcessEvent принимает сырое сообщение от адаптера.
//
// Ошибки делятся на три класса:
//   - ожидаемые рассинхронизации (неизвестная зона/точка, пустой пул) -
//     warning внутри хендлера, ack все равно success;
//   - кривой ввод (не-JSON, не тот формат полей) - error ack;
//   - всё остальное (паника хендлера) - логируется со стеком и
//     превращается в error ack, соединение не рвем.
func (s *Service) ProcessEvent(raw []byte) (ack api.Ack, commands []domain.MoveCommand) {
	var envelope api.EventMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		logger.Log.WithError(err).Error("Invalid JSON received")
		return api.AckError("Invalid JSON format"), nil
	}

	eventType := domain.ParseEvent(envelope.MessageType)
	logger.Log.WithField("event", envelope.MessageType).Info("Received event")
	logger.Log.WithField("data", string(raw)).Debug("Event data")

	// Незнакомый тип - ожидаемая рассинхронизация версий клиента и
	// сервера, а не ошибка протокола: предупреждаем и отвечаем пустым
	// успехом, чтобы адаптер не считал соединение сломанным.
	if eventType == domain.EventUnknown {
		logger.Log.WithField("event", envelope.MessageType).
			Warn("Received unknown event type, ignoring")
		return api.AckSuccess(), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Запись в журнал строго под тем же локом, что и обработка:
	// порядок записей обязан совпадать с порядком, в котором события
	// потребляли RNG, иначе replay разойдется с живой сессией.
	if s.Journal != nil {
		s.Journal.Record(uint8(eventType), raw)
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Log.WithFields(logrus.Fields{
				"event": eventType.String(),
				"panic": r,
				"stack": string(debug.Stack()),
			}).Error("Panic while handling event")
			ack = api.AckError("internal server error")
			commands = nil
		}
	}()

	ctx := handlers.Context{
		Env:      s.Env,
		Memories: s.Memories,
		Rng:      s.rng,
		Clock:    s.clock,
	}

	result, err := s.handlers[eventType](ctx, raw)
	if err != nil {
		logger.Log.WithError(err).WithField("event", eventType.String()).
			Error("Error handling event")
		return api.AckError(err.Error()), nil
	}

	return api.AckSuccess(), result.Commands
}

// CreateAgent регистрирует агента вне setup (REST API) и сразу пытается
// отправить его в первую точку. Возвращает false, если агент уже есть.
func (s *Service) CreateAgent(agentID string) (*domain.MoveCommand, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Env.HasAgent(agentID) {
		return nil, false
	}
	s.Env.AddAgent(domain.NewAgent(agentID))

	ctx := handlers.Context{
		Env:      s.Env,
		Memories: s.Memories,
		Rng:      s.rng,
		Clock:    s.clock,
	}
	cmd := handlers.GenerateRandomMove(ctx, agentID)
	return cmd, true
}

// RemoveAgent выписывает агента отовсюду: занятость, брони, память.
// Единственный путь удаления - и для протокола, и для REST API.
func (s *Service) RemoveAgent(agentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Env.RemoveAgent(agentID) {
		return false
	}
	s.Memories.Forget(agentID)
	logger.Log.WithField("agent_id", agentID).Info("Agent removed")
	return true
}

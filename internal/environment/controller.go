package environment

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/nworb999/night-salon/internal/domain"
	"github.com/nworb999/night-salon/pkg/logger"
)

// AreaData - зона и всё, что в ней живет.
type AreaData struct {
	// Name - имя, под которым клиент объявил зону ("Cubicles").
	// Может отличаться регистром от канонического Type.String().
	Name string
	Type domain.Area

	// Valid = клиент подтвердил существование зоны в этой сессии.
	// Все зоны посеяны заранее как невалидные; setup включает нужные.
	Valid bool

	Locations map[domain.LocationID]*domain.Location

	// Agents - кто числится в зоне (включая тех, кто без конкретной точки).
	Agents map[string]struct{}
}

// Controller владеет реестром зон, хранилищем агентов и журналом броней.
// Это единственный писатель в состояние занятости: все мутации локации
// агента обязаны идти через него, иначе инварианты не удержать.
//
// Создается один раз в main и передается по ссылке (никаких глобалов).
type Controller struct {
	mu sync.RWMutex

	areas  map[domain.Area]*AreaData
	agents map[string]*domain.Agent

	// planned - брони: точка застолблена за агентом, но он еще в пути.
	// Инвариант: точка либо занята, либо забронирована, но резервировать
	// занятую или чужую точку нельзя.
	planned map[domain.Area]map[domain.LocationID]string

	// Камеры и предметы клиент присылает как есть; мы их не интерпретируем.
	cameras []json.RawMessage
	items   []json.RawMessage
}

// New создает контроллер и сеет все известные зоны как невалидные.
func New() *Controller {
	c := &Controller{
		areas:   make(map[domain.Area]*AreaData),
		agents:  make(map[string]*domain.Agent),
		planned: make(map[domain.Area]map[domain.LocationID]string),
	}
	c.initializeAreas()
	return c
}

// initializeAreas сеет реестр. Зоны становятся валидными только
// после объявления клиентом в setup.
func (c *Controller) initializeAreas() {
	for _, a := range domain.AllAreas() {
		c.areas[a] = &AreaData{
			Name:      a.String(),
			Type:      a,
			Valid:     false,
			Locations: make(map[domain.LocationID]*domain.Location),
			Agents:    make(map[string]struct{}),
		}
		c.planned[a] = make(map[domain.LocationID]string)
	}
}

// --- ЗОНЫ И ТОЧКИ ---

// AddArea помечает зону валидной. Идемпотентна: повторное объявление
// лишь обновляет отображаемое имя.
func (c *Controller) AddArea(name string, area domain.Area) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ad, ok := c.areas[area]
	if !ok {
		// Сюда можно попасть только с AreaUnknown - граница обязана
		// была смапить имя в известную зону до вызова.
		logger.Log.WithField("area", name).Warn("AddArea called with unknown area type")
		return
	}
	if name != "" {
		ad.Name = name
	}
	ad.Valid = true
}

// AddLocation добавляет точку в зону. Если зона неизвестна - это
// рассинхронизация конфигурации с клиентом: логируем и не падаем.
func (c *Controller) AddLocation(area domain.Area, id domain.LocationID, name string, typ domain.LocationType, coords *domain.Vector3) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ad, ok := c.areas[area]
	if !ok {
		logger.Log.WithFields(logrus.Fields{
			"area":     area.String(),
			"location": id.String(),
		}).Warn("Cannot add location: area not found")
		return
	}

	if existing, ok := ad.Locations[id]; ok {
		// Повторное объявление (повторный setup): обновляем метаданные,
		// но занятость не трогаем.
		existing.Name = name
		existing.Type = typ
		if coords != nil {
			existing.Coordinates = coords
		}
		return
	}

	ad.Locations[id] = &domain.Location{
		ID:          id,
		Name:        name,
		Type:        typ,
		Coordinates: coords,
	}
}

// AddCamera регистрирует камеру как есть.
func (c *Controller) AddCamera(raw json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cameras = append(c.cameras, raw)
}

// AddItem регистрирует предмет как есть.
func (c *Controller) AddItem(raw json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, raw)
}

// LocationArea ищет, какой зоне принадлежит точка.
// Клиент присылает только имя точки, без зоны.
func (c *Controller) LocationArea(id domain.LocationID) (domain.Area, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for area, ad := range c.areas {
		if _, ok := ad.Locations[id]; ok {
			return area, true
		}
	}
	return domain.AreaUnknown, false
}

// --- АГЕНТЫ ---

// AddAgent регистрирует агента и приписывает его к текущей зоне.
func (c *Controller) AddAgent(agent *domain.Agent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.agents[agent.ID] = agent
	c.removeFromAreasLocked(agent.ID)
	if ad, ok := c.areas[agent.Area]; ok {
		ad.Agents[agent.ID] = struct{}{}
	}
}

// RemoveAgent выписывает агента: членство в зоне, занятая точка и все
// его брони освобождаются синхронно, до возврата из метода. После этого
// ни одна запись о занятости не ссылается на удаленный ID.
func (c *Controller) RemoveAgent(agentID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	agent, ok := c.agents[agentID]
	if !ok {
		return false
	}

	c.removeFromAreasLocked(agentID)
	c.releaseOccupancyLocked(agent)
	c.releaseAllPlannedLocked(agentID)
	delete(c.agents, agentID)
	return true
}

// Agent возвращает агента по ID.
func (c *Controller) Agent(id string) (*domain.Agent, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.agents[id]
	return a, ok
}

// WithAgent выполняет fn над агентом под блокировкой контроллера.
// Единственный легальный способ менять поля агента снаружи пакета:
// снапшоты читают те же поля под этим же локом.
func (c *Controller) WithAgent(id string, fn func(*domain.Agent)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	agent, ok := c.agents[id]
	if !ok {
		return false
	}
	fn(agent)
	return true
}

// HasAgent - быстрый тест на существование.
func (c *Controller) HasAgent(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.agents[id]
	return ok
}

// AgentIDs возвращает отсортированный список ID (стабильный порядок для
// API и тестов).
func (c *Controller) AgentIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.agents))
	for id := range c.agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// UpdateAgentLocation - центральная операция перехода занятости.
//
// Пустой locID означает "агент в зоне, но без конкретной точки":
// освобождаем его старую точку и обновляем членство в зонах.
// При конфликте (точка занята или забронирована другим) агент
// деградирует до "в зоне без точки" - клиент разрулит сам на следующем
// событии. Мы предпочитаем доступность строгой консистентности:
// источник истины по физике - игровой клиент.
func (c *Controller) UpdateAgentLocation(agentID string, area domain.Area, locID domain.LocationID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	agent, ok := c.agents[agentID]
	if !ok {
		logger.Log.WithField("agent_id", agentID).Warn("UpdateAgentLocation: agent not found")
		return
	}

	// 1. Без конкретной точки
	if locID == "" {
		c.releaseOccupancyLocked(agent)
		agent.Location = ""
		c.moveAreaMembershipLocked(agent, area)
		return
	}

	ad, ok := c.areas[area]
	if !ok {
		logger.Log.WithFields(logrus.Fields{
			"agent_id": agentID,
			"area":     area.String(),
		}).Warn("UpdateAgentLocation: unknown area")
		return
	}

	// 2. Точка не объявлена в этой зоне - считаем "без точки",
	// но членство в зоне всё равно обновляем.
	loc, ok := ad.Locations[locID]
	if !ok {
		logger.Log.WithFields(logrus.Fields{
			"agent_id": agentID,
			"area":     area.String(),
			"location": locID.String(),
		}).Warn("UpdateAgentLocation: location not found in area")
		c.releaseOccupancyLocked(agent)
		agent.Location = ""
		c.moveAreaMembershipLocked(agent, area)
		return
	}

	// 3. Сначала отпускаем старую точку
	c.releaseOccupancyLocked(agent)

	switch {
	case loc.OccupiedBy != "" && loc.OccupiedBy != agentID:
		logger.Log.WithFields(logrus.Fields{
			"agent_id": agentID,
			"location": locID.String(),
			"occupant": loc.OccupiedBy,
		}).Warn("Location already occupied, agent stays without a specific location")
		agent.Location = ""

	case c.plannedByOtherLocked(area, locID, agentID):
		logger.Log.WithFields(logrus.Fields{
			"agent_id": agentID,
			"location": locID.String(),
			"reserver": c.planned[area][locID],
		}).Warn("Location reserved by another agent, agent stays without a specific location")
		agent.Location = ""

	default:
		// Занимаем. Если это была наша собственная бронь - гасим её:
		// прибытие и есть исполнение резерва.
		loc.OccupiedBy = agentID
		agent.Location = locID
		if c.planned[area][locID] == agentID {
			delete(c.planned[area], locID)
		}
		if agent.Destination == locID {
			agent.Destination = ""
		}
	}

	// 4. Членство в зонах
	c.moveAreaMembershipLocked(agent, area)
}

// --- БРОНИ ---

// AvailableLocations возвращает точки зоны, которые не заняты и не
// забронированы - кандидаты для перемещения.
func (c *Controller) AvailableLocations(area domain.Area) []domain.LocationID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.availableLocationsLocked(area)
}

func (c *Controller) availableLocationsLocked(area domain.Area) []domain.LocationID {
	ad, ok := c.areas[area]
	if !ok {
		return nil
	}

	var out []domain.LocationID
	for id, loc := range ad.Locations {
		if loc.IsOccupied() {
			continue
		}
		if _, reserved := c.planned[area][id]; reserved {
			continue
		}
		out = append(out, id)
	}
	// Сортируем для детерминизма: генератор движения выбирает по индексу,
	// и replay с тем же сидом обязан дать тот же результат.
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsLocationAvailable - существует + не занята + не забронирована.
func (c *Controller) IsLocationAvailable(area domain.Area, locID domain.LocationID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isAvailableLocked(area, locID)
}

func (c *Controller) isAvailableLocked(area domain.Area, locID domain.LocationID) bool {
	ad, ok := c.areas[area]
	if !ok {
		return false
	}
	loc, ok := ad.Locations[locID]
	if !ok || loc.IsOccupied() {
		return false
	}
	_, reserved := c.planned[area][locID]
	return !reserved
}

// PlanLocation бронирует точку под будущее перемещение агента.
func (c *Controller) PlanLocation(agentID string, area domain.Area, locID domain.LocationID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.planLocationLocked(agentID, area, locID)
}

func (c *Controller) planLocationLocked(agentID string, area domain.Area, locID domain.LocationID) bool {
	// Повторная бронь собственной точки - валидный запрос, чужая или
	// занятая - нет.
	if !c.isAvailableLocked(area, locID) && c.planned[area][locID] != agentID {
		logger.Log.WithFields(logrus.Fields{
			"agent_id": agentID,
			"area":     area.String(),
			"location": locID.String(),
		}).Warn("Cannot plan location: not available")
		return false
	}

	// Агент держит максимум одну бронь: новая цель гасит прежнюю.
	c.releaseAllPlannedLocked(agentID)
	c.planned[area][locID] = agentID
	if agent, ok := c.agents[agentID]; ok {
		agent.Destination = locID
	}
	return true
}

// ReleasePlannedLocation снимает одну конкретную бронь агента.
func (c *Controller) ReleasePlannedLocation(agentID string, area domain.Area, locID domain.LocationID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.planned[area] == nil {
		return
	}
	if owner, ok := c.planned[area][locID]; ok && owner == agentID {
		delete(c.planned[area], locID)
	}
}

// ReleaseAllPlanned снимает все брони агента (удаление, смена цели).
func (c *Controller) ReleaseAllPlanned(agentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseAllPlannedLocked(agentID)
}

func (c *Controller) releaseAllPlannedLocked(agentID string) {
	for _, areaPlanned := range c.planned {
		for locID, owner := range areaPlanned {
			if owner == agentID {
				delete(areaPlanned, locID)
			}
		}
	}
}

// PlannedBy возвращает владельца брони ("" если точка не забронирована).
func (c *Controller) PlannedBy(area domain.Area, locID domain.LocationID) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.planned[area][locID]
}

// PrepareAgentMove = агент существует -> точка доступна -> бронь.
// Единственная точка входа для генерации движения: проверка и резерв
// выполняются под одной блокировкой, гонки "checked then stolen" нет.
func (c *Controller) PrepareAgentMove(agentID string, area domain.Area, locID domain.LocationID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.agents[agentID]; !ok {
		logger.Log.WithField("agent_id", agentID).Warn("PrepareAgentMove: agent not found")
		return false
	}
	return c.planLocationLocked(agentID, area, locID)
}

// ValidAreas возвращает зоны, подтвержденные клиентом, в стабильном порядке.
func (c *Controller) ValidAreas() []domain.Area {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []domain.Area
	for a, ad := range c.areas {
		if ad.Valid {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// --- ВНУТРЕННИЕ ХЕЛПЕРЫ (лок уже взят) ---

// releaseOccupancyLocked освобождает точку, занятую агентом, если есть.
func (c *Controller) releaseOccupancyLocked(agent *domain.Agent) {
	if agent.Location == "" {
		return
	}
	if ad, ok := c.areas[agent.Area]; ok {
		if loc, ok := ad.Locations[agent.Location]; ok && loc.OccupiedBy == agent.ID {
			loc.OccupiedBy = ""
		}
	}
}

// removeFromAreasLocked выписывает агента из всех зон.
// Зон немного (единицы), линейный проход дешевле индекса.
func (c *Controller) removeFromAreasLocked(agentID string) {
	for _, ad := range c.areas {
		delete(ad.Agents, agentID)
	}
}

// moveAreaMembershipLocked переносит членство агента в новую зону.
func (c *Controller) moveAreaMembershipLocked(agent *domain.Agent, area domain.Area) {
	if agent.Area == area {
		if ad, ok := c.areas[area]; ok {
			ad.Agents[agent.ID] = struct{}{} // на случай, если членство потерялось
		}
		return
	}

	if old, ok := c.areas[agent.Area]; ok {
		delete(old.Agents, agent.ID)
	}
	if ad, ok := c.areas[area]; ok {
		ad.Agents[agent.ID] = struct{}{}
	}
	agent.Area = area
}

func (c *Controller) plannedByOtherLocked(area domain.Area, locID domain.LocationID, agentID string) bool {
	owner, ok := c.planned[area][locID]
	return ok && owner != agentID
}

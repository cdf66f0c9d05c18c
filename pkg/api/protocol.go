package api

import "encoding/json"

// --- КЛИЕНТ -> СЕРВЕР ---

// EventMessage это корневой объект для всех сообщений от игрового клиента.
// Поле messageType определяет, какая из Payload-структур ниже применима;
// остальные поля конверта парсятся хендлером конкретного события.
type EventMessage struct {
	// MessageType название события ("setup", "location_reached", ...).
	MessageType string `json:"messageType"`

	// AgentID присутствует у всех событий, кроме setup.
	AgentID string `json:"agent_id,omitempty"`
}

// --- Payloads ---

// SetupLocation - одна точка в объявлении зоны.
type SetupLocation struct {
	LocationName string    `json:"location_name"`
	Coordinates  []float64 `json:"coordinates,omitempty"`
}

// SetupArea - объявление одной зоны со списком её точек.
type SetupArea struct {
	AreaName  string          `json:"area_name"`
	Locations []SetupLocation `json:"locations,omitempty"`
}

// SetupPayload - рукопожатие сессии: полный ростер агентов, зон и камер.
// Идемпотентно: клиент может прислать его повторно при переподключении.
type SetupPayload struct {
	AgentIDs []string          `json:"agent_ids"`
	Areas    []SetupArea       `json:"areas,omitempty"`
	Cameras  []json.RawMessage `json:"cameras,omitempty"`
	Items    []json.RawMessage `json:"items,omitempty"`
}

// LocationReachedPayload - агент физически дошел до точки.
type LocationReachedPayload struct {
	AgentID      string    `json:"agent_id"`
	LocationName string    `json:"location_name"`
	Coordinates  []float64 `json:"coordinates,omitempty"`
}

// ProximityPayload - агенты сблизились или разошлись.
type ProximityPayload struct {
	AgentID   string  `json:"agent_id"`
	TargetID  string  `json:"target_id"`
	EventType string  `json:"event_type"` // "enter" / "exit"
	Distance  float64 `json:"distance"`
}

// PositionUpdate - позиция, которую клиент может приложить к событию.
type PositionUpdate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// StateChangePayload - клиент сменил анимационное состояние агента.
type StateChangePayload struct {
	AgentID  string          `json:"agent_id"`
	State    string          `json:"state"` // "Walking", "Standing", ...
	Position *PositionUpdate `json:"position,omitempty"`
	Velocity *PositionUpdate `json:"velocity,omitempty"`
	Speed    float64         `json:"speed,omitempty"`

	// Extra - поля, которые клиент прислал сверх известных.
	// Не интерпретируем, но и не теряем.
	Extra map[string]json.RawMessage `json:"-"`
}

// stateChangeKnownKeys - поля конверта, которые НЕ попадают в Extra.
var stateChangeKnownKeys = []string{
	"messageType", "agent_id", "state", "position", "velocity", "speed",
}

// UnmarshalJSON раскладывает известные поля по структуре,
// а незнакомые собирает в Extra.
func (p *StateChangePayload) UnmarshalJSON(data []byte) error {
	type alias StateChangePayload
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*p = StateChangePayload(a)

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, key := range stateChangeKnownKeys {
		delete(all, key)
	}
	if len(all) > 0 {
		p.Extra = all
	}
	return nil
}

// DestinationChangePayload - клиент сам перенаправил агента.
type DestinationChangePayload struct {
	AgentID    string          `json:"agent_id"`
	TargetName string          `json:"targetName"`
	State      string          `json:"state,omitempty"`
	Position   *PositionUpdate `json:"position,omitempty"`
}

// --- СЕРВЕР -> КЛИЕНТ ---

// Ack - подтверждение обработки события.
// Success=false сопровождается человекочитаемым сообщением.
type Ack struct {
	Status  string `json:"status"` // "success" / "error"
	Message string `json:"message,omitempty"`
}

// AckSuccess - стандартное успешное подтверждение.
func AckSuccess() Ack { return Ack{Status: "success"} }

// AckError - подтверждение с ошибкой.
func AckError(msg string) Ack { return Ack{Status: "error", Message: msg} }

// --- Query surface (HTTP) ---

// AgentStatusView - DTO статуса агента для REST API.
type AgentStatusView struct {
	AgentID   string         `json:"agent_id"`
	Area      string         `json:"area"`
	Location  string         `json:"location,omitempty"`
	Action    string         `json:"action"`
	Objective string         `json:"objective"`
	Thought   string         `json:"thought"`
	Emotion   string         `json:"emotion"`
	Visits    map[string]int `json:"locations_visited,omitempty"`
}

// LocationView - DTO точки для снапшота окружения.
type LocationView struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	OccupiedBy string `json:"occupied_by,omitempty"`
}

// AreaView - DTO зоны для снапшота окружения.
type AreaView struct {
	Name      string                  `json:"name"`
	Type      string                  `json:"type"`
	Valid     bool                    `json:"valid"`
	Locations map[string]LocationView `json:"locations"`
	Agents    []string                `json:"agents"`
}

// EnvironmentView - диагностический снимок всего окружения.
type EnvironmentView struct {
	Areas  map[string]AreaView        `json:"areas"`
	Agents map[string]AgentStatusView `json:"agents"`
}

package domain

import "strings"

// EventType - Внутренний числовой идентификатор события от клиента.
// Набор закрыт: новое событие = новая константа + маппинг + хендлер.
type EventType uint8

const (
	EventUnknown EventType = iota
	EventSetup
	EventLocationReached
	EventProximity
	EventStateChange
	EventDestinationChange
)

// Маппинг для конвертации JSON -> Domain
var eventStringToEvent = map[string]EventType{
	"setup":              EventSetup,
	"location_reached":   EventLocationReached,
	"proximity_event":    EventProximity,
	"state_change":       EventStateChange,
	"destination_change": EventDestinationChange,
}

// Маппинг для логов Domain -> String
var eventToString = map[EventType]string{
	EventSetup:             "setup",
	EventLocationReached:   "location_reached",
	EventProximity:         "proximity_event",
	EventStateChange:       "state_change",
	EventDestinationChange: "destination_change",
}

// ParseEvent конвертирует строку messageType в EventType
func ParseEvent(s string) EventType {
	if val, ok := eventStringToEvent[strings.ToLower(s)]; ok {
		return val
	}
	return EventUnknown
}

// String реализует интерфейс Stringer (для fmt.Printf)
func (e EventType) String() string {
	if val, ok := eventToString[e]; ok {
		return val
	}
	return "unknown"
}

// MoveCommand - исходящая команда клиенту: веди агента в точку.
// Формат полей в JSON задан протоколом клиента.
type MoveCommand struct {
	MessageType  string `json:"messageType"` // всегда "move_to_location"
	AgentID      string `json:"agent_id"`
	LocationName string `json:"location_name"`
}

// NewMoveCommand собирает команду перемещения.
func NewMoveCommand(agentID string, loc LocationID) MoveCommand {
	return MoveCommand{
		MessageType:  "move_to_location",
		AgentID:      agentID,
		LocationName: loc.String(),
	}
}

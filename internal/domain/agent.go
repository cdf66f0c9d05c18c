package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Action - Внутренний числовой идентификатор действия агента
type Action uint8

const (
	ActionUnknown Action = iota
	ActionWalk
	ActionChat
	ActionWork
	ActionMeeting
	ActionPresent
	ActionListen
	ActionPhoneCall
	ActionDrink
	ActionUseBathroom
	ActionSmoke
	ActionRest
)

// Маппинг для конвертации JSON -> Domain
var actionStringToAction = map[string]Action{
	"WALK":         ActionWalk,
	"CHAT":         ActionChat,
	"WORK":         ActionWork,
	"MEETING":      ActionMeeting,
	"PRESENT":      ActionPresent,
	"LISTEN":       ActionListen,
	"PHONE_CALL":   ActionPhoneCall,
	"DRINK":        ActionDrink,
	"USE_BATHROOM": ActionUseBathroom,
	"SMOKE":        ActionSmoke,
	"REST":         ActionRest,
}

// Маппинг для логов Domain -> String
var actionToString = map[Action]string{
	ActionWalk:        "WALK",
	ActionChat:        "CHAT",
	ActionWork:        "WORK",
	ActionMeeting:     "MEETING",
	ActionPresent:     "PRESENT",
	ActionListen:      "LISTEN",
	ActionPhoneCall:   "PHONE_CALL",
	ActionDrink:       "DRINK",
	ActionUseBathroom: "USE_BATHROOM",
	ActionSmoke:       "SMOKE",
	ActionRest:        "REST",
}

// ParseAgentAction конвертирует строку из JSON в Action
func ParseAgentAction(s string) Action {
	if val, ok := actionStringToAction[strings.ToUpper(s)]; ok {
		return val
	}
	return ActionUnknown
}

// String реализует интерфейс Stringer (для fmt.Printf)
func (a Action) String() string {
	if val, ok := actionToString[a]; ok {
		return val
	}
	return "UNKNOWN"
}

// AgentState - физическое состояние агента, как его видит игровой клиент.
// Известным полям даны имена и типы; всё, что клиент прислал сверх того,
// складывается в Extra как есть (forward-compatibility).
type AgentState struct {
	Position     *Vector3                   `json:"position,omitempty"`
	Velocity     *Vector3                   `json:"velocity,omitempty"`
	Speed        float64                    `json:"speed,omitempty"`
	LastMoveTime time.Time                  `json:"lastMoveTime,omitempty"`
	LastUpdated  time.Time                  `json:"lastUpdated,omitempty"`
	Extra        map[string]json.RawMessage `json:"extra,omitempty"`
}

// SetExtra сохраняет неизвестное ядру поле клиента.
func (s *AgentState) SetExtra(key string, raw json.RawMessage) {
	if s.Extra == nil {
		s.Extra = make(map[string]json.RawMessage)
	}
	s.Extra[key] = raw
}

// Agent - зеркало одного NPC. Игровой клиент является источником истины
// по его физике; мы храним согласованную копию плюс когнитивные атрибуты.
type Agent struct {
	ID string

	// Area - зона, в которой агент числится сейчас.
	Area Area

	// Location - конкретная точка внутри зоны.
	// Пустое значение = "в зоне, но без конкретной точки"
	// (так агент деградирует при конфликте занятости).
	Location LocationID

	// Destination - точка, к которой агент направляется (зарезервирована).
	Destination LocationID

	Action    Action
	Objective string
	Thought   string
	Emotion   string

	State AgentState
}

// NewAgent создает агента с нейтральным когнитивным состоянием.
// Зона по умолчанию - коридор: клиент уточнит её первым же событием.
func NewAgent(id string) *Agent {
	return &Agent{
		ID:        id,
		Area:      AreaHallway,
		Action:    ActionWalk,
		Objective: "Beginning work",
		Thought:   "Starting my day",
		Emotion:   "neutral",
	}
}

package cognitive

import (
	"strings"

	"github.com/nworb999/night-salon/internal/domain"
)

// Маппинги анимационных состояний клиента на действия и эмоции агента.
// Клиент оперирует строками вроде "Walking"/"Standing"; здесь единственное
// место, где они переводятся в доменные термины.

var stateToAction = map[string]domain.Action{
	"walking":  domain.ActionWalk,
	"standing": domain.ActionRest,
	"sitting":  domain.ActionRest,
	"working":  domain.ActionWork,
	"talking":  domain.ActionChat,
	"smoking":  domain.ActionSmoke,
	"drinking": domain.ActionDrink,
}

var stateToEmotion = map[string]string{
	"walking":  "active",
	"standing": "idle",
	"sitting":  "idle",
	"working":  "focused",
	"talking":  "social",
}

// MapState переводит анимационное состояние клиента в действие.
// Незнакомое состояние - агент скорее всего куда-то идет.
func MapState(state string) domain.Action {
	if a, ok := stateToAction[strings.ToLower(state)]; ok {
		return a
	}
	return domain.ActionWalk
}

// MapEmotion переводит анимационное состояние в эмоцию.
func MapEmotion(state string) string {
	if e, ok := stateToEmotion[strings.ToLower(state)]; ok {
		return e
	}
	return "neutral"
}

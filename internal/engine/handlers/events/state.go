package events

import (
	"github.com/sirupsen/logrus"

	"github.com/nworb999/night-salon/internal/cognitive"
	"github.com/nworb999/night-salon/internal/domain"
	"github.com/nworb999/night-salon/internal/engine/handlers"
	"github.com/nworb999/night-salon/pkg/api"
	"github.com/nworb999/night-salon/pkg/logger"
)

// HandleStateChange - клиент сменил анимационное состояние агента
// ("Walking", "Standing", ...). Переводим его в действие и эмоцию,
// обновляем физику. Команд не порождает.
func HandleStateChange(ctx handlers.Context, p api.StateChangePayload) (handlers.Result, error) {
	action := cognitive.MapState(p.State)
	emotion := cognitive.MapEmotion(p.State)

	ok := ctx.Env.WithAgent(p.AgentID, func(a *domain.Agent) {
		a.Action = action
		a.Emotion = emotion
		applyPosition(a, p.Position)
		if p.Velocity != nil {
			a.State.Velocity = &domain.Vector3{X: p.Velocity.X, Y: p.Velocity.Y, Z: p.Velocity.Z}
		}
		if p.Speed != 0 {
			a.State.Speed = p.Speed
		}
		for key, raw := range p.Extra {
			a.State.SetExtra(key, raw)
		}
		a.State.LastUpdated = ctx.Now()
	})
	if !ok {
		logger.Log.WithField("agent_id", p.AgentID).Warn("State change for unknown agent")
		return handlers.EmptyResult(), nil
	}

	logger.Log.WithFields(logrus.Fields{
		"agent_id": p.AgentID,
		"state":    p.State,
		"action":   action.String(),
		"emotion":  emotion,
	}).Debug("Agent state changed")

	return handlers.EmptyResult(), nil
}

// applyPosition переносит позицию из события в состояние агента.
func applyPosition(a *domain.Agent, pos *api.PositionUpdate) {
	if pos == nil {
		return
	}
	a.State.Position = &domain.Vector3{X: pos.X, Y: pos.Y, Z: pos.Z}
}

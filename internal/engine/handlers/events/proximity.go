package events

import (
	"github.com/sirupsen/logrus"

	"github.com/nworb999/night-salon/internal/cognitive"
	"github.com/nworb999/night-salon/internal/engine/handlers"
	"github.com/nworb999/night-salon/pkg/api"
	"github.com/nworb999/night-salon/pkg/logger"
)

// HandleProximity - агенты сблизились или разошлись.
// Окружение не мутируем: встреча попадает только в память агента.
// Это точка расширения для будущего социального поведения
// (разговор при "enter", прощание при "exit"), а не мертвый код.
func HandleProximity(ctx handlers.Context, p api.ProximityPayload) (handlers.Result, error) {
	logger.Log.WithFields(logrus.Fields{
		"agent_id":  p.AgentID,
		"target_id": p.TargetID,
		"event":     p.EventType,
		"distance":  p.Distance,
	}).Info("Proximity event")

	if ctx.Env.HasAgent(p.AgentID) {
		ctx.Memories.Record(p.AgentID, cognitive.Experience{
			Event:  "proximity_" + p.EventType,
			Detail: p.TargetID,
		})
	}

	return handlers.EmptyResult(), nil
}

package events

import (
	"github.com/sirupsen/logrus"

	"github.com/nworb999/night-salon/internal/cognitive"
	"github.com/nworb999/night-salon/internal/domain"
	"github.com/nworb999/night-salon/internal/engine/handlers"
	"github.com/nworb999/night-salon/pkg/api"
	"github.com/nworb999/night-salon/pkg/logger"
)

// HandleDestinationChange - клиент сам перенаправил агента (игрок
// перетащил NPC, скрипт сцены и т.п.). Прежняя цель считается брошенной:
// все брони агента, кроме новой цели, снимаются, чтобы не держать
// чужие точки занятыми.
func HandleDestinationChange(ctx handlers.Context, p api.DestinationChangePayload) (handlers.Result, error) {
	if !ctx.Env.HasAgent(p.AgentID) {
		logger.Log.WithField("agent_id", p.AgentID).Warn("Destination change for unknown agent")
		return handlers.EmptyResult(), nil
	}

	newDest := domain.LocationID(p.TargetName)

	var oldDest domain.LocationID
	ctx.Env.WithAgent(p.AgentID, func(a *domain.Agent) {
		oldDest = a.Destination
	})

	if oldDest != "" && oldDest != newDest {
		// Бросаем прежний резерв целиком: контроллер снимет все брони
		// этого агента, где бы они ни висели.
		ctx.Env.ReleaseAllPlanned(p.AgentID)
	}

	ctx.Env.WithAgent(p.AgentID, func(a *domain.Agent) {
		a.Destination = newDest
		if p.State != "" {
			a.Action = cognitive.MapState(p.State)
		}
		applyPosition(a, p.Position)
		a.State.LastUpdated = ctx.Now()
	})

	logger.Log.WithFields(logrus.Fields{
		"agent_id": p.AgentID,
		"target":   p.TargetName,
		"previous": oldDest.String(),
	}).Info("Agent destination changed by client")

	return handlers.EmptyResult(), nil
}

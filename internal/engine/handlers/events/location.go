package events

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nworb999/night-salon/internal/cognitive"
	"github.com/nworb999/night-salon/internal/domain"
	"github.com/nworb999/night-salon/internal/engine/handlers"
	"github.com/nworb999/night-salon/pkg/api"
	"github.com/nworb999/night-salon/pkg/logger"
)

// HandleLocationReached - агент физически дошел до точки.
// Обновляем занятость через контроллер, пишем опыт в память и сразу
// генерируем следующую случайную команду - это событие почти всегда
// порождает ровно один ответ (кроме случая, когда свободных точек нет).
func HandleLocationReached(ctx handlers.Context, p api.LocationReachedPayload) (handlers.Result, error) {
	logger.Log.WithFields(logrus.Fields{
		"agent_id": p.AgentID,
		"location": p.LocationName,
	}).Info("Agent reached location")

	if !ctx.Env.HasAgent(p.AgentID) {
		logger.Log.WithField("agent_id", p.AgentID).Warn("Agent not found")
		return handlers.EmptyResult(), nil
	}

	locID := domain.LocationID(p.LocationName)

	// Ищем зону, которой принадлежит точка. Клиент зону не присылает.
	area, found := ctx.Env.LocationArea(locID)
	if !found {
		logger.Log.WithField("location", p.LocationName).
			Warn("Unknown location, defaulting to HALLWAY")
		area = domain.AreaHallway
		locID = ""
	}

	ctx.Env.UpdateAgentLocation(p.AgentID, area, locID)

	ctx.Env.WithAgent(p.AgentID, func(a *domain.Agent) {
		if len(p.Coordinates) >= 3 {
			a.State.Position = &domain.Vector3{
				X: p.Coordinates[0],
				Y: p.Coordinates[1],
				Z: p.Coordinates[2],
			}
		}
		now := ctx.Now()
		a.State.LastMoveTime = now
		a.State.LastUpdated = now
	})

	// Опыт: прибытие в точку. Первый визит и повторный дают разные мысли.
	ctx.Memories.Record(p.AgentID, cognitive.Experience{
		Event:    "location_reached",
		Location: p.LocationName,
	})
	thought := fmt.Sprintf("Checking a familiar spot: %s", p.LocationName)
	if ctx.Memories.FirstVisit(p.AgentID, p.LocationName) {
		thought = fmt.Sprintf("Exploring %s for the first time", p.LocationName)
	}
	ctx.Env.WithAgent(p.AgentID, func(a *domain.Agent) {
		a.Thought = thought
	})

	// Следующая точка маршрута
	if cmd := handlers.GenerateRandomMove(ctx, p.AgentID); cmd != nil {
		return handlers.Result{Commands: []domain.MoveCommand{*cmd}}, nil
	}
	return handlers.EmptyResult(), nil
}

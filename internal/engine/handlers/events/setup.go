package events

import (
	"github.com/sirupsen/logrus"

	"github.com/nworb999/night-salon/internal/domain"
	"github.com/nworb999/night-salon/internal/engine/handlers"
	"github.com/nworb999/night-salon/pkg/api"
	"github.com/nworb999/night-salon/pkg/logger"
)

// HandleSetup - рукопожатие сессии: клиент объявляет полный ростер
// агентов, зон, точек и камер. Идемпотентен: повторный setup с теми же
// данными не плодит дубликатов. В конце для каждого агента из ростера
// генерируется стартовая команда перемещения - это запускает
// автономное блуждание.
func HandleSetup(ctx handlers.Context, p api.SetupPayload) (handlers.Result, error) {
	logger.Log.WithFields(logrus.Fields{
		"agents": len(p.AgentIDs),
		"areas":  len(p.Areas),
	}).Info("Initializing setup")

	initializeAgents(ctx, p.AgentIDs)
	initializeAreas(ctx, p.Areas)

	for _, cam := range p.Cameras {
		ctx.Env.AddCamera(cam)
	}
	for _, item := range p.Items {
		ctx.Env.AddItem(item)
	}
	logger.Log.WithFields(logrus.Fields{
		"cameras": len(p.Cameras),
		"items":   len(p.Items),
	}).Debug("Registered cameras and items")

	logger.Log.Info("Environment setup completed")

	// Стартовые команды в порядке входного списка агентов.
	var commands []domain.MoveCommand
	for _, agentID := range p.AgentIDs {
		if !ctx.Env.HasAgent(agentID) {
			continue
		}
		cmd := handlers.GenerateRandomMove(ctx, agentID)
		if cmd == nil {
			continue
		}
		ctx.Env.WithAgent(agentID, func(a *domain.Agent) {
			a.State.LastMoveTime = ctx.Now()
		})
		commands = append(commands, *cmd)
		logger.Log.WithFields(logrus.Fields{
			"agent_id": agentID,
			"location": cmd.LocationName,
		}).Info("Generated initial move command")
	}

	logger.Log.WithField("count", len(commands)).
		Info("Generated initial movement commands after setup")
	return handlers.Result{Commands: commands}, nil
}

// initializeAgents создает недостающих агентов из ростера.
func initializeAgents(ctx handlers.Context, agentIDs []string) {
	for _, id := range agentIDs {
		if ctx.Env.HasAgent(id) {
			continue
		}
		logger.Log.WithField("agent_id", id).Debug("Creating new agent")
		ctx.Env.AddAgent(domain.NewAgent(id))
	}
}

// initializeAreas обрабатывает все зоны и их точки.
func initializeAreas(ctx handlers.Context, areas []api.SetupArea) {
	logger.Log.WithField("count", len(areas)).Info("Setting up areas")

	for _, a := range areas {
		area := domain.ParseArea(a.AreaName)
		if area == domain.AreaUnknown {
			logger.Log.WithField("area", a.AreaName).
				Warn("Unknown area type, defaulting to HALLWAY")
			area = domain.AreaHallway
		}

		ctx.Env.AddArea(a.AreaName, area)

		for _, loc := range a.Locations {
			ctx.Env.AddLocation(
				area,
				domain.LocationID(loc.LocationName),
				loc.LocationName,
				domain.LocationTypeStanding,
				vectorFromSlice(loc.Coordinates),
			)
		}
	}
}

// vectorFromSlice превращает [x y z] клиента в Vector3.
func vectorFromSlice(coords []float64) *domain.Vector3 {
	if len(coords) < 3 {
		return nil
	}
	return &domain.Vector3{X: coords[0], Y: coords[1], Z: coords[2]}
}

package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/nworb999/night-salon/internal/domain"
	"github.com/nworb999/night-salon/pkg/logger"
)

// candidate - пара (зона, точка) в пуле кандидатов для перемещения.
type candidate struct {
	area domain.Area
	loc  domain.LocationID
}

// GenerateRandomMove выбирает случайную свободную и незабронированную
// точку, отличную от текущей точки агента, резервирует её и возвращает
// команду перемещения.
//
// Порядок "собрать пул -> выбрать -> закоммитить через PrepareAgentMove"
// принципиален: доступность могла измениться между сборкой пула и
// коммитом, и финальную проверку с резервом делает контроллер под одним
// локом. Проигранную гонку не ретраим внутри вызова - следующее событие
// цикла естественно повторит попытку.
func GenerateRandomMove(ctx Context, agentID string) *domain.MoveCommand {
	var current domain.LocationID
	if ok := ctx.Env.WithAgent(agentID, func(a *domain.Agent) { current = a.Location }); !ok {
		logger.Log.WithField("agent_id", agentID).Warn("Cannot generate move: agent not found")
		return nil
	}

	// Пул кандидатов: все валидные зоны, все доступные точки,
	// кроме той, где агент стоит сейчас.
	var pool []candidate
	for _, area := range ctx.Env.ValidAreas() {
		for _, loc := range ctx.Env.AvailableLocations(area) {
			if loc == current {
				continue
			}
			pool = append(pool, candidate{area: area, loc: loc})
		}
	}

	if len(pool) == 0 {
		// Ожидаемая ситуация (офис заполнен), не ошибка.
		logger.Log.WithField("agent_id", agentID).
			Warn("No valid unoccupied locations available for random movement")
		return nil
	}

	pick := pool[ctx.Rng.Intn(len(pool))]

	if !ctx.Env.PrepareAgentMove(agentID, pick.area, pick.loc) {
		// Гонка проиграна другому агенту между сборкой пула и резервом.
		logger.Log.WithFields(logrus.Fields{
			"agent_id": agentID,
			"location": pick.loc.String(),
		}).Warn("Failed to reserve location for agent")
		return nil
	}

	logger.Log.WithFields(logrus.Fields{
		"agent_id": agentID,
		"area":     pick.area.String(),
		"location": pick.loc.String(),
	}).Info("Instructing agent to move")

	cmd := domain.NewMoveCommand(agentID, pick.loc)
	return &cmd
}

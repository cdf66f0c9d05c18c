package environment

import (
	"sort"

	"github.com/nworb999/night-salon/internal/domain"
	"github.com/nworb999/night-salon/pkg/api"
)

// Snapshot строит read-only снимок окружения для диагностики и HTTP API.
// Снимок - копия: его можно отдавать наружу, не удерживая лок.
func (c *Controller) Snapshot() api.EnvironmentView {
	c.mu.RLock()
	defer c.mu.RUnlock()

	view := api.EnvironmentView{
		Areas:  make(map[string]api.AreaView, len(c.areas)),
		Agents: make(map[string]api.AgentStatusView, len(c.agents)),
	}

	for area, ad := range c.areas {
		av := api.AreaView{
			Name:      ad.Name,
			Type:      area.String(),
			Valid:     ad.Valid,
			Locations: make(map[string]api.LocationView, len(ad.Locations)),
			Agents:    make([]string, 0, len(ad.Agents)),
		}
		for id, loc := range ad.Locations {
			av.Locations[id.String()] = api.LocationView{
				Name:       loc.Name,
				Type:       loc.Type.String(),
				OccupiedBy: loc.OccupiedBy,
			}
		}
		for agentID := range ad.Agents {
			av.Agents = append(av.Agents, agentID)
		}
		sort.Strings(av.Agents)
		view.Areas[area.String()] = av
	}

	for id, agent := range c.agents {
		view.Agents[id] = agentStatusLocked(agent)
	}

	return view
}

// AgentStatus возвращает снимок одного агента
func (c *Controller) AgentStatus(id string) (api.AgentStatusView, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	agent, ok := c.agents[id]
	if !ok {
		return api.AgentStatusView{}, false
	}
	return agentStatusLocked(agent), true
}

func agentStatusLocked(agent *domain.Agent) api.AgentStatusView {
	return api.AgentStatusView{
		AgentID:   agent.ID,
		Area:      agent.Area.String(),
		Location:  agent.Location.String(),
		Action:    agent.Action.String(),
		Objective: agent.Objective,
		Thought:   agent.Thought,
		Emotion:   agent.Emotion,
	}
}

// PlannedSnapshot - дамп активных броней: зона -> точка -> агент
func (c *Controller) PlannedSnapshot() map[string]map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]map[string]string)
	for area, locs := range c.planned {
		if len(locs) == 0 {
			continue
		}
		m := make(map[string]string, len(locs))
		for locID, agentID := range locs {
			m[locID.String()] = agentID
		}
		out[area.String()] = m
	}
	return out
}

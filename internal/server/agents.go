package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/nworb999/night-salon/internal/engine"
	"github.com/nworb999/night-salon/internal/network"
	"github.com/nworb999/night-salon/pkg/api"
	"github.com/nworb999/night-salon/pkg/logger"
)

// AgentHandler - REST-управление агентами поверх координатора.
// Дает внешним инструментам (дашборд, скрипты) тот же жизненный цикл,
// что и протокол: создание идет через CreateAgent с первой командой,
// удаление - через единый путь RemoveAgent.
type AgentHandler struct {
	Coordinator *engine.Service
	Hub         *network.Broadcaster
}

func NewAgentHandler(coordinator *engine.Service, hub *network.Broadcaster) *AgentHandler {
	return &AgentHandler{Coordinator: coordinator, Hub: hub}
}

// RegisterRoutes регистрирует /agents-эндпоинты
func (h *AgentHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/agents", enableCORS(h.handleCollection))
	mux.HandleFunc("/agents/", enableCORS(h.handleAgent))
}

// /agents - GET список, POST создание
func (h *AgentHandler) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listAgents(w)
	case http.MethodPost:
		h.createAgent(w, r)
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// /agents/{id} - GET статус, DELETE удаление
func (h *AgentHandler) handleAgent(w http.ResponseWriter, r *http.Request) {
	agentID := strings.TrimPrefix(r.URL.Path, "/agents/")
	if agentID == "" || strings.Contains(agentID, "/") {
		http.Error(w, "invalid agent id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.agentStatus(w, agentID)
	case http.MethodPost:
		h.create(w, agentID)
	case http.MethodDelete:
		h.deleteAgent(w, agentID)
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AgentHandler) listAgents(w http.ResponseWriter) {
	snapshot := h.Coordinator.Env.Snapshot()

	views := make([]api.AgentStatusView, 0, len(snapshot.Agents))
	for _, id := range h.Coordinator.Env.AgentIDs() {
		view := snapshot.Agents[id]
		view.Visits = h.Coordinator.Memories.Visits(id)
		views = append(views, view)
	}
	writeJSON(w, views)
}

// createAgent - вариант с телом запроса: POST /agents {"agent_id": ...}
func (h *AgentHandler) createAgent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AgentID string `json:"agent_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AgentID == "" {
		http.Error(w, "agent_id is required", http.StatusBadRequest)
		return
	}
	h.create(w, req.AgentID)
}

// create регистрирует агента и отдает его стартовый статус.
// Используется и для POST /agents, и для POST /agents/{id}.
func (h *AgentHandler) create(w http.ResponseWriter, agentID string) {
	cmd, created := h.Coordinator.CreateAgent(agentID)
	if !created {
		http.Error(w, "agent already exists", http.StatusConflict)
		return
	}
	logger.Log.WithField("agent_id", agentID).Info("Agent created via API")

	// Первая команда уходит всем симуляциям сразу, без пейсинга:
	// агент появился из ниоткуда, ждать ему нечего
	if cmd != nil {
		if msg, err := json.Marshal(cmd); err == nil {
			h.Hub.Broadcast(msg)
		}
	}

	view, _ := h.Coordinator.Env.AgentStatus(agentID)
	view.Visits = h.Coordinator.Memories.Visits(agentID)
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, view)
}

func (h *AgentHandler) agentStatus(w http.ResponseWriter, agentID string) {
	view, ok := h.Coordinator.Env.AgentStatus(agentID)
	if !ok {
		http.Error(w, "agent not found", http.StatusNotFound)
		return
	}
	view.Visits = h.Coordinator.Memories.Visits(agentID)
	writeJSON(w, view)
}

func (h *AgentHandler) deleteAgent(w http.ResponseWriter, agentID string) {
	if !h.Coordinator.RemoveAgent(agentID) {
		http.Error(w, "agent not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package server

import (
	"encoding/json"
	"net/http"

	"github.com/nworb999/night-salon/internal/engine"
)

// DebugHandler предоставляет доступ к внутреннему состоянию окружения
type DebugHandler struct {
	Coordinator *engine.Service
}

func NewDebugHandler(s *engine.Service) *DebugHandler {
	return &DebugHandler{Coordinator: s}
}

// RegisterRoutes регистрирует debug-эндпоинты
func (h *DebugHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/debug/environment", h.handleEnvironment)
	mux.HandleFunc("/debug/reservations", h.handleReservations)
}

// /debug/environment - полный снимок зон, точек и агентов
func (h *DebugHandler) handleEnvironment(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Coordinator.Env.Snapshot())
}

// /debug/reservations - активные брони точек
func (h *DebugHandler) handleReservations(w http.ResponseWriter, r *http.Request) {
	planned := h.Coordinator.Env.PlannedSnapshot()
	if len(planned) == 0 {
		// Пустой объект, а не null
		writeJSON(w, map[string]map[string]string{})
		return
	}
	writeJSON(w, planned)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	w.Header().Set("Content-Type", "application/json")

	// Если data == nil (например, нет агентов), возвращаем [], а не null
	if data == nil {
		w.Write([]byte("[]"))
		return
	}

	json.NewEncoder(w).Encode(data)
}

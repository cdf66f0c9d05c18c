package server

import (
	"encoding/json"
	"net/http"
	_ "net/http/pprof" // Profiling
	"time"

	"github.com/nworb999/night-salon/internal/config"
	"github.com/nworb999/night-salon/internal/engine"
	"github.com/nworb999/night-salon/internal/network"
	"github.com/nworb999/night-salon/internal/version"
	"github.com/nworb999/night-salon/pkg/logger"
)

type Server struct {
	Coordinator *engine.Service
	Hub         *network.Broadcaster
	Cfg         *config.Config
}

func New(coordinator *engine.Service, hub *network.Broadcaster, cfg *config.Config) *Server {
	return &Server{
		Coordinator: coordinator,
		Hub:         hub,
		Cfg:         cfg,
	}
}

// Handler собирает mux со всеми роутами (отдельно от Run ради httptest)
func (s *Server) Handler() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", enableCORS(s.handleWS))
	mux.HandleFunc("/health", enableCORS(s.handleHealth))
	mux.HandleFunc("/version", enableCORS(s.handleVersion))

	agentHandler := NewAgentHandler(s.Coordinator, s.Hub)
	agentHandler.RegisterRoutes(mux)

	debugHandler := NewDebugHandler(s.Coordinator)
	debugHandler.RegisterRoutes(mux)

	return mux
}

// Run запускает HTTP сервер
func (s *Server) Run() error {
	logger.Log.Infof("🌙 Night Salon coordinator running on %s", s.Cfg.Addr)
	return http.ListenAndServe(s.Cfg.Addr, s.Handler())
}

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Разрешаем запросы с фронтенда
		w.Header().Set("Access-Control-Allow-Origin", "*")
		// Разрешаем заголовки, если фронт шлет что-то нестандартное
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		next(w, r)
	}
}

// handleWS обрабатывает подключение по WebSocket
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Error("Upgrade error:", err)
		return
	}

	delayMin := time.Duration(s.Cfg.CommandDelayMinMs) * time.Millisecond
	delayMax := time.Duration(s.Cfg.CommandDelayMaxMs) * time.Millisecond
	client := NewClient(s.Coordinator, s.Hub, conn, delayMin, delayMax)

	// Запускаем пампы
	go client.writePump()
	go client.readPump()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(version.Info())
}

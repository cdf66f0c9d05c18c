package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nworb999/night-salon/internal/agent"
	"github.com/nworb999/night-salon/internal/domain"
	"github.com/nworb999/night-salon/internal/cognitive"
	"github.com/nworb999/night-salon/internal/config"
	"github.com/nworb999/night-salon/internal/engine"
	"github.com/nworb999/night-salon/internal/environment"
	"github.com/nworb999/night-salon/internal/network"
	"github.com/nworb999/night-salon/internal/server"
	"github.com/nworb999/night-salon/internal/storage"
	"github.com/nworb999/night-salon/internal/version"
	"github.com/nworb999/night-salon/pkg/logger"
)

func init() {
	logger.Init()
}

func main() {
	// 1. Парсинг конфигурации
	var (
		addr       string
		configPath string
		seed       int64
		journalDir string
		replayPath string
		bots       int
	)
	flag.StringVar(&addr, "addr", "", "Listen address (overrides config)")
	flag.StringVar(&configPath, "config", "", "Path to YAML config file")
	// По умолчанию 0 - значит сгенерировать случайно
	flag.Int64Var(&seed, "seed", 0, "Movement seed (0 for random)")
	flag.StringVar(&journalDir, "journal", "", "Directory for session journals (overrides config)")
	flag.StringVar(&replayPath, "replay", "", "Path to .nsjr journal file to simulate")
	flag.IntVar(&bots, "bots", -1, "Number of headless bots (overrides config)")
	flag.Parse()

	logger.Log.Info("Starting Night Salon coordinator...")
	logger.Log.Info(version.String())

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			logger.Log.Fatal("Config error: ", err)
		}
		cfg = loaded
	}
	// Флаги сильнее файла
	if addr != "" {
		cfg.Addr = addr
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	if journalDir != "" {
		cfg.JournalDir = journalDir
	}
	if bots >= 0 {
		cfg.Bots = bots
	}

	// РЕЖИМ РЕПЛЕЯ: прогоняем записанную сессию через чистый координатор
	if replayPath != "" {
		if err := runReplay(replayPath); err != nil {
			logger.Log.Fatal("Replay failed: ", err)
		}
		return
	}

	engineCfg := engine.NewConfig()
	if cfg.Seed != 0 {
		engineCfg.Seed = cfg.Seed
		logger.Log.Infof("🎲 Using explicit movement seed: %d", engineCfg.Seed)
	} else {
		logger.Log.Infof("🎲 Using random movement seed: %d", engineCfg.Seed)
	}

	// 2. Инициализация ядра
	env := environment.New()
	memories := cognitive.NewRegistry()
	coordinator := engine.NewService(engineCfg, env, memories)

	if cfg.JournalDir != "" {
		coordinator.Journal = storage.NewJournalService(cfg.JournalDir, engineCfg.Seed)
		logger.Log.Infof("📼 Session journal enabled: %s", cfg.JournalDir)
	}

	hub := network.NewBroadcaster()

	// Headless-боты: встроенные агенты, живущие без фронтенда
	for i := 1; i <= cfg.Bots; i++ {
		agentID := fmt.Sprintf("bot_agent_%d", i)
		bot := agent.NewBot(agentID, coordinator, hub)
		go bot.Run()

		if cmd, created := coordinator.CreateAgent(agentID); created && cmd != nil {
			broadcastCommand(hub, cmd)
		}
	}

	// Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// 3. Запуск сервера
	srv := server.New(coordinator, hub, cfg)

	go func() {
		if err := srv.Run(); err != nil {
			logger.Log.Fatal("Server start error: ", err)
		}
	}()

	<-stop
	logger.Log.Info("Shutting down...")

	if coordinator.Journal != nil {
		if path, err := coordinator.Journal.Save(); err != nil {
			logger.Log.WithError(err).Error("Failed to save session journal")
		} else {
			logger.Log.Infof("Session journal saved: %s", path)
		}
	}

	logger.Log.Info("Done.")
}

// runReplay воспроизводит журнал: тот же сид, те же события, тот же
// порядок - значит, те же команды перемещения
func runReplay(path string) error {
	logger.Log.Info("💿 Mode: Journal Replay")

	session, err := storage.Load(path)
	if err != nil {
		return err
	}
	logger.Log.Infof("Loaded session: seed=%d records=%d", session.Seed, len(session.Records))

	env := environment.New()
	memories := cognitive.NewRegistry()
	coordinator := engine.NewService(engine.Config{Seed: session.Seed}, env, memories)

	commandCount := 0
	for i, rec := range session.Records {
		ack, commands := coordinator.ProcessEvent(rec.Payload)
		if ack.Status != "success" {
			logger.Log.Warnf("Record %d rejected: %s", i, ack.Message)
			continue
		}
		commandCount += len(commands)
	}

	logger.Log.Infof("Replay complete: %d events, %d move commands", len(session.Records), commandCount)
	return nil
}

func broadcastCommand(hub *network.Broadcaster, cmd *domain.MoveCommand) {
	msg, err := json.Marshal(cmd)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to marshal move command")
		return
	}
	hub.Broadcast(msg)
}

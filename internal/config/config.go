package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config - параметры запуска сервера, загружаются из YAML.
// Любое поле можно опустить: дефолты выставляет Default().
type Config struct {
	// Addr - адрес HTTP/WebSocket сервера
	Addr string `yaml:"addr"`

	// Seed - зерно генератора перемещений (0 = случайное при старте)
	Seed int64 `yaml:"seed"`

	// CommandDelayMinMs / CommandDelayMaxMs - окно задержки перед
	// отправкой команды перемещения клиенту, миллисекунды
	CommandDelayMinMs int `yaml:"command_delay_min_ms"`
	CommandDelayMaxMs int `yaml:"command_delay_max_ms"`

	// JournalDir - каталог для журналов сессий ("" = журнал выключен)
	JournalDir string `yaml:"journal_dir"`

	// Bots - количество встроенных headless-агентов
	Bots int `yaml:"bots"`
}

// Default возвращает конфиг со значениями по умолчанию
func Default() *Config {
	return &Config{
		Addr:              ":8000",
		CommandDelayMinMs: 500,
		CommandDelayMaxMs: 1500,
	}
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.CommandDelayMinMs < 0 || c.CommandDelayMaxMs < 0 {
		return fmt.Errorf("command delay must be >= 0")
	}
	if c.CommandDelayMaxMs < c.CommandDelayMinMs {
		return fmt.Errorf("command_delay_max_ms (%d) < command_delay_min_ms (%d)",
			c.CommandDelayMaxMs, c.CommandDelayMinMs)
	}
	if c.Bots < 0 {
		return fmt.Errorf("bots must be >= 0")
	}
	return nil
}

// Load читает конфиг из файла, накладывая его поверх дефолтов
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

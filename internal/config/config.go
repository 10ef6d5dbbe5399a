package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config 服务配置
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	AI        AIConfig        `toml:"ai"`
	LogLevel  string          `toml:"log_level"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Type string `toml:"type"` // sqlite
	DSN  string `toml:"dsn"`  // data source name
}

// SchedulerConfig tunes the simulated execution engine.
type SchedulerConfig struct {
	MinDelayMs int     `toml:"min_delay_ms"` // lower bound of the simulated run delay
	MaxDelayMs int     `toml:"max_delay_ms"` // upper bound (exclusive)
	PassRate   float64 `toml:"pass_rate"`    // probability a simulated run passes
	SweepSpec  string  `toml:"sweep_spec"`   // cron spec for the orphaned-run sweep
}

// AIConfig configures the LLM completion endpoint used for generation.
type AIConfig struct {
	Endpoint  string `toml:"endpoint"`
	Model     string `toml:"model"`
	APIKeyEnv string `toml:"api_key_env"` // name of the env var holding the key
}

// LoadConfig 加载配置文件
func LoadConfig(path string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// 设置默认值
	if config.Server.Host == "" {
		config.Server.Host = "0.0.0.0"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Database.Type == "" {
		config.Database.Type = "sqlite"
	}
	if config.Database.DSN == "" {
		config.Database.DSN = "./data/testtrack.db"
	}
	if config.Scheduler.MinDelayMs == 0 {
		config.Scheduler.MinDelayMs = 2000
	}
	if config.Scheduler.MaxDelayMs == 0 {
		config.Scheduler.MaxDelayMs = 10000
	}
	if config.Scheduler.PassRate == 0 {
		config.Scheduler.PassRate = 0.8
	}
	if config.Scheduler.SweepSpec == "" {
		config.Scheduler.SweepSpec = "@every 1m"
	}
	if config.AI.Endpoint == "" {
		config.AI.Endpoint = "https://api.openai.com/v1/chat/completions"
	}
	if config.AI.Model == "" {
		config.AI.Model = "gpt-4o-mini"
	}
	if config.AI.APIKeyEnv == "" {
		config.AI.APIKeyEnv = "OPENAI_API_KEY"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}

	return &config, nil
}

// GetAddr 获取服务器监听地址
func (c *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

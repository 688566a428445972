package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/labrecruits-gym/internal/domain"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	EnvPrefix  = "LRGYM"
	configName = "config"
	configType = "toml"
	configDir  = ".config/lrgym"
	stateDir   = ".local/state/lrgym"

	IsolationProcess   = "process"
	IsolationInProcess = "inprocess"
)

type Config struct {
	Simulator SimulatorConfig `mapstructure:"simulator"`
	Session   SessionConfig   `mapstructure:"session"`
	Transport TransportConfig `mapstructure:"transport"`
	Harness   HarnessConfig   `mapstructure:"harness"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	History   HistoryConfig   `mapstructure:"history"`
	Profiles  ProfilesConfig  `mapstructure:"profiles"`
}

type SimulatorConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Graphics        bool          `mapstructure:"graphics"`
	ReadyTimeout    time.Duration `mapstructure:"ready_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type SessionConfig struct {
	AgentID        string  `mapstructure:"agent_id"`
	Seed           int     `mapstructure:"seed"`
	AgentSpeed     float64 `mapstructure:"agent_speed"`
	NPCSpeed       float64 `mapstructure:"npc_speed"`
	FireSpread     float64 `mapstructure:"fire_spread"`
	JumpForce      float64 `mapstructure:"jump_force"`
	ViewDistance   float64 `mapstructure:"view_distance"`
	LightIntensity float64 `mapstructure:"light_intensity"`
}

type TransportConfig struct {
	Debug       bool          `mapstructure:"debug"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	IOTimeout    time.Duration `mapstructure:"io_timeout"`
	CloseTimeout time.Duration `mapstructure:"close_timeout"`
}

type HarnessConfig struct {
	Grace     time.Duration `mapstructure:"grace"`
	Isolation string        `mapstructure:"isolation"`
	Strategy  string        `mapstructure:"strategy"`
	StepDelay time.Duration `mapstructure:"step_delay"`
}

type LoggerConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	ServiceName string `mapstructure:"service_name"`
	LogFile     string `mapstructure:"log_file"`
	MaxSize     int    `mapstructure:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAge      int    `mapstructure:"max_age"`
	Compress    bool   `mapstructure:"compress"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type ProfilesConfig struct {
	Path string `mapstructure:"path"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("simulator.host", domain.DefaultHost)
	v.SetDefault("simulator.port", domain.DefaultPort)
	v.SetDefault("simulator.graphics", true)
	v.SetDefault("simulator.ready_timeout", "60s")
	v.SetDefault("simulator.shutdown_timeout", "10s")

	v.SetDefault("session.agent_id", "agent0")
	v.SetDefault("session.seed", domain.DefaultSeed)
	v.SetDefault("session.agent_speed", domain.DefaultAgentSpeed)
	v.SetDefault("session.npc_speed", domain.DefaultNPCSpeed)
	v.SetDefault("session.fire_spread", domain.DefaultFireSpread)
	v.SetDefault("session.jump_force", domain.DefaultJumpForce)
	v.SetDefault("session.view_distance", domain.DefaultViewDistance)
	v.SetDefault("session.light_intensity", domain.DefaultLightIntensity)

	v.SetDefault("transport.debug", false)
	v.SetDefault("transport.dial_timeout", "5s")
	v.SetDefault("transport.io_timeout", "0s")
	v.SetDefault("transport.close_timeout", "5s")

	v.SetDefault("harness.grace", "10s")
	v.SetDefault("harness.isolation", IsolationProcess)
	v.SetDefault("harness.strategy", "survey")
	v.SetDefault("harness.step_delay", "30ms")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "lrgym")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", filepath.Join("~", stateDir, "history.db"))
	v.SetDefault("profiles.path", filepath.Join("~", configDir, "levels.toml"))
}

// Load reads configuration from defaults, an optional config file and
// LRGYM_* environment variables. An explicit file that does not exist is an
// error; a missing default file is not.
func Load(v *viper.Viper, file string) (Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		expanded, err := homedir.Expand(file)
		if err != nil {
			return Config{}, fmt.Errorf("expand config path: %w", err)
		}
		v.SetConfigFile(expanded)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(filepath.Join(home, configDir))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

func (c *Config) expandPaths() error {
	var err error
	if c.History.Path, err = homedir.Expand(c.History.Path); err != nil {
		return fmt.Errorf("expand history path: %w", err)
	}
	if c.Profiles.Path, err = homedir.Expand(c.Profiles.Path); err != nil {
		return fmt.Errorf("expand profiles path: %w", err)
	}
	if c.Logger.LogFile, err = homedir.Expand(c.Logger.LogFile); err != nil {
		return fmt.Errorf("expand log file path: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	switch c.Harness.Isolation {
	case IsolationProcess, IsolationInProcess:
	default:
		return fmt.Errorf("unsupported isolation %q (want %s or %s)", c.Harness.Isolation, IsolationProcess, IsolationInProcess)
	}
	if c.Harness.Grace < 0 {
		return fmt.Errorf("grace period must not be negative")
	}
	if c.Simulator.Port <= 0 || c.Simulator.Port > 65535 {
		return fmt.Errorf("simulator port %d out of range", c.Simulator.Port)
	}
	return nil
}

// SessionDefaults turns the configured session values into a connection config.
func (c Config) SessionDefaults() domain.SessionConfig {
	return domain.SessionConfig{
		Host:           c.Simulator.Host,
		Port:           c.Simulator.Port,
		Seed:           c.Session.Seed,
		AgentSpeed:     c.Session.AgentSpeed,
		NPCSpeed:       c.Session.NPCSpeed,
		FireSpread:     c.Session.FireSpread,
		JumpForce:      c.Session.JumpForce,
		ViewDistance:   c.Session.ViewDistance,
		LightIntensity: c.Session.LightIntensity,
	}
}

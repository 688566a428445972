package domain

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultHost = "localhost"
	DefaultPort = 8053

	DefaultSeed           = 1
	DefaultAgentSpeed     = 0.13
	DefaultNPCSpeed       = 0.11
	DefaultFireSpread     = 0.0
	DefaultJumpForce      = 0.18
	DefaultViewDistance   = 10.0
	DefaultLightIntensity = 0.5

	// MaxStep is the furthest an agent may be sent in a single move command.
	MaxStep = 2.0

	LevelFileExt = ".csv"
)

// Link forces a switch to operate a door regardless of what the level file says.
type Link struct {
	Switch string
	Door   string
}

type SessionConfig struct {
	Host string
	Port int

	Seed           int
	LevelName      string
	LevelPath      string
	AgentSpeed     float64
	NPCSpeed       float64
	FireSpread     float64
	JumpForce      float64
	ViewDistance   float64
	LightIntensity float64

	AddLinks    []Link
	RemoveLinks []Link
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Host:           DefaultHost,
		Port:           DefaultPort,
		Seed:           DefaultSeed,
		AgentSpeed:     DefaultAgentSpeed,
		NPCSpeed:       DefaultNPCSpeed,
		FireSpread:     DefaultFireSpread,
		JumpForce:      DefaultJumpForce,
		ViewDistance:   DefaultViewDistance,
		LightIntensity: DefaultLightIntensity,
	}
}

// WithLevel points the config at <levelsDir>/<levelName>.csv. The file must exist.
func (c SessionConfig) WithLevel(levelName, levelsDir string) (SessionConfig, error) {
	levelName = strings.TrimSpace(levelName)
	if levelName == "" {
		return c, fmt.Errorf("level name is required")
	}

	path, err := filepath.Abs(filepath.Join(levelsDir, levelName+LevelFileExt))
	if err != nil {
		return c, fmt.Errorf("resolve level path: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return c, fmt.Errorf("%w: %s", ErrLevelNotFound, path)
	}

	c.LevelName = levelName
	c.LevelPath = path
	return c, nil
}

func (c SessionConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Clone returns a copy that shares no slices with c.
func (c SessionConfig) Clone() SessionConfig {
	c.AddLinks = append([]Link(nil), c.AddLinks...)
	c.RemoveLinks = append([]Link(nil), c.RemoveLinks...)
	return c
}

func (c SessionConfig) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.ViewDistance <= 0 {
		return fmt.Errorf("view distance must be positive")
	}
	for _, link := range append(append([]Link(nil), c.AddLinks...), c.RemoveLinks...) {
		if strings.TrimSpace(link.Switch) == "" || strings.TrimSpace(link.Door) == "" {
			return fmt.Errorf("link %q -> %q is incomplete", link.Switch, link.Door)
		}
	}

	return nil
}

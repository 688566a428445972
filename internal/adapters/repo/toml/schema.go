package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version int           `toml:"version"`
	Levels  []levelSchema `toml:"levels"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported levels schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type levelSchema struct {
	Level       string       `toml:"level"`
	Seed        *int         `toml:"seed,omitempty"`
	AddLinks    []linkSchema `toml:"add_links,omitempty"`
	RemoveLinks []linkSchema `toml:"remove_links,omitempty"`
	UpdatedAt   string       `toml:"updated_at,omitempty"`
}

type linkSchema struct {
	Switch string `toml:"switch"`
	Door   string `toml:"door"`
}

package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bnema/labrecruits-gym/internal/adapters/atomicfile"
	"github.com/bnema/labrecruits-gym/internal/domain"
	"github.com/bnema/labrecruits-gym/internal/ports"
	"github.com/mitchellh/go-homedir"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	profilesPathKey  = "profiles.path"
	profilesFileMode = 0o600
	profilesDirMode  = 0o700
	defaultPath      = "~/.config/lrgym/levels.toml"
	tempFilePattern  = ".levels-*.toml.tmp"
)

// Repository keeps level profiles in a single TOML file.
type Repository struct {
	path string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.LevelProfileRepository = (*Repository)(nil)

func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}
	cfg.SetDefault(profilesPathKey, defaultPath)

	path := cfg.GetString(profilesPathKey)
	if path == "" {
		return nil, errors.New("profiles path is empty")
	}
	path, err := normalizePath(path)
	if err != nil {
		return nil, err
	}

	return &Repository{path: path, mu: lockForPath(path)}, nil
}

func (r *Repository) Path() string {
	return r.path
}

func (r *Repository) Save(ctx context.Context, profile domain.LevelProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := profile.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	encoded := toSchema(profile)
	updated := false
	for i := range file.Levels {
		if file.Levels[i].Level == encoded.Level {
			file.Levels[i] = encoded
			updated = true
			break
		}
	}
	if !updated {
		file.Levels = append(file.Levels, encoded)
	}
	sort.Slice(file.Levels, func(i, j int) bool { return file.Levels[i].Level < file.Levels[j].Level })

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

func (r *Repository) GetByLevel(ctx context.Context, level string) (domain.LevelProfile, error) {
	if err := ctx.Err(); err != nil {
		return domain.LevelProfile{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.LevelProfile{}, err
	}

	for _, entry := range file.Levels {
		if entry.Level == level {
			return fromSchema(entry), nil
		}
	}

	return domain.LevelProfile{}, fmt.Errorf("%w: %s", domain.ErrProfileNotFound, level)
}

func (r *Repository) List(ctx context.Context) ([]domain.LevelProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	profiles := make([]domain.LevelProfile, 0, len(file.Levels))
	for _, entry := range file.Levels {
		profiles = append(profiles, fromSchema(entry))
	}

	return profiles, nil
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{Version: currentSchemaVersion}, nil
		}
		return fileSchema{}, fmt.Errorf("read levels file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode levels file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode levels file: %w", err)
	}

	if err := atomicfile.Write(r.path, data, atomicfile.Options{
		FileMode:    profilesFileMode,
		DirMode:     profilesDirMode,
		TempPattern: tempFilePattern,
	}); err != nil {
		return fmt.Errorf("write levels file: %w", err)
	}

	return nil
}

func normalizePath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("expand profiles path: %w", err)
	}

	absPath, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("resolve profiles path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func toSchema(profile domain.LevelProfile) levelSchema {
	return levelSchema{
		Level:       profile.Level,
		Seed:        profile.Seed,
		AddLinks:    toLinkSchemas(profile.AddLinks),
		RemoveLinks: toLinkSchemas(profile.RemoveLinks),
		UpdatedAt:   formatTime(profile.UpdatedAt),
	}
}

func fromSchema(entry levelSchema) domain.LevelProfile {
	return domain.LevelProfile{
		Level:       entry.Level,
		Seed:        entry.Seed,
		AddLinks:    fromLinkSchemas(entry.AddLinks),
		RemoveLinks: fromLinkSchemas(entry.RemoveLinks),
		UpdatedAt:   parseTime(entry.UpdatedAt),
	}
}

func toLinkSchemas(links []domain.Link) []linkSchema {
	if len(links) == 0 {
		return nil
	}
	out := make([]linkSchema, 0, len(links))
	for _, link := range links {
		out = append(out, linkSchema{Switch: link.Switch, Door: link.Door})
	}
	return out
}

func fromLinkSchemas(links []linkSchema) []domain.Link {
	if len(links) == 0 {
		return nil
	}
	out := make([]domain.Link, 0, len(links))
	for _, link := range links {
		out = append(out, domain.Link{Switch: link.Switch, Door: link.Door})
	}
	return out
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.Format(time.RFC3339)
}

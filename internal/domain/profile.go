package domain

import (
	"fmt"
	"strings"
	"time"
)

// LevelProfile holds per-level session overrides that are sent with load-world.
type LevelProfile struct {
	Level       string
	Seed        *int
	AddLinks    []Link
	RemoveLinks []Link
	UpdatedAt   time.Time
}

func (p LevelProfile) Validate() error {
	if strings.TrimSpace(p.Level) == "" {
		return fmt.Errorf("level is required")
	}
	for _, link := range append(append([]Link(nil), p.AddLinks...), p.RemoveLinks...) {
		if strings.TrimSpace(link.Switch) == "" || strings.TrimSpace(link.Door) == "" {
			return fmt.Errorf("link %q -> %q is incomplete", link.Switch, link.Door)
		}
	}
	return nil
}

// Apply copies the overrides into cfg.
func (p LevelProfile) Apply(cfg SessionConfig) SessionConfig {
	cfg = cfg.Clone()
	if p.Seed != nil {
		cfg.Seed = *p.Seed
	}
	cfg.AddLinks = append(cfg.AddLinks, p.AddLinks...)
	cfg.RemoveLinks = append(cfg.RemoveLinks, p.RemoveLinks...)
	return cfg
}

// AddLink records switch -> door as forced on. A matching removal is dropped.
func (p *LevelProfile) AddLink(link Link) {
	p.RemoveLinks = withoutLink(p.RemoveLinks, link)
	if !containsLink(p.AddLinks, link) {
		p.AddLinks = append(p.AddLinks, link)
	}
}

// RemoveLink records switch -> door as forced off. A matching addition is dropped.
func (p *LevelProfile) RemoveLink(link Link) {
	p.AddLinks = withoutLink(p.AddLinks, link)
	if !containsLink(p.RemoveLinks, link) {
		p.RemoveLinks = append(p.RemoveLinks, link)
	}
}

func containsLink(links []Link, link Link) bool {
	for _, l := range links {
		if l == link {
			return true
		}
	}
	return false
}

func withoutLink(links []Link, link Link) []Link {
	out := links[:0:0]
	for _, l := range links {
		if l != link {
			out = append(out, l)
		}
	}
	return out
}

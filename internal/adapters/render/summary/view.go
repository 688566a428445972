// Package summary renders run outcomes, reports, run history and level
// profiles for the terminal.
package summary

import (
	"fmt"
	"strings"
	"time"

	"github.com/bnema/labrecruits-gym/internal/domain"
)

// Run is the view of one finished supervised run.
type Run struct {
	RunID      string
	Level      string
	Strategy   string
	Outcome    domain.Outcome
	Elapsed    time.Duration
	Relations  domain.RelationSet
	ReportPath string
	Err        error
}

type RenderOptions struct {
	Now time.Time
}

func RenderRun(run Run) (string, error) {
	return render(func(s styles) string {
		var b strings.Builder
		b.WriteString(s.title.Render(fmt.Sprintf("Run %s", run.RunID)))
		b.WriteString("\n")
		writeField(&b, s, "Level", run.Level)
		if run.Strategy != "" {
			writeField(&b, s, "Strategy", run.Strategy)
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			s.label.Render("Outcome:"),
			s.outcome(run.Outcome),
			s.header.Render(fmt.Sprintf("(exit %d)", run.Outcome.ExitCode())),
		))
		writeField(&b, s, "Elapsed", formatElapsed(run.Elapsed))
		if run.ReportPath != "" {
			writeField(&b, s, "Report", run.ReportPath)
		}
		if run.Err != nil {
			b.WriteString(s.errorText.Render("Error: " + run.Err.Error()))
			b.WriteString("\n")
		}
		b.WriteString(s.section.Render(relationsBlock(s, run.Relations.Pairs())))
		return b.String()
	})
}

// RenderReport shows a report file read back from disk.
func RenderReport(path string, elapsed time.Duration, relations domain.RelationSet) (string, error) {
	return render(func(s styles) string {
		var b strings.Builder
		b.WriteString(s.title.Render("Report " + path))
		b.WriteString("\n")
		writeField(&b, s, "Elapsed", formatElapsed(elapsed))
		b.WriteString(s.section.Render(relationsBlock(s, relations.Pairs())))
		return b.String()
	})
}

func RenderHistory(runs []domain.RunRecord, opts RenderOptions) (string, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	return render(func(s styles) string {
		if len(runs) == 0 {
			return s.empty.Render("No runs recorded yet.")
		}

		var b strings.Builder
		for i, run := range runs {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(fmt.Sprintf("%s %s %s\n",
				s.title.Render(run.ID),
				s.outcome(run.Outcome),
				s.header.Render(relativeTime(now, run.StartedAt)),
			))
			strategy := run.Strategy
			if strategy == "" {
				strategy = "-"
			}
			b.WriteString(s.detail.Render(fmt.Sprintf("  level %s, strategy %s, %d relations in %s",
				run.Level, strategy, run.Relations, formatElapsed(run.Elapsed))))
			b.WriteString("\n")
			if run.Error != "" {
				b.WriteString(s.errorText.Render("  " + run.Error))
				b.WriteString("\n")
			}
		}
		return b.String()
	})
}

func RenderProfiles(profiles []domain.LevelProfile) (string, error) {
	return render(func(s styles) string {
		if len(profiles) == 0 {
			return s.empty.Render("No level profiles configured.")
		}

		var b strings.Builder
		for i, profile := range profiles {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(s.title.Render(profile.Level))
			if profile.Seed != nil {
				b.WriteString(s.header.Render(fmt.Sprintf(" seed %d", *profile.Seed)))
			}
			b.WriteString("\n")
			for _, link := range profile.AddLinks {
				b.WriteString(fmt.Sprintf("  + %s %s %s\n", s.relation.Render(link.Switch), s.arrow.Render("->"), s.relation.Render(link.Door)))
			}
			for _, link := range profile.RemoveLinks {
				b.WriteString(fmt.Sprintf("  - %s %s %s\n", s.relation.Render(link.Switch), s.arrow.Render("-/>"), s.relation.Render(link.Door)))
			}
			if len(profile.AddLinks) == 0 && len(profile.RemoveLinks) == 0 {
				b.WriteString(s.empty.Render("  no link overrides"))
				b.WriteString("\n")
			}
		}
		return b.String()
	})
}

func relationsBlock(s styles, pairs []domain.RelationPair) string {
	if len(pairs) == 0 {
		return s.empty.Render("No relations found.")
	}

	var b strings.Builder
	b.WriteString(s.label.Render(fmt.Sprintf("Relations (%d):", len(pairs))))
	for _, pair := range pairs {
		b.WriteString(fmt.Sprintf("\n  %s %s %s", s.relation.Render(pair.Source), s.arrow.Render("->"), s.relation.Render(pair.Target)))
	}
	return b.String()
}

func writeField(b *strings.Builder, s styles, label, value string) {
	b.WriteString(s.label.Render(label+":") + " " + s.detail.Render(value) + "\n")
}

func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(10 * time.Millisecond).String()
}

func relativeTime(now, then time.Time) string {
	if then.IsZero() {
		return "unknown"
	}
	d := now.Sub(then)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour") + " ago"
	default:
		return plural(int(d/(24*time.Hour)), "day") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

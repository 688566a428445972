package summary

import (
	"github.com/bnema/labrecruits-gym/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	title     lipgloss.Style
	header    lipgloss.Style
	label     lipgloss.Style
	detail    lipgloss.Style
	relation  lipgloss.Style
	arrow     lipgloss.Style
	errorText lipgloss.Style
	section   lipgloss.Style
	empty     lipgloss.Style
	outcomes  map[domain.Outcome]lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true),
		header:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		label:     lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		detail:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		relation:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		arrow:     lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		errorText: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		section:   lipgloss.NewStyle().MarginTop(1),
		empty:     lipgloss.NewStyle().Faint(true),
		outcomes: map[domain.Outcome]lipgloss.Style{
			domain.OutcomeCompleted:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
			domain.OutcomeCancelled:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
			domain.OutcomeTerminated: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
			domain.OutcomeFailed:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		},
	}
}

func (s styles) outcome(o domain.Outcome) string {
	style, ok := s.outcomes[o]
	if !ok {
		style = s.detail
	}
	return style.Render(string(o))
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bnema/labrecruits-gym/internal/ports"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type simulatorReadyMsg struct {
	err error
}

// bootModel spins until the simulator answers on addr, showing how long the
// boot has taken so far.
type bootModel struct {
	spinner spinner.Model
	addr    string
	started time.Time
	elapsed time.Duration
	wait    tea.Cmd
	err     error
	ready   bool
}

var bootStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))

func newBootModel(addr string, started time.Time, wait tea.Cmd) bootModel {
	return bootModel{
		spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(bootStyle)),
		addr:    addr,
		started: started,
		wait:    wait,
	}
}

func (m bootModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.wait)
}

func (m bootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !msg.Time.IsZero() {
			m.elapsed = msg.Time.Sub(m.started).Truncate(time.Second)
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case simulatorReadyMsg:
		m.ready = true
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m bootModel) View() string {
	if m.ready {
		return ""
	}
	return fmt.Sprintf("%s Waiting for simulator on %s (%s)", m.spinner.View(), m.addr, m.elapsed)
}

// spinningSimulator shows a spinner on terminals while the game boots.
type spinningSimulator struct {
	ports.Simulator
	addr   string
	output io.Writer
}

func withWaitSpinner(sim ports.Simulator, addr string, output io.Writer) ports.Simulator {
	if !isTerminal(output) {
		return sim
	}
	return spinningSimulator{Simulator: sim, addr: addr, output: output}
}

func (s spinningSimulator) WaitReady(ctx context.Context) error {
	wait := func() tea.Msg {
		return simulatorReadyMsg{err: s.Simulator.WaitReady(ctx)}
	}

	final, err := tea.NewProgram(
		newBootModel(s.addr, time.Now(), wait),
		tea.WithInput(nil),
		tea.WithOutput(s.output),
		tea.WithContext(ctx),
	).Run()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("simulator spinner: %w", err)
	}

	model, ok := final.(bootModel)
	if !ok {
		return fmt.Errorf("unexpected spinner model %T", final)
	}
	return model.err
}

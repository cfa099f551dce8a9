package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/sbhasm/pkg/core/anneal"
	"github.com/matzehuels/sbhasm/pkg/core/fragment"
	"github.com/matzehuels/sbhasm/pkg/pipeline"
)

// Live view styles
var (
	barFullStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	barEmptyStyle = lipgloss.NewStyle().Foreground(colorDim)
	tuiLabelStyle = lipgloss.NewStyle().Foreground(colorGray).Width(10)
)

const barWidth = 40

// =============================================================================
// AnnealModel - Live annealing progress
// =============================================================================

// progressMsg carries a periodic annealing summary into the model.
type progressMsg anneal.Progress

// doneMsg is sent once the pipeline returns.
type doneMsg struct {
	res *pipeline.Result
	err error
}

// AnnealModel is the bubbletea model for the --tui live view.
type AnnealModel struct {
	Source    string
	Fragments int
	Progress  anneal.Progress
	Result    *pipeline.Result
	Err       error
	Stopping  bool

	started time.Time
	cancel  context.CancelFunc
}

// NewAnnealModel creates a model; cancel stops the run when the user quits.
func NewAnnealModel(source string, fragments int, cancel context.CancelFunc) AnnealModel {
	return AnnealModel{
		Source:    source,
		Fragments: fragments,
		started:   time.Now(),
		cancel:    cancel,
	}
}

func (m AnnealModel) Init() tea.Cmd {
	return nil
}

func (m AnnealModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			// Keep running until the pipeline hands back its best state.
			if !m.Stopping {
				m.Stopping = true
				m.cancel()
			}
		}
	case progressMsg:
		m.Progress = anneal.Progress(msg)
	case doneMsg:
		m.Result, m.Err = msg.res, msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m AnnealModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Assembling " + m.Source))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("%d fragments  q stop", m.Fragments)))
	b.WriteString("\n\n")

	p := m.Progress
	b.WriteString(progressBar(p.Iteration, p.Iterations))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d/%d", p.Iteration, p.Iterations)))
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(tuiLabelStyle.Render(label) + " " + StyleValue.Render(value) + "\n")
	}
	row("Best", StyleNumber.Render(fmt.Sprint(p.BestScore)))
	row("Current", fmt.Sprint(p.CurrentScore))
	row("Temp", fmt.Sprintf("%.5f", p.Temperature))
	row("Accepted", fmt.Sprint(p.Accepted))
	row("Rejected", fmt.Sprint(p.Rejected))
	row("Elapsed", time.Since(m.started).Round(100*time.Millisecond).String())

	if m.Stopping && m.Result == nil {
		b.WriteString("\n" + StyleWarning.Render("Stopping..."))
	}
	return b.String()
}

// progressBar renders done/total as a fixed-width bar.
func progressBar(done, total int) string {
	filled := 0
	if total > 0 {
		filled = min(barWidth, done*barWidth/total)
	}
	return barFullStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", barWidth-filled))
}

// =============================================================================
// Runner glue
// =============================================================================

// runWithTUI runs the pipeline while a bubbletea program shows its progress.
// Quitting the view cancels the search and returns the best result so far.
// Log output is discarded while the view owns the terminal.
func (c *CLI) runWithTUI(ctx context.Context, source string, runner *pipeline.Runner, set fragment.Set, opts pipeline.Options) (*pipeline.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts.Logger = newLogger(io.Discard, LogInfo)
	p := tea.NewProgram(NewAnnealModel(source, set.Len(), cancel), tea.WithOutput(os.Stderr))
	opts.Progress = func(pr anneal.Progress) { p.Send(progressMsg(pr)) }

	done := make(chan doneMsg, 1)
	go func() {
		res, err := runner.Execute(ctx, set, opts)
		done <- doneMsg{res, err}
		p.Send(doneMsg{res, err})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		d := <-done
		return d.res, fmt.Errorf("live view: %w", err)
	}
	d := <-done
	return d.res, d.err
}

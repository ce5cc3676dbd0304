package cmd

import (
	"context"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/abuild/build"
)

// eventMsg delivers a build event to the progress view.
type eventMsg build.Event

// doneMsg is sent when the build returns.
type doneMsg struct{ err error }

// maxRunning bounds the running targets listed in the progress view.
const maxRunning = 4

// progress is the Bubble Tea model of the build progress view.
type progress struct {
	spinner spinner.Model
	running []string
	count   tally
	cancel  context.CancelFunc
	done    bool
}

func newProgress(cancel context.CancelFunc) progress {
	return progress{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(spinnerStyle),
		),
		cancel: cancel,
	}
}

func (m progress) Init() tea.Cmd { return m.spinner.Tick }

func (m progress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancel()
		}

		return m, nil

	case eventMsg:
		e := build.Event(msg)
		m.count.add(e)

		if e.Kind == build.EventStarted {
			m.running = append(m.running, e.Target)

			return m, nil
		}

		m.running = slices.DeleteFunc(m.running, func(s string) bool { return s == e.Target })

		if line, ok := eventLine(e); ok {
			return m, tea.Println(line)
		}

		return m, nil

	case doneMsg:
		m.done = true

		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m progress) View() string {
	if m.done {
		return m.count.String() + "\n"
	}

	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(m.count.String())

	shown := m.running
	if len(shown) > maxRunning {
		shown = shown[:maxRunning]
	}

	for _, name := range shown {
		b.WriteString("\n  ")
		b.WriteString(hintStyle.Render(name))
	}

	if len(m.running) > len(shown) {
		b.WriteString(hintStyle.Render("\n  …"))
	}

	return b.String() + "\n"
}

// runProgress runs build under an interactive progress view written to w.
// Interrupting the view cancels the build and waits for it to return.
func runProgress(
	ctx context.Context,
	w io.Writer,
	run func(context.Context, build.Observer) error,
) error {
	bctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newProgress(cancel),
		tea.WithContext(ctx),
		tea.WithOutput(w))

	done := make(chan error, 1)

	go func() {
		err := run(bctx, build.ObserverFunc(func(e build.Event) { p.Send(eventMsg(e)) }))
		done <- err

		p.Send(doneMsg{err: err})
	}()

	if _, err := p.Run(); err != nil {
		cancel()

		if berr := <-done; berr != nil {
			return berr
		}

		return err
	}

	return <-done
}

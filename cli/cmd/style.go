package cmd

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/abuild/build"
)

// Styles.
var (
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	skipStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	targetStyle  = lipgloss.NewStyle().Bold(true)
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

// tally counts target outcomes.
type tally struct {
	built, upToDate, failed, skipped int
}

func (t *tally) add(e build.Event) {
	switch e.Kind {
	case build.EventFinished:
		t.built++
	case build.EventUpToDate:
		t.upToDate++
	case build.EventFailed:
		t.failed++
	case build.EventSkipped:
		t.skipped++
	}
}

func (t tally) String() string {
	parts := []string{
		okStyle.Render(fmt.Sprintf("%d built", t.built)),
		hintStyle.Render(fmt.Sprintf("%d up to date", t.upToDate)),
	}

	if t.skipped > 0 {
		parts = append(parts, skipStyle.Render(fmt.Sprintf("%d skipped", t.skipped)))
	}

	if t.failed > 0 {
		parts = append(parts, failStyle.Render(fmt.Sprintf("%d failed", t.failed)))
	}

	return strings.Join(parts, hintStyle.Render(", "))
}

// eventLine renders a finished, failed or skipped event. It returns false
// for events that are not reported individually.
func eventLine(e build.Event) (string, bool) {
	name := targetStyle.Render(e.Target)

	switch e.Kind {
	case build.EventFinished:
		return okStyle.Render("✓ ") + name + hintStyle.Render(" "+e.Elapsed.Round(time.Millisecond).String()), true
	case build.EventFailed:
		return failStyle.Render("✗ ") + name + "\n" + indent(fmt.Sprint(e.Err)), true
	case build.EventSkipped:
		return skipStyle.Render("- ") + name + hintStyle.Render(" skipped"), true
	default:
		return "", false
	}
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "    " + l
	}

	return hintStyle.Render(strings.Join(lines, "\n"))
}

// summary prints events as they arrive and a tally at the end.
type summary struct {
	mu    sync.Mutex
	w     io.Writer
	count tally
}

func newSummary(w io.Writer) *summary { return &summary{w: w} }

// Observe implements [build.Observer].
func (s *summary) Observe(e build.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.count.add(e)

	if line, ok := eventLine(e); ok {
		fmt.Fprintln(s.w, line)
	}
}

func (s *summary) print() {
	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Fprintln(s.w, s.count.String())
}

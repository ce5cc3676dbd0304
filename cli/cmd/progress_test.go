package cmd

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/abuild/build"
)

func update(t *testing.T, m progress, msg tea.Msg) (progress, tea.Cmd) {
	t.Helper()

	next, cmd := m.Update(msg)

	p, ok := next.(progress)
	require.True(t, ok)

	return p, cmd
}

func TestProgress_Events(t *testing.T) {
	m := newProgress(func() {})

	m, cmd := update(t, m, eventMsg{Kind: build.EventStarted, Target: "a"})
	assert.Nil(t, cmd)
	m, _ = update(t, m, eventMsg{Kind: build.EventStarted, Target: "b"})
	assert.Equal(t, []string{"a", "b"}, m.running)
	assert.Contains(t, m.View(), "b")

	m, cmd = update(t, m, eventMsg{Kind: build.EventFinished, Target: "a"})
	assert.NotNil(t, cmd)
	assert.Equal(t, []string{"b"}, m.running)

	m, _ = update(t, m, eventMsg{Kind: build.EventFailed, Target: "b", Err: errors.New("boom")})
	assert.Empty(t, m.running)
	assert.Equal(t, tally{built: 1, failed: 1}, m.count)

	m, _ = update(t, m, eventMsg{Kind: build.EventUpToDate, Target: "c"})
	assert.Equal(t, 1, m.count.upToDate)
}

func TestProgress_Done(t *testing.T) {
	m := newProgress(func() {})

	m, cmd := update(t, m, doneMsg{})
	require.NotNil(t, cmd)
	assert.True(t, m.done)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Contains(t, m.View(), "0 built")
}

func TestProgress_Interrupt(t *testing.T) {
	canceled := false
	m := newProgress(func() { canceled = true })

	_, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, canceled)
}

func TestEventLine(t *testing.T) {
	line, ok := eventLine(build.Event{Kind: build.EventFailed, Target: "t", Err: errors.New("line1\nline2")})
	require.True(t, ok)
	assert.Contains(t, line, "    line1")
	assert.Contains(t, line, "    line2")

	_, ok = eventLine(build.Event{Kind: build.EventStarted, Target: "t"})
	assert.False(t, ok)
}

func TestTally(t *testing.T) {
	var c tally

	c.add(build.Event{Kind: build.EventFinished})
	c.add(build.Event{Kind: build.EventSkipped})

	assert.Contains(t, c.String(), "1 built")
	assert.Contains(t, c.String(), "1 skipped")
	assert.NotContains(t, c.String(), "failed")
}

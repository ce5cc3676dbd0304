package build

import "time"

// EventKind classifies an [Event].
type EventKind int

const (
	// EventUpToDate reports a target found built without running.
	EventUpToDate EventKind = iota
	EventStarted
	EventFinished
	EventFailed
	// EventSkipped reports a target not run because a dependency failed or
	// the build was aborted.
	EventSkipped
)

func (k EventKind) String() string {
	switch k {
	case EventUpToDate:
		return "up-to-date"
	case EventStarted:
		return "started"
	case EventFinished:
		return "finished"
	case EventFailed:
		return "failed"
	case EventSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Event describes progress of one target.
type Event struct {
	Kind    EventKind
	Target  string
	Err     error
	Elapsed time.Duration
}

// Observer receives build events. Observe may be called concurrently.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to [Observer].
type ObserverFunc func(Event)

// Observe calls fn(e).
func (fn ObserverFunc) Observe(e Event) { fn(e) }

package profile

// Stopper stops a running profiler.
type Stopper interface{ Stop() }

// Profiler describes a profiling session.
type Profiler struct {
	// Mode is one of [Modes]. An empty Mode disables profiling.
	Mode string
	// Path is the output directory for profile data.
	Path string
	// Quiet suppresses the profiler's own start/stop messages.
	Quiet bool
}

// Start initializes the profiler and returns a [Stopper].
//
// If the pprof build tag or p.Mode are unset, Start returns a no-op.
// Both Start and Stop are always safely callable.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p.Mode, p.Path, p.Quiet)
}

type ignore struct{}

func (ignore) Stop() {}

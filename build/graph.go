package build

import "log/slog"

// Graph is the dependency graph reachable from one target.
type Graph struct {
	nodes []Target
	edges map[Target][]Target
}

// Discover walks the transitive dependencies of root. Producers of
// generated files are indexed in rc as they are found.
func Discover(rc *Context, root Target) (*Graph, error) {
	g := &Graph{edges: make(map[Target][]Target)}

	var visit func(t Target) error
	visit = func(t Target) error {
		if _, seen := g.edges[t]; seen {
			return nil
		}

		if gen, ok := t.(Generator); ok {
			files, err := gen.GeneratedFiles(rc)
			if err != nil {
				return err
			}

			for _, f := range files {
				rc.registerGenerated(f, t)
			}
		}

		deps, err := t.Dependencies(rc)
		if err != nil {
			return err
		}

		g.nodes = append(g.nodes, t)
		g.edges[t] = deps

		for _, dep := range deps {
			if err := visit(dep); err != nil {
				return err
			}
		}

		return nil
	}

	if err := visit(root); err != nil {
		return nil, err
	}

	return g, nil
}

// Targets returns the discovered targets in visit order.
func (g *Graph) Targets() []Target { return g.nodes }

// Dependencies returns the direct dependencies of t.
func (g *Graph) Dependencies(t Target) []Target { return g.edges[t] }

// Invalidate drops the cached results of every target.
func (g *Graph) Invalidate() {
	for _, t := range g.nodes {
		t.Invalidate()
	}
}

// Sort returns the targets ordered so that every target follows its
// dependencies. It fails with [ErrCycleDetected] naming a target on a
// cycle.
func (g *Graph) Sort() ([]Target, error) {
	// permanent: fully visited and not part of a cycle.
	// temporary: on the current recursion stack.
	permanent := make(map[Target]bool, len(g.nodes))
	temporary := make(map[Target]bool)
	order := make([]Target, 0, len(g.nodes))

	var visit func(t Target) error
	visit = func(t Target) error {
		if permanent[t] {
			return nil
		}

		if temporary[t] {
			return ErrCycleDetected.With(slog.String("target", t.String()))
		}

		temporary[t] = true

		for _, dep := range g.edges[t] {
			if err := visit(dep); err != nil {
				return err
			}
		}

		delete(temporary, t)
		permanent[t] = true
		order = append(order, t)

		return nil
	}

	for _, t := range g.nodes {
		if err := visit(t); err != nil {
			return nil, err
		}
	}

	return order, nil
}

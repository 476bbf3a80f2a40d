package relocate

import (
	"github.com/shinji-kodama/buildlayout/internal/model"
)

// Graph is the evaluation-order graph of a build tree's subprojects.
//
// An edge subproject → dependency means the subproject's configuration may
// not begin until the dependency's configuration has completed. Cycles are
// rejected when the edge closing them is declared.
//
// Graph is not safe for concurrent use; it is built and consumed by a single
// goroutine during the configuration phase.
type Graph struct {
	// names holds subprojects in declaration order. It is used to break
	// ties in Order so that the result is deterministic.
	names []string

	// index maps a name to its position in names.
	index map[string]int

	// paths maps a name to its Gradle project path, if one was given.
	paths map[string]string

	// deps maps a subproject to the subprojects it waits for, in
	// declaration order, without duplicates.
	deps map[string][]string
}

// NewGraph creates an empty evaluation-order graph.
func NewGraph() *Graph {
	return &Graph{
		index: make(map[string]int),
		paths: make(map[string]string),
		deps:  make(map[string][]string),
	}
}

// AddSubproject registers a subproject. Empty, malformed, or duplicate
// names are rejected with *model.InvalidNameError.
func (g *Graph) AddSubproject(name string) error {
	if err := model.ValidateName(name); err != nil {
		return err
	}
	if _, exists := g.index[name]; exists {
		return &model.InvalidNameError{Name: name, Reason: "collides with a sibling subproject of the same name"}
	}
	g.index[name] = len(g.names)
	g.names = append(g.names, name)
	return nil
}

// AddSubprojectAt registers a subproject from its Gradle project path
// (":app", ":feature:login"). The subproject is named after the last path
// segment, so ":a:core" and ":b:core" collide. It returns the derived name.
func (g *Graph) AddSubprojectAt(path string) (string, error) {
	name := model.ProjectNameFromPath(path)
	return name, g.AddSubprojectNamed(name, path)
}

// AddSubprojectNamed registers a subproject under an explicit name and
// records its Gradle project path. An empty path registers the name only.
func (g *Graph) AddSubprojectNamed(name, path string) error {
	if err := g.AddSubproject(name); err != nil {
		return err
	}
	if path != "" {
		g.paths[name] = path
	}
	return nil
}

// Has reports whether a subproject is registered.
func (g *Graph) Has(name string) bool {
	_, ok := g.index[name]
	return ok
}

// Subprojects returns the registered subproject names in declaration order.
func (g *Graph) Subprojects() []string {
	out := make([]string, len(g.names))
	copy(out, g.names)
	return out
}

// Path returns the Gradle project path registered for name, if any.
func (g *Graph) Path(name string) string {
	return g.paths[name]
}

// Dependencies returns the subprojects name waits for.
func (g *Graph) Dependencies(name string) []string {
	deps := g.deps[name]
	out := make([]string, len(deps))
	copy(out, deps)
	return out
}

// EnforceEvaluationOrder declares that subproject's configuration may not
// begin until dependency's configuration has completed.
//
// Both subprojects must already be registered, otherwise a
// *model.ConfigurationOrderError is returned. A declaration that would
// close a cycle (including a subproject depending on itself) is rejected
// with *model.CyclicEvaluationOrderError and leaves the graph unchanged.
// Declaring the same edge twice is a no-op.
func (g *Graph) EnforceEvaluationOrder(subproject, dependency string) error {
	if !g.Has(subproject) {
		return &model.ConfigurationOrderError{
			Project:      subproject,
			Prerequisite: subproject,
			Reason:       "evaluation order declared for a subproject that is not registered",
		}
	}
	if !g.Has(dependency) {
		return &model.ConfigurationOrderError{
			Project:      subproject,
			Prerequisite: dependency,
			Reason:       "dependency subproject is not registered",
		}
	}
	if subproject == dependency {
		return &model.CyclicEvaluationOrderError{Cycle: []string{subproject, subproject}}
	}
	for _, d := range g.deps[subproject] {
		if d == dependency {
			return nil
		}
	}

	// The new edge closes a cycle iff subproject is already reachable
	// from dependency.
	if path := g.pathBetween(dependency, subproject); path != nil {
		cycle := append([]string{subproject}, path...)
		return &model.CyclicEvaluationOrderError{Cycle: cycle}
	}

	g.deps[subproject] = append(g.deps[subproject], dependency)
	return nil
}

// AnchorTo makes every subproject other than anchor wait for anchor's
// configuration. An empty anchor disables the rule.
func (g *Graph) AnchorTo(anchor string) error {
	if anchor == "" {
		return nil
	}
	if !g.Has(anchor) {
		return &model.ConfigurationOrderError{
			Project:      anchor,
			Prerequisite: anchor,
			Reason:       "evaluation anchor is not a registered subproject",
		}
	}
	for _, name := range g.names {
		if name == anchor {
			continue
		}
		if err := g.EnforceEvaluationOrder(name, anchor); err != nil {
			return err
		}
	}
	return nil
}

// Order returns the subprojects in an order where every subproject comes
// after all of its dependencies. Among subprojects that are ready at the
// same time, declaration order wins.
func (g *Graph) Order() ([]string, error) {
	remaining := make(map[string]int, len(g.names))
	dependents := make(map[string][]string, len(g.names))
	for _, name := range g.names {
		remaining[name] = len(g.deps[name])
		for _, dep := range g.deps[name] {
			dependents[dep] = append(dependents[dep], name)
		}
	}

	order := make([]string, 0, len(g.names))
	done := make(map[string]bool, len(g.names))
	for len(order) < len(g.names) {
		next := ""
		for _, name := range g.names {
			if !done[name] && remaining[name] == 0 {
				next = name
				break
			}
		}
		if next == "" {
			return nil, &model.CyclicEvaluationOrderError{Cycle: g.findCycle(done)}
		}

		done[next] = true
		order = append(order, next)
		for _, dependent := range dependents[next] {
			remaining[dependent]--
		}
	}
	return order, nil
}

// pathBetween returns a dependency path from → ... → to following
// declared edges, or nil if to is unreachable from from.
func (g *Graph) pathBetween(from, to string) []string {
	visited := make(map[string]bool)
	var walk func(name string) []string
	walk = func(name string) []string {
		if name == to {
			return []string{name}
		}
		if visited[name] {
			return nil
		}
		visited[name] = true
		for _, dep := range g.deps[name] {
			if rest := walk(dep); rest != nil {
				return append([]string{name}, rest...)
			}
		}
		return nil
	}
	return walk(from)
}

// findCycle locates one cycle among the nodes not yet emitted by Order,
// using the classic three-colour depth-first search.
func (g *Graph) findCycle(skip map[string]bool) []string {
	const (
		white = iota
		grey
		black
	)
	colour := make(map[string]int)
	var stack []string

	var visit func(name string) []string
	visit = func(name string) []string {
		colour[name] = grey
		stack = append(stack, name)
		for _, dep := range g.deps[name] {
			if skip[dep] {
				continue
			}
			switch colour[dep] {
			case grey:
				for i, s := range stack {
					if s == dep {
						cycle := append([]string{}, stack[i:]...)
						return append(cycle, dep)
					}
				}
			case white:
				if cycle := visit(dep); cycle != nil {
					return cycle
				}
			}
		}
		stack = stack[:len(stack)-1]
		colour[name] = black
		return nil
	}

	for _, name := range g.names {
		if skip[name] || colour[name] != white {
			continue
		}
		if cycle := visit(name); cycle != nil {
			return cycle
		}
	}
	return nil
}

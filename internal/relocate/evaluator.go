package relocate

import (
	"github.com/shinji-kodama/buildlayout/internal/model"
)

// Evaluator tracks which subprojects of a Graph have completed their
// configuration phase during one invocation.
type Evaluator struct {
	graph    *Graph
	state    map[string]model.EvaluationState
	resolved []string
}

// NewEvaluator returns an Evaluator with every subproject of g pending.
func (g *Graph) NewEvaluator() *Evaluator {
	state := make(map[string]model.EvaluationState, len(g.names))
	for _, name := range g.names {
		state[name] = model.StatePending
	}
	return &Evaluator{graph: g, state: state}
}

// Resolve marks name's configuration as complete.
//
// It fails with *model.ConfigurationOrderError when name is not registered,
// has already been resolved, or when any of its dependencies is still
// pending. A failed Resolve leaves the evaluator unchanged.
func (e *Evaluator) Resolve(name string) error {
	current, ok := e.state[name]
	if !ok {
		return &model.ConfigurationOrderError{
			Project:      name,
			Prerequisite: name,
			Reason:       "configuration requested for a subproject that is not registered",
		}
	}
	if current == model.StateConfigured {
		return &model.ConfigurationOrderError{
			Project:      name,
			Prerequisite: name,
			Reason:       "configuration already resolved",
		}
	}

	for _, dep := range e.graph.deps[name] {
		if e.state[dep] != model.StateConfigured {
			return &model.ConfigurationOrderError{
				Project:      name,
				Prerequisite: dep,
				Reason:       "dependency has not been configured yet",
			}
		}
	}

	e.state[name] = model.StateConfigured
	e.resolved = append(e.resolved, name)
	return nil
}

// State returns the evaluation state of name. Unknown names report "".
func (e *Evaluator) State(name string) model.EvaluationState {
	return e.state[name]
}

// Resolved returns the subprojects resolved so far, in resolution order.
func (e *Evaluator) Resolved() []string {
	out := make([]string, len(e.resolved))
	copy(out, e.resolved)
	return out
}

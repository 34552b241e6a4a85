// Package actiondocs merges canonical documentation (descriptions,
// similes, parameters, examples) into actions and evaluators that did not
// supply their own, grounded on
// original_source/packages/python/elizaos/action_docs.py's
// with_canonical_action_docs / with_canonical_evaluator_docs. The merge
// is conservative: it never overwrites a field the plugin already set.
package actiondocs

import "github.com/ariaos/aria/pkg/types"

// ActionDoc is one canonical documentation entry for an action name.
type ActionDoc struct {
	Description string
	Similes     []string
	Parameters  []types.ActionParameter
	Examples    []types.ActionExample
}

// EvaluatorDoc is one canonical documentation entry for an evaluator name.
type EvaluatorDoc struct {
	Description string
	Similes     []string
	Examples    []types.ActionExample
}

// Catalog holds the canonical doc set a plugin loader consults during
// registration. It is populated by embedding plugin-authored doc tables;
// the core ships an empty default since concrete plugins are out of
// scope.
type Catalog struct {
	actions    map[string]ActionDoc
	evaluators map[string]EvaluatorDoc
}

// NewCatalog builds a Catalog from explicit doc tables.
func NewCatalog(actions map[string]ActionDoc, evaluators map[string]EvaluatorDoc) *Catalog {
	if actions == nil {
		actions = map[string]ActionDoc{}
	}
	if evaluators == nil {
		evaluators = map[string]EvaluatorDoc{}
	}
	return &Catalog{actions: actions, evaluators: evaluators}
}

// WithCanonicalActionDocs fills description/similes/parameters on a from
// the catalog entry named a.Name, but only for fields currently empty on
// a. Fields the plugin already populated are left untouched.
func (c *Catalog) WithCanonicalActionDocs(a types.Action) types.Action {
	doc, ok := c.actions[a.Name]
	if !ok {
		return a
	}
	if a.Description == "" {
		a.Description = doc.Description
	}
	if len(a.Similes) == 0 {
		a.Similes = doc.Similes
	}
	if len(a.Parameters) == 0 {
		a.Parameters = doc.Parameters
	}
	if len(a.Examples) == 0 {
		a.Examples = doc.Examples
	}
	return a
}

// WithCanonicalEvaluatorDocs fills description/similes/examples on e from
// the catalog entry named e.Name, fields-empty-only.
func (c *Catalog) WithCanonicalEvaluatorDocs(e types.Evaluator) types.Evaluator {
	doc, ok := c.evaluators[e.Name]
	if !ok {
		return e
	}
	if e.Description == "" {
		e.Description = doc.Description
	}
	if len(e.Similes) == 0 {
		e.Similes = doc.Similes
	}
	if len(e.Examples) == 0 {
		e.Examples = doc.Examples
	}
	return e
}

// ExampleCalls returns the canonical example calls for an action name
// (get_canonical_action_example_calls in original_source). The runtime's
// planning prompt does not call it.
func (c *Catalog) ExampleCalls(actionName string) []types.ActionExample {
	return c.actions[actionName].Examples
}

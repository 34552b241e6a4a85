// Package actionexec implements the action planner & executor (C8): plan
// parsing, per-step parameter validation, and dependency-ordered
// sequential execution with retries.
package actionexec

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Step is one action call within a Plan: the action name, its raw
// parameter bag (validated against the action's ActionParameter schema at
// execution time), and the IDs of steps it depends on.
type Step struct {
	ID           string
	Name         string
	Params       map[string]any
	Dependencies []string
}

// Plan is the ordered list of action calls the executor runs in order.
type Plan []Step

var actionsTagRe = regexp.MustCompile(`(?s)<actions>\s*(\[.*?\])\s*</actions>`)
var paramsTagRe = regexp.MustCompile(`(?s)<params>\s*(\{.*?\})\s*</params>`)

// ParsePlan extracts a Plan from a planner's raw text response, which is
// expected to contain a "<actions>[...]</actions>" block naming the
// chosen actions in order and an optional "<params>{...}</params>" block
// keying per-action parameter bags by name.
//
// encoding/json plus a small regexp scanner is used rather than a full
// XML parser: the planner's output is not well-formed XML (it is a loose
// tag-delimited JSON embedding), and no dependency in the example pack
// offers a scanner for exactly this shape, so stdlib regexp is used here
// and documented as such rather than reached for silently.
func ParsePlan(raw string) (Plan, error) {
	var names []string
	if m := actionsTagRe.FindStringSubmatch(raw); m != nil {
		if err := json.Unmarshal([]byte(m[1]), &names); err != nil {
			return nil, &ParseError{Stage: "actions", Err: err}
		}
	}

	params := map[string]map[string]any{}
	if m := paramsTagRe.FindStringSubmatch(raw); m != nil {
		if err := json.Unmarshal([]byte(m[1]), &params); err != nil {
			return nil, &ParseError{Stage: "params", Err: err}
		}
	}

	plan := make(Plan, 0, len(names))
	for i, name := range names {
		plan = append(plan, Step{
			ID:     stepID(i),
			Name:   strings.TrimSpace(name),
			Params: params[name],
		})
	}
	return plan, nil
}

func stepID(i int) string {
	return "step-" + strconv.Itoa(i)
}

// PlanFromContent builds a one-step-per-action Plan directly from a
// Memory's Content, bypassing the LLM planner. Used when planning is
// disabled (§4.6: "the runtime constructs a one-step plan from
// Memory.content.actions and Memory.content.params").
func PlanFromContent(actions []string, params map[string]map[string]any) Plan {
	plan := make(Plan, 0, len(actions))
	for i, name := range actions {
		plan = append(plan, Step{ID: stepID(i), Name: name, Params: params[name]})
	}
	return plan
}

// ParseError reports a malformed plan block from the planner's response.
type ParseError struct {
	Stage string
	Err   error
}

func (e *ParseError) Error() string { return "actionexec: parse " + e.Stage + ": " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

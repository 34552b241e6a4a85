package actionexec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ariaos/aria/pkg/types"
)

// ValidateParams checks raw against action's declared ActionParameter
// list, applying defaults for missing optional values and compiling each
// parameter's Schema (a JSON-Schema subset) with
// santhosh-tekuri/jsonschema — a direct teacher dependency, replacing a
// hand-rolled validator per SPEC_FULL's DOMAIN STACK item 6.
//
// Per invariant 5, a missing required parameter does NOT prevent the
// handler from being invoked: it is recorded in ParameterErrors and the
// handler receives whatever parameters were actually supplied. This
// matches original_source's test_action_parameters.py exactly:
// "executed == True" with options.parameter_errors containing
// "Required parameter '<name>'".
func ValidateParams(action types.Action, raw map[string]any) types.ActionOptions {
	opts := types.ActionOptions{Parameters: map[string]any{}}

	for _, p := range action.Parameters {
		v, present := raw[p.Name]
		if !present {
			if p.Required {
				opts.ParameterErrors = append(opts.ParameterErrors, fmt.Sprintf("Required parameter '%s'", p.Name))
				continue
			}
			if def, ok := p.Schema["default"]; ok {
				opts.Parameters[p.Name] = def
			}
			continue
		}

		if err := validateAgainstSchema(p.Schema, v); err != nil {
			opts.ParameterErrors = append(opts.ParameterErrors, fmt.Sprintf("parameter '%s': %v", p.Name, err))
			continue
		}
		opts.Parameters[p.Name] = v
	}

	// Parameters not declared on the action are passed through unchanged,
	// so handlers can accept an open extension bag beyond the schema.
	for k, v := range raw {
		if _, declared := opts.Parameters[k]; !declared {
			if !hasParam(action.Parameters, k) {
				opts.Parameters[k] = v
			}
		}
	}

	return opts
}

func hasParam(params []types.ActionParameter, name string) bool {
	for _, p := range params {
		if p.Name == name {
			return true
		}
	}
	return false
}

// validateAgainstSchema compiles schema (if non-empty) and checks value
// against it. An empty schema always passes.
func validateAgainstSchema(schema types.ParamSchema, value any) error {
	if len(schema) == 0 {
		return nil
	}

	compiler := jsonschema.NewCompiler()
	const resourceURL = "mem://param.json"
	doc, err := json.Marshal(map[string]any(schema))
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	if err := compiler.AddResource(resourceURL, bytes.NewReader(doc)); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	compiled, err := compiler.Compile(resourceURL)
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	return compiled.Validate(value)
}

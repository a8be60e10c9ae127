// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed activities.json
var builtin []byte

// LoadRegistry reads a registry file. An empty path returns the built-in registry.
func LoadRegistry(path string) (*ActivityRegistry, error) {
	data := builtin
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, err
		}
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	return &reg, nil
}

// Find returns the activity bound to taskType.
func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// TaskTypes lists registered task types in sorted order.
func (r *ActivityRegistry) TaskTypes() []string {
	out := make([]string, 0, len(r.Activities))
	for _, a := range r.Activities {
		out = append(out, a.TaskType)
	}
	sort.Strings(out)
	return out
}

// Validate checks the registry for structural problems. knownCodes, when
// non-nil, restricts the error codes an activity may declare.
func (r *ActivityRegistry) Validate(knownCodes map[string]bool) []error {
	var errs []error
	seen := map[string]bool{}
	processes := map[string]bool{}
	for _, p := range r.Processes {
		processes[p.ID] = true
	}

	for _, a := range r.Activities {
		if a.ID == "" || a.TaskType == "" {
			errs = append(errs, fmt.Errorf("activity %q: id and taskType are required", a.ID))
			continue
		}
		if seen[a.TaskType] {
			errs = append(errs, fmt.Errorf("activity %s: duplicate taskType %s", a.ID, a.TaskType))
		}
		seen[a.TaskType] = true

		if _, err := time.ParseDuration(a.Timeout); err != nil {
			errs = append(errs, fmt.Errorf("activity %s: invalid timeout %q", a.ID, a.Timeout))
		}
		if a.Retries < 0 {
			errs = append(errs, fmt.Errorf("activity %s: retries must not be negative", a.ID))
		}
		for name, schema := range map[string]map[string]interface{}{"inputSchema": a.InputSchema, "outputSchema": a.OutputSchema} {
			if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema)); err != nil {
				errs = append(errs, fmt.Errorf("activity %s: %s: %w", a.ID, name, err))
			}
		}
		for _, code := range a.ErrorCodes {
			if knownCodes != nil && !knownCodes[code] {
				errs = append(errs, fmt.Errorf("activity %s: unknown error code %s", a.ID, code))
			}
		}
		for _, wf := range a.Workflows {
			if !processes[wf] {
				errs = append(errs, fmt.Errorf("activity %s: unknown workflow %s", a.ID, wf))
			}
		}
	}
	return errs
}

// ValidateInput checks job variables against the activity's input schema.
func (a *Activity) ValidateInput(variables map[string]interface{}) error {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(a.InputSchema))
	if err != nil {
		return err
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(variables))
	if err != nil {
		return err
	}
	if !result.Valid() {
		msg := ""
		for i, e := range result.Errors() {
			if i > 0 {
				msg += "; "
			}
			msg += e.String()
		}
		return fmt.Errorf("%s input: %s", a.TaskType, msg)
	}
	return nil
}

// Package agent implements the assistant: the tool catalogue, the tool
// executor, and the bounded turn loop that drives a conversation with the
// model.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/aduval/foyer/internal/features"
	"github.com/aduval/foyer/internal/resolve"
	"github.com/aduval/foyer/internal/store"
)

// Tool is one callable entry in the catalogue. Parameters is a JSON-schema
// object; Handler receives arguments already validated against it. A
// non-empty Feature gates the tool: when that feature is off the tool is
// hidden from the model, and a call to it explains the missing feature.
type Tool struct {
	Name        string
	Description string
	Feature     string
	Parameters  map[string]any
	Handler     func(ctx context.Context, householdID int64, args map[string]any) (map[string]any, error)
}

// Deps carries everything the tools touch.
type Deps struct {
	Logger     *slog.Logger
	Features   features.Flags
	Tasks      *store.TaskStore
	Zones      *store.NamedStore
	Categories *store.NamedStore
	Animals    *store.NamedStore
	People     *store.NamedStore
	Projects   *store.ProjectStore
	Equipment  *store.EquipmentStore
	Shopping   *store.ShoppingStore
	Budget     *store.BudgetStore
	Dates      *store.ImportantDateStore

	// Invalidate tells connected clients which view paths changed.
	// Illustrate enqueues background image generation for a new entity.
	// Both may be nil.
	Invalidate func(householdID int64, paths ...string)
	Illustrate func(householdID int64, kind string, id int64, name string)
}

// Registry holds the tool catalogue.
type Registry struct {
	deps  Deps
	tools map[string]*Tool
}

// NewRegistry builds the catalogue. It panics on a malformed tool
// definition: a tool without a handler or schema is a programming error
// caught at startup, not at call time.
func NewRegistry(deps Deps) *Registry {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	r := &Registry{deps: deps, tools: make(map[string]*Tool)}
	r.registerTaskTools()
	r.registerCatalogTools()
	r.registerShoppingTools()
	r.registerDateTools()
	r.registerBudgetTools()
	return r
}

func (r *Registry) register(t *Tool) {
	if t.Name == "" || t.Handler == nil || t.Parameters == nil {
		panic(fmt.Sprintf("tool %q registered without name, handler or schema", t.Name))
	}
	if _, dup := r.tools[t.Name]; dup {
		panic(fmt.Sprintf("tool %q registered twice", t.Name))
	}
	r.tools[t.Name] = t
}

// enabled reports whether the tool's gating feature is on.
func (r *Registry) enabled(t *Tool) bool {
	switch t.Feature {
	case "":
		return true
	case "budget":
		return r.deps.Features.Budget
	default:
		return false
	}
}

// Names returns the names of the enabled tools, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.tools))
	for name, t := range r.tools {
		if r.enabled(t) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Definitions renders the catalogue in the OpenAI function-tool format the
// model clients accept.
func (r *Registry) Definitions() []map[string]any {
	out := make([]map[string]any, 0, len(r.tools))
	for _, name := range r.Names() {
		t := r.tools[name]
		out = append(out, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name,
				"description": t.Description,
				"parameters":  t.Parameters,
			},
		})
	}
	return out
}

// Execute runs one tool call and always returns a JSON payload: either the
// handler's result with "ok": true, or {"ok": false, "error": ...}. A tool
// failure never propagates to the turn loop.
func (r *Registry) Execute(ctx context.Context, householdID int64, name, rawArgs string) string {
	tool, ok := r.tools[name]
	if !ok {
		return failure(fmt.Sprintf("unknown tool %q", name))
	}
	if !r.enabled(tool) {
		return r.failureFor(name, &FeatureUnavailableError{Feature: tool.Feature})
	}

	// Malformed argument JSON degrades to an empty object so schema
	// validation reports the missing fields instead.
	var args map[string]any
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil || args == nil {
		args = map[string]any{}
	}

	if err := validateArgs(tool, args); err != nil {
		return r.failureFor(name, err)
	}

	result, err := r.invoke(ctx, tool, householdID, args)
	if err != nil {
		return r.failureFor(name, err)
	}

	payload := map[string]any{"ok": true}
	for k, v := range result {
		payload[k] = v
	}
	return mustJSON(payload)
}

// invoke runs the handler, converting a panic into an error so one bad
// tool call cannot take the whole turn loop down.
func (r *Registry) invoke(ctx context.Context, tool *Tool, householdID int64, args map[string]any) (result map[string]any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("tool %s panicked: %v", tool.Name, p)
		}
	}()
	return tool.Handler(ctx, householdID, args)
}

// failureFor maps the error taxonomy onto the wire shape. Anything outside
// the known kinds is logged and reported as an unexpected error so the
// model cannot leak internals.
func (r *Registry) failureFor(tool string, err error) string {
	var (
		notFound    *resolve.NotFoundError
		ambiguous   *resolve.AmbiguousError
		validation  *ValidationError
		invariant   *store.InvariantError
		unavailable *FeatureUnavailableError
	)
	switch {
	case errors.As(err, &notFound),
		errors.As(err, &ambiguous),
		errors.As(err, &validation),
		errors.As(err, &invariant),
		errors.As(err, &unavailable):
		return failure(err.Error())
	default:
		r.deps.Logger.Error("tool failed", "tool", tool, "error", err)
		return failure("unexpected error, please try again")
	}
}

func failure(msg string) string {
	return mustJSON(map[string]any{"ok": false, "error": msg})
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return `{"ok":false,"error":"unexpected error, please try again"}`
	}
	return string(b)
}

// validateArgs checks args against the tool's schema: required presence,
// primitive types, enum membership and maxLength.
func validateArgs(tool *Tool, args map[string]any) error {
	props, _ := tool.Parameters["properties"].(map[string]any)

	if required, ok := tool.Parameters["required"].([]string); ok {
		for _, key := range required {
			if _, present := args[key]; !present {
				return validationf(tool.Name, "missing required argument %q", key)
			}
		}
	}

	for key, raw := range args {
		spec, known := props[key].(map[string]any)
		if !known {
			return validationf(tool.Name, "unknown argument %q", key)
		}
		if raw == nil {
			continue
		}
		typ, _ := spec["type"].(string)
		switch typ {
		case "string":
			s, ok := raw.(string)
			if !ok {
				return validationf(tool.Name, "argument %q must be a string", key)
			}
			if max, ok := spec["maxLength"].(int); ok && len(s) > max {
				return validationf(tool.Name, "argument %q exceeds %d characters", key, max)
			}
			if enum, ok := spec["enum"].([]string); ok {
				found := false
				for _, v := range enum {
					if v == s {
						found = true
						break
					}
				}
				if !found {
					return validationf(tool.Name, "argument %q must be one of %v", key, enum)
				}
			}
		case "integer":
			n, ok := raw.(float64)
			if !ok || n != float64(int64(n)) {
				return validationf(tool.Name, "argument %q must be an integer", key)
			}
		case "number":
			if _, ok := raw.(float64); !ok {
				return validationf(tool.Name, "argument %q must be a number", key)
			}
		case "boolean":
			if _, ok := raw.(bool); !ok {
				return validationf(tool.Name, "argument %q must be a boolean", key)
			}
		}
	}
	return nil
}

// --- argument accessors ---
// JSON numbers arrive as float64; these narrow them after validation.

func argString(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func argStringPtr(args map[string]any, key string) *string {
	if s, ok := args[key].(string); ok {
		return &s
	}
	return nil
}

func argInt64(args map[string]any, key string) int64 {
	n, _ := args[key].(float64)
	return int64(n)
}

func argInt64Ptr(args map[string]any, key string) *int64 {
	if n, ok := args[key].(float64); ok {
		v := int64(n)
		return &v
	}
	return nil
}

func argIntPtr(args map[string]any, key string) *int {
	if n, ok := args[key].(float64); ok {
		v := int(n)
		return &v
	}
	return nil
}

func argBool(args map[string]any, key string) bool {
	b, _ := args[key].(bool)
	return b
}

func (r *Registry) invalidate(householdID int64, paths ...string) {
	if r.deps.Invalidate != nil {
		r.deps.Invalidate(householdID, paths...)
	}
}

func (r *Registry) illustrate(householdID int64, kind string, id int64, name string) {
	if r.deps.Illustrate != nil {
		r.deps.Illustrate(householdID, kind, id, name)
	}
}

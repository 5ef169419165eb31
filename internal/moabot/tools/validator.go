package tools

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/moadev/moabot/internal/moabot/intent"
)

// Validator holds the compiled argument schemas for every tool in the
// catalogue. Compile once at startup; Validate is safe for concurrent use.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// NewValidator compiles all catalogue schemas. A compile failure is a
// programming error in the catalogue, not a runtime condition.
func NewValidator() (*Validator, error) {
	v := &Validator{schemas: make(map[string]*jsonschema.Schema, len(Catalogue()))}
	for _, def := range Catalogue() {
		c := jsonschema.NewCompiler()
		url := "moabot://tools/" + def.Name + ".json"
		if err := c.AddResource(url, strings.NewReader(string(def.Parameters))); err != nil {
			return nil, fmt.Errorf("add schema for %s: %w", def.Name, err)
		}
		schema, err := c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile schema for %s: %w", def.Name, err)
		}
		v.schemas[def.Name] = schema
	}
	return v, nil
}

// Exists reports whether name is in the catalogue.
func (v *Validator) Exists(name string) bool {
	_, ok := v.schemas[name]
	return ok
}

// Validate checks args (as decoded JSON) against the tool's schema.
func (v *Validator) Validate(name string, args map[string]any) error {
	schema, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("unknown tool %q", name)
	}
	if args == nil {
		args = map[string]any{}
	}
	if err := schema.Validate(toJSONValue(args)); err != nil {
		return fmt.Errorf("arguments for %s: %w", name, err)
	}
	return nil
}

// toJSONValue normalizes decoded argument maps so the schema library sees
// only the value kinds encoding/json produces.
func toJSONValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = toJSONValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = toJSONValue(vv)
		}
		return out
	case int:
		return float64(t)
	case int64:
		return float64(t)
	default:
		return v
	}
}

// ForIntent converts the catalogue into the shape the intent resolver
// advertises to the model.
func ForIntent() []intent.Tool {
	defs := Catalogue()
	out := make([]intent.Tool, 0, len(defs))
	for _, def := range defs {
		out = append(out, intent.Tool{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  def.Parameters,
		})
	}
	return out
}

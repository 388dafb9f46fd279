package pack

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// answerSpecSchema matches the dual string-or-list answer representation.
var answerSpecSchema = map[string]any{
	"oneOf": []any{
		map[string]any{"type": "string", "minLength": 1},
		map[string]any{
			"type":     "array",
			"items":    map[string]any{"type": "string", "minLength": 1},
			"minItems": 1,
		},
	},
}

// vocabPackSchema is the structural schema for vocabulary pack files.
var vocabPackSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"type":  map[string]any{"const": "vocab"},
		"id":    map[string]any{"type": "string", "minLength": 1},
		"title": map[string]any{"type": "string", "minLength": 1},
		"src":   map[string]any{"type": "string", "minLength": 1},
		"dst":   map[string]any{"type": "string", "minLength": 1},
		"items": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":  map[string]any{"type": "string", "minLength": 1},
					"src": map[string]any{"type": "string", "minLength": 1},
					"dst": map[string]any{"type": "string", "minLength": 1},
					"ipa": map[string]any{"type": "string"},
					"examples": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"src": map[string]any{"type": "string", "minLength": 1},
								"dst": map[string]any{"type": "string"},
							},
							"required": []any{"src"},
						},
					},
				},
				"required": []any{"id", "src", "dst"},
			},
		},
	},
	"required": []any{"type", "id", "title", "src", "dst", "items"},
}

// verbPackSchema is the structural schema for verb pack files.
var verbPackSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"type":  map[string]any{"const": "verbs"},
		"id":    map[string]any{"type": "string", "minLength": 1},
		"title": map[string]any{"type": "string", "minLength": 1},
		"src":   map[string]any{"type": "string", "minLength": 1},
		"dst":   map[string]any{"type": "string", "minLength": 1},
		"items": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":  map[string]any{"type": "string", "minLength": 1},
					"src": answerSpecSchema,
					"dst": map[string]any{"type": "string", "minLength": 1},
					"conjugations": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"present": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"io":     answerSpecSchema,
									"tu":     answerSpecSchema,
									"luiLei": answerSpecSchema,
									"noi":    answerSpecSchema,
									"voi":    answerSpecSchema,
									"loro":   answerSpecSchema,
								},
								"required": []any{"io", "tu", "luiLei", "noi", "voi", "loro"},
							},
						},
						"required": []any{"present"},
					},
				},
				"required": []any{"id", "src", "dst", "conjugations"},
			},
		},
	},
	"required": []any{"type", "id", "title", "src", "dst", "items"},
}

// schemaCache caches compiled schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// validateSchema checks raw pack JSON against the named schema definition.
func validateSchema(name string, definition map[string]any, raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	compiled, err := compiledSchema(name, definition)
	if err != nil {
		return fmt.Errorf("compile %s schema: %w", name, err)
	}

	if err := compiled.Validate(parsed); err != nil {
		return err
	}
	return nil
}

// compiledSchema returns a cached compiled schema or compiles and caches it.
func compiledSchema(name string, definition map[string]any) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The jsonschema library expects a parsed JSON value, not a Go map with
	// typed values. Round-trip through JSON to get a clean representation.
	defBytes, err := json.Marshal(definition)
	if err != nil {
		return nil, fmt.Errorf("marshal definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(schemaURL, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(name, compiled)
	return compiled, nil
}

package validate

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// recordSchema is the contract every individual result must satisfy before
// heuristic checks run. extracted_data stays loosely typed beyond its two
// required fields; the model is free to add metadata.
func recordSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"task_id":      map[string]any{"type": "string"},
			"status":       map[string]any{"type": "string"},
			"result_index": map[string]any{"type": "integer"},
			"file_path":    map[string]any{"type": "string"},
			"extracted_data": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":    map[string]any{"type": "string"},
					"content":  map[string]any{"type": "string"},
					"metadata": map[string]any{"type": "object"},
				},
				"required": []string{"title", "content"},
			},
			"batch_info":      map[string]any{"type": "object"},
			"split_timestamp": map[string]any{"type": "string"},
		},
		"required": []string{"task_id", "status", "file_path", "extracted_data"},
	}
}

// compileSchema builds the validator once at construction time.
func compileSchema() (*jsonschema.Schema, error) {
	b, err := json.Marshal(recordSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("record.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("record.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/docextract/constants"
)

// ResultSchema describes the JSON form of Result, including the rule that
// an empty text must come with at least one warning.
func ResultSchema() map[string]any {
	types := make([]any, 0, len(constants.DocTypes))
	for _, t := range constants.DocTypes {
		types = append(types, string(t))
	}
	count := map[string]any{"type": "integer", "minimum": 0}
	return map[string]any{
		"$schema":              "https://json-schema.org/draft/2020-12/schema",
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"text", "meta", "warnings"},
		"properties": map[string]any{
			"text": map[string]any{"type": "string"},
			"meta": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"detected_type":  map[string]any{"enum": types},
					"page_count":     count,
					"used_ocr_pages": count,
				},
			},
			"warnings": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"if": map[string]any{
			"properties": map[string]any{"text": map[string]any{"const": ""}},
		},
		"then": map[string]any{
			"properties": map[string]any{"warnings": map[string]any{"minItems": 1}},
		},
	}
}

var (
	resultSchemaOnce sync.Once
	resultSchema     *jsonschema.Schema
	resultSchemaErr  error
)

func compiledResultSchema() (*jsonschema.Schema, error) {
	resultSchemaOnce.Do(func() {
		b, err := json.Marshal(ResultSchema())
		if err != nil {
			resultSchemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("result.json", bytes.NewReader(b)); err != nil {
			resultSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		resultSchema, resultSchemaErr = compiler.Compile("result.json")
		if resultSchemaErr != nil {
			resultSchemaErr = fmt.Errorf("compile schema: %w", resultSchemaErr)
		}
	})
	return resultSchema, resultSchemaErr
}

// ValidateResultJSON checks serialized result data against ResultSchema.
func ValidateResultJSON(data []byte) error {
	schema, err := compiledResultSchema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("result does not match schema: %w", err)
	}
	return nil
}

// ValidateResult marshals res and validates it.
func ValidateResult(res Result) error {
	b, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return ValidateResultJSON(b)
}

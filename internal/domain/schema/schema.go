// Package schema checks that a decoded evaluation document carries the
// minimal structure the pipeline depends on.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/okian/evalsync/internal/domain/codec"
	"github.com/okian/evalsync/internal/domain/model"
)

// requiredPaths are checked in order; the first miss is reported.
var requiredPaths = []string{
	"schema_version",
	"evaluation_id",
	"evaluation_source.evaluation_source_name",
	"evaluation_source.evaluation_source_type",
	"retrieved_timestamp",
	"source_data",
	"source_metadata.source_organization_name",
	"source_metadata.evaluator_relationship",
	"model_info.name",
	"model_info.id",
	"model_info.developer",
	"evaluation_results",
}

// requiredResultPaths apply to every entry of evaluation_results.
var requiredResultPaths = []string{
	"evaluation_name",
	"metric_config",
	"score_details",
	"metric_config.lower_is_better",
	"score_details.score",
}

// Validate reports the first required field missing from doc. A field
// holding null counts as missing. Types are not checked.
func Validate(doc map[string]any) error {
	for _, p := range requiredPaths {
		if !present(doc, p) {
			return &ValidationError{Path: p}
		}
	}

	results, ok := doc["evaluation_results"].([]any)
	if !ok {
		return nil
	}
	for i, entry := range results {
		obj, _ := entry.(map[string]any)
		for _, p := range requiredResultPaths {
			if !present(obj, p) {
				return &ValidationError{Path: fmt.Sprintf("evaluation_results[%d].%s", i, p)}
			}
		}
	}
	return nil
}

func present(obj map[string]any, dotted string) bool {
	var cur any = obj
	for _, part := range strings.Split(dotted, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return false
		}
		cur, ok = m[part]
		if !ok || cur == nil {
			return false
		}
	}
	return true
}

// Parse decodes data, validates it and returns the typed document. Nested
// payloads are kept verbatim in compact form.
func Parse(data []byte) (model.Document, error) {
	var raw map[string]any
	if err := decode(data, &raw); err != nil {
		return model.Document{}, err
	}
	if raw == nil {
		return model.Document{}, fmt.Errorf("%w: top-level value is not an object", ErrMalformed)
	}
	if err := Validate(raw); err != nil {
		return model.Document{}, err
	}

	var doc model.Document
	if err := decode(data, &doc); err != nil {
		return model.Document{}, err
	}
	for _, raw := range []*json.RawMessage{&doc.SourceData, &doc.EvaluationResults, &doc.AdditionalDetails} {
		c, err := codec.Compact(*raw)
		if err != nil {
			return model.Document{}, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		*raw = c
	}
	return doc, nil
}

func decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("%w: trailing data after document", ErrMalformed)
	}
	return nil
}

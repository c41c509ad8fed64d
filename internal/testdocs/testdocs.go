// Package testdocs builds evaluation documents and document trees for tests.
package testdocs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Doc is a mutable raw document. Tests edit it as a plain map so they can
// drop or null fields the typed model would not allow.
type Doc map[string]any

// Valid returns a complete document for modelID ("developer/model").
func Valid(modelID string) Doc {
	dev, name, _ := strings.Cut(modelID, "/")
	return Doc{
		"schema_version":      "0.1.0",
		"evaluation_id":       fmt.Sprintf("L1/%s/1700000000", modelID),
		"retrieved_timestamp": "1700000000",
		"source_data":         []any{"https://example.com/leaderboard", "https://example.com/raw.json"},
		"evaluation_source": map[string]any{
			"evaluation_source_name": "Example Leaderboard",
			"evaluation_source_type": "leaderboard",
		},
		"source_metadata": map[string]any{
			"source_organization_name": "Example Org",
			"source_organization_url":  "https://example.com",
			"evaluator_relationship":   "third_party",
		},
		"model_info": map[string]any{
			"name":      name,
			"id":        modelID,
			"developer": dev,
		},
		"evaluation_results": []any{
			map[string]any{
				"evaluation_name": "IFEval",
				"metric_config": map[string]any{
					"evaluation_description": "Accuracy on IFEval",
					"lower_is_better":        false,
					"score_type":             "continuous",
					"min_score":              0,
					"max_score":              1,
				},
				"score_details": map[string]any{"score": 0.4573},
			},
			map[string]any{
				"evaluation_name": "MATH Level 5",
				"metric_config": map[string]any{
					"evaluation_description": "Exact match on MATH Level 5",
					"lower_is_better":        false,
					"score_type":             "continuous",
					"min_score":              0,
					"max_score":              1,
				},
				"score_details": map[string]any{"score": 0.1012},
			},
		},
		"additional_details": map[string]any{
			"precision":    "bfloat16",
			"params_b":     7.24,
			"moe":          false,
			"architecture": "LlamaForCausalLM",
		},
	}
}

// Rich returns a valid document whose nested payloads go beyond the
// required shape: object-valued source_data, extra keys and nested arrays
// in result entries, and an explicit null additional_details.
func Rich(modelID string) Doc {
	return Valid(modelID).
		With("source_data", []any{
			map[string]any{"url": "https://example.com/raw.json", "format": "json"},
			"https://example.com/leaderboard",
		}).
		With("evaluation_results", []any{
			map[string]any{
				"evaluation_name": "IFEval",
				"metric_config": map[string]any{
					"lower_is_better": false,
					"score_type":      "continuous",
					"levels":          []any{[]any{0, 0.25}, []any{0.5, 1}},
				},
				"score_details": map[string]any{
					"score":   0.4573,
					"details": map[string]any{"per_seed": []any{0.45, 0.46, nil}},
				},
				"generation_config": map[string]any{"temperature": 0, "stop": []any{}},
			},
		}).
		With("additional_details", nil)
}

// Canonical decodes JSON with numbers kept as text so two documents can
// be compared structurally, ignoring formatting and key order.
func Canonical(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// Without returns a copy of d with the dotted path removed.
func (d Doc) Without(dotted string) Doc {
	out := d.clone()
	parts := strings.Split(dotted, ".")
	cur := map[string]any(out)
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]any)
		if !ok {
			return out
		}
		cur = next
	}
	delete(cur, parts[len(parts)-1])
	return out
}

// With returns a copy of d with the top-level field set to v.
func (d Doc) With(field string, v any) Doc {
	out := d.clone()
	out[field] = v
	return out
}

// JSON renders d as indented JSON.
func (d Doc) JSON() []byte {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		panic(err)
	}
	return b
}

func (d Doc) clone() Doc {
	var out Doc
	if err := json.Unmarshal(d.JSON(), &out); err != nil {
		panic(err)
	}
	return out
}

// NewUUID returns a fresh document uuid.
func NewUUID() string { return uuid.NewString() }

// Write stores d at root/rel, creating parent directories, and returns
// the absolute path.
func Write(root, rel string, d Doc) (string, error) {
	return WriteRaw(root, rel, d.JSON())
}

// WriteRaw stores data at root/rel.
func WriteRaw(root, rel string, data []byte) (string, error) {
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", err
	}
	return p, nil
}

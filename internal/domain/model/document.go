// Package model contains domain models passed between layers.
package model

import "encoding/json"

// Document is one evaluation submission as stored in the document tree.
// Field order matches the on-disk JSON layout.
//
// Nested payloads are kept as raw JSON so every key, the key order and
// the exact number text survive a trip through a batch row.
type Document struct {
	SchemaVersion      string           `json:"schema_version"`
	EvaluationID       string           `json:"evaluation_id"`
	RetrievedTimestamp string           `json:"retrieved_timestamp"`
	SourceData         json.RawMessage  `json:"source_data"`
	EvaluationSource   EvaluationSource `json:"evaluation_source"`
	SourceMetadata     SourceMetadata   `json:"source_metadata"`
	ModelInfo          ModelInfo        `json:"model_info"`
	EvaluationResults  json.RawMessage  `json:"evaluation_results"`

	// AdditionalDetails is nil when absent. An explicit null is kept as
	// the literal null, and an empty object as {}.
	AdditionalDetails json.RawMessage `json:"additional_details,omitzero"`
}

// EvaluationSource names the leaderboard or harness a document came from.
type EvaluationSource struct {
	Name string `json:"evaluation_source_name"`
	Type string `json:"evaluation_source_type"`
}

// SourceMetadata describes the organization that published the results.
type SourceMetadata struct {
	OrganizationName      string  `json:"source_organization_name"`
	OrganizationURL       *string `json:"source_organization_url,omitempty"`
	OrganizationLogoURL   *string `json:"source_organization_logo_url,omitempty"`
	EvaluatorRelationship string  `json:"evaluator_relationship"`
}

// ModelInfo identifies the evaluated model.
type ModelInfo struct {
	Name              string  `json:"name"`
	ID                string  `json:"id"`
	Developer         string  `json:"developer"`
	InferencePlatform *string `json:"inference_platform,omitempty"`
}

// Package record converts between evaluation documents and batch rows.
package record

import (
	"encoding/json"
	"fmt"

	"github.com/okian/evalsync/internal/domain/codec"
	"github.com/okian/evalsync/internal/domain/model"
)

// Flatten projects doc and its key into a single row. Nested structures
// are encoded with the codec; absent optionals become null columns while
// an explicit null additional_details is stored as the text null.
func Flatten(key model.Key, doc model.Document) (model.Row, error) {
	if err := key.Validate(); err != nil {
		return model.Row{}, err
	}

	sourceData, err := codec.Encode(doc.SourceData)
	if err != nil {
		return model.Row{}, fmt.Errorf("%w: source_data: %w", ErrFlatten, err)
	}
	results, err := codec.Encode(doc.EvaluationResults)
	if err != nil {
		return model.Row{}, fmt.Errorf("%w: evaluation_results: %w", ErrFlatten, err)
	}

	var details *string
	if doc.AdditionalDetails != nil {
		s, err := codec.Encode(doc.AdditionalDetails)
		if err != nil {
			return model.Row{}, fmt.Errorf("%w: additional_details: %w", ErrFlatten, err)
		}
		details = &s
	}

	return model.Row{
		Leaderboard: key.Leaderboard,
		Developer:   key.Developer,
		Model:       key.Model,
		UUID:        key.UUID,

		SchemaVersion:      doc.SchemaVersion,
		EvaluationID:       doc.EvaluationID,
		RetrievedTimestamp: doc.RetrievedTimestamp,
		SourceData:         sourceData,

		EvaluationSourceName: doc.EvaluationSource.Name,
		EvaluationSourceType: doc.EvaluationSource.Type,

		SourceOrganizationName:    doc.SourceMetadata.OrganizationName,
		SourceOrganizationURL:     copyString(doc.SourceMetadata.OrganizationURL),
		SourceOrganizationLogoURL: copyString(doc.SourceMetadata.OrganizationLogoURL),
		EvaluatorRelationship:     doc.SourceMetadata.EvaluatorRelationship,

		ModelName:              doc.ModelInfo.Name,
		ModelID:                doc.ModelInfo.ID,
		ModelDeveloper:         doc.ModelInfo.Developer,
		ModelInferencePlatform: copyString(doc.ModelInfo.InferencePlatform),

		EvaluationResults: results,
		AdditionalDetails: details,
	}, nil
}

// Expand rebuilds the document and its key from a row. It is the inverse
// of Flatten.
func Expand(row model.Row) (model.Key, model.Document, error) {
	key := row.Key()
	if err := key.Validate(); err != nil {
		return model.Key{}, model.Document{}, err
	}

	var sourceData json.RawMessage
	if err := codec.Decode(row.SourceData, &sourceData); err != nil {
		return model.Key{}, model.Document{}, fmt.Errorf("%w: %s: source_data: %w", ErrExpand, key, err)
	}
	var results json.RawMessage
	if err := codec.Decode(row.EvaluationResults, &results); err != nil {
		return model.Key{}, model.Document{}, fmt.Errorf("%w: %s: evaluation_results: %w", ErrExpand, key, err)
	}

	var details json.RawMessage
	if row.AdditionalDetails != nil {
		if err := codec.Decode(*row.AdditionalDetails, &details); err != nil {
			return model.Key{}, model.Document{}, fmt.Errorf("%w: %s: additional_details: %w", ErrExpand, key, err)
		}
	}

	doc := model.Document{
		SchemaVersion:      row.SchemaVersion,
		EvaluationID:       row.EvaluationID,
		RetrievedTimestamp: row.RetrievedTimestamp,
		SourceData:         sourceData,
		EvaluationSource: model.EvaluationSource{
			Name: row.EvaluationSourceName,
			Type: row.EvaluationSourceType,
		},
		SourceMetadata: model.SourceMetadata{
			OrganizationName:      row.SourceOrganizationName,
			OrganizationURL:       copyString(row.SourceOrganizationURL),
			OrganizationLogoURL:   copyString(row.SourceOrganizationLogoURL),
			EvaluatorRelationship: row.EvaluatorRelationship,
		},
		ModelInfo: model.ModelInfo{
			Name:              row.ModelName,
			ID:                row.ModelID,
			Developer:         row.ModelDeveloper,
			InferencePlatform: copyString(row.ModelInferencePlatform),
		},
		EvaluationResults: results,
		AdditionalDetails: details,
	}
	return key, doc, nil
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

package model

// Row is the flattened projection of a Document plus its Key, one record
// of a batch file. Nested structures are held as encoded strings; a nil
// optional column means the field was absent from the document.
type Row struct {
	Leaderboard string `parquet:"_leaderboard"`
	Developer   string `parquet:"_developer"`
	Model       string `parquet:"_model"`
	UUID        string `parquet:"_uuid"`

	SchemaVersion      string `parquet:"schema_version"`
	EvaluationID       string `parquet:"evaluation_id"`
	RetrievedTimestamp string `parquet:"retrieved_timestamp"`
	SourceData         string `parquet:"source_data"`

	EvaluationSourceName string `parquet:"evaluation_source_name"`
	EvaluationSourceType string `parquet:"evaluation_source_type"`

	SourceOrganizationName    string  `parquet:"source_organization_name"`
	SourceOrganizationURL     *string `parquet:"source_organization_url,optional"`
	SourceOrganizationLogoURL *string `parquet:"source_organization_logo_url,optional"`
	EvaluatorRelationship     string  `parquet:"evaluator_relationship"`

	ModelName              string  `parquet:"model_name"`
	ModelID                string  `parquet:"model_id"`
	ModelDeveloper         string  `parquet:"model_developer"`
	ModelInferencePlatform *string `parquet:"model_inference_platform,optional"`

	EvaluationResults string  `parquet:"evaluation_results"`
	AdditionalDetails *string `parquet:"additional_details,optional"`
}

// Key returns the identity columns of the row.
func (r Row) Key() Key {
	return Key{
		Leaderboard: r.Leaderboard,
		Developer:   r.Developer,
		Model:       r.Model,
		UUID:        r.UUID,
	}
}

// Batch is the ordered set of rows for one leaderboard.
type Batch struct {
	Rows []Row
}

// Len returns the number of rows.
func (b Batch) Len() int { return len(b.Rows) }

// Keys returns the row keys in batch order.
func (b Batch) Keys() []Key {
	keys := make([]Key, len(b.Rows))
	for i, r := range b.Rows {
		keys[i] = r.Key()
	}
	return keys
}

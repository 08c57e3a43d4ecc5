// Package validate classifies each individual result as valid, partial or
// invalid. Classification is a pure function of the record's extracted_data
// and the fixed schema: it never consults external service state and never
// raises for malformed content. Only an unparseable envelope at the input
// boundary is a fatal error.
package validate

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/docpipeline/constants"
	"github.com/joseph-ayodele/docpipeline/internal/job"
)

type Validator struct {
	Logger *slog.Logger
	schema *jsonschema.Schema
}

func NewValidator(logger *slog.Logger) (*Validator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	return &Validator{Logger: logger, schema: schema}, nil
}

// Validate runs the structural schema check and then, only when it passes,
// the content heuristics. Schema failure short-circuits to invalid with the
// failure description on the record.
func (v *Validator) Validate(res job.IndividualResult) job.ValidatedRecord {
	rec := job.ValidatedRecord{
		IndividualResult:    res,
		ValidationTimestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if err := v.checkSchema(res); err != nil {
		v.Logger.Warn("validate.schema_failed",
			"task_id", res.TaskID, "result_index", res.ResultIndex, "error", err)
		rec.ValidationStatus = constants.ValidationInvalid
		rec.ValidationError = err.Error()
		rec.Status = "validation_failed"
		return rec
	}

	rec.ValidationStatus = classify(res.ExtractedData)
	v.Logger.Info("validate.ok",
		"task_id", res.TaskID,
		"result_index", res.ResultIndex,
		"file_path", res.FilePath,
		"status", rec.ValidationStatus,
	)
	return rec
}

// checkSchema validates the serialized record against the fixed contract.
func (v *Validator) checkSchema(res job.IndividualResult) error {
	b, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// classify applies the content heuristics to schema-passing data.
func classify(data map[string]any) constants.ValidationStatus {
	title, _ := data["title"].(string)
	content, _ := data["content"].(string)

	if title == "" || content == "" {
		return constants.ValidationPartial
	}
	if len(strings.TrimSpace(content)) < constants.MinContentLength {
		return constants.ValidationPartial
	}
	return constants.ValidationValid
}

package models

import (
	"time"

	"github.com/Josh-IE/risk-management/pkg/fieldtypes"
)

// FileUpload is a binary payload submitted for a file field
type FileUpload = fieldtypes.Upload

// Submission is one attempt to submit data against a schema
type Submission struct {
	ID        int64     `json:"id"`
	SchemaID  int64     `json:"risk_model"`
	Success   bool      `json:"success"`
	CreatedOn time.Time `json:"created_on"`
}

// Value is one stored datum of a submission. A nil Text is a submitted null.
type Value struct {
	ID           int64
	SubmissionID int64
	FieldID      int64
	Text         *string
	CreatedOn    time.Time
	UpdatedOn    time.Time
}

// ValueWithField is a stored value joined with the field it answers,
// soft-deleted fields included
type ValueWithField struct {
	Value
	FieldName string
	FieldType string
}

// SubmitRequest is a submission payload after transport decoding: slug keys
// mapped to raw values (strings, json.Number, bool, lists, maps, *FileUpload)
type SubmitRequest struct {
	SchemaID   int64                  `json:"risk_model"`
	SchemaName string                 `json:"risk_model_name"`
	Data       map[string]interface{} `json:"data"`
}

// SubmitResult is returned once a submission succeeds
type SubmitResult struct {
	SubmissionID int64     `json:"form_submit"`
	SchemaID     int64     `json:"risk_model"`
	SchemaName   string    `json:"risk_model_name"`
	TimeCreated  time.Time `json:"time_created"`
}

// ProjectedValue is the read-side rendering of a stored value
type ProjectedValue struct {
	ID        int64   `json:"id"`
	FieldName string  `json:"field_name"`
	FieldType string  `json:"field_type"`
	Value     *string `json:"value"`
}

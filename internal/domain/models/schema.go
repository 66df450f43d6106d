package models

import (
	"time"

	"github.com/Josh-IE/risk-management/pkg/fieldtypes"
)

// Owner is the identity a schema belongs to
type Owner struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedOn time.Time `json:"created_on"`
}

// Schema is a named form definition ("risk model")
type Schema struct {
	ID          int64     `json:"id"`
	OwnerID     *int64    `json:"owner"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	SuccessMsg  string    `json:"success_msg"`
	Button      string    `json:"button"`
	Activated   bool      `json:"activated"`
	CreatedOn   time.Time `json:"created_on"`
	UpdatedOn   time.Time `json:"updated_on"`
	Fields      []Field   `json:"fields"`
}

// Field is one typed attribute of a schema
type Field struct {
	ID           int64     `json:"id"`
	SchemaID     int64     `json:"-"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	FieldType    string    `json:"field_type"`
	DefaultValue string    `json:"default"`
	RegexPattern string    `json:"regex_pattern"`
	MinLength    *int      `json:"min_length"`
	MaxLength    *int      `json:"max_length"`
	Choices      []string  `json:"choices"`
	Required     bool      `json:"required"`
	HelpText     string    `json:"help_text"`
	Order        int       `json:"order"`
	Unique       bool      `json:"unique"`
	Deleted      bool      `json:"-"`
	CreatedOn    time.Time `json:"-"`
	UpdatedOn    time.Time `json:"-"`
}

// Constraints returns the attributes the field's type rule reads
func (f *Field) Constraints() fieldtypes.Constraints {
	return fieldtypes.Constraints{
		MinLength:    f.MinLength,
		MaxLength:    f.MaxLength,
		Choices:      f.Choices,
		RegexPattern: f.RegexPattern,
	}
}

// SchemaInput is the payload that creates or replaces a schema
type SchemaInput struct {
	OwnerID     *int64       `json:"owner"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	SuccessMsg  string       `json:"success_msg"`
	Button      string       `json:"button"`
	Activated   *bool        `json:"activated"`
	Fields      []FieldInput `json:"fields"`
}

// FieldInput is one field payload. A nil ID means a new field. Pointer
// attributes distinguish "omitted" from zero values.
type FieldInput struct {
	ID           *int64   `json:"id,omitempty"`
	Slug         string   `json:"slug,omitempty"`
	Name         string   `json:"name"`
	FieldType    string   `json:"field_type"`
	DefaultValue string   `json:"default"`
	RegexPattern string   `json:"regex_pattern"`
	MinLength    *int     `json:"min_length"`
	MaxLength    *int     `json:"max_length"`
	Choices      []string `json:"choices"`
	Required     *bool    `json:"required"`
	HelpText     string   `json:"help_text"`
	Order        *int     `json:"order"`
	Unique       *bool    `json:"unique"`
}

// ApplyTo copies the payload onto f. Omitted required/unique flags keep the
// values already on f.
func (in FieldInput) ApplyTo(f *Field) {
	f.Name = in.Name
	f.FieldType = in.FieldType
	f.DefaultValue = in.DefaultValue
	f.RegexPattern = in.RegexPattern
	f.MinLength = in.MinLength
	f.MaxLength = in.MaxLength
	f.Choices = in.Choices
	f.HelpText = in.HelpText
	if in.Order != nil {
		f.Order = *in.Order
	}
	if in.Required != nil {
		f.Required = *in.Required
	}
	if in.Unique != nil {
		f.Unique = *in.Unique
	}
}

// NewField builds an unsaved field from a payload, applying the create
// defaults (required, not unique). ID and slug are never taken from input.
func (in FieldInput) NewField(schemaID int64) Field {
	f := Field{SchemaID: schemaID, Required: true}
	in.ApplyTo(&f)
	return f
}

// FieldDelta is the change set that brings a schema's stored fields in line
// with an incoming field list
type FieldDelta struct {
	ToUpdate     []Field
	ToSoftDelete []int64
	ToCreate     []Field
}

// IsEmpty reports whether applying the delta would change nothing
func (d FieldDelta) IsEmpty() bool {
	return len(d.ToUpdate) == 0 && len(d.ToSoftDelete) == 0 && len(d.ToCreate) == 0
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Josh-IE/risk-management/internal/domain/models"
	appErrors "github.com/Josh-IE/risk-management/pkg/errors"
	"github.com/Josh-IE/risk-management/pkg/fieldtypes"
	"github.com/Josh-IE/risk-management/pkg/validator"
)

// ValueLookup answers the uniqueness question for unique fields
type ValueLookup interface {
	ExistsForSuccessfulSubmission(ctx context.Context, tx *sql.Tx, fieldID int64, text string) (bool, error)
}

// CleanedValue is a submitted value that passed its field's rules. A nil
// Text is a null stored as NULL. Upload is set for file fields and still
// has to be saved to the blob store.
type CleanedValue struct {
	Field  *models.Field
	Text   *string
	Upload *models.FileUpload
}

// FieldValidator validates single submitted values against field definitions
type FieldValidator struct {
	registry  *fieldtypes.Registry
	values    ValueLookup
	maxLength int
}

// NewFieldValidator creates a validator. maxLength bounds the stored text.
func NewFieldValidator(registry *fieldtypes.Registry, values ValueLookup, maxLength int) *FieldValidator {
	return &FieldValidator{registry: registry, values: values, maxLength: maxLength}
}

// Validate cleans raw for field. Errors are keyed by the field's display
// name, or "fields" when the field has none.
func (v *FieldValidator) Validate(ctx context.Context, field *models.Field, raw interface{}) (*CleanedValue, error) {
	def, ok := v.registry.Get(field.FieldType)
	if !ok {
		return nil, appErrors.NewUnknownFieldTypeError(field.FieldType)
	}
	key := errorKey(field)

	if s, isString := raw.(string); isString && s == "" {
		raw = nil
	}
	if raw == nil {
		switch {
		case def.IsBoolean():
			raw = false
		case field.Required:
			return nil, appErrors.NewValueValidationError(key, fieldtypes.MsgNull)
		default:
			return &CleanedValue{Field: field}, nil
		}
	}

	cleaned, err := def.Clean(raw, field.Constraints())
	if err != nil {
		var valueErr *fieldtypes.ValueError
		if errors.As(err, &valueErr) {
			return nil, appErrors.NewValueValidationError(key, valueErr.Messages...)
		}
		return nil, fmt.Errorf("clean %s value: %w", field.FieldType, err)
	}

	text, err := def.Encode(cleaned)
	if err != nil {
		return nil, fmt.Errorf("encode %s value: %w", field.FieldType, err)
	}

	out := &CleanedValue{Field: field, Text: &text}
	if def.IsFile() {
		// The stored text becomes the blob locator once the upload is saved
		out.Upload, _ = cleaned.(*models.FileUpload)
		return out, nil
	}

	if utf8.RuneCountInString(text) > v.maxLength {
		return nil, appErrors.NewValueValidationError(key, fmt.Sprintf(validator.MsgMaxLengthFmt, v.maxLength))
	}

	if field.Unique {
		exists, err := v.values.ExistsForSuccessfulSubmission(ctx, nil, field.ID, text)
		if err != nil {
			return nil, fmt.Errorf("check unique value of field %d: %w", field.ID, err)
		}
		if exists {
			return nil, appErrors.NewUniquenessConflictError(key, text)
		}
	}
	return out, nil
}

func errorKey(field *models.Field) string {
	if strings.TrimSpace(field.Name) == "" {
		return appErrors.KeyFields
	}
	return field.Name
}

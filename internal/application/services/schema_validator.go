package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Josh-IE/risk-management/internal/domain/models"
	appErrors "github.com/Josh-IE/risk-management/pkg/errors"
	"github.com/Josh-IE/risk-management/pkg/fieldtypes"
	"github.com/Josh-IE/risk-management/pkg/validator"
)

// Schema validation messages
const (
	MsgNoFields           = "Risk Model has no fields. At least one field is required."
	MsgOrderNotSequential = "Riskmodel fields must have a sequential order."
	MsgNamesNotUnique     = "Riskmodel fields must have unique names."
	MsgMinAboveMax        = "Min Length can't be greater than Max Length."
	MsgChoicesRequired    = "Choices are required for this Field type."
	MsgRegexRequired      = "Regex Pattern is required for the REGEX Field type."
	MsgRequired           = "This field is required."
	msgMaxValueFmt        = "Ensure this value is less than or equal to %d."
	msgMinValueFmt        = "Ensure this value is greater than or equal to %d."
	msgInvalidChoiceFmt   = `"%s" is not a valid choice.`
)

// attributeMaxLength bounds names, defaults, patterns and choices
const attributeMaxLength = 255

// SchemaValidator checks a schema payload before anything is written
type SchemaValidator struct {
	registry  *fieldtypes.Registry
	maxLength int
}

// NewSchemaValidator creates a validator. maxLength is the upper bound of
// min_length and max_length.
func NewSchemaValidator(registry *fieldtypes.Registry, maxLength int) *SchemaValidator {
	return &SchemaValidator{registry: registry, maxLength: maxLength}
}

// Validate returns a FieldConstraintError listing every invalid attribute,
// or a StructuralSchemaError for the first broken field-list rule
func (v *SchemaValidator) Validate(in *models.SchemaInput) error {
	var violations []appErrors.ConstraintViolation
	add := func(index int, attr, msg string) {
		violations = append(violations, appErrors.ConstraintViolation{Index: index, Attribute: attr, Message: msg})
	}

	checkText(in.Name, func(msg string) { add(-1, "name", msg) })
	checkText(in.Button, func(msg string) { add(-1, "button", msg) })

	for i := range in.Fields {
		v.checkField(i, &in.Fields[i], add)
	}
	if len(violations) > 0 {
		return &appErrors.FieldConstraintError{Violations: violations}
	}

	return checkFieldList(in.Fields)
}

func (v *SchemaValidator) checkField(i int, f *models.FieldInput, add func(int, string, string)) {
	checkText(f.Name, func(msg string) { add(i, "name", msg) })

	switch {
	case f.FieldType == "":
		add(i, "field_type", MsgRequired)
	case !v.registry.IsRegistered(f.FieldType):
		add(i, "field_type", fmt.Sprintf(msgInvalidChoiceFmt, f.FieldType))
	}

	switch {
	case f.Order == nil:
		add(i, "order", MsgRequired)
	case *f.Order < 1:
		add(i, "order", fmt.Sprintf(msgMinValueFmt, 1))
	}

	v.checkBound(f.MinLength, func(msg string) { add(i, "min_length", msg) })
	v.checkBound(f.MaxLength, func(msg string) { add(i, "max_length", msg) })
	if f.MinLength != nil && f.MaxLength != nil && *f.MinLength > *f.MaxLength {
		add(i, "min_length", MsgMinAboveMax)
	}

	if (f.FieldType == fieldtypes.Select || f.FieldType == fieldtypes.MultiSelect) && len(f.Choices) == 0 {
		add(i, "choices", MsgChoicesRequired)
	}
	for _, c := range f.Choices {
		if utf8.RuneCountInString(c) > attributeMaxLength {
			add(i, "choices", fmt.Sprintf(validator.MsgMaxLengthFmt, attributeMaxLength))
			break
		}
	}

	switch {
	case f.FieldType == fieldtypes.Regex && f.RegexPattern == "":
		add(i, "regex_pattern", MsgRegexRequired)
	case f.RegexPattern != "":
		if utf8.RuneCountInString(f.RegexPattern) > attributeMaxLength {
			add(i, "regex_pattern", fmt.Sprintf(validator.MsgMaxLengthFmt, attributeMaxLength))
		} else if _, err := validator.GetRegistry().CompilePattern(f.RegexPattern); err != nil {
			add(i, "regex_pattern", validator.MsgInvalidPattern)
		}
	}

	if utf8.RuneCountInString(f.DefaultValue) > attributeMaxLength {
		add(i, "default", fmt.Sprintf(validator.MsgMaxLengthFmt, attributeMaxLength))
	}
}

func (v *SchemaValidator) checkBound(bound *int, report func(string)) {
	if bound == nil {
		return
	}
	if *bound < 0 {
		report(fmt.Sprintf(msgMinValueFmt, 0))
	} else if *bound > v.maxLength {
		report(fmt.Sprintf(msgMaxValueFmt, v.maxLength))
	}
}

func checkText(value string, report func(string)) {
	if strings.TrimSpace(value) == "" {
		report(fieldtypes.MsgBlank)
		return
	}
	if utf8.RuneCountInString(value) > attributeMaxLength {
		report(fmt.Sprintf(validator.MsgMaxLengthFmt, attributeMaxLength))
	}
}

// checkFieldList enforces the rules on the list as a whole. Field i
// must carry order i+1, which also rules out gaps and duplicates.
func checkFieldList(fields []models.FieldInput) error {
	if len(fields) == 0 {
		return appErrors.NewStructuralSchemaError(MsgNoFields)
	}
	for i, f := range fields {
		if f.Order == nil || *f.Order != i+1 {
			return appErrors.NewStructuralSchemaError(MsgOrderNotSequential)
		}
	}
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, dup := seen[f.Name]; dup {
			return appErrors.NewStructuralSchemaError(MsgNamesNotUnique)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

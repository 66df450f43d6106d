package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Josh-IE/risk-management/internal/domain/models"
	appErrors "github.com/Josh-IE/risk-management/pkg/errors"
	"github.com/Josh-IE/risk-management/pkg/fieldtypes"
)

func TestSchemaValidator_Structure(t *testing.T) {
	v := NewSchemaValidator(fieldtypes.GetRegistry(), 1000)

	tests := []struct {
		name    string
		fields  []models.FieldInput
		wantMsg string
	}{
		{
			name:   "valid",
			fields: []models.FieldInput{textInput("Location", 1), textInput("Occupation", 2)},
		},
		{
			name:    "no fields",
			fields:  nil,
			wantMsg: MsgNoFields,
		},
		{
			name:    "reordered",
			fields:  []models.FieldInput{textInput("Location", 2), textInput("Occupation", 1)},
			wantMsg: MsgOrderNotSequential,
		},
		{
			name:    "gap",
			fields:  []models.FieldInput{textInput("Location", 1), textInput("Occupation", 3)},
			wantMsg: MsgOrderNotSequential,
		},
		{
			name:    "duplicate order",
			fields:  []models.FieldInput{textInput("Location", 1), textInput("Occupation", 1)},
			wantMsg: MsgOrderNotSequential,
		},
		{
			name:    "not starting at one",
			fields:  []models.FieldInput{textInput("Location", 2), textInput("Occupation", 3)},
			wantMsg: MsgOrderNotSequential,
		},
		{
			name:    "duplicate names",
			fields:  []models.FieldInput{textInput("Age", 1), textInput("Age", 2)},
			wantMsg: MsgNamesNotUnique,
		},
		{
			name:   "names are case sensitive",
			fields: []models.FieldInput{textInput("Age", 1), textInput("age", 2)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&models.SchemaInput{Name: "Auto Insurance", Button: "Save", Fields: tt.fields})
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			var structural *appErrors.StructuralSchemaError
			require.ErrorAs(t, err, &structural)
			assert.Equal(t, tt.wantMsg, structural.Message)
			assert.Equal(t, map[string][]string{"fields": {tt.wantMsg}}, appErrors.GetDetails(err))
		})
	}
}

func TestSchemaValidator_FieldConstraints(t *testing.T) {
	v := NewSchemaValidator(fieldtypes.GetRegistry(), 1000)

	withChoices := func(f models.FieldInput, choices ...string) models.FieldInput {
		f.Choices = choices
		return f
	}
	withBounds := func(f models.FieldInput, min, max *int) models.FieldInput {
		f.MinLength, f.MaxLength = min, max
		return f
	}
	withPattern := func(f models.FieldInput, pattern string) models.FieldInput {
		f.RegexPattern = pattern
		return f
	}

	tests := []struct {
		name    string
		field   models.FieldInput
		attr    string
		wantMsg string
	}{
		{name: "select without choices", field: typedInput("Color", fieldtypes.Select, 1), attr: "choices", wantMsg: MsgChoicesRequired},
		{name: "multiselect without choices", field: typedInput("Colors", fieldtypes.MultiSelect, 1), attr: "choices", wantMsg: MsgChoicesRequired},
		{name: "regex without pattern", field: typedInput("Code", fieldtypes.Regex, 1), attr: "regex_pattern", wantMsg: MsgRegexRequired},
		{name: "pattern does not compile", field: withPattern(typedInput("Code", fieldtypes.Regex, 1), "(abc"), attr: "regex_pattern", wantMsg: "Enter a valid regular expression."},
		{name: "min above max", field: withBounds(textInput("Bio", 1), ptr(10), ptr(5)), attr: "min_length", wantMsg: MsgMinAboveMax},
		{name: "max above limit", field: withBounds(textInput("Bio", 1), nil, ptr(1001)), attr: "max_length", wantMsg: "Ensure this value is less than or equal to 1000."},
		{name: "negative min", field: withBounds(textInput("Bio", 1), ptr(-1), nil), attr: "min_length", wantMsg: "Ensure this value is greater than or equal to 0."},
		{name: "unknown type", field: typedInput("Phone", "phone", 1), attr: "field_type", wantMsg: `"phone" is not a valid choice.`},
		{name: "missing type", field: typedInput("Phone", "", 1), attr: "field_type", wantMsg: MsgRequired},
		{name: "missing order", field: models.FieldInput{Name: "Age", FieldType: fieldtypes.Number}, attr: "order", wantMsg: MsgRequired},
		{name: "blank name", field: textInput("  ", 1), attr: "name", wantMsg: "This field may not be blank."},
		{name: "long choice", field: withChoices(typedInput("Color", fieldtypes.Select, 1), strings.Repeat("a", 256)), attr: "choices", wantMsg: "Ensure this field has no more than 255 characters."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&models.SchemaInput{Name: "Auto Insurance", Button: "Save", Fields: []models.FieldInput{tt.field}})
			var constraint *appErrors.FieldConstraintError
			require.ErrorAs(t, err, &constraint)
			assert.True(t, constraint.Has(0, tt.attr), "violations: %v", constraint.Violations)
			assert.Contains(t, appErrors.GetDetails(err)["fields[0]."+tt.attr], tt.wantMsg)
		})
	}
}

func TestSchemaValidator_ReportsFieldPosition(t *testing.T) {
	v := NewSchemaValidator(fieldtypes.GetRegistry(), 1000)

	err := v.Validate(&models.SchemaInput{
		Name:   "Auto Insurance",
		Button: "Save",
		Fields: []models.FieldInput{
			textInput("Location", 1),
			typedInput("Color", fieldtypes.Select, 2),
			typedInput("Code", fieldtypes.Regex, 3),
		},
	})

	var constraint *appErrors.FieldConstraintError
	require.ErrorAs(t, err, &constraint)
	assert.False(t, constraint.Has(0, "choices"))
	assert.True(t, constraint.Has(1, "choices"))
	assert.True(t, constraint.Has(2, "regex_pattern"))
	assert.Len(t, constraint.Violations, 2)
}

func TestSchemaValidator_SchemaAttributes(t *testing.T) {
	v := NewSchemaValidator(fieldtypes.GetRegistry(), 1000)

	err := v.Validate(&models.SchemaInput{
		Name:   strings.Repeat("n", 256),
		Fields: []models.FieldInput{textInput("Location", 1)},
	})

	var constraint *appErrors.FieldConstraintError
	require.ErrorAs(t, err, &constraint)
	details := appErrors.GetDetails(err)
	assert.Equal(t, []string{"Ensure this field has no more than 255 characters."}, details["name"])
	assert.Equal(t, []string{"This field may not be blank."}, details["button"])
}

func TestSchemaValidator_ConstraintsCheckedBeforeStructure(t *testing.T) {
	v := NewSchemaValidator(fieldtypes.GetRegistry(), 1000)

	err := v.Validate(&models.SchemaInput{
		Name:   "Auto Insurance",
		Button: "Save",
		Fields: []models.FieldInput{typedInput("Color", fieldtypes.Select, 2)},
	})

	var constraint *appErrors.FieldConstraintError
	assert.ErrorAs(t, err, &constraint)
}

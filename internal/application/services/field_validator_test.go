package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Josh-IE/risk-management/internal/domain/models"
	appErrors "github.com/Josh-IE/risk-management/pkg/errors"
	"github.com/Josh-IE/risk-management/pkg/fieldtypes"
)

type MockValueLookup struct {
	mock.Mock
}

func (m *MockValueLookup) ExistsForSuccessfulSubmission(ctx context.Context, tx *sql.Tx, fieldID int64, text string) (bool, error) {
	args := m.Called(ctx, tx, fieldID, text)
	return args.Bool(0), args.Error(1)
}

func TestFieldValidator_Validate(t *testing.T) {
	v := NewFieldValidator(fieldtypes.GetRegistry(), new(MockValueLookup), 1000)
	ctx := context.Background()

	tests := []struct {
		name     string
		field    models.Field
		raw      interface{}
		want     *string
		wantKey  string
		wantMsgs []string
	}{
		{
			name:     "decimal in number field",
			field:    models.Field{Name: "Age", FieldType: fieldtypes.Number, Required: true},
			raw:      "25.06",
			wantKey:  "Age",
			wantMsgs: []string{"A valid integer is required."},
		},
		{
			name:  "integer in number field",
			field: models.Field{Name: "Age", FieldType: fieldtypes.Number, Required: true},
			raw:   "25",
			want:  ptr("25"),
		},
		{
			name:     "empty string on required field",
			field:    models.Field{Name: "Location", FieldType: fieldtypes.Text, Required: true},
			raw:      "",
			wantKey:  "Location",
			wantMsgs: []string{"This field may not be null."},
		},
		{
			name:  "empty string on optional field",
			field: models.Field{Name: "Location", FieldType: fieldtypes.Text},
			raw:   "",
			want:  nil,
		},
		{
			name:  "null checkbox is false",
			field: models.Field{Name: "Agree", FieldType: fieldtypes.Checkbox, Required: true},
			raw:   nil,
			want:  ptr("false"),
		},
		{
			name:  "empty switch is false",
			field: models.Field{Name: "Agree", FieldType: fieldtypes.Switch, Required: true},
			raw:   "",
			want:  ptr("false"),
		},
		{
			name:     "invalid choice",
			field:    models.Field{Name: "Color", FieldType: fieldtypes.Select, Choices: []string{"red"}, Required: true},
			raw:      "blue",
			wantKey:  "Color",
			wantMsgs: []string{`"blue" is not a valid choice.`},
		},
		{
			name:     "error without field name",
			field:    models.Field{FieldType: fieldtypes.Email, Required: true},
			raw:      "nope",
			wantKey:  "fields",
			wantMsgs: []string{"Enter a valid email address."},
		},
		{
			name:  "list stored as json",
			field: models.Field{Name: "Hobbies", FieldType: fieldtypes.Array, Required: true},
			raw:   []interface{}{"coding", "laughing"},
			want:  ptr(`["coding","laughing"]`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Validate(ctx, &tt.field, tt.raw)
			if tt.wantMsgs != nil {
				var valueErr *appErrors.ValueValidationError
				require.ErrorAs(t, err, &valueErr)
				assert.Equal(t, tt.wantKey, valueErr.Key)
				assert.Equal(t, tt.wantMsgs, valueErr.Messages)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Text)
			assert.Nil(t, got.Upload)
		})
	}
}

func TestFieldValidator_UnknownType(t *testing.T) {
	v := NewFieldValidator(fieldtypes.GetRegistry(), new(MockValueLookup), 1000)

	_, err := v.Validate(context.Background(), &models.Field{Name: "Phone", FieldType: "phone"}, "0800")

	var unknown *appErrors.UnknownFieldTypeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, map[string][]string{"fields": {"phone is not a valid field type."}}, appErrors.GetDetails(err))
}

func TestFieldValidator_StoredTextLimit(t *testing.T) {
	v := NewFieldValidator(fieldtypes.GetRegistry(), new(MockValueLookup), 5)

	_, err := v.Validate(context.Background(), &models.Field{Name: "Hobbies", FieldType: fieldtypes.Array}, []interface{}{"coding"})

	var valueErr *appErrors.ValueValidationError
	require.ErrorAs(t, err, &valueErr)
	assert.Equal(t, []string{"Ensure this field has no more than 5 characters."}, valueErr.Messages)
}

func TestFieldValidator_Unique(t *testing.T) {
	ctx := context.Background()
	field := &models.Field{ID: 7, Name: "Email", FieldType: fieldtypes.Email, Required: true, Unique: true}

	t.Run("taken", func(t *testing.T) {
		lookup := new(MockValueLookup)
		lookup.On("ExistsForSuccessfulSubmission", mock.Anything, mock.Anything, int64(7), "josh@techintel.dev").Return(true, nil)
		v := NewFieldValidator(fieldtypes.GetRegistry(), lookup, 1000)

		_, err := v.Validate(ctx, field, "  josh@techintel.dev ")

		var conflict *appErrors.UniquenessConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, map[string][]string{"Email": {appErrors.MsgDuplicateValue}}, appErrors.GetDetails(err))
		lookup.AssertExpectations(t)
	})

	t.Run("free", func(t *testing.T) {
		lookup := new(MockValueLookup)
		lookup.On("ExistsForSuccessfulSubmission", mock.Anything, mock.Anything, int64(7), "josh@techintel.dev").Return(false, nil)
		v := NewFieldValidator(fieldtypes.GetRegistry(), lookup, 1000)

		got, err := v.Validate(ctx, field, "josh@techintel.dev")
		require.NoError(t, err)
		assert.Equal(t, "josh@techintel.dev", *got.Text)
		lookup.AssertExpectations(t)
	})

	t.Run("lookup failure", func(t *testing.T) {
		lookup := new(MockValueLookup)
		lookup.On("ExistsForSuccessfulSubmission", mock.Anything, mock.Anything, int64(7), "josh@techintel.dev").Return(false, errors.New("connection reset"))
		v := NewFieldValidator(fieldtypes.GetRegistry(), lookup, 1000)

		_, err := v.Validate(ctx, field, "josh@techintel.dev")
		require.Error(t, err)
		assert.False(t, appErrors.IsValidation(err))
	})

	t.Run("null skips lookup", func(t *testing.T) {
		lookup := new(MockValueLookup)
		v := NewFieldValidator(fieldtypes.GetRegistry(), lookup, 1000)
		optional := *field
		optional.Required = false

		got, err := v.Validate(ctx, &optional, nil)
		require.NoError(t, err)
		assert.Nil(t, got.Text)
		lookup.AssertNotCalled(t, "ExistsForSuccessfulSubmission", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestFieldValidator_File(t *testing.T) {
	lookup := new(MockValueLookup)
	v := NewFieldValidator(fieldtypes.GetRegistry(), lookup, 1000)
	field := &models.Field{ID: 3, Name: "Resume", FieldType: fieldtypes.File, Required: true, Unique: true}
	upload := &models.FileUpload{Filename: "cv.pdf", Data: []byte("%PDF")}

	got, err := v.Validate(context.Background(), field, upload)
	require.NoError(t, err)
	assert.Same(t, upload, got.Upload)
	assert.Equal(t, "cv.pdf", *got.Text)
	lookup.AssertNotCalled(t, "ExistsForSuccessfulSubmission", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	_, err = v.Validate(context.Background(), field, "cv.pdf")
	var valueErr *appErrors.ValueValidationError
	require.ErrorAs(t, err, &valueErr)
	assert.Equal(t, []string{fieldtypes.MsgNotAFile}, valueErr.Messages)
}

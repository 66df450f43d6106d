package fieldtypes

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

// cleanAndEncode runs the registered rule of typeName over raw
func cleanAndEncode(t *testing.T, typeName string, raw interface{}, c Constraints) (string, error) {
	t.Helper()
	def, ok := Get(typeName)
	require.True(t, ok, "type %s not registered", typeName)
	cleaned, err := def.Clean(raw, c)
	if err != nil {
		return "", err
	}
	return def.Encode(cleaned)
}

func TestRules(t *testing.T) {
	choices := Constraints{Choices: []string{"red", "green", "1"}}

	tests := []struct {
		name     string
		typeName string
		raw      interface{}
		c        Constraints
		want     string
		wantMsg  string
	}{
		{name: "text trims", typeName: Text, raw: "  Joshua ", want: "Joshua"},
		{name: "text accepts numbers", typeName: Text, raw: json.Number("18"), want: "18"},
		{name: "text blank", typeName: Text, raw: "   ", wantMsg: MsgBlank},
		{name: "text rejects bool", typeName: Text, raw: true, wantMsg: MsgNotAString},
		{name: "text rejects list", typeName: TextArea, raw: []interface{}{"a"}, wantMsg: MsgNotAString},
		{name: "text max length", typeName: Text, raw: "abcdef", c: Constraints{MaxLength: intPtr(5)}, wantMsg: "Ensure this field has no more than 5 characters."},
		{name: "text min length", typeName: Password, raw: "ab", c: Constraints{MinLength: intPtr(3)}, wantMsg: "Ensure this field has at least 3 characters."},
		{name: "length counts characters", typeName: Text, raw: "héllo", c: Constraints{MaxLength: intPtr(5)}, want: "héllo"},

		{name: "email valid", typeName: Email, raw: "josh@techintel.dev", want: "josh@techintel.dev"},
		{name: "email invalid", typeName: Email, raw: "josh@", wantMsg: "Enter a valid email address."},
		{name: "email no dot", typeName: Email, raw: "josh@localhost", wantMsg: "Enter a valid email address."},

		{name: "url valid", typeName: URL, raw: "https://example.com/a?b=c", want: "https://example.com/a?b=c"},
		{name: "url invalid", typeName: URL, raw: "example", wantMsg: "Enter a valid URL."},

		{name: "regex match", typeName: Regex, raw: "ABC", c: Constraints{RegexPattern: `^[A-Z]{3}$`}, want: "ABC"},
		{name: "regex mismatch", typeName: Regex, raw: "abc", c: Constraints{RegexPattern: `^[A-Z]{3}$`}, wantMsg: "This value does not match the required pattern."},

		{name: "float string", typeName: Float, raw: "25.06", want: "25.06"},
		{name: "float integral", typeName: Float, raw: json.Number("25"), want: "25"},
		{name: "float exponent", typeName: Float, raw: "1e3", want: "1000"},
		{name: "float word", typeName: Float, raw: "abc", wantMsg: MsgInvalidNumber},
		{name: "float nan", typeName: Float, raw: "nan", wantMsg: MsgInvalidNumber},
		{name: "float bool", typeName: Float, raw: false, wantMsg: MsgInvalidNumber},

		{name: "number string", typeName: Number, raw: "25", want: "25"},
		{name: "number json", typeName: Number, raw: json.Number("18"), want: "18"},
		{name: "number integral float", typeName: Number, raw: float64(18), want: "18"},
		{name: "number decimal", typeName: Number, raw: "25.06", wantMsg: MsgInvalidInteger},
		{name: "number decimal json", typeName: Number, raw: json.Number("25.0"), wantMsg: MsgInvalidInteger},
		{name: "number fractional float", typeName: Number, raw: 2.5, wantMsg: MsgInvalidInteger},
		{name: "number bool", typeName: Number, raw: true, wantMsg: MsgInvalidInteger},

		{name: "date valid", typeName: Date, raw: "2006-04-27", want: "2006-04-27"},
		{name: "date invalid", typeName: Date, raw: "April272006", wantMsg: MsgInvalidDate},
		{name: "date impossible", typeName: Date, raw: "2006-02-30", wantMsg: MsgInvalidDate},

		{name: "time short", typeName: Time, raw: "9:05", want: "09:05:00"},
		{name: "time fraction", typeName: Time, raw: "13:45:10.5", want: "13:45:10.500000"},
		{name: "time out of range", typeName: Time, raw: "25:00", wantMsg: MsgInvalidTime},
		{name: "time garbage", typeName: Time, raw: "noon", wantMsg: MsgInvalidTime},

		{name: "select member", typeName: Select, raw: "red", c: choices, want: "red"},
		{name: "select number member", typeName: Radio, raw: json.Number("1"), c: choices, want: "1"},
		{name: "select not member", typeName: Select, raw: "blue", c: choices, wantMsg: `"blue" is not a valid choice.`},

		{name: "multiselect members", typeName: MultiSelect, raw: []interface{}{"red", "green", "red"}, c: choices, want: `["red","green"]`},
		{name: "multiselect bad element", typeName: MultiSelect, raw: []interface{}{"red", "blue"}, c: choices, wantMsg: `"blue" is not a valid choice.`},
		{name: "multiselect not a list", typeName: MultiSelect, raw: "red", c: choices, wantMsg: `Expected a list of items but got type "string".`},

		{name: "checkbox true", typeName: Checkbox, raw: "on", want: "true"},
		{name: "checkbox false", typeName: Checkbox, raw: "False", want: "false"},
		{name: "switch bool", typeName: Switch, raw: true, want: "true"},
		{name: "switch number", typeName: Switch, raw: json.Number("0"), want: "false"},
		{name: "checkbox garbage", typeName: Checkbox, raw: "maybe", wantMsg: MsgInvalidBoolean},

		{name: "array list", typeName: Array, raw: []interface{}{"coding", "laughing"}, want: `["coding","laughing"]`},
		{name: "array strings", typeName: Array, raw: []string{"a"}, want: `["a"]`},
		{name: "array object", typeName: Array, raw: map[string]interface{}{"a": 1}, wantMsg: `Expected a list of items but got type "object".`},
		{name: "array number", typeName: Array, raw: json.Number("3"), wantMsg: `Expected a list of items but got type "number".`},

		{name: "file upload", typeName: File, raw: &Upload{Filename: "foo.txt", Data: []byte("hi")}, want: "foo.txt"},
		{name: "file string", typeName: File, raw: "foo.txt", wantMsg: MsgNotAFile},
		{name: "file empty", typeName: File, raw: &Upload{Filename: "foo.txt"}, wantMsg: MsgEmptyFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cleanAndEncode(t, tt.typeName, tt.raw, tt.c)
			if tt.wantMsg != "" {
				require.Error(t, err)
				var ve *ValueError
				require.ErrorAs(t, err, &ve)
				assert.Contains(t, ve.Messages, tt.wantMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTextRule_CollectsLengthAndFormatMessages(t *testing.T) {
	_, err := cleanAndEncode(t, Email, "notanemail", Constraints{MaxLength: intPtr(3)})
	require.Error(t, err)
	var ve *ValueError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{
		"Ensure this field has no more than 3 characters.",
		"Enter a valid email address.",
	}, ve.Messages)
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "string", TypeName("x"))
	assert.Equal(t, "number", TypeName(json.Number("1")))
	assert.Equal(t, "boolean", TypeName(true))
	assert.Equal(t, "object", TypeName(map[string]interface{}{}))
	assert.Equal(t, "file", TypeName(&Upload{}))
}

func TestClockTime_String(t *testing.T) {
	assert.Equal(t, "07:08:09", ClockTime{Hour: 7, Minute: 8, Second: 9}.String())
	assert.True(t, strings.HasSuffix(ClockTime{Microsecond: 42}.String(), ".000042"))
}

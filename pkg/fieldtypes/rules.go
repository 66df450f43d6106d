package fieldtypes

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Josh-IE/risk-management/pkg/validator"
)

// Rule validates raw submitted values of one field type and renders the
// cleaned result as stored text
type Rule interface {
	Clean(raw interface{}, c Constraints) (interface{}, error)
	Encode(cleaned interface{}) (string, error)
}

// Constraints are the type-specific attributes of a field that a rule reads
type Constraints struct {
	MinLength    *int
	MaxLength    *int
	Choices      []string
	RegexPattern string
}

// Upload is a binary payload submitted for a file field
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Value error messages
const (
	MsgNotAString     = "Not a valid string."
	MsgBlank          = "This field may not be blank."
	MsgNull           = "This field may not be null."
	MsgInvalidNumber  = "A valid number is required."
	MsgInvalidInteger = "A valid integer is required."
	MsgInvalidDate    = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	MsgInvalidTime    = "Time has wrong format. Use one of these formats instead: hh:mm[:ss[.uuuuuu]]."
	MsgInvalidBoolean = "Must be a valid boolean."
	MsgNotAFile       = "The submitted data was not a file. Check the encoding type on the form."
	MsgEmptyFile      = "The submitted file is empty."
	MsgInvalidChoice  = "\"%s\" is not a valid choice."
	MsgNotAList       = "Expected a list of items but got type \"%s\"."
)

// ValueError carries the messages of a rejected value
type ValueError struct {
	Messages []string
}

func (e *ValueError) Error() string {
	return strings.Join(e.Messages, " ")
}

func invalid(messages ...string) *ValueError {
	return &ValueError{Messages: messages}
}

type ruleFuncs struct {
	clean  func(raw interface{}, c Constraints) (interface{}, error)
	encode func(cleaned interface{}) (string, error)
}

func (r ruleFuncs) Clean(raw interface{}, c Constraints) (interface{}, error) {
	return r.clean(raw, c)
}

func (r ruleFuncs) Encode(cleaned interface{}) (string, error) {
	return r.encode(cleaned)
}

func builtinRules() map[string]Rule {
	text := ruleFuncs{clean: textRule(""), encode: encodeString}
	choice := ruleFuncs{clean: cleanChoice, encode: encodeString}
	boolean := ruleFuncs{clean: cleanBoolean, encode: encodeBoolean}

	return map[string]Rule{
		Array:       ruleFuncs{clean: cleanArray, encode: encodeJSON},
		Checkbox:    boolean,
		Date:        ruleFuncs{clean: cleanDate, encode: encodeDate},
		Email:       ruleFuncs{clean: textRule(validator.Email), encode: encodeString},
		File:        ruleFuncs{clean: cleanFile, encode: encodeFile},
		Float:       ruleFuncs{clean: cleanFloat, encode: encodeFloat},
		MultiSelect: ruleFuncs{clean: cleanMultiChoice, encode: encodeJSON},
		Number:      ruleFuncs{clean: cleanInteger, encode: encodeInteger},
		Password:    text,
		Radio:       choice,
		Regex:       ruleFuncs{clean: textRule(validator.Regex), encode: encodeString},
		Select:      choice,
		Switch:      boolean,
		Text:        text,
		TextArea:    text,
		Time:        ruleFuncs{clean: cleanTime, encode: encodeTime},
		URL:         ruleFuncs{clean: textRule(validator.URL), encode: encodeString},
	}
}

// textRule trims the value, rejects blanks, then runs the length bounds and
// the optional format validator. Every failing check contributes a message.
func textRule(format string) func(raw interface{}, c Constraints) (interface{}, error) {
	return func(raw interface{}, c Constraints) (interface{}, error) {
		s, ok := scalarString(raw)
		if !ok {
			return nil, invalid(MsgNotAString)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, invalid(MsgBlank)
		}

		var messages []string
		bounds := map[string]interface{}{}
		if c.MaxLength != nil {
			bounds["max"] = *c.MaxLength
		}
		if c.MinLength != nil {
			bounds["min"] = *c.MinLength
		}
		if err := validator.Validate(validator.Length, s, bounds); err != nil {
			messages = append(messages, err.Error())
		}
		if format != "" {
			if err := validator.Validate(format, s, map[string]interface{}{"pattern": c.RegexPattern}); err != nil {
				messages = append(messages, err.Error())
			}
		}
		if len(messages) > 0 {
			return nil, invalid(messages...)
		}
		return s, nil
	}
}

// scalarString accepts strings and numbers, the inputs a text field coerces
func scalarString(raw interface{}) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	}
	return "", false
}

func encodeString(cleaned interface{}) (string, error) {
	s, ok := cleaned.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", cleaned)
	}
	return s, nil
}

var floatLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

func cleanFloat(raw interface{}, _ Constraints) (interface{}, error) {
	var f float64
	switch v := raw.(type) {
	case bool:
		return nil, invalid(MsgInvalidNumber)
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number, string:
		s := strings.TrimSpace(fmt.Sprint(v))
		if !floatLiteral.MatchString(s) {
			return nil, invalid(MsgInvalidNumber)
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, invalid(MsgInvalidNumber)
		}
		f = parsed
	default:
		return nil, invalid(MsgInvalidNumber)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, invalid(MsgInvalidNumber)
	}
	return f, nil
}

func encodeFloat(cleaned interface{}) (string, error) {
	f, ok := cleaned.(float64)
	if !ok {
		return "", fmt.Errorf("expected float64, got %T", cleaned)
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

var integerLiteral = regexp.MustCompile(`^[+-]?\d+$`)

func cleanInteger(raw interface{}, _ Constraints) (interface{}, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || math.Abs(v) > math.MaxInt64 {
			return nil, invalid(MsgInvalidInteger)
		}
		return int64(v), nil
	case json.Number, string:
		s := strings.TrimSpace(fmt.Sprint(v))
		if !integerLiteral.MatchString(s) {
			return nil, invalid(MsgInvalidInteger)
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, invalid(MsgInvalidInteger)
		}
		return n, nil
	}
	return nil, invalid(MsgInvalidInteger)
}

func encodeInteger(cleaned interface{}) (string, error) {
	n, ok := cleaned.(int64)
	if !ok {
		return "", fmt.Errorf("expected int64, got %T", cleaned)
	}
	return strconv.FormatInt(n, 10), nil
}

const dateLayout = "2006-01-02"

func cleanDate(raw interface{}, _ Constraints) (interface{}, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, invalid(MsgInvalidDate)
		}
		return t, nil
	}
	return nil, invalid(MsgInvalidDate)
}

func encodeDate(cleaned interface{}) (string, error) {
	t, ok := cleaned.(time.Time)
	if !ok {
		return "", fmt.Errorf("expected time.Time, got %T", cleaned)
	}
	return t.Format(dateLayout), nil
}

// ClockTime is a time of day with microsecond precision
type ClockTime struct {
	Hour, Minute, Second, Microsecond int
}

// String renders hh:mm:ss, with a six digit fraction when non-zero
func (t ClockTime) String() string {
	if t.Microsecond != 0 {
		return fmt.Sprintf("%02d:%02d:%02d.%06d", t.Hour, t.Minute, t.Second, t.Microsecond)
	}
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

var timeLiteral = regexp.MustCompile(`^(\d{1,2}):(\d{1,2})(?::(\d{1,2})(?:[.,](\d{1,6})\d{0,6})?)?$`)

func cleanTime(raw interface{}, _ Constraints) (interface{}, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, invalid(MsgInvalidTime)
	}
	m := timeLiteral.FindStringSubmatch(s)
	if m == nil {
		return nil, invalid(MsgInvalidTime)
	}

	var t ClockTime
	t.Hour, _ = strconv.Atoi(m[1])
	t.Minute, _ = strconv.Atoi(m[2])
	if m[3] != "" {
		t.Second, _ = strconv.Atoi(m[3])
	}
	if m[4] != "" {
		frac := m[4] + strings.Repeat("0", 6-len(m[4]))
		t.Microsecond, _ = strconv.Atoi(frac)
	}
	if t.Hour > 23 || t.Minute > 59 || t.Second > 59 {
		return nil, invalid(MsgInvalidTime)
	}
	return t, nil
}

func encodeTime(cleaned interface{}) (string, error) {
	t, ok := cleaned.(ClockTime)
	if !ok {
		return "", fmt.Errorf("expected ClockTime, got %T", cleaned)
	}
	return t.String(), nil
}

// choiceString renders a submitted choice the way it is compared with the
// declared choices
func choiceString(raw interface{}) string {
	if s, ok := scalarString(raw); ok {
		return s
	}
	if b, ok := raw.(bool); ok {
		return strconv.FormatBool(b)
	}
	return fmt.Sprint(raw)
}

func isChoice(value string, choices []string) bool {
	for _, c := range choices {
		if c == value {
			return true
		}
	}
	return false
}

func cleanChoice(raw interface{}, c Constraints) (interface{}, error) {
	s := choiceString(raw)
	if !isChoice(s, c.Choices) {
		return nil, invalid(fmt.Sprintf(MsgInvalidChoice, s))
	}
	return s, nil
}

func cleanMultiChoice(raw interface{}, c Constraints) (interface{}, error) {
	items, err := asList(raw)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		s := choiceString(item)
		if !isChoice(s, c.Choices) {
			return nil, invalid(fmt.Sprintf(MsgInvalidChoice, s))
		}
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out, nil
}

func cleanArray(raw interface{}, _ Constraints) (interface{}, error) {
	items, err := asList(raw)
	if err != nil {
		return nil, err
	}
	out := make([]interface{}, len(items))
	for i, item := range items {
		if u, ok := item.(*Upload); ok {
			out[i] = u.Filename
			continue
		}
		out[i] = item
	}
	return out, nil
}

func asList(raw interface{}) ([]interface{}, error) {
	switch v := raw.(type) {
	case []interface{}:
		return v, nil
	case []string:
		out := make([]interface{}, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, nil
	}
	return nil, invalid(fmt.Sprintf(MsgNotAList, TypeName(raw)))
}

// TypeName names the JSON kind of a decoded value
func TypeName(raw interface{}) string {
	switch raw.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, float32, int, int64, int32:
		return "number"
	case map[string]interface{}:
		return "object"
	case []interface{}, []string:
		return "array"
	case *Upload:
		return "file"
	}
	return fmt.Sprintf("%T", raw)
}

func encodeJSON(cleaned interface{}) (string, error) {
	data, err := json.Marshal(cleaned)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

var (
	truthy = map[string]bool{"t": true, "T": true, "y": true, "Y": true, "yes": true, "Yes": true, "YES": true,
		"true": true, "True": true, "TRUE": true, "on": true, "On": true, "ON": true, "1": true}
	falsy = map[string]bool{"f": true, "F": true, "n": true, "N": true, "no": true, "No": true, "NO": true,
		"false": true, "False": true, "FALSE": true, "off": true, "Off": true, "OFF": true, "0": true}
)

func cleanBoolean(raw interface{}, _ Constraints) (interface{}, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		if truthy[v] {
			return true, nil
		}
		if falsy[v] {
			return false, nil
		}
	case json.Number:
		return cleanBoolean(v.String(), Constraints{})
	case float64:
		if v == 1 {
			return true, nil
		}
		if v == 0 {
			return false, nil
		}
	case int:
		if v == 1 {
			return true, nil
		}
		if v == 0 {
			return false, nil
		}
	}
	return nil, invalid(MsgInvalidBoolean)
}

func encodeBoolean(cleaned interface{}) (string, error) {
	b, ok := cleaned.(bool)
	if !ok {
		return "", fmt.Errorf("expected bool, got %T", cleaned)
	}
	return strconv.FormatBool(b), nil
}

func cleanFile(raw interface{}, _ Constraints) (interface{}, error) {
	u, ok := raw.(*Upload)
	if !ok || u == nil {
		return nil, invalid(MsgNotAFile)
	}
	if len(u.Data) == 0 {
		return nil, invalid(MsgEmptyFile)
	}
	return u, nil
}

// encodeFile renders the upload name; callers replace it with the blob
// locator once the payload is stored
func encodeFile(cleaned interface{}) (string, error) {
	u, ok := cleaned.(*Upload)
	if !ok {
		return "", fmt.Errorf("expected *Upload, got %T", cleaned)
	}
	return u.Filename, nil
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// AppError is the base interface for all application errors
type AppError interface {
	error
	HTTPStatus() int
	Code() string
}

// DetailedError is implemented by errors that can attribute their messages
// to a specific key (a field display name, "fields", "data", "fields[2].choices").
type DetailedError interface {
	Details() map[string][]string
}

// badRequest is embedded by every error of the 400 validation taxonomy
type badRequest struct{}

func (badRequest) HTTPStatus() int { return http.StatusBadRequest }

// Common detail keys
const (
	KeyFields = "fields"
	KeyData   = "data"
	KeyName   = "name"
)

// NotFoundError represents a resource that was not found
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with ID '%s' not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) HTTPStatus() int {
	return http.StatusNotFound
}

func (e *NotFoundError) Code() string {
	return "NOT_FOUND"
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents invalid input that is not attributable to the
// schema or value taxonomy (malformed body, bad path parameter).
type ValidationError struct {
	badRequest
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Code() string {
	return "VALIDATION_ERROR"
}

func (e *ValidationError) Details() map[string][]string {
	key := e.Field
	if key == "" {
		key = "non_field_errors"
	}
	return map[string][]string{key: {e.Message}}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// StructuralSchemaError reports a schema-definition rule broken by the
// field list as a whole: empty list, order sequence, duplicate names.
type StructuralSchemaError struct {
	badRequest
	Message string
}

func (e *StructuralSchemaError) Error() string {
	return e.Message
}

func (e *StructuralSchemaError) Code() string {
	return "SCHEMA_STRUCTURE_ERROR"
}

func (e *StructuralSchemaError) Details() map[string][]string {
	return map[string][]string{KeyFields: {e.Message}}
}

// NewStructuralSchemaError creates a new StructuralSchemaError
func NewStructuralSchemaError(message string) *StructuralSchemaError {
	return &StructuralSchemaError{Message: message}
}

// ConstraintViolation is one invalid attribute of one field payload.
// Index is the position of the field in the submitted list, or -1 for an
// attribute of the schema itself.
type ConstraintViolation struct {
	Index     int
	Attribute string
	Message   string
}

// Key renders the violation location, e.g. "fields[1].min_length".
func (v ConstraintViolation) Key() string {
	if v.Index < 0 {
		return v.Attribute
	}
	return fmt.Sprintf("%s[%d].%s", KeyFields, v.Index, v.Attribute)
}

// FieldConstraintError collects every invalid field attribute of a schema payload
type FieldConstraintError struct {
	badRequest
	Violations []ConstraintViolation
}

func (e *FieldConstraintError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Key(), v.Message))
	}
	return "invalid field attributes: " + strings.Join(parts, "; ")
}

func (e *FieldConstraintError) Code() string {
	return "FIELD_CONSTRAINT_ERROR"
}

func (e *FieldConstraintError) Details() map[string][]string {
	details := make(map[string][]string, len(e.Violations))
	for _, v := range e.Violations {
		details[v.Key()] = append(details[v.Key()], v.Message)
	}
	return details
}

// Has reports whether a violation exists for the given index and attribute
func (e *FieldConstraintError) Has(index int, attribute string) bool {
	for _, v := range e.Violations {
		if v.Index == index && v.Attribute == attribute {
			return true
		}
	}
	return false
}

// ValueValidationError reports a submitted value rejected by its field's type rule.
// Key is the field's display name when known, otherwise "data" or "fields".
type ValueValidationError struct {
	badRequest
	Key      string
	Messages []string
}

func (e *ValueValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Key, strings.Join(e.Messages, " "))
}

func (e *ValueValidationError) Code() string {
	return "VALUE_VALIDATION_ERROR"
}

func (e *ValueValidationError) Details() map[string][]string {
	return map[string][]string{e.Key: e.Messages}
}

// NewValueValidationError creates a new ValueValidationError
func NewValueValidationError(key string, messages ...string) *ValueValidationError {
	return &ValueValidationError{Key: key, Messages: messages}
}

// UniquenessConflictError reports a duplicate value on a unique field
type UniquenessConflictError struct {
	badRequest
	FieldName string
	Value     string
}

// MsgDuplicateValue is the message attached to the field's display name
const MsgDuplicateValue = "An entry with this value already exists."

func (e *UniquenessConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.FieldName, MsgDuplicateValue)
}

func (e *UniquenessConflictError) Code() string {
	return "UNIQUENESS_CONFLICT"
}

func (e *UniquenessConflictError) Details() map[string][]string {
	return map[string][]string{e.FieldName: {MsgDuplicateValue}}
}

// NewUniquenessConflictError creates a new UniquenessConflictError
func NewUniquenessConflictError(fieldName, value string) *UniquenessConflictError {
	return &UniquenessConflictError{FieldName: fieldName, Value: value}
}

// UnknownFieldTypeError reports a stored field whose type tag is not registered
type UnknownFieldTypeError struct {
	badRequest
	FieldType string
}

func (e *UnknownFieldTypeError) Error() string {
	return fmt.Sprintf("%s is not a valid field type.", e.FieldType)
}

func (e *UnknownFieldTypeError) Code() string {
	return "UNKNOWN_FIELD_TYPE"
}

func (e *UnknownFieldTypeError) Details() map[string][]string {
	return map[string][]string{KeyFields: {e.Error()}}
}

// NewUnknownFieldTypeError creates a new UnknownFieldTypeError
func NewUnknownFieldTypeError(fieldType string) *UnknownFieldTypeError {
	return &UnknownFieldTypeError{FieldType: fieldType}
}

// ConflictError represents a conflict with existing data
type ConflictError struct {
	Resource string
	Field    string
	Value    string
}

func (e *ConflictError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("%s already exists with %s='%s'", e.Resource, e.Field, e.Value)
	}
	return fmt.Sprintf("%s already exists", e.Resource)
}

func (e *ConflictError) HTTPStatus() int {
	return http.StatusConflict
}

func (e *ConflictError) Code() string {
	return "CONFLICT"
}

func (e *ConflictError) Details() map[string][]string {
	if e.Field == "" {
		return nil
	}
	return map[string][]string{e.Field: {fmt.Sprintf("%s with this %s already exists.", e.Resource, e.Field)}}
}

// NewConflictError creates a new ConflictError
func NewConflictError(resource, field, value string) *ConflictError {
	return &ConflictError{Resource: resource, Field: field, Value: value}
}

// InternalError represents unexpected server errors
type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("internal error: %s (caused by: %v)", e.Message, e.Cause)
	}
	return fmt.Sprintf("internal error: %s", e.Message)
}

func (e *InternalError) HTTPStatus() int {
	return http.StatusInternalServerError
}

func (e *InternalError) Code() string {
	return "INTERNAL_ERROR"
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

// NewInternalError creates a new InternalError
func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{Message: message, Cause: cause}
}

// Helper functions for error checking

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// IsValidation reports whether err belongs to the 400-class validation taxonomy
func IsValidation(err error) bool {
	var appErr AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.HTTPStatus() == http.StatusBadRequest
}

// IsConflict checks if an error is a ConflictError
func IsConflict(err error) bool {
	var conflict *ConflictError
	return errors.As(err, &conflict)
}

// GetHTTPStatus returns the HTTP status code for an error
// Returns 500 if the error doesn't implement AppError
func GetHTTPStatus(err error) int {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// GetErrorCode returns the error code for an error
// Returns "UNKNOWN_ERROR" if the error doesn't implement AppError
func GetErrorCode(err error) string {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}
	return "UNKNOWN_ERROR"
}

// GetDetails returns the keyed messages of err, or nil
func GetDetails(err error) map[string][]string {
	var detailed DetailedError
	if errors.As(err, &detailed) {
		return detailed.Details()
	}
	return nil
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

// ToResponse converts an error to an ErrorResponse
func ToResponse(err error) ErrorResponse {
	return ErrorResponse{
		Code:    GetErrorCode(err),
		Message: err.Error(),
		Details: GetDetails(err),
	}
}

// SortedKeys returns the detail keys in a stable order, used by log lines
func SortedKeys(details map[string][]string) []string {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

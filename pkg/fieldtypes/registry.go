package fieldtypes

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"
)

//go:embed fieldTypes.json
var fieldTypesFS embed.FS

// Type tags
const (
	Array       = "array"
	Checkbox    = "checkbox"
	Date        = "date"
	Email       = "email"
	File        = "file"
	Float       = "float"
	MultiSelect = "multiselect"
	Number      = "number"
	Password    = "password"
	Radio       = "radio"
	Regex       = "regex"
	Select      = "select"
	Switch      = "switch"
	Text        = "text"
	TextArea    = "textarea"
	Time        = "time"
	URL         = "url"
)

// FieldTypeDefinition describes one supported field type and the rule that
// validates and normalizes its values
type FieldTypeDefinition struct {
	Name        string `json:"value"`
	Label       string `json:"text"`
	Description string `json:"description"`

	rule Rule
}

// Choice is the {value, text} presentation pair of a field type
type Choice struct {
	Value string `json:"value"`
	Text  string `json:"text"`
}

// Clean validates raw against the type rule and returns the normalized value
func (d FieldTypeDefinition) Clean(raw interface{}, c Constraints) (interface{}, error) {
	return d.rule.Clean(raw, c)
}

// Encode renders a cleaned value as the text stored for it
func (d FieldTypeDefinition) Encode(cleaned interface{}) (string, error) {
	return d.rule.Encode(cleaned)
}

// IsFile reports whether values of this type are binary uploads
func (d FieldTypeDefinition) IsFile() bool {
	return d.Name == File
}

// IsBoolean reports whether a null value of this type means false
func (d FieldTypeDefinition) IsBoolean() bool {
	return d.Name == Checkbox || d.Name == Switch
}

// Registry holds field type definitions. It is populated once and never
// mutated afterwards.
type Registry struct {
	types map[string]FieldTypeDefinition
	order []string
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// GetRegistry returns the singleton field types registry
func GetRegistry() *Registry {
	once.Do(func() {
		data, err := fieldTypesFS.ReadFile("fieldTypes.json")
		if err != nil {
			panic(fmt.Sprintf("fieldtypes: read embedded definitions: %v", err))
		}
		defaultRegistry, err = NewRegistry(data, builtinRules())
		if err != nil {
			panic(fmt.Sprintf("fieldtypes: %v", err))
		}
	})
	return defaultRegistry
}

// NewRegistry builds a registry from a JSON list of definitions. Every
// definition must have a rule.
func NewRegistry(data []byte, rules map[string]Rule) (*Registry, error) {
	var defs []FieldTypeDefinition
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("parse definitions: %w", err)
	}

	r := &Registry{
		types: make(map[string]FieldTypeDefinition, len(defs)),
		order: make([]string, 0, len(defs)),
	}
	for _, def := range defs {
		if _, dup := r.types[def.Name]; dup {
			return nil, fmt.Errorf("duplicate field type %q", def.Name)
		}
		rule, ok := rules[def.Name]
		if !ok {
			return nil, fmt.Errorf("field type %q has no validation rule", def.Name)
		}
		def.rule = rule
		r.types[def.Name] = def
		r.order = append(r.order, def.Name)
	}
	return r, nil
}

// Get returns a field type definition by name
func (r *Registry) Get(typeName string) (FieldTypeDefinition, bool) {
	def, ok := r.types[typeName]
	return def, ok
}

// IsRegistered checks if a type tag is known
func (r *Registry) IsRegistered(typeName string) bool {
	_, ok := r.types[typeName]
	return ok
}

// Names returns the type tags in presentation order
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Choices returns the {value, text} pairs in presentation order
func (r *Registry) Choices() []Choice {
	out := make([]Choice, 0, len(r.order))
	for _, name := range r.order {
		def := r.types[name]
		out = append(out, Choice{Value: def.Name, Text: def.Label})
	}
	return out
}

// Package-level convenience functions

// Get returns a field type definition from the default registry
func Get(typeName string) (FieldTypeDefinition, bool) {
	return GetRegistry().Get(typeName)
}

// IsRegistered checks the default registry for a type tag
func IsRegistered(typeName string) bool {
	return GetRegistry().IsRegistered(typeName)
}

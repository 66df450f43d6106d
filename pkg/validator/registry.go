// Package validator provides a pluggable registry of primitive string checks
// used by the field type rules
package validator

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"
)

// ValidatorFunc is the signature for validator functions
// Takes a value and optional configuration, returns an error if validation fails
type ValidatorFunc func(value string, config map[string]interface{}) error

// Built-in validator names
const (
	Email  = "email"
	URL    = "url"
	Regex  = "regex"
	Length = "length"
)

// Messages shared with the field type rules
const (
	MsgInvalidEmail   = "Enter a valid email address."
	MsgInvalidURL     = "Enter a valid URL."
	MsgPatternFailed  = "This value does not match the required pattern."
	MsgMaxLengthFmt   = "Ensure this field has no more than %d characters."
	MsgMinLengthFmt   = "Ensure this field has at least %d characters."
	MsgInvalidPattern = "Enter a valid regular expression."
)

// Registry holds registered validators
type Registry struct {
	validators map[string]ValidatorFunc
	patterns   map[string]*regexp.Regexp
	mu         sync.RWMutex
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// GetRegistry returns the singleton validator registry
func GetRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = &Registry{
			validators: make(map[string]ValidatorFunc),
			patterns:   make(map[string]*regexp.Regexp),
		}
		defaultRegistry.registerBuiltins()
	})
	return defaultRegistry
}

// register adds a validator to the registry
func (r *Registry) register(name string, fn ValidatorFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validators[name] = fn
}

// Get returns a validator by name
func (r *Registry) Get(name string) (ValidatorFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.validators[name]
	return fn, ok
}

// Validate runs a named validator
func (r *Registry) Validate(name string, value string, config map[string]interface{}) error {
	fn, ok := r.Get(name)
	if !ok {
		return fmt.Errorf("validator '%s' not found", name)
	}
	return fn(value, config)
}

// CompilePattern compiles and memoizes a field's regex pattern
func (r *Registry) CompilePattern(pattern string) (*regexp.Regexp, error) {
	r.mu.RLock()
	re, ok := r.patterns[pattern]
	r.mu.RUnlock()
	if ok {
		return re, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.patterns[pattern] = re
	r.mu.Unlock()
	return re, nil
}

// registerBuiltins registers all built-in validators
func (r *Registry) registerBuiltins() {
	r.register(Email, func(value string, config map[string]interface{}) error {
		if !IsEmail(value) {
			return fmt.Errorf("%s", MsgInvalidEmail)
		}
		return nil
	})

	r.register(URL, func(value string, config map[string]interface{}) error {
		if !IsURL(value) {
			return fmt.Errorf("%s", MsgInvalidURL)
		}
		return nil
	})

	r.register(Regex, func(value string, config map[string]interface{}) error {
		pattern, _ := config["pattern"].(string)
		re, err := r.CompilePattern(pattern)
		if err != nil {
			return fmt.Errorf("%s", MsgPatternFailed)
		}
		if !re.MatchString(value) {
			return fmt.Errorf("%s", MsgPatternFailed)
		}
		return nil
	})

	// Length bounds count characters, not bytes
	r.register(Length, func(value string, config map[string]interface{}) error {
		length := utf8.RuneCountInString(value)
		if max, ok := config["max"].(int); ok && length > max {
			return fmt.Errorf(MsgMaxLengthFmt, max)
		}
		if min, ok := config["min"].(int); ok && length < min {
			return fmt.Errorf(MsgMinLengthFmt, min)
		}
		return nil
	})
}

var emailLocalPart = regexp.MustCompile(`^[-!#$%&'*+/=?^_` + "`" + `{}|~0-9A-Za-z]+(\.[-!#$%&'*+/=?^_` + "`" + `{}|~0-9A-Za-z]+)*$`)
var hostLabel = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?$`)

// IsEmail reports whether value is a bare address (no display name) with a
// dotted domain
func IsEmail(value string) bool {
	if value == "" || strings.ContainsAny(value, " \t\r\n<>") {
		return false
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value || addr.Name != "" {
		return false
	}
	at := strings.LastIndex(value, "@")
	local, domain := value[:at], value[at+1:]
	if !emailLocalPart.MatchString(local) {
		return false
	}
	return isHostname(domain, true)
}

// IsURL reports whether value is an absolute http(s)/ftp(s) URL with a host
func IsURL(value string) bool {
	if value == "" || strings.ContainsAny(value, " \t\r\n") {
		return false
	}
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "ftp", "ftps":
	default:
		return false
	}
	host := u.Hostname()
	if host == "" {
		return false
	}
	if strings.EqualFold(host, "localhost") || isIPLiteral(host) {
		return true
	}
	return isHostname(host, true)
}

func isHostname(host string, requireDot bool) bool {
	host = strings.TrimSuffix(host, ".")
	labels := strings.Split(host, ".")
	if requireDot && len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if !hostLabel.MatchString(label) {
			return false
		}
	}
	tld := labels[len(labels)-1]
	return !isAllDigits(tld)
}

func isIPLiteral(host string) bool {
	if strings.Contains(host, ":") {
		return true // url.Hostname strips the brackets of IPv6 literals
	}
	parts := strings.Split(host, ".")
	if len(parts) != 4 {
		return false
	}
	for _, p := range parts {
		if p == "" || len(p) > 3 || !isAllDigits(p) {
			return false
		}
	}
	return true
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Validate runs a named validator using the default registry
func Validate(name string, value string, config map[string]interface{}) error {
	return GetRegistry().Validate(name, value, config)
}

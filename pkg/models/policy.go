package models

import "time"

// Character class names, in the order the generator guarantees them.
const (
	ClassUppercase = "uppercase"
	ClassLowercase = "lowercase"
	ClassNumbers   = "numbers"
	ClassSymbols   = "symbols"
)

// PasswordPolicy describes how a password should be composed.
type PasswordPolicy struct {
	Length            int    `json:"length" yaml:"length"`
	IncludeUppercase  bool   `json:"include_uppercase" yaml:"include_uppercase"`
	IncludeLowercase  bool   `json:"include_lowercase" yaml:"include_lowercase"`
	IncludeNumbers    bool   `json:"include_numbers" yaml:"include_numbers"`
	IncludeSymbols    bool   `json:"include_symbols" yaml:"include_symbols"`
	CustomCharacters  string `json:"custom_characters,omitempty" yaml:"custom_characters"`
	ExcludeCharacters string `json:"exclude_characters,omitempty" yaml:"exclude_characters"`
	ExcludeAmbiguous  bool   `json:"exclude_ambiguous" yaml:"exclude_ambiguous"`
}

// DefaultPolicy returns a 16 character policy using every class.
func DefaultPolicy() PasswordPolicy {
	return PasswordPolicy{
		Length:           16,
		IncludeUppercase: true,
		IncludeLowercase: true,
		IncludeNumbers:   true,
		IncludeSymbols:   true,
	}
}

// EnabledClasses returns the enabled class names in guarantee order.
func (p PasswordPolicy) EnabledClasses() []string {
	var out []string
	if p.IncludeUppercase {
		out = append(out, ClassUppercase)
	}
	if p.IncludeLowercase {
		out = append(out, ClassLowercase)
	}
	if p.IncludeNumbers {
		out = append(out, ClassNumbers)
	}
	if p.IncludeSymbols {
		out = append(out, ClassSymbols)
	}
	return out
}

// RequestEntry records a single API request event.
type RequestEntry struct {
	ID             int64          `json:"id"`
	RequestID      string         `json:"request_id"`
	Timestamp      time.Time      `json:"timestamp"`
	Operation      string         `json:"operation"`
	Path           string         `json:"path"`
	Status         string         `json:"status"`
	ResponseCode   int            `json:"response_code"`
	ResponseTimeMs int64          `json:"response_time_ms"`
	ClientIP       string         `json:"client_ip"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

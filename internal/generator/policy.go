package generator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/org/vaultguard/pkg/models"
)

// Character class sets.
const (
	UppercaseSet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	LowercaseSet = "abcdefghijklmnopqrstuvwxyz"
	NumberSet    = "0123456789"
	SymbolSet    = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
	AmbiguousSet = "il1Lo0O"
)

// Length bounds for generated passwords.
const (
	MinLength = 4
	MaxLength = 128
)

// ErrInvalidPolicy is returned when a policy cannot produce a password.
var ErrInvalidPolicy = errors.New("invalid password policy")

// Resolved is a validated policy with its effective alphabet. It is
// immutable once returned by Resolve.
type Resolved struct {
	length   int
	alphabet []rune
	// required holds, per enabled class in guarantee order, the class
	// characters that survived exclusion. Empty entries are skipped.
	required [][]rune
	enabled  int
}

// Length returns the password length.
func (r *Resolved) Length() int { return r.length }

// Alphabet returns a copy of the effective alphabet.
func (r *Resolved) Alphabet() string { return string(r.alphabet) }

// Resolve validates p and computes its effective alphabet.
func Resolve(p models.PasswordPolicy) (*Resolved, error) {
	if p.Length < MinLength || p.Length > MaxLength {
		return nil, fmt.Errorf("%w: length %d outside [%d, %d]", ErrInvalidPolicy, p.Length, MinLength, MaxLength)
	}
	classes := p.EnabledClasses()
	if len(classes) == 0 && p.CustomCharacters == "" {
		return nil, fmt.Errorf("%w: no character classes enabled", ErrInvalidPolicy)
	}

	excluded := make(map[rune]bool)
	for _, c := range p.ExcludeCharacters {
		excluded[c] = true
	}
	if p.ExcludeAmbiguous {
		for _, c := range AmbiguousSet {
			excluded[c] = true
		}
	}

	seen := make(map[rune]bool)
	var alphabet []rune
	add := func(set string) {
		for _, c := range set {
			if excluded[c] || seen[c] {
				continue
			}
			seen[c] = true
			alphabet = append(alphabet, c)
		}
	}

	var sets []string
	for _, class := range classes {
		sets = append(sets, classSet(class))
	}
	for _, set := range sets {
		add(set)
	}
	add(p.CustomCharacters)

	if len(alphabet) == 0 {
		return nil, fmt.Errorf("%w: every character is excluded", ErrInvalidPolicy)
	}

	r := &Resolved{length: p.Length, alphabet: alphabet, enabled: len(classes)}
	for _, set := range sets {
		var avail []rune
		for _, c := range set {
			if !excluded[c] {
				avail = append(avail, c)
			}
		}
		r.required = append(r.required, avail)
	}
	return r, nil
}

func classSet(class string) string {
	switch class {
	case models.ClassUppercase:
		return UppercaseSet
	case models.ClassLowercase:
		return LowercaseSet
	case models.ClassNumbers:
		return NumberSet
	case models.ClassSymbols:
		return SymbolSet
	}
	return ""
}

// ClassOf returns the class a rune belongs to, or "" for runes outside
// the four ASCII classes.
func ClassOf(c rune) string {
	switch {
	case c >= 'A' && c <= 'Z':
		return models.ClassUppercase
	case c >= 'a' && c <= 'z':
		return models.ClassLowercase
	case c >= '0' && c <= '9':
		return models.ClassNumbers
	case c < 0x80 && strings.ContainsRune(SymbolSet, c):
		return models.ClassSymbols
	}
	return ""
}

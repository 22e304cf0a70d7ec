// Package generator produces passwords that satisfy a composition policy.
package generator

import (
	"fmt"

	"github.com/org/vaultguard/internal/crypto"
	"github.com/org/vaultguard/pkg/models"
)

// MaxBatch is the largest number of passwords GenerateBatch will produce.
const MaxBatch = 1000

// Generator draws passwords from a RandomSource.
type Generator struct {
	rng crypto.RandomSource
}

// New creates a Generator.
func New(rng crypto.RandomSource) *Generator {
	return &Generator{rng: rng}
}

// Generate returns one password for the policy.
func (g *Generator) Generate(p models.PasswordPolicy) (string, error) {
	r, err := Resolve(p)
	if err != nil {
		return "", err
	}
	return g.FromResolved(r), nil
}

// GenerateBatch returns count independent passwords for the policy.
func (g *Generator) GenerateBatch(p models.PasswordPolicy, count int) ([]string, error) {
	if count < 1 || count > MaxBatch {
		return nil, fmt.Errorf("%w: batch count %d outside [1, %d]", ErrInvalidPolicy, count, MaxBatch)
	}
	r, err := Resolve(p)
	if err != nil {
		return nil, err
	}
	out := make([]string, count)
	for i := range out {
		out[i] = g.FromResolved(r)
	}
	return out, nil
}

// FromResolved draws a password from an already validated policy.
func (g *Generator) FromResolved(r *Resolved) string {
	pw := make([]rune, r.length)
	for i := range pw {
		pw[i] = r.alphabet[g.rng.Intn(len(r.alphabet))]
	}

	// One character per enabled class, placed up front and then shuffled in.
	if r.enabled > 0 && r.length >= r.enabled {
		pos := 0
		for _, set := range r.required {
			if len(set) == 0 {
				continue
			}
			pw[pos] = set[g.rng.Intn(len(set))]
			pos++
		}
		for i := len(pw) - 1; i > 0; i-- {
			j := g.rng.Intn(i + 1)
			pw[i], pw[j] = pw[j], pw[i]
		}
	}
	return string(pw)
}

// Package strength scores passwords and detects weakening patterns.
package strength

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/org/vaultguard/internal/generator"
	"github.com/org/vaultguard/pkg/models"
)

// Class sizes used for entropy and crack-time estimates.
const (
	lowerSize  = 26
	upperSize  = 26
	digitSize  = 10
	symbolSize = 32
)

// Strength labels.
const (
	LabelStrong   = "Strong"
	LabelModerate = "Moderate"
	LabelWeak     = "Weak"
	LabelVeryWeak = "Very Weak"
)

// WeakThreshold is the score below which a password counts as weak.
const WeakThreshold = 60

// guessesPerSecond is the attacker model for crack-time estimates.
const guessesPerSecond = 1e9

// Scorer computes StrengthAnalysis values.
type Scorer struct {
	denylist Denylist
}

// NewScorer creates a Scorer. A nil denylist uses DefaultCommonPasswords.
func NewScorer(denylist Denylist) *Scorer {
	if denylist == nil {
		denylist = NewDenylist(DefaultCommonPasswords)
	}
	return &Scorer{denylist: denylist}
}

// IsCommon reports whether pw is on the scorer's denylist.
func (s *Scorer) IsCommon(pw string) bool {
	return s.denylist.IsCommon(pw)
}

type composition struct {
	upper, lower, digit, symbol bool
}

func compose(pw string) composition {
	var c composition
	for _, r := range pw {
		switch generator.ClassOf(r) {
		case models.ClassUppercase:
			c.upper = true
		case models.ClassLowercase:
			c.lower = true
		case models.ClassNumbers:
			c.digit = true
		case models.ClassSymbols:
			c.symbol = true
		}
	}
	return c
}

func (c composition) charsetSize() int {
	n := 0
	if c.lower {
		n += lowerSize
	}
	if c.upper {
		n += upperSize
	}
	if c.digit {
		n += digitSize
	}
	if c.symbol {
		n += symbolSize
	}
	return n
}

func (c composition) classCount() int {
	n := 0
	for _, b := range []bool{c.upper, c.lower, c.digit, c.symbol} {
		if b {
			n++
		}
	}
	return n
}

// Score analyses pw. It never fails; the empty password scores 0.
func (s *Scorer) Score(pw string) models.StrengthAnalysis {
	comp := compose(pw)
	length := utf8.RuneCountInString(pw)

	a := models.StrengthAnalysis{
		Length:       length,
		HasUppercase: comp.upper,
		HasLowercase: comp.lower,
		HasNumbers:   comp.digit,
		HasSymbols:   comp.symbol,
		IsCommon:     s.denylist.IsCommon(pw),
		Patterns:     DetectPatterns(pw),
		CrackTime:    EstimateCrackTime(pw),
	}
	if size := comp.charsetSize(); size > 0 {
		a.Entropy = float64(length) * math.Log2(float64(size))
	}
	if length > 0 {
		a.Score = score(a, comp.classCount())
	}
	a.Label = Label(a.Score)
	return a
}

func score(a models.StrengthAnalysis, classes int) int {
	s := 0
	switch {
	case a.Length >= 16:
		s += 30
	case a.Length >= 12:
		s += 25
	case a.Length >= 8:
		s += 15
	default:
		s += 5
	}

	s += 10 * classes

	switch {
	case a.Entropy >= 60:
		s += 20
	case a.Entropy >= 50:
		s += 15
	case a.Entropy >= 40:
		s += 10
	case a.Entropy >= 30:
		s += 5
	}

	if a.Patterns.Sequential {
		s -= 10
	}
	if a.Patterns.Repeated {
		s -= 10
	}
	if a.Patterns.Keyboard {
		s -= 5
	}
	if a.IsCommon {
		s -= 20
	}
	return clamp(s)
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Label maps a strength score to its qualitative label.
func Label(score int) string {
	switch {
	case score >= 80:
		return LabelStrong
	case score >= 60:
		return LabelModerate
	case score >= 40:
		return LabelWeak
	default:
		return LabelVeryWeak
	}
}

// EstimateCrackTime returns a human readable time to search half the
// keyspace at one billion guesses per second.
func EstimateCrackTime(pw string) string {
	size := compose(pw).charsetSize()
	if size == 0 {
		size = lowerSize
	}
	length := utf8.RuneCountInString(pw)
	seconds := math.Pow(float64(size), float64(length)) / (2 * guessesPerSecond)

	switch {
	case seconds < 1:
		return "Instantly"
	case seconds < 60:
		return fmt.Sprintf("%d seconds", int64(seconds))
	case seconds < 3600:
		return fmt.Sprintf("%d minutes", int64(seconds/60))
	case seconds < 86400:
		return fmt.Sprintf("%d hours", int64(seconds/3600))
	case seconds < 31536000:
		return fmt.Sprintf("%d days", int64(seconds/86400))
	case seconds < 3153600000:
		return fmt.Sprintf("%d years", int64(seconds/31536000))
	}
	return "Centuries"
}

package strength

import (
	"strings"

	"github.com/org/vaultguard/pkg/models"
)

// keyboardRows are the row strings checked for keyboard walks.
var keyboardRows = []string{"qwertyuiop", "asdfghjkl", "zxcvbnm", "1234567890"}

// keyboardWindows holds every 3 and 4 character substring of keyboardRows.
var keyboardWindows = buildKeyboardWindows()

func buildKeyboardWindows() []string {
	var out []string
	for _, row := range keyboardRows {
		for size := 3; size <= 4; size++ {
			for i := 0; i+size <= len(row); i++ {
				out = append(out, row[i:i+size])
			}
		}
	}
	return out
}

// DetectPatterns scans pw for weakening structural patterns.
func DetectPatterns(pw string) models.PatternFlags {
	runes := []rune(pw)
	return models.PatternFlags{
		Sequential: hasSequential(runes),
		Repeated:   hasRepeated(runes),
		Keyboard:   hasKeyboardWalk(pw),
		DateLike:   hasDateLike(runes),
	}
}

func hasSequential(r []rune) bool {
	for i := 0; i+2 < len(r); i++ {
		if r[i+1] == r[i]+1 && r[i+2] == r[i+1]+1 {
			return true
		}
	}
	return false
}

func hasRepeated(r []rune) bool {
	run := 1
	for i := 1; i < len(r); i++ {
		if r[i] == r[i-1] {
			run++
			if run >= 3 {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

func hasKeyboardWalk(pw string) bool {
	lower := strings.ToLower(pw)
	for _, w := range keyboardWindows {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func isDigit(c rune) bool { return c >= '0' && c <= '9' }

func hasDateLike(r []rune) bool {
	run := 0
	for _, c := range r {
		if isDigit(c) {
			run++
			if run >= 4 {
				return true
			}
		} else {
			run = 0
		}
	}
	// dd/dd or dd-dd
	for i := 0; i+4 < len(r); i++ {
		if isDigit(r[i]) && isDigit(r[i+1]) && (r[i+2] == '/' || r[i+2] == '-') && isDigit(r[i+3]) && isDigit(r[i+4]) {
			return true
		}
	}
	return false
}

// Denylist is a case-insensitive set of known weak passwords.
type Denylist map[string]bool

// DefaultCommonPasswords is the built-in denylist.
var DefaultCommonPasswords = []string{
	"password", "123456", "123456789", "qwerty", "abc123",
	"password123", "admin", "letmein", "welcome", "monkey",
	"dragon", "master", "sunshine", "princess", "football",
}

// NewDenylist builds a Denylist from words.
func NewDenylist(words []string) Denylist {
	d := make(Denylist, len(words))
	for _, w := range words {
		d[strings.ToLower(w)] = true
	}
	return d
}

// IsCommon reports whether pw exactly matches a denylisted password,
// ignoring case.
func (d Denylist) IsCommon(pw string) bool {
	return d[strings.ToLower(pw)]
}

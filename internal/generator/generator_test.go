package generator

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/org/vaultguard/internal/crypto"
	"github.com/org/vaultguard/pkg/models"
)

// seqSource returns values from a fixed cycle, reduced modulo bound.
type seqSource struct {
	vals []int
	i    int
}

func (s *seqSource) Intn(bound int) int {
	v := s.vals[s.i%len(s.vals)] % bound
	s.i++
	return v
}

func newGen() *Generator { return New(crypto.NewSecureSource()) }

func TestResolveValidation(t *testing.T) {
	tests := []struct {
		name   string
		policy models.PasswordPolicy
	}{
		{"too short", models.PasswordPolicy{Length: 3, IncludeLowercase: true}},
		{"too long", models.PasswordPolicy{Length: 129, IncludeLowercase: true}},
		{"no classes", models.PasswordPolicy{Length: 12}},
		{"all excluded", models.PasswordPolicy{Length: 12, IncludeNumbers: true, ExcludeCharacters: NumberSet}},
		{"custom all excluded", models.PasswordPolicy{Length: 8, CustomCharacters: "ab", ExcludeCharacters: "ab"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve(tc.policy)
			if !errors.Is(err, ErrInvalidPolicy) {
				t.Errorf("expected ErrInvalidPolicy, got %v", err)
			}
		})
	}
}

func TestResolveBounds(t *testing.T) {
	for _, n := range []int{MinLength, MaxLength} {
		if _, err := Resolve(models.PasswordPolicy{Length: n, IncludeLowercase: true}); err != nil {
			t.Errorf("length %d should be valid: %v", n, err)
		}
	}
}

func TestResolveAlphabet(t *testing.T) {
	r, err := Resolve(models.PasswordPolicy{
		Length:           10,
		IncludeLowercase: true,
		IncludeNumbers:   true,
		CustomCharacters: "abc€",
		ExcludeAmbiguous: true,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	alpha := r.Alphabet()
	for _, c := range AmbiguousSet {
		if strings.ContainsRune(alpha, c) {
			t.Errorf("ambiguous %q should be excluded", c)
		}
	}
	if strings.Count(alpha, "a") != 1 {
		t.Error("custom characters overlapping a class must not be duplicated")
	}
	if !strings.ContainsRune(alpha, '€') {
		t.Error("custom non-ASCII character missing")
	}
	// lowercase loses i, l, o; digits lose 1, 0; only € is new from custom.
	if got, want := utf8.RuneCountInString(alpha), 23+8+1; got != want {
		t.Errorf("alphabet size = %d, want %d", got, want)
	}
}

func TestGenerateLengthAndAlphabet(t *testing.T) {
	g := newGen()
	p := models.PasswordPolicy{
		Length:            20,
		IncludeUppercase:  true,
		IncludeLowercase:  true,
		IncludeNumbers:    true,
		ExcludeCharacters: "XYZ",
	}
	r, _ := Resolve(p)
	for i := 0; i < 200; i++ {
		pw, err := g.Generate(p)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if utf8.RuneCountInString(pw) != 20 {
			t.Fatalf("length = %d", utf8.RuneCountInString(pw))
		}
		for _, c := range pw {
			if !strings.ContainsRune(r.Alphabet(), c) {
				t.Fatalf("%q not in alphabet", c)
			}
		}
	}
}

func TestGenerateContainsEveryClass(t *testing.T) {
	g := newGen()
	p := models.PasswordPolicy{
		Length:           4,
		IncludeUppercase: true,
		IncludeLowercase: true,
		IncludeNumbers:   true,
		IncludeSymbols:   true,
	}
	for i := 0; i < 500; i++ {
		pw, err := g.Generate(p)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		seen := map[string]bool{}
		for _, c := range pw {
			seen[ClassOf(c)] = true
		}
		for _, class := range p.EnabledClasses() {
			if !seen[class] {
				t.Fatalf("%q missing class %s", pw, class)
			}
		}
	}
}

func TestGenerateClassWithEmptyIntersectionSkipped(t *testing.T) {
	g := newGen()
	p := models.PasswordPolicy{
		Length:            8,
		IncludeLowercase:  true,
		IncludeNumbers:    true,
		ExcludeCharacters: NumberSet,
	}
	pw, err := g.Generate(p)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, c := range pw {
		if ClassOf(c) != models.ClassLowercase {
			t.Fatalf("unexpected %q in %q", c, pw)
		}
	}
}

func TestGenerateSingleCharacterAlphabet(t *testing.T) {
	tests := []struct {
		name   string
		policy models.PasswordPolicy
		want   string
	}{
		{"custom only", models.PasswordPolicy{Length: 12, CustomCharacters: "a"}, strings.Repeat("a", 12)},
		{"numbers minus exclusions", models.PasswordPolicy{Length: 10, IncludeNumbers: true, ExcludeCharacters: "012345678"}, strings.Repeat("9", 10)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, err := Resolve(tc.policy)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got := r.Alphabet(); len(got) != 1 {
				t.Fatalf("alphabet = %q, want a single character", got)
			}
			pw, err := newGen().Generate(tc.policy)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if pw != tc.want {
				t.Errorf("got %q, want %q", pw, tc.want)
			}
		})
	}
}

func TestGenerateDeterministicWithFixedSource(t *testing.T) {
	p := models.PasswordPolicy{Length: 6, IncludeLowercase: true, IncludeNumbers: true}
	a := New(&seqSource{vals: []int{3, 17, 5, 0, 9, 30, 2}})
	b := New(&seqSource{vals: []int{3, 17, 5, 0, 9, 30, 2}})
	pa, _ := a.Generate(p)
	pb, _ := b.Generate(p)
	if pa != pb {
		t.Errorf("same source sequence gave %q and %q", pa, pb)
	}
}

func TestGenerateBatch(t *testing.T) {
	g := newGen()
	p := models.DefaultPolicy()
	out, err := g.GenerateBatch(p, 25)
	if err != nil {
		t.Fatalf("GenerateBatch: %v", err)
	}
	if len(out) != 25 {
		t.Fatalf("got %d passwords", len(out))
	}
	uniq := map[string]bool{}
	for _, pw := range out {
		uniq[pw] = true
	}
	if len(uniq) != 25 {
		t.Error("16 character passwords should not collide")
	}

	for _, n := range []int{0, MaxBatch + 1} {
		if _, err := g.GenerateBatch(p, n); !errors.Is(err, ErrInvalidPolicy) {
			t.Errorf("count %d: expected ErrInvalidPolicy, got %v", n, err)
		}
	}
}

func TestGenerateUniformity(t *testing.T) {
	g := newGen()
	p := models.PasswordPolicy{Length: 100, CustomCharacters: "abcd"}
	counts := map[rune]int{}
	for i := 0; i < 100; i++ {
		pw, err := g.Generate(p)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		for _, c := range pw {
			counts[c]++
		}
	}
	// 10000 draws over 4 symbols; expect 2500 each.
	for c, n := range counts {
		if n < 2200 || n > 2800 {
			t.Errorf("%q drawn %d times, expected about 2500", c, n)
		}
	}
}

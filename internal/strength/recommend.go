package strength

import "github.com/org/vaultguard/pkg/models"

// Recommendations returns remediation hints for an analysed password,
// ordered length, composition, common, then patterns.
func Recommendations(a models.StrengthAnalysis) []models.Recommendation {
	var out []models.Recommendation
	add := func(category, severity, msg string) {
		out = append(out, models.Recommendation{Category: category, Severity: severity, Message: msg})
	}

	if a.Length < 12 {
		add(models.CategoryLength, models.SeverityMedium, "Increase length to at least 12 characters")
	}
	if !a.HasUppercase {
		add(models.CategoryComposition, models.SeverityLow, "Add uppercase letters")
	}
	if !a.HasLowercase {
		add(models.CategoryComposition, models.SeverityLow, "Add lowercase letters")
	}
	if !a.HasNumbers {
		add(models.CategoryComposition, models.SeverityLow, "Add numbers")
	}
	if !a.HasSymbols {
		add(models.CategoryComposition, models.SeverityLow, "Add special characters")
	}
	if a.IsCommon {
		add(models.CategoryCommon, models.SeverityHigh, "Avoid common passwords - create something unique")
	}
	if a.Patterns.Sequential {
		add(models.CategoryPattern, models.SeverityMedium, "Avoid sequential characters (abc, 123)")
	}
	if a.Patterns.Repeated {
		add(models.CategoryPattern, models.SeverityMedium, "Avoid repeated characters (aaa, 111)")
	}
	if a.Patterns.Keyboard {
		add(models.CategoryPattern, models.SeverityMedium, "Avoid keyboard patterns (qwerty, asdf)")
	}
	return out
}

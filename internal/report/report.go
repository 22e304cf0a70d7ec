// Package report projects vault assessments into audience-specific reports.
package report

import (
	"errors"
	"fmt"

	"github.com/org/vaultguard/pkg/models"
)

// Supported report formats.
const (
	FormatExecutive    = "executive"
	FormatTechnical    = "technical"
	FormatUserFriendly = "user-friendly"
)

// ErrUnsupportedFormat is returned by Format for unknown format names.
var ErrUnsupportedFormat = errors.New("unsupported report format")

// Formats lists the supported format names.
var Formats = []string{FormatExecutive, FormatTechnical, FormatUserFriendly}

// KeyMetrics is the shared numeric summary used by every format.
type KeyMetrics struct {
	TotalPasswords     int     `json:"total_passwords"`
	SecurityScore      int     `json:"security_score"`
	WeakPasswords      int     `json:"weak_passwords"`
	BreachedPasswords  int     `json:"breached_passwords"`
	DuplicatePasswords int     `json:"duplicate_passwords"`
	StalePasswords     int     `json:"stale_passwords"`
	AveragePasswordAge float64 `json:"average_password_age"`
	StrongPercentage   float64 `json:"strong_passwords_percentage"`
}

// RiskSection is the executive view of the vault's risk.
type RiskSection struct {
	OverallRisk      string   `json:"overall_risk"`
	CriticalFindings []string `json:"critical_findings"`
	Recommendations  []string `json:"recommendations"`
}

// Vulnerabilities groups entry references by finding.
type Vulnerabilities struct {
	Weak      []models.EntryRef `json:"weak"`
	Breached  []models.EntryRef `json:"breached"`
	Duplicate []models.EntryRef `json:"duplicate"`
	Stale     []models.EntryRef `json:"stale"`
}

// ScoreCard is the user-friendly score block.
type ScoreCard struct {
	Score   int    `json:"score"`
	Grade   string `json:"grade"`
	Message string `json:"message"`
}

// Report is one formatted view of an assessment. Only the sections that
// belong to Format are populated.
type Report struct {
	Format string `json:"format"`
	Title  string `json:"title"`

	// executive
	ExecutiveSummary string       `json:"executive_summary,omitempty"`
	Risk             *RiskSection `json:"risk_assessment,omitempty"`

	// executive and technical
	KeyMetrics *KeyMetrics `json:"key_metrics,omitempty"`

	// technical
	Assessment      *models.VaultAssessment      `json:"analysis_details,omitempty"`
	Vulnerabilities *Vulnerabilities             `json:"vulnerabilities,omitempty"`
	Entries         []models.EntryRiskAssessment `json:"entries,omitempty"`
	Recommendations []models.Recommendation      `json:"recommendations,omitempty"`

	// user-friendly
	YourScore *ScoreCard `json:"your_score,omitempty"`
	QuickWins []string   `json:"quick_wins,omitempty"`
	NextSteps []string   `json:"next_steps,omitempty"`

	// any format, on request
	Charts *ChartData `json:"chart_data,omitempty"`
}

// Format builds the report for the named format.
func Format(va models.VaultAssessment, entries []models.EntryRiskAssessment, format string) (*Report, error) {
	switch format {
	case FormatExecutive:
		return &Report{
			Format:           format,
			Title:            "Executive Security Summary",
			ExecutiveSummary: ExecutiveSummary(va),
			KeyMetrics:       keyMetrics(va),
			Risk: &RiskSection{
				OverallRisk:      va.RiskLabel,
				CriticalFindings: CriticalFindings(va),
				Recommendations:  messages(va.PriorityActions, 3),
			},
		}, nil
	case FormatTechnical:
		vaCopy := va
		return &Report{
			Format:     format,
			Title:      "Technical Security Analysis",
			Assessment: &vaCopy,
			KeyMetrics: keyMetrics(va),
			Vulnerabilities: &Vulnerabilities{
				Weak:      va.WeakEntries,
				Breached:  va.BreachedEntries,
				Duplicate: va.DuplicateEntries,
				Stale:     va.StaleEntries,
			},
			Entries:         entries,
			Recommendations: va.PriorityActions,
		}, nil
	case FormatUserFriendly:
		return &Report{
			Format: format,
			Title:  "Your Password Security Report",
			YourScore: &ScoreCard{
				Score:   va.SecurityScore,
				Grade:   Grade(va.SecurityScore),
				Message: Message(va.SecurityScore),
			},
			QuickWins: QuickWins(va),
			NextSteps: messages(va.PriorityActions, 3),
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Grade maps a security score to a letter grade.
func Grade(score int) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 80:
		return "A"
	case score >= 70:
		return "B"
	case score >= 60:
		return "C"
	case score >= 50:
		return "D"
	default:
		return "F"
	}
}

// Message returns a one-line encouragement keyed to the score band.
func Message(score int) string {
	switch {
	case score >= 80:
		return "Great job! Your passwords are well-protected."
	case score >= 60:
		return "Good progress! A few improvements will boost your security."
	case score >= 40:
		return "Your passwords need attention to stay secure."
	default:
		return "Let's work together to secure your accounts properly."
	}
}

// ExecutiveSummary returns a paragraph describing the vault's posture.
func ExecutiveSummary(va models.VaultAssessment) string {
	total, score := va.TotalEntries, va.SecurityScore
	weak, breached := len(va.WeakEntries), len(va.BreachedEntries)
	switch va.RiskLabel {
	case models.VaultRiskLow:
		return fmt.Sprintf("Excellent security posture! Your %d passwords maintain a strong security score of %d/100 with minimal vulnerabilities detected. Continue current practices and monitor for emerging threats.", total, score)
	case models.VaultRiskModerate:
		return fmt.Sprintf("Good security foundation with room for improvement. Your %d passwords scored %d/100. Focus on addressing %d weak passwords and %d compromised credentials to enhance your security posture.", total, score, weak, breached)
	case models.VaultRiskHigh:
		return fmt.Sprintf("Security vulnerabilities require immediate attention. Of your %d passwords, %d are weak and %d have been compromised in data breaches. Your current score of %d/100 indicates significant risk that should be addressed promptly.", total, weak, breached, score)
	default:
		return fmt.Sprintf("CRITICAL security issues detected! Your password vault requires immediate action with a security score of %d/100. %d passwords are compromised and %d are critically weak. Immediate remediation is essential to protect your accounts.", score, breached, weak)
	}
}

// CriticalFindings lists the headline problems of a vault.
func CriticalFindings(va models.VaultAssessment) []string {
	findings := []string{}
	if n := len(va.BreachedEntries); n > 0 {
		findings = append(findings, fmt.Sprintf("%d passwords found in data breaches", n))
	}
	if n := len(va.WeakEntries); n > 5 {
		findings = append(findings, fmt.Sprintf("%d passwords below minimum strength requirements", n))
	}
	if n := len(va.DuplicateEntries); n > 3 {
		findings = append(findings, fmt.Sprintf("%d duplicate passwords increase attack surface", n))
	}
	return findings
}

// QuickWins suggests up to two breached and three weak entries to fix first.
func QuickWins(va models.VaultAssessment) []string {
	wins := []string{}
	for i, ref := range va.BreachedEntries {
		if i == 2 {
			break
		}
		wins = append(wins, fmt.Sprintf("Update your %s password (found in breach)", ref.Site))
	}
	for i, ref := range va.WeakEntries {
		if i == 3 {
			break
		}
		wins = append(wins, fmt.Sprintf("Strengthen your %s password", ref.Site))
	}
	return wins
}

func keyMetrics(va models.VaultAssessment) *KeyMetrics {
	return &KeyMetrics{
		TotalPasswords:     va.TotalEntries,
		SecurityScore:      va.SecurityScore,
		WeakPasswords:      len(va.WeakEntries),
		BreachedPasswords:  len(va.BreachedEntries),
		DuplicatePasswords: len(va.DuplicateEntries),
		StalePasswords:     len(va.StaleEntries),
		AveragePasswordAge: va.Metrics.AveragePasswordAge,
		StrongPercentage:   va.Metrics.StrongPercentage,
	}
}

func messages(recs []models.Recommendation, limit int) []string {
	out := []string{}
	for _, r := range recs {
		if len(out) == limit {
			break
		}
		out = append(out, r.Message)
	}
	return out
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Severity levels for recommendations and findings.
const (
	SeverityLow      = "LOW"
	SeverityMedium   = "MEDIUM"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
)

// Vault-level risk labels. The entry scale uses the severity levels above.
const (
	VaultRiskLow      = "LOW"
	VaultRiskModerate = "MODERATE"
	VaultRiskHigh     = "HIGH"
	VaultRiskCritical = "CRITICAL"
)

// Recommendation categories.
const (
	CategoryLength      = "length"
	CategoryComposition = "composition"
	CategoryCommon      = "common"
	CategoryPattern     = "pattern"
	CategoryBreach      = "breach"
	CategoryStaleness   = "staleness"
	CategoryWeak        = "weak"
	CategoryDuplicate   = "duplicate"
	CategoryMFA         = "mfa"
	CategoryReview      = "review"
)

// Recommendation is a structured remediation hint. Rendering is left to callers.
type Recommendation struct {
	Category string `json:"category"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// RiskFactors are the boolean findings behind an entry's risk score.
type RiskFactors struct {
	Weak         bool `json:"weak"`
	Breached     bool `json:"breached"`
	Stale        bool `json:"stale"`
	CriticalSite bool `json:"critical_site"`
	Duplicate    bool `json:"duplicate"`
}

// EntryRiskAssessment is the risk view of one vault entry.
type EntryRiskAssessment struct {
	EntryID         string           `json:"entry_id"`
	Site            string           `json:"site"`
	RiskScore       int              `json:"risk_score"`
	RiskLabel       string           `json:"risk_label"`
	Factors         RiskFactors      `json:"factors"`
	StrengthScore   int              `json:"strength_score"`
	StrengthLabel   string           `json:"strength_label"`
	DaysSinceUpdate int              `json:"days_since_update"`
	BreachChecked   bool             `json:"breach_checked"`
	BreachCount     int              `json:"breach_count"`
	Recommendations []Recommendation `json:"recommendations"`
}

// EntryRef points at an entry inside a vault assessment.
type EntryRef struct {
	EntryID  string `json:"entry_id"`
	Site     string `json:"site"`
	Severity string `json:"severity,omitempty"`
	Detail   int    `json:"detail,omitempty"` // breach count, strength score or age in days
}

// SecurityMetrics summarizes a vault assessment numerically.
type SecurityMetrics struct {
	TotalEntries         int     `json:"total_entries"`
	WeakCount            int     `json:"weak_count"`
	BreachedCount        int     `json:"breached_count"`
	DuplicateCount       int     `json:"duplicate_count"`
	StaleCount           int     `json:"stale_count"`
	UncheckedCount       int     `json:"unchecked_count"`
	WeakPercentage       float64 `json:"weak_percentage"`
	BreachedPercentage   float64 `json:"breached_percentage"`
	DuplicatePercentage  float64 `json:"duplicate_percentage"`
	StalePercentage      float64 `json:"stale_percentage"`
	StrongPercentage     float64 `json:"strong_percentage"`
	AveragePasswordAge   float64 `json:"average_password_age"`
	AverageStrengthScore float64 `json:"average_strength_score"`
	CriticalIssueCount   int     `json:"critical_issue_count"`
}

// VaultAssessment is the aggregated view of a whole vault.
type VaultAssessment struct {
	Timestamp        time.Time        `json:"timestamp"`
	TotalEntries     int              `json:"total_entries"`
	SecurityScore    int              `json:"security_score"`
	RiskScore        int              `json:"risk_score"`
	RiskLabel        string           `json:"risk_label"`
	BreachRisk       float64          `json:"breach_risk"`
	WeakEntries      []EntryRef       `json:"weak_entries"`
	BreachedEntries  []EntryRef       `json:"breached_entries"`
	DuplicateEntries []EntryRef       `json:"duplicate_entries"`
	StaleEntries     []EntryRef       `json:"stale_entries"`
	Metrics          SecurityMetrics  `json:"metrics"`
	PriorityActions  []Recommendation `json:"priority_actions"`
	NextReviewDate   time.Time        `json:"next_review_date"`
}

// AuditRecord is a persisted vault audit: the aggregate plus per-entry results.
type AuditRecord struct {
	ID         uuid.UUID             `json:"id"`
	CreatedAt  time.Time             `json:"created_at"`
	Assessment VaultAssessment       `json:"assessment"`
	Entries    []EntryRiskAssessment `json:"entries"`
}

// AuditSummary is the lightweight listing form of an AuditRecord.
type AuditSummary struct {
	ID            uuid.UUID `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	TotalEntries  int       `json:"total_entries"`
	SecurityScore int       `json:"security_score"`
	RiskLabel     string    `json:"risk_label"`
}

// Summary returns the listing form of the record.
func (r *AuditRecord) Summary() AuditSummary {
	return AuditSummary{
		ID:            r.ID,
		CreatedAt:     r.CreatedAt,
		TotalEntries:  r.Assessment.TotalEntries,
		SecurityScore: r.Assessment.SecurityScore,
		RiskLabel:     r.Assessment.RiskLabel,
	}
}

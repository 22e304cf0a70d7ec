package report

import (
	"fmt"
	"math"
	"sort"

	"github.com/org/vaultguard/pkg/models"
)

// Urgency buckets, most urgent first.
const (
	UrgencyImmediate = "immediate"
	UrgencyWeek      = "week"
	UrgencyMonth     = "month"
	UrgencyOngoing   = "ongoing"
)

var urgencyRank = map[string]int{
	UrgencyImmediate: 0,
	UrgencyWeek:      1,
	UrgencyMonth:     2,
	UrgencyOngoing:   3,
}

// estimated minutes per recommendation category
var categoryMinutes = map[string]int{
	models.CategoryBreach:    10,
	models.CategoryWeak:      10,
	models.CategoryDuplicate: 5,
	models.CategoryStaleness: 5,
	models.CategoryMFA:       15,
	models.CategoryReview:    30,
}

// LimitedTaskMinutes caps each task estimate for time-limited users.
const LimitedTaskMinutes = 15

// task descriptions per category, plain and technical
var (
	plainDescriptions = map[string]string{
		models.CategoryBreach:    "This password showed up in a known data breach. Change it now and pick one you have never used before.",
		models.CategoryWeak:      "This password is easy to guess. Replace it with a longer one from the password generator.",
		models.CategoryDuplicate: "You use this password on more than one site. Give each account its own password.",
		models.CategoryStaleness: "This password has not been changed in a long time. Swap it for a fresh one.",
		models.CategoryMFA:       "Turn on two-factor authentication so a stolen password alone cannot open your accounts.",
		models.CategoryReview:    "Set a monthly reminder to look over your saved passwords.",
	}
	technicalDescriptions = map[string]string{
		models.CategoryBreach:    "SHA-1 fingerprint matched the Pwned Passwords corpus via k-anonymity range lookup. Treat the credential as compromised: rotate it and revoke active sessions.",
		models.CategoryWeak:      "Strength score below the weak threshold. Regenerate with at least 16 characters across all four character classes.",
		models.CategoryDuplicate: "HMAC fingerprint shared with other entries. A single credential-stuffing hit exposes every account in the group.",
		models.CategoryStaleness: "Last rotation exceeds the 90 day staleness threshold. Rotate and record the update time.",
		models.CategoryMFA:       "Enroll TOTP or WebAuthn second factors to blunt credential stuffing and phishing replay.",
		models.CategoryReview:    "Schedule a recurring vault audit and track security score drift between runs.",
	}
)

// DigestOptions personalizes a remediation plan.
type DigestOptions struct {
	// TimeLimited caps every task estimate at LimitedTaskMinutes.
	TimeLimited bool `json:"time_limited"`
	// Advanced selects technical task descriptions.
	Advanced bool `json:"advanced"`
}

// Task is one actionable item in a digest.
type Task struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	EntryID          string `json:"entry_id,omitempty"`
	Category         string `json:"category"`
	Severity         string `json:"severity"`
	Urgency          string `json:"urgency"`
	Impact           int    `json:"impact"`
	EstimatedMinutes int    `json:"estimated_minutes"`
}

// TimeRequired totals estimated effort per bucket.
type TimeRequired struct {
	Immediate string `json:"immediate"`
	ThisWeek  string `json:"this_week"`
	ThisMonth string `json:"this_month"`
}

// Plan is a vault's remediation work grouped by urgency.
type Plan struct {
	Immediate    []Task       `json:"immediate"`
	ThisWeek     []Task       `json:"this_week"`
	ThisMonth    []Task       `json:"this_month"`
	Ongoing      []Task       `json:"ongoing"`
	TimeRequired TimeRequired `json:"estimated_time_required"`
}

// Urgency maps a severity and category to an urgency bucket.
func Urgency(severity, category string) string {
	switch {
	case severity == models.SeverityCritical || category == models.CategoryBreach:
		return UrgencyImmediate
	case severity == models.SeverityHigh || category == models.CategoryWeak:
		return UrgencyWeek
	case severity == models.SeverityMedium || category == models.CategoryDuplicate:
		return UrgencyMonth
	}
	return UrgencyOngoing
}

// Digest builds a remediation plan: one task per affected entry, chosen by
// its most pressing finding, plus the vault's standing actions.
func Digest(va models.VaultAssessment, entries []models.EntryRiskAssessment, opts DigestOptions) Plan {
	var tasks []Task
	for _, e := range entries {
		t, ok := entryTask(e)
		if ok {
			tasks = append(tasks, t)
		}
	}
	for _, a := range va.PriorityActions {
		if a.Category != models.CategoryMFA && a.Category != models.CategoryReview {
			continue
		}
		tasks = append(tasks, newTask(a.Message, "", a.Category, a.Severity, 0))
	}
	for i := range tasks {
		personalize(&tasks[i], opts)
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		ri, rj := urgencyRank[tasks[i].Urgency], urgencyRank[tasks[j].Urgency]
		if ri != rj {
			return ri < rj
		}
		return tasks[i].Impact > tasks[j].Impact
	})

	p := Plan{Immediate: []Task{}, ThisWeek: []Task{}, ThisMonth: []Task{}, Ongoing: []Task{}}
	var imm, week, month int
	for _, t := range tasks {
		switch t.Urgency {
		case UrgencyImmediate:
			p.Immediate = append(p.Immediate, t)
			imm += t.EstimatedMinutes
		case UrgencyWeek:
			p.ThisWeek = append(p.ThisWeek, t)
			week += t.EstimatedMinutes
		case UrgencyMonth:
			p.ThisMonth = append(p.ThisMonth, t)
			month += t.EstimatedMinutes
		default:
			p.Ongoing = append(p.Ongoing, t)
		}
	}
	p.TimeRequired = TimeRequired{
		Immediate: fmt.Sprintf("%d minutes", imm),
		ThisWeek:  fmt.Sprintf("%d hours", int(math.Round(float64(week)/60))),
		ThisMonth: fmt.Sprintf("%d hours", int(math.Round(float64(month)/60))),
	}
	return p
}

func entryTask(e models.EntryRiskAssessment) (Task, bool) {
	f := e.Factors
	switch {
	case f.Breached:
		return newTask(fmt.Sprintf("Change password for %s", e.Site), e.EntryID, models.CategoryBreach, models.SeverityCritical, e.RiskScore), true
	case f.Weak:
		return newTask(fmt.Sprintf("Strengthen password for %s", e.Site), e.EntryID, models.CategoryWeak, models.SeverityHigh, e.RiskScore), true
	case f.Duplicate:
		return newTask(fmt.Sprintf("Replace reused password for %s", e.Site), e.EntryID, models.CategoryDuplicate, models.SeverityMedium, e.RiskScore), true
	case f.Stale:
		return newTask(fmt.Sprintf("Rotate password for %s", e.Site), e.EntryID, models.CategoryStaleness, models.SeverityLow, e.RiskScore), true
	}
	return Task{}, false
}

func personalize(t *Task, opts DigestOptions) {
	if opts.Advanced {
		t.Description = technicalDescriptions[t.Category]
	} else {
		t.Description = plainDescriptions[t.Category]
	}
	if opts.TimeLimited && t.EstimatedMinutes > LimitedTaskMinutes {
		t.EstimatedMinutes = LimitedTaskMinutes
	}
}

func newTask(title, entryID, category, severity string, impact int) Task {
	return Task{
		Title:            title,
		EntryID:          entryID,
		Category:         category,
		Severity:         severity,
		Urgency:          Urgency(severity, category),
		Impact:           impact,
		EstimatedMinutes: categoryMinutes[category],
	}
}

// Trend directions.
const (
	TrendImproving    = "improving"
	TrendStable       = "stable"
	TrendDeclining    = "declining"
	TrendInsufficient = "insufficient_data"
)

// TrendAnalysis describes how security scores moved over time.
type TrendAnalysis struct {
	Trend                 string  `json:"trend"`
	AverageImprovement    float64 `json:"average_improvement"`
	ConsistentImprovement bool    `json:"consistent_improvement"`
}

// Trend classifies a chronological series of security scores.
func Trend(scores []int) TrendAnalysis {
	if len(scores) < 2 {
		return TrendAnalysis{Trend: TrendInsufficient}
	}
	sum := 0
	consistent := true
	for i := 1; i < len(scores); i++ {
		sum += scores[i] - scores[i-1]
		if scores[i] < scores[i-1] {
			consistent = false
		}
	}
	avg := float64(sum) / float64(len(scores)-1)
	t := TrendAnalysis{
		Trend:                 TrendStable,
		AverageImprovement:    math.Round(avg*10) / 10,
		ConsistentImprovement: consistent,
	}
	switch {
	case avg > 2:
		t.Trend = TrendImproving
	case avg < -2:
		t.Trend = TrendDeclining
	}
	return t
}

// SecurityDigest is a periodic summary of the latest audit against history.
type SecurityDigest struct {
	Period       string        `json:"period"`
	Summary      string        `json:"summary"`
	Trends       TrendAnalysis `json:"trends"`
	Achievements []string      `json:"achievements"`
	Alerts       []string      `json:"alerts"`
	NextSteps    []string      `json:"next_steps"`
}

// Digest periods.
const (
	PeriodWeekly    = "weekly"
	PeriodMonthly   = "monthly"
	PeriodQuarterly = "quarterly"
)

// Summarize compares current with earlier assessments, oldest first.
func Summarize(current models.VaultAssessment, history []models.VaultAssessment, period string) SecurityDigest {
	scores := make([]int, 0, len(history)+1)
	for _, h := range history {
		scores = append(scores, h.SecurityScore)
	}

	improvement := 0
	if len(history) > 0 {
		improvement = current.SecurityScore - history[len(history)-1].SecurityScore
	}
	var moved string
	switch {
	case improvement > 5:
		moved = "improved significantly"
	case improvement > 0:
		moved = "improved slightly"
	case improvement == 0:
		moved = "remained stable"
	default:
		moved = "needs attention"
	}

	d := SecurityDigest{
		Period:       period,
		Summary:      fmt.Sprintf("Your password security has %s over the past %s. Current score: %d/100.", moved, periodNoun(period), current.SecurityScore),
		Trends:       Trend(append(scores, current.SecurityScore)),
		Achievements: []string{},
		Alerts:       []string{},
	}

	if current.SecurityScore >= 80 {
		d.Achievements = append(d.Achievements, "Achieved excellent security score (80+)")
	}
	if len(current.BreachedEntries) == 0 {
		d.Achievements = append(d.Achievements, "Zero compromised passwords")
	}
	if len(history) > 0 && improvement > 10 {
		d.Achievements = append(d.Achievements, "Improved security score by 10+ points")
	}

	if n := len(current.BreachedEntries); n > 0 {
		d.Alerts = append(d.Alerts, fmt.Sprintf("%d %s compromised in breaches", n, pluralize(n, "password")))
	}
	if weak := len(current.WeakEntries); current.TotalEntries > 0 && float64(weak) > float64(current.TotalEntries)*0.3 {
		d.Alerts = append(d.Alerts, fmt.Sprintf("%d%% of passwords are weak", int(math.Round(float64(weak)/float64(current.TotalEntries)*100))))
	}

	switch current.RiskLabel {
	case models.VaultRiskCritical, models.VaultRiskHigh:
		d.NextSteps = []string{"Focus on fixing critical security issues first", "Schedule daily password updates until resolved"}
	case models.VaultRiskModerate:
		d.NextSteps = []string{"Gradually improve weak passwords", "Enable 2FA on important accounts"}
	default:
		d.NextSteps = []string{"Maintain current security practices", "Monitor for new threats and breaches"}
	}
	switch period {
	case PeriodWeekly:
		d.NextSteps = append(d.NextSteps, "Review and update 2-3 passwords")
	case PeriodMonthly:
		d.NextSteps = append(d.NextSteps, "Perform comprehensive security review")
	}
	return d
}

func periodNoun(period string) string {
	switch period {
	case PeriodWeekly:
		return "week"
	case PeriodQuarterly:
		return "quarter"
	default:
		return "month"
	}
}

func pluralize(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

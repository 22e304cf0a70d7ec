package report

import (
	"sort"
	"time"

	"github.com/org/vaultguard/pkg/models"
)

// Options tunes FormatWith.
type Options struct {
	IncludeCharts bool
	// History holds earlier assessments for the score series. Order does
	// not matter; assessments at or after the current one are ignored.
	History []models.VaultAssessment
}

// StrengthBreakdown counts entries per headline finding. Strong is what
// remains after the other buckets and never goes below zero.
type StrengthBreakdown struct {
	Strong    int `json:"strong"`
	Weak      int `json:"weak"`
	Breached  int `json:"breached"`
	Duplicate int `json:"duplicate"`
}

// ScorePoint is one security score in a trend series.
type ScorePoint struct {
	Date  time.Time `json:"date"`
	Score int       `json:"score"`
}

// ChartData is the numeric input for report charts.
type ChartData struct {
	PasswordStrength StrengthBreakdown `json:"password_strength"`
	SecurityTrend    []ScorePoint      `json:"security_trend"`
}

// FormatWith builds the report for the named format and attaches chart
// data when opts asks for it.
func FormatWith(va models.VaultAssessment, entries []models.EntryRiskAssessment, format string, opts Options) (*Report, error) {
	r, err := Format(va, entries, format)
	if err != nil {
		return nil, err
	}
	if opts.IncludeCharts {
		r.Charts = Charts(va, opts.History)
	}
	return r, nil
}

// Charts derives chart data from an assessment and its history. The score
// series runs oldest first and ends with the current assessment.
func Charts(va models.VaultAssessment, history []models.VaultAssessment) *ChartData {
	weak, breached, duplicate := len(va.WeakEntries), len(va.BreachedEntries), len(va.DuplicateEntries)
	strong := va.TotalEntries - weak - breached - duplicate
	if strong < 0 {
		strong = 0
	}

	var series []ScorePoint
	for _, h := range history {
		if h.Timestamp.Before(va.Timestamp) {
			series = append(series, ScorePoint{Date: h.Timestamp, Score: h.SecurityScore})
		}
	}
	sort.SliceStable(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	series = append(series, ScorePoint{Date: va.Timestamp, Score: va.SecurityScore})

	return &ChartData{
		PasswordStrength: StrengthBreakdown{
			Strong:    strong,
			Weak:      weak,
			Breached:  breached,
			Duplicate: duplicate,
		},
		SecurityTrend: series,
	}
}

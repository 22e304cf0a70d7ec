package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Render writes a plain-text rendering of r.
func Render(w io.Writer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\n%s\n\n", r.Title, strings.Repeat("=", len(r.Title)))

	if r.YourScore != nil {
		fmt.Fprintf(tw, "Score\t%d/100 (%s)\n", r.YourScore.Score, r.YourScore.Grade)
		fmt.Fprintf(tw, "\t%s\n", r.YourScore.Message)
	}
	if r.ExecutiveSummary != "" {
		fmt.Fprintf(tw, "%s\n\n", r.ExecutiveSummary)
	}
	if m := r.KeyMetrics; m != nil {
		fmt.Fprintln(tw, "KEY METRICS\t")
		fmt.Fprintf(tw, "  security score\t%d/100\n", m.SecurityScore)
		fmt.Fprintf(tw, "  passwords\t%d\n", m.TotalPasswords)
		fmt.Fprintf(tw, "  weak\t%d\n", m.WeakPasswords)
		fmt.Fprintf(tw, "  breached\t%d\n", m.BreachedPasswords)
		fmt.Fprintf(tw, "  duplicate\t%d\n", m.DuplicatePasswords)
		fmt.Fprintf(tw, "  stale\t%d\n", m.StalePasswords)
		fmt.Fprintf(tw, "  average age (days)\t%.1f\n", m.AveragePasswordAge)
		fmt.Fprintf(tw, "  strong\t%.1f%%\n", m.StrongPercentage)
	}
	if risk := r.Risk; risk != nil {
		fmt.Fprintf(tw, "OVERALL RISK\t%s\n", risk.OverallRisk)
		writeList(tw, "CRITICAL FINDINGS", risk.CriticalFindings)
		writeList(tw, "RECOMMENDATIONS", risk.Recommendations)
	}
	if v := r.Vulnerabilities; v != nil {
		fmt.Fprintln(tw, "ENTRY\tSITE\tRISK\tSTRENGTH\tAGE\tFACTORS")
		for _, e := range r.Entries {
			fmt.Fprintf(tw, "%s\t%s\t%d %s\t%d\t%d\t%s\n",
				e.EntryID, e.Site, e.RiskScore, e.RiskLabel, e.StrengthScore, e.DaysSinceUpdate, factorList(e.Factors.Weak, e.Factors.Breached, e.Factors.Stale, e.Factors.CriticalSite, e.Factors.Duplicate))
		}
		recs := make([]string, len(r.Recommendations))
		for i, rec := range r.Recommendations {
			recs[i] = fmt.Sprintf("[%s] %s", rec.Severity, rec.Message)
		}
		writeList(tw, "RECOMMENDATIONS", recs)
	}
	writeList(tw, "QUICK WINS", r.QuickWins)
	writeList(tw, "NEXT STEPS", r.NextSteps)
	if c := r.Charts; c != nil {
		b := c.PasswordStrength
		fmt.Fprintln(tw, "PASSWORD STRENGTH\t")
		fmt.Fprintf(tw, "  strong\t%d\n  weak\t%d\n  breached\t%d\n  duplicate\t%d\n", b.Strong, b.Weak, b.Breached, b.Duplicate)
		fmt.Fprintln(tw, "SECURITY TREND\t")
		for _, p := range c.SecurityTrend {
			fmt.Fprintf(tw, "  %s\t%d\n", p.Date.Format("2006-01-02"), p.Score)
		}
	}
	return tw.Flush()
}

func writeList(w io.Writer, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s\t\n", heading)
	for _, it := range items {
		fmt.Fprintf(w, "  - %s\t\n", it)
	}
}

func factorList(weak, breached, stale, critical, duplicate bool) string {
	var out []string
	for _, f := range []struct {
		on   bool
		name string
	}{
		{weak, "weak"}, {breached, "breached"}, {stale, "stale"}, {critical, "critical-site"}, {duplicate, "duplicate"},
	} {
		if f.on {
			out = append(out, f.name)
		}
	}
	if len(out) == 0 {
		return "-"
	}
	return strings.Join(out, ",")
}

package breach

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/org/vaultguard/pkg/models"
)

// DefaultBreachDirectoryURL is the HIBP breach directory API root.
const DefaultBreachDirectoryURL = "https://haveibeenpwned.com"

// MaxDomains bounds a single domain check.
const MaxDomains = 100

// DomainChecker lists the known breaches of a site's domain.
type DomainChecker interface {
	DomainBreaches(ctx context.Context, domain string) ([]models.DomainBreach, error)
}

// HIBPDomainClient queries the HIBP breach directory by domain.
type HIBPDomainClient struct {
	baseURL   string
	userAgent string
	apiKey    string
	client    *http.Client
}

// NewHIBPDomainClient creates a client. An empty baseURL uses
// DefaultBreachDirectoryURL; the API key is sent only when set.
func NewHIBPDomainClient(baseURL, userAgent, apiKey string, timeout time.Duration) *HIBPDomainClient {
	if baseURL == "" {
		baseURL = DefaultBreachDirectoryURL
	}
	if userAgent == "" {
		userAgent = "vaultguard"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HIBPDomainClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		apiKey:    apiKey,
		client:    &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the breach directory root the client queries.
func (c *HIBPDomainClient) BaseURL() string { return c.baseURL }

type hibpBreach struct {
	Name        string   `json:"Name"`
	BreachDate  string   `json:"BreachDate"`
	PwnCount    int64    `json:"PwnCount"`
	DataClasses []string `json:"DataClasses"`
}

// DomainBreaches implements DomainChecker.
func (c *HIBPDomainClient) DomainBreaches(ctx context.Context, domain string) ([]models.DomainBreach, error) {
	u := c.baseURL + "/api/v3/breaches?domain=" + url.QueryEscape(domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building domain request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("hibp-api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying domain %s: %w", domain, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil, fmt.Errorf("querying domain %s: unexpected status %d", domain, resp.StatusCode)
	}

	var raw []hibpBreach
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding domain %s: %w", domain, err)
	}
	out := make([]models.DomainBreach, len(raw))
	for i, b := range raw {
		out[i] = models.DomainBreach{
			Name:                b.Name,
			BreachDate:          b.BreachDate,
			CompromisedAccounts: b.PwnCount,
			DataClasses:         b.DataClasses,
		}
	}
	return out, nil
}

// CheckDomains looks up each distinct domain in input order. A failed
// lookup, or a nil checker, leaves that domain unknown.
func CheckDomains(ctx context.Context, c DomainChecker, domains []string, timeout time.Duration) models.DomainReport {
	report := models.DomainReport{Results: []models.DomainBreachStatus{}}
	seen := make(map[string]bool)
	for _, d := range domains {
		d = NormalizeDomain(d)
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true

		status := models.DomainBreachStatus{Domain: d, Breaches: []models.DomainBreach{}}
		if c == nil {
			domainLookupsTotal.WithLabelValues("skipped").Inc()
			report.Results = append(report.Results, status)
			continue
		}
		breaches, err := lookupDomain(ctx, c, d, timeout)
		if err != nil {
			log.Warn().Err(err).Str("domain", d).Msg("domain breach lookup failed, treating as unknown")
			domainLookupsTotal.WithLabelValues("error").Inc()
			report.Results = append(report.Results, status)
			continue
		}
		status.Checked = true
		status.Breaches = append(status.Breaches, breaches...)
		status.BreachCount = len(breaches)
		status.HasBreaches = len(breaches) > 0
		if status.HasBreaches {
			report.DomainsWithBreaches++
			domainLookupsTotal.WithLabelValues("breached").Inc()
		} else {
			domainLookupsTotal.WithLabelValues("clean").Inc()
		}
		report.Results = append(report.Results, status)
	}
	report.DomainsChecked = len(report.Results)
	return report
}

func lookupDomain(ctx context.Context, c DomainChecker, domain string, timeout time.Duration) ([]models.DomainBreach, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return c.DomainBreaches(ctx, domain)
}

// NormalizeDomain reduces a site name or URL to a bare lowercase host.
// Values without a dot, such as "bank", are not domains and yield "".
func NormalizeDomain(site string) string {
	s := strings.ToLower(strings.TrimSpace(site))
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndex(s, "@"); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.LastIndex(s, ":"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimPrefix(s, "www.")
	s = strings.Trim(s, ".")
	if !strings.Contains(s, ".") || strings.ContainsAny(s, " \t") {
		return ""
	}
	return s
}

// EntryDomains returns the distinct domains of the entries' sites in
// input order.
func EntryDomains(entries []models.PasswordEntry) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range entries {
		d := NormalizeDomain(e.Site)
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}

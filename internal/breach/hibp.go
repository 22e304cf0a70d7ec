package breach

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/org/vaultguard/pkg/models"
)

// DefaultHIBPURL is the Pwned Passwords range API.
const DefaultHIBPURL = "https://api.pwnedpasswords.com"

// SourceHIBP names the HIBP corpus in BreachStatus.Source.
const SourceHIBP = "hibp"

// HIBPClient queries the Pwned Passwords range API with k-anonymity: only
// the first five characters of the fingerprint leave the process.
type HIBPClient struct {
	baseURL   string
	userAgent string
	client    *http.Client

	cacheMu sync.RWMutex
	cache   map[string]map[string]int // prefix → suffix → count
}

// NewHIBPClient creates a client. An empty baseURL uses DefaultHIBPURL.
func NewHIBPClient(baseURL, userAgent string, timeout time.Duration) *HIBPClient {
	if baseURL == "" {
		baseURL = DefaultHIBPURL
	}
	if userAgent == "" {
		userAgent = "vaultguard"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HIBPClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
		cache:     make(map[string]map[string]int),
	}
}

// BaseURL returns the range API root the client queries.
func (h *HIBPClient) BaseURL() string { return h.baseURL }

// Lookup implements Checker.
func (h *HIBPClient) Lookup(ctx context.Context, fingerprint string) (models.BreachStatus, error) {
	fingerprint = strings.ToUpper(fingerprint)
	if !validFingerprint(fingerprint) {
		return models.BreachStatus{}, ErrInvalidFingerprint
	}
	prefix, suffix := fingerprint[:5], fingerprint[5:]

	h.cacheMu.RLock()
	suffixes, ok := h.cache[prefix]
	h.cacheMu.RUnlock()

	if !ok {
		var err error
		suffixes, err = h.fetchRange(ctx, prefix)
		if err != nil {
			return models.BreachStatus{}, err
		}
		h.cacheMu.Lock()
		h.cache[prefix] = suffixes
		h.cacheMu.Unlock()
	}

	count := suffixes[suffix]
	return models.BreachStatus{
		Checked:  true,
		Breached: count > 0,
		Count:    count,
		Source:   SourceHIBP,
	}, nil
}

func (h *HIBPClient) fetchRange(ctx context.Context, prefix string) (map[string]int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/range/"+prefix, nil)
	if err != nil {
		return nil, fmt.Errorf("building range request: %w", err)
	}
	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("Add-Padding", "true")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying range %s: %w", prefix, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil, fmt.Errorf("querying range %s: unexpected status %d", prefix, resp.StatusCode)
	}
	return parseRange(resp.Body)
}

// parseRange reads "SUFFIX:COUNT" lines. Padding entries have count 0.
func parseRange(r io.Reader) (map[string]int, error) {
	out := make(map[string]int)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		suffix, countStr, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("malformed range line %q", line)
		}
		count, err := strconv.Atoi(strings.TrimSpace(countStr))
		if err != nil {
			return nil, fmt.Errorf("malformed count in %q: %w", line, err)
		}
		if count > 0 {
			out[strings.ToUpper(suffix)] = count
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading range response: %w", err)
	}
	return out, nil
}

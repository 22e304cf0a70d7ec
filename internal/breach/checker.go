// Package breach looks up password fingerprints in breach corpora.
package breach

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/org/vaultguard/pkg/models"
)

// ErrInvalidFingerprint is returned for fingerprints that are not 40 hex characters.
var ErrInvalidFingerprint = errors.New("invalid breach fingerprint")

// Checker looks up an uppercase SHA-1 password fingerprint.
// Implementations never see plaintext passwords.
type Checker interface {
	Lookup(ctx context.Context, fingerprint string) (models.BreachStatus, error)
}

// Disabled is a Checker that reports every status as unknown.
type Disabled struct{}

// Lookup implements Checker.
func (Disabled) Lookup(context.Context, string) (models.BreachStatus, error) {
	return models.BreachStatus{}, nil
}

// Resolve runs one bounded lookup and maps any failure to an unknown
// status. The fingerprint is never logged.
func Resolve(ctx context.Context, c Checker, fingerprint string, timeout time.Duration) models.BreachStatus {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	status, err := c.Lookup(ctx, fingerprint)
	if err != nil {
		log.Warn().Err(err).Msg("breach lookup failed, treating as unknown")
		lookupsTotal.WithLabelValues("error").Inc()
		return models.BreachStatus{}
	}
	switch {
	case !status.Checked:
		lookupsTotal.WithLabelValues("skipped").Inc()
	case status.Breached:
		lookupsTotal.WithLabelValues("breached").Inc()
	default:
		lookupsTotal.WithLabelValues("clean").Inc()
	}
	return status
}

func validFingerprint(fp string) bool {
	if len(fp) != 40 {
		return false
	}
	for _, c := range fp {
		if !(c >= '0' && c <= '9' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}

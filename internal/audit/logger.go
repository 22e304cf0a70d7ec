// Package audit records the API request trail.
package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/org/vaultguard/internal/storage"
	"github.com/org/vaultguard/pkg/models"
)

// Logger writes request entries to storage.
type Logger struct {
	store storage.Backend
}

// NewLogger creates a request Logger.
func NewLogger(store storage.Backend) *Logger {
	return &Logger{store: store}
}

// LogRequest records an API request. Passwords and fingerprints must never
// be passed here, only request metadata.
func (l *Logger) LogRequest(ctx context.Context, entry *models.RequestEntry) {
	entry.Timestamp = time.Now().UTC()
	if err := l.store.WriteRequestEntry(ctx, entry); err != nil {
		log.Warn().Err(err).Str("request_id", entry.RequestID).Msg("writing request log entry")
	}
}

// Query retrieves paginated request log entries, newest first.
func (l *Logger) Query(ctx context.Context, filter storage.RequestFilter) ([]*models.RequestEntry, error) {
	return l.store.QueryRequestLog(ctx, filter)
}

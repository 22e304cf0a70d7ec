package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/org/vaultguard/pkg/models"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned when trying to create a resource that already exists.
var ErrAlreadyExists = errors.New("already exists")

// Backend defines the persistence interface for VaultGuard. Only derived
// assessments are stored; plaintext passwords never reach storage.
type Backend interface {
	// Audits
	SaveAudit(ctx context.Context, rec *models.AuditRecord) error
	GetAudit(ctx context.Context, id uuid.UUID) (*models.AuditRecord, error)
	ListAudits(ctx context.Context, filter HistoryFilter) ([]models.AuditSummary, error)
	// AssessmentHistory returns vault assessments created before the given
	// time, oldest first.
	AssessmentHistory(ctx context.Context, before time.Time, limit int) ([]models.VaultAssessment, error)

	// Request log
	WriteRequestEntry(ctx context.Context, entry *models.RequestEntry) error
	QueryRequestLog(ctx context.Context, filter RequestFilter) ([]*models.RequestEntry, error)

	// Metrics helpers
	CountAudits(ctx context.Context) (int64, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Close()
}

// HistoryFilter specifies query parameters for audit listings, newest first.
type HistoryFilter struct {
	Since  *time.Time
	Label  string
	Limit  int
	Offset int
}

// RequestFilter specifies query parameters for request log retrieval.
type RequestFilter struct {
	Path   string
	Since  *time.Time
	Limit  int
	Offset int
}

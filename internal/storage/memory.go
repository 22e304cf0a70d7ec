package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/org/vaultguard/pkg/models"
)

// MaxRequestEntries bounds the in-memory request log; older entries are dropped.
const MaxRequestEntries = 1000

// MemoryBackend is a Backend kept in process memory. It is used when no
// database is configured and in tests.
type MemoryBackend struct {
	mu       sync.RWMutex
	audits   map[uuid.UUID]*models.AuditRecord
	order    []uuid.UUID // creation order
	requests []*models.RequestEntry
	nextReq  int64
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{audits: make(map[uuid.UUID]*models.AuditRecord)}
}

// Ping implements Backend.
func (m *MemoryBackend) Ping(context.Context) error { return nil }

// Close implements Backend.
func (m *MemoryBackend) Close() {}

// SaveAudit implements Backend.
func (m *MemoryBackend) SaveAudit(_ context.Context, rec *models.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.audits[rec.ID]; ok {
		return ErrAlreadyExists
	}
	cp := *rec
	m.audits[rec.ID] = &cp
	m.order = append(m.order, rec.ID)
	sort.SliceStable(m.order, func(i, j int) bool {
		return m.audits[m.order[i]].CreatedAt.Before(m.audits[m.order[j]].CreatedAt)
	})
	return nil
}

// GetAudit implements Backend.
func (m *MemoryBackend) GetAudit(_ context.Context, id uuid.UUID) (*models.AuditRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.audits[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

// ListAudits implements Backend.
func (m *MemoryBackend) ListAudits(_ context.Context, filter HistoryFilter) ([]models.AuditSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.AuditSummary{}
	for i := len(m.order) - 1; i >= 0; i-- {
		rec := m.audits[m.order[i]]
		if filter.Since != nil && rec.CreatedAt.Before(*filter.Since) {
			continue
		}
		if filter.Label != "" && rec.Assessment.RiskLabel != filter.Label {
			continue
		}
		out = append(out, rec.Summary())
	}
	return paginate(out, filter.Offset, filter.Limit), nil
}

// AssessmentHistory implements Backend.
func (m *MemoryBackend) AssessmentHistory(_ context.Context, before time.Time, limit int) ([]models.VaultAssessment, error) {
	if limit <= 0 {
		limit = 10
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.VaultAssessment
	for _, id := range m.order {
		rec := m.audits[id]
		if rec.CreatedAt.Before(before) {
			out = append(out, rec.Assessment)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// CountAudits implements Backend.
func (m *MemoryBackend) CountAudits(context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.audits)), nil
}

// WriteRequestEntry implements Backend.
func (m *MemoryBackend) WriteRequestEntry(_ context.Context, entry *models.RequestEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextReq++
	cp := *entry
	cp.ID = m.nextReq
	m.requests = append(m.requests, &cp)
	if len(m.requests) > MaxRequestEntries {
		m.requests = m.requests[len(m.requests)-MaxRequestEntries:]
	}
	return nil
}

// QueryRequestLog implements Backend.
func (m *MemoryBackend) QueryRequestLog(_ context.Context, filter RequestFilter) ([]*models.RequestEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.RequestEntry
	for i := len(m.requests) - 1; i >= 0; i-- {
		e := m.requests[i]
		if filter.Path != "" && !strings.HasPrefix(e.Path, filter.Path) {
			continue
		}
		if filter.Since != nil && e.Timestamp.Before(*filter.Since) {
			continue
		}
		out = append(out, e)
	}
	return paginate(out, filter.Offset, filter.Limit), nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

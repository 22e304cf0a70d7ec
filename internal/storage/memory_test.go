package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/org/vaultguard/pkg/models"
)

func record(created time.Time, score int, label string) *models.AuditRecord {
	return &models.AuditRecord{
		ID:        uuid.New(),
		CreatedAt: created,
		Assessment: models.VaultAssessment{
			Timestamp:     created,
			TotalEntries:  3,
			SecurityScore: score,
			RiskScore:     100 - score,
			RiskLabel:     label,
		},
		Entries: []models.EntryRiskAssessment{{EntryID: "a"}},
	}
}

func TestMemoryAudits(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()
	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	r1 := record(base, 40, models.VaultRiskHigh)
	r2 := record(base.Add(24*time.Hour), 70, models.VaultRiskModerate)
	r3 := record(base.Add(48*time.Hour), 90, models.VaultRiskLow)
	// saved out of order on purpose
	for _, r := range []*models.AuditRecord{r2, r1, r3} {
		require.NoError(t, m.SaveAudit(ctx, r))
	}
	assert.ErrorIs(t, m.SaveAudit(ctx, r1), ErrAlreadyExists)

	got, err := m.GetAudit(ctx, r2.ID)
	require.NoError(t, err)
	assert.Equal(t, 70, got.Assessment.SecurityScore)

	_, err = m.GetAudit(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := m.ListAudits(ctx, HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, r3.ID, list[0].ID, "newest first")

	list, err = m.ListAudits(ctx, HistoryFilter{Label: models.VaultRiskHigh})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, r1.ID, list[0].ID)

	list, err = m.ListAudits(ctx, HistoryFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, r2.ID, list[0].ID)

	hist, err := m.AssessmentHistory(ctx, r3.CreatedAt, 10)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, 40, hist[0].SecurityScore, "oldest first")
	assert.Equal(t, 70, hist[1].SecurityScore)

	n, err := m.CountAudits(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestMemoryRequestLog(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()
	now := time.Now().UTC()
	for i := 0; i < MaxRequestEntries+5; i++ {
		path := "/v1/strength"
		if i%2 == 0 {
			path = "/v1/audits"
		}
		require.NoError(t, m.WriteRequestEntry(ctx, &models.RequestEntry{Path: path, Timestamp: now}))
	}

	all, err := m.QueryRequestLog(ctx, RequestFilter{})
	require.NoError(t, err)
	assert.Len(t, all, MaxRequestEntries)
	assert.Equal(t, int64(MaxRequestEntries+5), all[0].ID, "newest first")

	audits, err := m.QueryRequestLog(ctx, RequestFilter{Path: "/v1/audits", Limit: 10})
	require.NoError(t, err)
	assert.Len(t, audits, 10)
	for _, e := range audits {
		assert.Equal(t, "/v1/audits", e.Path)
	}

	later := now.Add(time.Hour)
	none, err := m.QueryRequestLog(ctx, RequestFilter{Since: &later})
	require.NoError(t, err)
	assert.Empty(t, none)
}

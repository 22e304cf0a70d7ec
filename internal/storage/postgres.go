package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/org/vaultguard/pkg/models"
)

// PostgresBackend is a Backend backed by PostgreSQL.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend opens a pgxpool connection and returns a ready backend.
func NewPostgresBackend(ctx context.Context, connStr string) (*PostgresBackend, error) {
	cfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parsing postgres config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &PostgresBackend{pool: pool}, nil
}

func (p *PostgresBackend) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PostgresBackend) Close() {
	p.pool.Close()
}

// --- Audits ---

func (p *PostgresBackend) SaveAudit(ctx context.Context, rec *models.AuditRecord) error {
	assessment, err := json.Marshal(rec.Assessment)
	if err != nil {
		return fmt.Errorf("encoding assessment: %w", err)
	}
	entries, err := json.Marshal(rec.Entries)
	if err != nil {
		return fmt.Errorf("encoding entries: %w", err)
	}
	va := rec.Assessment
	_, err = p.pool.Exec(ctx,
		`INSERT INTO audits (id, created_at, total_entries, security_score, risk_score, risk_label, assessment, entries)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.CreatedAt, va.TotalEntries, va.SecurityScore, va.RiskScore, va.RiskLabel, assessment, entries,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAlreadyExists
	}
	return err
}

func (p *PostgresBackend) GetAudit(ctx context.Context, id uuid.UUID) (*models.AuditRecord, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT id, created_at, assessment, entries FROM audits WHERE id = $1`, id,
	)
	var rec models.AuditRecord
	var assessment, entries []byte
	if err := row.Scan(&rec.ID, &rec.CreatedAt, &assessment, &entries); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(assessment, &rec.Assessment); err != nil {
		return nil, fmt.Errorf("decoding assessment: %w", err)
	}
	if err := json.Unmarshal(entries, &rec.Entries); err != nil {
		return nil, fmt.Errorf("decoding entries: %w", err)
	}
	return &rec, nil
}

func (p *PostgresBackend) ListAudits(ctx context.Context, filter HistoryFilter) ([]models.AuditSummary, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT id, created_at, total_entries, security_score, risk_label FROM audits WHERE 1=1`)
	args := []any{}
	n := 1
	if filter.Since != nil {
		fmt.Fprintf(&query, ` AND created_at >= $%d`, n)
		args = append(args, *filter.Since)
		n++
	}
	if filter.Label != "" {
		fmt.Fprintf(&query, ` AND risk_label = $%d`, n)
		args = append(args, filter.Label)
		n++
	}
	query.WriteString(` ORDER BY created_at DESC`)
	if filter.Limit > 0 {
		fmt.Fprintf(&query, ` LIMIT $%d`, n)
		args = append(args, filter.Limit)
		n++
	}
	if filter.Offset > 0 {
		fmt.Fprintf(&query, ` OFFSET $%d`, n)
		args = append(args, filter.Offset)
	}

	rows, err := p.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.AuditSummary{}
	for rows.Next() {
		var s models.AuditSummary
		if err := rows.Scan(&s.ID, &s.CreatedAt, &s.TotalEntries, &s.SecurityScore, &s.RiskLabel); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *PostgresBackend) AssessmentHistory(ctx context.Context, before time.Time, limit int) ([]models.VaultAssessment, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := p.pool.Query(ctx,
		`SELECT assessment FROM (
		   SELECT assessment, created_at FROM audits WHERE created_at < $1 ORDER BY created_at DESC LIMIT $2
		 ) recent ORDER BY created_at ASC`,
		before, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.VaultAssessment
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var va models.VaultAssessment
		if err := json.Unmarshal(raw, &va); err != nil {
			return nil, fmt.Errorf("decoding assessment: %w", err)
		}
		out = append(out, va)
	}
	return out, rows.Err()
}

func (p *PostgresBackend) CountAudits(ctx context.Context) (int64, error) {
	var n int64
	err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM audits`).Scan(&n)
	return n, err
}

// --- Request log ---

func (p *PostgresBackend) WriteRequestEntry(ctx context.Context, entry *models.RequestEntry) error {
	metaJSON, err := json.Marshal(entry.Metadata)
	if err != nil {
		metaJSON = []byte("{}")
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO request_log (request_id, timestamp, operation, path, status, response_code, response_time_ms, client_ip, metadata)
		 VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.RequestID, entry.Timestamp, entry.Operation, entry.Path,
		entry.Status, entry.ResponseCode, entry.ResponseTimeMs, entry.ClientIP, metaJSON,
	)
	return err
}

func (p *PostgresBackend) QueryRequestLog(ctx context.Context, filter RequestFilter) ([]*models.RequestEntry, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT id, request_id, timestamp, operation, path, status, response_code, response_time_ms, client_ip, metadata FROM request_log WHERE 1=1`)
	args := []any{}
	n := 1
	if filter.Path != "" {
		fmt.Fprintf(&query, ` AND path LIKE $%d`, n)
		args = append(args, filter.Path+"%")
		n++
	}
	if filter.Since != nil {
		fmt.Fprintf(&query, ` AND timestamp >= $%d`, n)
		args = append(args, *filter.Since)
		n++
	}
	query.WriteString(` ORDER BY timestamp DESC`)
	if filter.Limit > 0 {
		fmt.Fprintf(&query, ` LIMIT $%d`, n)
		args = append(args, filter.Limit)
		n++
	}
	if filter.Offset > 0 {
		fmt.Fprintf(&query, ` OFFSET $%d`, n)
		args = append(args, filter.Offset)
	}

	rows, err := p.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.RequestEntry
	for rows.Next() {
		var e models.RequestEntry
		var metaJSON []byte
		var reqID string
		if err := rows.Scan(&e.ID, &reqID, &e.Timestamp, &e.Operation,
			&e.Path, &e.Status, &e.ResponseCode, &e.ResponseTimeMs, &e.ClientIP, &metaJSON); err != nil {
			return nil, err
		}
		e.RequestID = reqID
		json.Unmarshal(metaJSON, &e.Metadata) //nolint:errcheck
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

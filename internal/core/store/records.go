package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phishnix/phishnix/internal/core"
)

// DefaultListLimit bounds history queries when the caller does not supply a
// limit.
const DefaultListLimit = 50

// SaveRecord inserts one verdict record. The record's ID and CreatedAt are
// assigned here; records are never updated afterwards.
func (s *Store) SaveRecord(ctx context.Context, record *core.VerdictRecord) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if record == nil {
		return errors.New("record is required")
	}
	if strings.TrimSpace(record.OwnerID) == "" {
		return errors.New("record owner id is required")
	}
	if !record.Kind.Valid() {
		return fmt.Errorf("invalid record kind: %q", record.Kind)
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	isSafe := 0
	if record.Verdict.IsSafe {
		isSafe = 1
	}

	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO verdict_records
			(id, owner_id, kind, source_link, is_safe, trust_score, reasoning, url, domain_age_indication, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.OwnerID,
		string(record.Kind),
		record.SourceLink,
		isSafe,
		record.Verdict.TrustScore,
		record.Verdict.Reasoning,
		nullableString(record.Verdict.URL),
		nullableString(record.Verdict.DomainAgeIndication),
		record.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("save verdict record: %w", err)
	}

	return nil
}

// ListRecords returns an owner's verdict history for one record kind, newest
// first. Records belonging to other owners are never returned.
func (s *Store) ListRecords(ctx context.Context, ownerID string, kind core.RecordKind, limit int) ([]core.VerdictRecord, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if strings.TrimSpace(ownerID) == "" {
		return nil, errors.New("owner id is required")
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("invalid record kind: %q", kind)
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, owner_id, kind, source_link, is_safe, trust_score, reasoning, url, domain_age_indication, created_at
		FROM verdict_records
		WHERE owner_id = ? AND kind = ?
		ORDER BY created_at DESC
		LIMIT ?`,
		ownerID, string(kind), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list verdict records: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var records []core.VerdictRecord
	for rows.Next() {
		var (
			record    core.VerdictRecord
			kindRaw   string
			isSafe    int
			urlValue  sql.NullString
			ageValue  sql.NullString
			createdAt int64
		)
		if err := rows.Scan(
			&record.ID,
			&record.OwnerID,
			&kindRaw,
			&record.SourceLink,
			&isSafe,
			&record.Verdict.TrustScore,
			&record.Verdict.Reasoning,
			&urlValue,
			&ageValue,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan verdict record: %w", err)
		}

		record.Kind = core.RecordKind(kindRaw)
		record.Verdict.IsSafe = isSafe != 0
		record.Verdict.URL = urlValue.String
		record.Verdict.DomainAgeIndication = ageValue.String
		record.CreatedAt = time.Unix(createdAt, 0).UTC()

		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list verdict records: %w", err)
	}

	return records, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/fieldscope/survey-console/internal/logger"
	"github.com/fieldscope/survey-console/models"
	"github.com/google/uuid"
)

// defaultAuditLimit caps a listing when the filter does not set one.
const defaultAuditLimit = 100

// auditRepository is the PostgreSQL-backed implementation of
// [AuditRepository]. The "activation_audit_log" table is append-only: the
// repository exposes no update or delete operation, and none exists in the
// SQL layer either.
type auditRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewAuditRepository constructs an [AuditRepository] backed by the provided
// database connection and logger.
func NewAuditRepository(db *DB, logger *logger.Logger) AuditRepository {
	logger.Debug().Msg("creating audit repository")
	return &auditRepository{
		db:     db,
		logger: logger,
	}
}

// Append inserts one audit entry. A UUID is assigned when the entry carries
// none, and Metadata is serialised to JSONB. The stored entry is returned
// with its database-assigned timestamp.
func (r *auditRepository) Append(ctx context.Context, entry models.AuditLogEntry) (models.AuditLogEntry, error) {
	log := logger.FromContext(ctx)

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	var metadata []byte
	if entry.Metadata != nil {
		var err error
		if metadata, err = json.Marshal(entry.Metadata); err != nil {
			return models.AuditLogEntry{}, fmt.Errorf("error serialising audit metadata: %w", err)
		}
	}

	row := r.db.QueryRowContext(ctx, appendAuditEntry,
		entry.ID, entry.CodeID, entry.EventType, entry.Success, entry.RequesterIP, entry.FailureReason, metadata)

	if err := row.Scan(&entry.CreatedAt); err != nil {
		log.Err(err).Str("func", "*auditRepository.Append").Msg("error appending audit entry")
		return models.AuditLogEntry{}, errors.Join(ErrExecutingQuery, err)
	}

	return entry, nil
}

// List returns audit entries matching the filter, newest first. Zero filter
// fields are ignored; the WHERE clause is assembled dynamically.
func (r *auditRepository) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLogEntry, error) {
	log := logger.FromContext(ctx)

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultAuditLimit
	}

	builder := sq.Select("id", "activation_code_id", "event_type", "success", "requester_ip", "failure_reason", "metadata", "created_at").
		From("activation_audit_log").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(sq.Dollar)

	if filter.CodeID != 0 {
		builder = builder.Where(sq.Eq{"activation_code_id": filter.CodeID})
	}
	if filter.EventType != "" {
		builder = builder.Where(sq.Eq{"event_type": filter.EventType})
	}
	if !filter.Since.IsZero() {
		builder = builder.Where(sq.GtOrEq{"created_at": filter.Since})
	}
	if !filter.Until.IsZero() {
		builder = builder.Where(sq.Lt{"created_at": filter.Until})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		log.Err(err).Str("func", "*auditRepository.List").Msg("error building audit query")
		return nil, errors.Join(ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*auditRepository.List").Msg("error querying audit entries")
		return nil, errors.Join(ErrExecutingQuery, err)
	}
	defer rows.Close()

	var entries []models.AuditLogEntry
	for rows.Next() {
		var entry models.AuditLogEntry
		var metadata []byte
		if err = rows.Scan(&entry.ID, &entry.CodeID, &entry.EventType, &entry.Success,
			&entry.RequesterIP, &entry.FailureReason, &metadata, &entry.CreatedAt); err != nil {
			log.Err(err).Str("func", "*auditRepository.List").Msg("error: scanning error")
			return nil, errors.Join(ErrScanningRows, err)
		}
		if len(metadata) > 0 {
			if err = json.Unmarshal(metadata, &entry.Metadata); err != nil {
				return nil, fmt.Errorf("error deserialising audit metadata: %w", err)
			}
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Join(ErrScanningRows, err)
	}

	return entries, nil
}

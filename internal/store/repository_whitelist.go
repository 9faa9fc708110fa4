package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fieldscope/survey-console/internal/logger"
	"github.com/fieldscope/survey-console/models"
	"github.com/jackc/pgerrcode"
)

// whitelistRepository is the PostgreSQL-backed implementation of
// [WhitelistRepository]. It manages pre-authorisation records in the
// "whitelist_entries" table.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type whitelistRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewWhitelistRepository constructs a [WhitelistRepository] backed by the
// provided database connection and logger.
func NewWhitelistRepository(db *DB, logger *logger.Logger) WhitelistRepository {
	logger.Debug().Msg("creating whitelist repository")
	return &whitelistRepository{
		db:     db,
		logger: logger,
	}
}

// Create persists a new whitelist entry and returns the fully populated
// [models.WhitelistEntry] with server-assigned fields (ID, timestamps).
//
// Error handling:
//   - PostgreSQL unique_violation (23505) → [ErrIdentifierAlreadyExists].
//   - Any other driver-level error → wrapped as "unexpected DB error".
//   - Scan failure → wrapped in [ErrScanningRow].
func (r *whitelistRepository) Create(ctx context.Context, entry models.WhitelistEntry) (models.WhitelistEntry, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createWhitelistEntry,
		entry.Identifier, entry.IdentifierType, entry.FullName, entry.Role, entry.SupervisorID, entry.Notes)

	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*whitelistRepository.Create").Msg("error inserting whitelist entry")

		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return models.WhitelistEntry{}, ErrIdentifierAlreadyExists
		default:
			return models.WhitelistEntry{}, fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	saved, err := scanWhitelistEntry(row)
	if err != nil {
		if postgresError(err) == pgerrcode.UniqueViolation {
			return models.WhitelistEntry{}, ErrIdentifierAlreadyExists
		}
		log.Err(err).Str("func", "*whitelistRepository.Create").Msg("error: scanning error")
		return models.WhitelistEntry{}, errors.Join(ErrScanningRow, err)
	}

	return saved, nil
}

// GetByID retrieves a whitelist entry by its primary key.
// Returns [ErrWhitelistNotFound] when no row matches.
func (r *whitelistRepository) GetByID(ctx context.Context, id int64) (models.WhitelistEntry, error) {
	log := logger.FromContext(ctx)

	entry, err := scanWhitelistEntry(r.db.QueryRowContext(ctx, getWhitelistEntryByID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.WhitelistEntry{}, ErrWhitelistNotFound
		}
		log.Err(err).Str("func", "*whitelistRepository.GetByID").Msg("error querying whitelist entry")
		return models.WhitelistEntry{}, errors.Join(ErrExecutingQuery, err)
	}

	return entry, nil
}

// GetByIdentifier retrieves a whitelist entry by its pre-authorised email or
// phone number. This is the redemption entry point: registrants identify
// themselves by identifier, never by internal id.
// Returns [ErrWhitelistNotFound] when the identifier is not whitelisted.
func (r *whitelistRepository) GetByIdentifier(ctx context.Context, identifier string) (models.WhitelistEntry, error) {
	log := logger.FromContext(ctx)

	entry, err := scanWhitelistEntry(r.db.QueryRowContext(ctx, getWhitelistEntryByIdentifier, identifier))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.WhitelistEntry{}, ErrWhitelistNotFound
		}
		log.Err(err).Str("func", "*whitelistRepository.GetByIdentifier").Msg("error querying whitelist entry")
		return models.WhitelistEntry{}, errors.Join(ErrExecutingQuery, err)
	}

	return entry, nil
}

// List returns every whitelist entry, newest first.
func (r *whitelistRepository) List(ctx context.Context) ([]models.WhitelistEntry, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, listWhitelistEntries)
	if err != nil {
		log.Err(err).Str("func", "*whitelistRepository.List").Msg("error querying whitelist entries")
		return nil, errors.Join(ErrExecutingQuery, err)
	}
	defer rows.Close()

	var entries []models.WhitelistEntry
	for rows.Next() {
		var entry models.WhitelistEntry
		if err = rows.Scan(&entry.ID, &entry.Identifier, &entry.IdentifierType, &entry.FullName, &entry.Role,
			&entry.SupervisorID, &entry.IsActivated, &entry.Notes, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
			log.Err(err).Str("func", "*whitelistRepository.List").Msg("error: scanning error")
			return nil, errors.Join(ErrScanningRows, err)
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Join(ErrScanningRows, err)
	}

	return entries, nil
}

func scanWhitelistEntry(row *sql.Row) (models.WhitelistEntry, error) {
	var entry models.WhitelistEntry
	err := row.Scan(&entry.ID, &entry.Identifier, &entry.IdentifierType, &entry.FullName, &entry.Role,
		&entry.SupervisorID, &entry.IsActivated, &entry.Notes, &entry.CreatedAt, &entry.UpdatedAt)
	return entry, err
}

package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrWhitelistNotFound is returned when a lookup targets a whitelist
	// entry that does not exist.
	ErrWhitelistNotFound = errors.New("whitelist entry was not found")

	// ErrIdentifierAlreadyExists is returned when creating a whitelist entry
	// fails because the identifier is already pre-authorised.
	ErrIdentifierAlreadyExists = errors.New("identifier already whitelisted")

	// ErrAlreadyActivated is returned when an activation flip targets an
	// entry whose linked code was already redeemed.
	ErrAlreadyActivated = errors.New("whitelist entry already activated")

	// ErrCodeNotFound is returned when a queried activation code does not
	// exist, including the case where a whitelist entry has no active code.
	ErrCodeNotFound = errors.New("activation code was not found")

	// ErrActiveCodeExists is returned when inserting a new active code would
	// violate the one-active-code-per-entry constraint.
	ErrActiveCodeExists = errors.New("an active code already exists for this entry")

	// ErrCodeNotActive is returned by guarded updates (use, revoke, extend,
	// attempt counting) when the targeted row is no longer in the active
	// state, meaning a concurrent transition won.
	ErrCodeNotActive = errors.New("activation code is not active")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")
)

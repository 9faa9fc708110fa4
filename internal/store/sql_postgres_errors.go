package store

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorClassification tells a caller whether a failed database operation
// should be retried or abandoned.
type ErrorClassification int

const (
	// NonRetryable is the default classification: constraint violations,
	// data exceptions, syntax errors, and anything unrecognised.
	NonRetryable ErrorClassification = iota

	// Retryable marks transient failures such as dropped connections,
	// serialization failures, and deadlock rollbacks.
	Retryable
)

// ErrorClassifier decides whether an error coming out of the database layer
// is transient. The expiry sweeper uses it to retry a failed sweep instead of
// waiting a full interval.
type ErrorClassifier interface {
	Classify(err error) ErrorClassification
}

// PostgresErrorClassifier implements [ErrorClassifier] by inspecting the
// SQLSTATE code carried by pgx driver errors.
type PostgresErrorClassifier struct{}

// NewPostgresErrorClassifier constructs a [PostgresErrorClassifier] ready for use.
func NewPostgresErrorClassifier() *PostgresErrorClassifier {
	return &PostgresErrorClassifier{}
}

// Classify unwraps err as a *pgconn.PgError and maps its code. A nil error or
// a non-PostgreSQL error is [NonRetryable].
func (c *PostgresErrorClassifier) Classify(err error) ErrorClassification {
	if err == nil {
		return NonRetryable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return ClassifyPgError(pgErr)
	}

	return NonRetryable
}

// ClassifyPgError maps a *pgconn.PgError to an [ErrorClassification].
// See https://www.postgresql.org/docs/current/errcodes-appendix.html.
//
// Retryable: class 08 (connection exceptions), class 40 (transaction
// rollback, serialization failure, deadlock), 57P03 (cannot connect now).
// Everything else, notably class 22 (data exceptions), class 23 (constraint
// violations), and class 42 (syntax and access rule violations), is
// NonRetryable.
func ClassifyPgError(pgErr *pgconn.PgError) ErrorClassification {
	switch pgErr.Code {
	case pgerrcode.ConnectionException,
		pgerrcode.ConnectionDoesNotExist,
		pgerrcode.ConnectionFailure,
		pgerrcode.TransactionRollback,
		pgerrcode.SerializationFailure,
		pgerrcode.DeadlockDetected,
		pgerrcode.CannotConnectNow:
		return Retryable
	}

	return NonRetryable
}

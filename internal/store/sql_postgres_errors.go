package store

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorClassification tells a caller whether a failed note or user write is
// worth another attempt. The relay reconciler uses it to decide between
// keeping a note dirty for the next flush tick and dropping its content.
type ErrorClassification int

const (
	// NonRetryable marks failures that repeating cannot cure: constraint
	// violations, bad data, broken queries, and anything unrecognised.
	NonRetryable ErrorClassification = iota

	// Retryable marks transient failures, such as a lost connection or a
	// deadlock rollback, where the same write may succeed on the next tick.
	Retryable
)

// PostgresErrorClassifier implements [ErrorClassificator] by mapping the
// SQLSTATE code carried by pgx driver errors onto [ErrorClassification].
type PostgresErrorClassifier struct{}

// NewPostgresErrorClassifier constructs a [PostgresErrorClassifier].
func NewPostgresErrorClassifier() *PostgresErrorClassifier {
	return &PostgresErrorClassifier{}
}

// Classify implements [ErrorClassificator]. Errors that do not unwrap to a
// *pgconn.PgError, including nil, are classified [NonRetryable]: without a
// SQLSTATE code there is no evidence the failure is transient.
func (c *PostgresErrorClassifier) Classify(err error) ErrorClassification {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return ClassifyPgError(pgErr)
	}

	return NonRetryable
}

// ClassifyPgError classifies a single *pgconn.PgError by its SQLSTATE code
// (see the errcodes appendix of the PostgreSQL manual).
//
// Connection exceptions (class 08), transaction rollbacks including
// serialization failures and deadlocks (class 40), and "cannot connect now"
// (57P03) are [Retryable]: a note update that hits one of these may go
// through once the database recovers.
//
// Data exceptions (class 22), integrity constraint violations (class 23,
// e.g. a duplicate login on signup), and syntax or access rule violations
// (class 42) are [NonRetryable], as is every code not listed here.
func ClassifyPgError(pgErr *pgconn.PgError) ErrorClassification {
	switch pgErr.Code {
	case pgerrcode.ConnectionException, // class 08
		pgerrcode.ConnectionDoesNotExist,
		pgerrcode.ConnectionFailure:
		return Retryable

	case pgerrcode.TransactionRollback, // 40000
		pgerrcode.SerializationFailure, // 40001
		pgerrcode.DeadlockDetected:     // 40P01
		return Retryable

	case pgerrcode.CannotConnectNow: // 57P03
		return Retryable

	case pgerrcode.DataException, // class 22
		pgerrcode.NullValueNotAllowedDataException:
		return NonRetryable

	case pgerrcode.IntegrityConstraintViolation, // class 23
		pgerrcode.RestrictViolation,
		pgerrcode.NotNullViolation,
		pgerrcode.ForeignKeyViolation,
		pgerrcode.UniqueViolation,
		pgerrcode.CheckViolation:
		return NonRetryable

	case pgerrcode.SyntaxErrorOrAccessRuleViolation, // class 42
		pgerrcode.SyntaxError,
		pgerrcode.UndefinedColumn,
		pgerrcode.UndefinedTable,
		pgerrcode.UndefinedFunction:
		return NonRetryable
	}

	return NonRetryable
}

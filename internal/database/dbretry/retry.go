package dbretry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrOperationFailed wraps every error returned by this package.
var ErrOperationFailed = errors.New("database operation failed")

var (
	maxElapsedTime  = 30 * time.Second
	initialInterval = 500 * time.Millisecond
	maxInterval     = 5 * time.Second
	maxRetries      = uint64(5)
)

// retryablePgCodes lists PostgreSQL SQLSTATE codes worth another attempt.
var retryablePgCodes = map[string]struct{}{
	"08000": {}, // connection_exception
	"08001": {}, // sqlclient_unable_to_establish_sqlconnection
	"08003": {}, // connection_does_not_exist
	"08004": {}, // sqlserver_rejected_establishment_of_sqlconnection
	"08006": {}, // connection_failure
	"08007": {}, // transaction_resolution_unknown
	"08P01": {}, // protocol_violation
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
	"53000": {}, // insufficient_resources
	"53100": {}, // disk_full
	"53200": {}, // out_of_memory
	"53300": {}, // too_many_connections
	"57P01": {}, // admin_shutdown
	"57P02": {}, // crash_shutdown
	"57P03": {}, // cannot_connect_now
	"55P03": {}, // lock_not_available
}

// IsRetryableError checks if the given error is worth retrying.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var pgerr pgdriver.Error
	if errors.As(err, &pgerr) {
		_, ok := retryablePgCodes[pgerr.Field('C')]
		return ok
	}

	var sqlerr *sqlite.Error
	if errors.As(err, &sqlerr) {
		// Extended result codes keep the primary code in the low byte
		switch sqlerr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		}

		return false
	}

	if errors.Is(err, sql.ErrConnDone) {
		return true
	}

	errMsg := err.Error()
	for _, fragment := range []string{
		"connection reset by peer",
		"broken pipe",
		"connection refused",
		"i/o timeout",
	} {
		if strings.Contains(errMsg, fragment) {
			return true
		}
	}

	return false
}

// newBackOff builds the shared exponential policy bound to ctx.
func newBackOff(ctx context.Context) backoff.BackOffContext {
	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithMaxElapsedTime(maxElapsedTime),
		backoff.WithInitialInterval(initialInterval),
		backoff.WithMaxInterval(maxInterval),
	), maxRetries)

	return backoff.WithContext(b, ctx)
}

// Operation wraps a database operation with retry logic.
func Operation[T any](ctx context.Context, operation func(context.Context) (T, error)) (T, error) {
	var lastErr error

	result, err := backoff.RetryWithData(func() (T, error) {
		result, err := operation(ctx)
		if err != nil {
			lastErr = err

			if !IsRetryableError(err) {
				return result, backoff.Permanent(err)
			}
		}

		return result, err
	}, newBackOff(ctx))
	if err != nil {
		if lastErr == nil {
			lastErr = err
		}

		return result, fmt.Errorf("%w: %w", ErrOperationFailed, lastErr)
	}

	return result, nil
}

// NoResult wraps a database operation that doesn't return a result.
func NoResult(ctx context.Context, operation func(context.Context) error) error {
	_, err := Operation(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, operation(ctx)
	})

	return err
}

// Transaction runs fn inside a transaction, retrying the whole transaction on retryable errors.
func Transaction(ctx context.Context, db *bun.DB, fn func(context.Context, bun.Tx) error) error {
	return NoResult(ctx, func(ctx context.Context) error {
		return db.RunInTx(ctx, nil, fn)
	})
}

// ReadTransaction is Transaction with a read-only snapshot on PostgreSQL.
func ReadTransaction(ctx context.Context, db *bun.DB, fn func(context.Context, bun.Tx) error) error {
	opts := &sql.TxOptions{ReadOnly: db.Dialect().Name() == dialect.PG}

	return NoResult(ctx, func(ctx context.Context) error {
		return db.RunInTx(ctx, opts, fn)
	})
}

// Package dbretry implements the exponential-backoff retry used for
// transient store errors, adapted from the teacher's
// internal/data/retry.go (isConnectionError/ExecWithRetry).
package dbretry

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgconn"
)

// connectionClassPrefix is the PostgreSQL SQLSTATE class prefix that
// denotes a transient connection-level failure (class 08), worth
// retrying; everything else (e.g. 42703 undefined column) is
// permanent and must not be retried.
const connectionClassPrefix = "08"

// IsTransient reports whether err looks like a transient
// connection/network failure rather than a permanent schema or data
// error, mirroring isConnectionError.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, connectionClassPrefix)
	}

	msg := strings.ToLower(err.Error())
	for _, needle := range []string{"connection refused", "connection reset", "broken pipe", "i/o timeout", "eof", "no route to host"} {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}

// Do runs fn, retrying with exponential backoff when IsTransient(err)
// is true, up to maxAttempts. Permanent errors return immediately on
// first failure.
func Do(ctx context.Context, maxAttempts int, base time.Duration, fn func() error) error {
	var lastErr error
	delay := base

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsTransient(err) || attempt == maxAttempts {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return lastErr
}

package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// MySQL/TiDB lock errors worth retrying
const (
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

// TransactionManager runs units of work in a transaction
type TransactionManager struct {
	db          *sql.DB
	maxAttempts int
	backoff     time.Duration
}

// NewTransactionManager creates a TransactionManager that makes up to three
// attempts on lock contention, backing off from 50ms
func NewTransactionManager(db *sql.DB) *TransactionManager {
	return &TransactionManager{db: db, maxAttempts: 3, backoff: 50 * time.Millisecond}
}

// WithTransaction runs fn in a transaction, committing when it returns nil.
// The transaction is rolled back if fn returns an error or panics.
func (tm *TransactionManager) WithTransaction(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := tm.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed: %w (rollback error: %v)", err, rbErr)
		}
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// WithRetry is WithTransaction that reruns the whole of fn when the store
// reports a deadlock or a busy database. fn must be safe to run again.
func (tm *TransactionManager) WithRetry(ctx context.Context, fn func(tx *sql.Tx) error) error {
	wait := tm.backoff
	for attempt := 1; ; attempt++ {
		err := tm.WithTransaction(ctx, fn)
		if err == nil || !isRetryable(err) {
			return err
		}
		if attempt >= tm.maxAttempts {
			return fmt.Errorf("transaction failed after %d attempts: %w", attempt, err)
		}

		log.Printf("⚠️  Lock contention (attempt %d/%d), retrying in %s: %v", attempt, tm.maxAttempts, wait, err)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
		wait *= 2
	}
}

// isRetryable reports lock contention: MySQL/TiDB deadlocks and lock wait
// timeouts, SQLite BUSY and LOCKED (including extended codes)
func isRetryable(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDeadlock || myErr.Number == mysqlLockWaitTimeout
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		}
	}
	return false
}

package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
)

// Sentinel errors for database operations. Check with errors.Is.
var (
	// ErrDuplicateKey indicates a write collided with the fact table's
	// unique (subject, type, content) constraint. Callers treat this as a
	// concurrent upsert of the same fact and may retry.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrTransactionConflict indicates a SurrealDB transaction conflict
	// from concurrent writes to the same record. Retry or skip.
	ErrTransactionConflict = errors.New("transaction conflict")

	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
)

// wrapQueryError maps known SurrealDB query errors onto sentinel errors.
// Unrecognized errors pass through unchanged.
func wrapQueryError(err error) error {
	if err == nil {
		return nil
	}

	var queryErr *surrealdb.QueryError
	if errors.As(err, &queryErr) {
		msg := queryErr.Message
		if strings.Contains(msg, "already contains") || strings.Contains(msg, "already exists") {
			return fmt.Errorf("%w: %s", ErrDuplicateKey, msg)
		}
		if strings.Contains(msg, "Transaction conflict") {
			return fmt.Errorf("%w: %s", ErrTransactionConflict, msg)
		}
	}

	return err
}

package db

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned when a component touches the store before
// Open has succeeded or after Close.
var ErrNotInitialized = errors.New("database not initialized")

// ErrInvalidCredential is returned when the store cannot be decrypted with
// the supplied master password or the file fails its integrity probe.
var ErrInvalidCredential = errors.New("invalid master password or corrupted database")

// MigrationError reports a migration unit that failed mid-transaction. The
// unit's ledger row is never written; re-running the sequence retries the
// failed unit and everything after it.
type MigrationError struct {
	Name string
	Err  error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration %s: %v", e.Name, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }

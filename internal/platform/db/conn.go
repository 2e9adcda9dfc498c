package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/mutecomm/go-sqlcipher/v4"
	"github.com/rs/zerolog"
)

// Conn owns the single handle to the encrypted on-disk store. There is at
// most one open handle per process; every read and write flows through the
// Gateway built on top of it. Migrator and backup.Coordinator talk to the
// Conn directly.
type Conn struct {
	path string
	db   *sql.DB
	log  zerolog.Logger
}

func NewConn(path string, logger zerolog.Logger) *Conn {
	return &Conn{path: path, log: logger}
}

// Open creates or opens the backing file, applies masterPassword as the
// SQLCipher key and probes the result. A failed probe closes the handle
// before the error propagates. Calling Open while already open is a no-op;
// the store is never re-keyed.
func (c *Conn) Open(masterPassword string) error {
	if c.db != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	dsn := c.path + "?_pragma_key=" + url.QueryEscape(masterPassword) +
		"&_pragma_cipher_page_size=4096&_foreign_keys=on"

	handle, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return fmt.Errorf("open database %s: %w", c.path, err)
	}

	// Single writer: the whole process shares one connection so the
	// engine's own serialization is the only concurrency control needed.
	handle.SetMaxOpenConns(1)

	var probe string
	if err := handle.QueryRow("PRAGMA quick_check").Scan(&probe); err != nil {
		handle.Close()
		return fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if probe != "ok" {
		handle.Close()
		return fmt.Errorf("%w: quick_check reported %q", ErrInvalidCredential, probe)
	}

	c.db = handle
	c.log.Info().Str("path", c.path).Msg("database opened")
	return nil
}

// Close releases the handle. Safe to call when already closed.
func (c *Conn) Close() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	if err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	c.log.Info().Msg("database closed")
	return nil
}

// Path returns the location of the backing file on disk.
func (c *Conn) Path() string { return c.path }

// DB returns the raw handle, or ErrNotInitialized when the store is closed.
func (c *Conn) DB() (*sql.DB, error) {
	if c.db == nil {
		return nil, ErrNotInitialized
	}
	return c.db, nil
}

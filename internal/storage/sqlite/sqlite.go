// Package sqlite provides a SQLite-backed implementation of storage.Gateway.
package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/smileynet/contactbook/internal/contact"
	"github.com/smileynet/contactbook/internal/storage"
)

// Ensure Store implements storage.Gateway
var _ storage.Gateway = (*Store)(nil)

// versionKey marks a database that holds a saved snapshot.
const versionKey = "version"

// Store keeps one address book snapshot in a SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// header is the magic string every SQLite database file starts with.
var header = []byte("SQLite format 3\x00")

// New opens the database at dbPath, creating parent directories and running
// migrations. A fresh database holds no snapshot until the first Save.
// An existing file that is not a SQLite database reports
// storage.ErrCorruptSnapshot.
func New(ctx context.Context, dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: creating database directory: %w", err)
	}
	existing, err := checkHeader(dbPath)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	// PRAGMAs are per connection; a single connection keeps them in effect.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		if existing {
			return nil, fmt.Errorf("%w: %s: %v", storage.ErrCorruptSnapshot, dbPath, err)
		}
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		if existing {
			return nil, fmt.Errorf("%w: %s: %v", storage.ErrCorruptSnapshot, dbPath, err)
		}
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// checkHeader reports whether a non-empty file exists at path, failing with
// storage.ErrCorruptSnapshot when it does not start with the SQLite header.
func checkHeader(path string) (bool, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite: opening %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, len(header))
	n, err := io.ReadFull(f, buf)
	if n == 0 && (err == io.EOF || err == nil) {
		return false, nil
	}
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return false, fmt.Errorf("sqlite: reading %s: %w", path, err)
	}
	if !bytes.Equal(buf[:n], header) {
		return true, fmt.Errorf("%w: %s is not a SQLite database", storage.ErrCorruptSnapshot, path)
	}
	return true, nil
}

// Remove deletes the database at dbPath with its journal files. Missing files
// are not an error.
func Remove(dbPath string) error {
	for _, p := range []string{dbPath, dbPath + "-journal", dbPath + "-wal", dbPath + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("sqlite: removing %s: %w", p, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load reads the snapshot. A database that was never saved to reports
// storage.ErrNoSnapshot.
func (s *Store) Load(ctx context.Context) (*contact.AddressBook, error) {
	var version string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM snapshot_meta WHERE key = ?", versionKey,
	).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrNoSnapshot, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading snapshot version: %w", err)
	}

	v, err := strconv.Atoi(version)
	if err != nil {
		return nil, fmt.Errorf("%w: version %q", storage.ErrCorruptSnapshot, version)
	}
	doc := storage.Document{Version: v}

	rows, err := s.db.QueryContext(ctx,
		"SELECT name, birthday FROM contacts ORDER BY position",
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying contacts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e        storage.Entry
			birthday sql.NullString
		)
		if err := rows.Scan(&e.Name, &birthday); err != nil {
			return nil, fmt.Errorf("sqlite: scanning contact: %w", err)
		}
		e.Birthday = birthday.String
		doc.Contacts = append(doc.Contacts, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating contacts: %w", err)
	}

	for i := range doc.Contacts {
		phones, err := s.phones(ctx, doc.Contacts[i].Name)
		if err != nil {
			return nil, err
		}
		doc.Contacts[i].Phones = phones
	}

	book, err := storage.Decode(doc)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %s: %w", s.path, err)
	}
	slog.Debug("Snapshot loaded", "path", s.path, "backend", "sqlite", "contacts", book.Len())
	return book, nil
}

func (s *Store) phones(ctx context.Context, name string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT number FROM phones WHERE contact_name = ? ORDER BY position",
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying phones: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return nil, fmt.Errorf("sqlite: scanning phone: %w", err)
		}
		out = append(out, number)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating phones: %w", err)
	}
	return out, nil
}

// Save replaces the stored snapshot with book in a single transaction.
func (s *Store) Save(ctx context.Context, book *contact.AddressBook) error {
	doc := storage.Encode(book)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM phones"); err != nil {
		return fmt.Errorf("sqlite: clearing phones: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM contacts"); err != nil {
		return fmt.Errorf("sqlite: clearing contacts: %w", err)
	}

	for pos, e := range doc.Contacts {
		var birthday sql.NullString
		if e.Birthday != "" {
			birthday = sql.NullString{String: e.Birthday, Valid: true}
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO contacts (name, position, birthday) VALUES (?, ?, ?)",
			e.Name, pos, birthday,
		)
		if err != nil {
			return fmt.Errorf("sqlite: inserting contact: %w", err)
		}

		for i, number := range e.Phones {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO phones (contact_name, position, number) VALUES (?, ?, ?)",
				e.Name, i, number,
			)
			if err != nil {
				return fmt.Errorf("sqlite: inserting phone: %w", err)
			}
		}
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO snapshot_meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		versionKey, strconv.Itoa(doc.Version),
	)
	if err != nil {
		return fmt.Errorf("sqlite: writing snapshot version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}

	slog.Debug("Snapshot saved", "path", s.path, "backend", "sqlite", "contacts", book.Len())
	return nil
}

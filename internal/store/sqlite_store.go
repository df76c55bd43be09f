package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/roamline/staykeeper/internal/models"
	_ "modernc.org/sqlite"
)

// draftSlotID pins the draft table to a single row. The last-write-wins
// policy falls out of the upsert on this fixed key.
const draftSlotID = 1

type SQLiteStore struct {
	mu       sync.Mutex
	db       *sql.DB
	validate *validator.Validate
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dbPath, err := resolveDBPath(path)
	if err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := initSchema(db); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, errors.Join(err, cerr)
		}
		return nil, err
	}

	return &SQLiteStore{db: db, validate: validator.New()}, nil
}

func resolveDBPath(path string) (string, error) {
	abs := filepath.Clean(path)
	if strings.HasSuffix(abs, ".db") {
		if err := os.MkdirAll(filepath.Dir(abs), 0o750); err != nil {
			return "", err
		}
		return abs, nil
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return "", err
	}
	return filepath.Join(abs, "staykeeper.db"), nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		"PRAGMA foreign_keys = ON;",
		"CREATE TABLE IF NOT EXISTS draft_slot (id INTEGER PRIMARY KEY CHECK (id = 1), data BLOB NOT NULL);",
		"CREATE TABLE IF NOT EXISTS confirmed_cache (position INTEGER PRIMARY KEY AUTOINCREMENT, reservation_id TEXT NOT NULL, data BLOB NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_confirmed_reservation_id ON confirmed_cache(reservation_id);",
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveDraft overwrites any existing draft unconditionally.
func (s *SQLiteStore) SaveDraft(draft *models.DraftReservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validate.Struct(draft); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDraft, err)
	}
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT INTO draft_slot (id, data) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET data = excluded.data`, draftSlotID, data)
	return err
}

// LoadDraft returns the stored draft, ErrNoDraft when the slot is empty,
// or ErrMalformedDraft after clearing a slot that fails validation.
func (s *SQLiteStore) LoadDraft() (*models.DraftReservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw []byte
	err := s.db.QueryRow(`SELECT data FROM draft_slot WHERE id = ?`, draftSlotID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoDraft
	}
	if err != nil {
		return nil, err
	}

	var draft models.DraftReservation
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, s.discardMalformed(err)
	}
	if err := s.validate.Struct(&draft); err != nil {
		return nil, s.discardMalformed(err)
	}
	return &draft, nil
}

// discardMalformed deletes the corrupt slot so it is never retried.
func (s *SQLiteStore) discardMalformed(cause error) error {
	if _, err := s.db.Exec(`DELETE FROM draft_slot WHERE id = ?`, draftSlotID); err != nil {
		return errors.Join(fmt.Errorf("%w: %v", ErrMalformedDraft, cause), err)
	}
	return fmt.Errorf("%w: %v", ErrMalformedDraft, cause)
}

// ClearDraft removes the stored draft. Clearing an empty slot is not an error.
func (s *SQLiteStore) ClearDraft() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`DELETE FROM draft_slot WHERE id = ?`, draftSlotID)
	return err
}

// ReplaceConfirmed swaps the cached confirmed list for the given snapshot,
// preserving the remote source's order.
func (s *SQLiteStore) ReplaceConfirmed(reservations []*models.ConfirmedReservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM confirmed_cache`); err != nil {
		return rollback(tx, err)
	}
	for _, r := range reservations {
		data, err := json.Marshal(r)
		if err != nil {
			return rollback(tx, err)
		}
		if _, err := tx.Exec(`INSERT INTO confirmed_cache (reservation_id, data) VALUES (?, ?)`, r.ID, data); err != nil {
			return rollback(tx, err)
		}
	}
	return tx.Commit()
}

func rollback(tx *sql.Tx, err error) error {
	if rerr := tx.Rollback(); rerr != nil {
		return errors.Join(err, rerr)
	}
	return err
}

// ListConfirmed returns the cached confirmed list in stored order.
func (s *SQLiteStore) ListConfirmed() ([]*models.ConfirmedReservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT data FROM confirmed_cache ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var reservations []*models.ConfirmedReservation
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var r models.ConfirmedReservation
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, err
		}
		reservations = append(reservations, &r)
	}
	return reservations, rows.Err()
}

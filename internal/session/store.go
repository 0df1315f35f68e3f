package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/claude/ironplan/internal/models"
)

// Store is the device-local persistence for the in-progress session. A
// missing session is not an error: Load returns nil. Corrupted state is
// treated the same way so a bad write never wedges the client.
//
// The scheduled-day binding is stored beside the session document, not
// inside it: the document shape is fixed, and the binding must survive
// restarts just like the session itself or a resumed session would submit
// as ad-hoc.
type Store interface {
	Load() (*models.LocalSession, error)
	Save(s *models.LocalSession) error
	LoadScheduledDay() (*uuid.UUID, error)
	SaveScheduledDay(id *uuid.UUID) error
	Clear() error
}

// SQLiteStore persists the session as a JSON document in a single-row
// SQLite table, so it survives process restarts.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) the session database at dir/session.db.
func OpenSQLiteStore(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating session dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "session.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening session db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS active_session (
		id       INTEGER PRIMARY KEY CHECK (id = 1),
		document TEXT NOT NULL,
		saved_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating session table: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS scheduled_day (
		id         INTEGER PRIMARY KEY CHECK (id = 1),
		program_day TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating scheduled day table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Load returns the persisted session, or nil when none exists or the stored
// document does not decode.
func (s *SQLiteStore) Load() (*models.LocalSession, error) {
	var doc string
	err := s.db.QueryRow(`SELECT document FROM active_session WHERE id = 1`).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	var sess models.LocalSession
	if err := json.Unmarshal([]byte(doc), &sess); err != nil {
		// Corrupted document: fail soft, the client restarts the session.
		return nil, nil
	}
	return &sess, nil
}

// Save upserts the session document.
func (s *SQLiteStore) Save(sess *models.LocalSession) error {
	doc, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO active_session (id, document) VALUES (1, ?)
		 ON CONFLICT (id) DO UPDATE SET document = excluded.document, saved_at = CURRENT_TIMESTAMP`,
		string(doc),
	)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// LoadScheduledDay returns the day the persisted session fulfills, or nil
// for an ad-hoc session. An unparseable value fails soft like a corrupted
// document.
func (s *SQLiteStore) LoadScheduledDay() (*uuid.UUID, error) {
	var raw string
	err := s.db.QueryRow(`SELECT program_day FROM scheduled_day WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading scheduled day: %w", err)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, nil
	}
	return &id, nil
}

// SaveScheduledDay records (or clears, when nil) the scheduled-day binding.
func (s *SQLiteStore) SaveScheduledDay(id *uuid.UUID) error {
	if id == nil {
		_, err := s.db.Exec(`DELETE FROM scheduled_day WHERE id = 1`)
		return err
	}
	_, err := s.db.Exec(
		`INSERT INTO scheduled_day (id, program_day) VALUES (1, ?)
		 ON CONFLICT (id) DO UPDATE SET program_day = excluded.program_day`,
		id.String(),
	)
	if err != nil {
		return fmt.Errorf("saving scheduled day: %w", err)
	}
	return nil
}

// Clear removes any persisted session and its scheduled-day binding.
func (s *SQLiteStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM active_session WHERE id = 1`); err != nil {
		return err
	}
	_, err := s.db.Exec(`DELETE FROM scheduled_day WHERE id = 1`)
	return err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	sess *models.LocalSession
	day  *uuid.UUID
}

func (m *MemStore) Load() (*models.LocalSession, error) {
	if m.sess == nil {
		return nil, nil
	}
	// Round-trip through JSON so tests exercise the persisted shape.
	doc, err := json.Marshal(m.sess)
	if err != nil {
		return nil, err
	}
	var cp models.LocalSession
	if err := json.Unmarshal(doc, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (m *MemStore) Save(s *models.LocalSession) error {
	cp := *s
	m.sess = &cp
	return nil
}

func (m *MemStore) LoadScheduledDay() (*uuid.UUID, error) {
	return m.day, nil
}

func (m *MemStore) SaveScheduledDay(id *uuid.UUID) error {
	m.day = id
	return nil
}

func (m *MemStore) Clear() error {
	m.sess = nil
	m.day = nil
	return nil
}

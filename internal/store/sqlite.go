package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/devaloi/safecast/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens or creates a SQLite database at the given path.
// Use ":memory:" for an in-memory database.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// Each :memory: connection is its own database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS alerts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			type TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			address TEXT NOT NULL DEFAULT '',
			audio_url TEXT NOT NULL DEFAULT '',
			video_link TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_alerts_user_created ON alerts(user_id, created_at);
	`)
	return err
}

// Save persists an alert to the database.
func (s *SQLiteStore) Save(a domain.Alert) (domain.Alert, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.Exec(
		`INSERT INTO alerts (user_id, type, latitude, longitude, address, audio_url, video_link, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, string(a.Type), a.Location.Latitude, a.Location.Longitude, a.Location.Address,
		a.AudioURL, a.VideoLink, string(a.Status), a.CreatedAt,
	)
	if err != nil {
		return domain.Alert{}, fmt.Errorf("insert alert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Alert{}, fmt.Errorf("alert id: %w", err)
	}
	a.ID = id
	return a, nil
}

// History returns the last `limit` alerts for a user, newest first.
func (s *SQLiteStore) History(userID string, limit int) ([]domain.Alert, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, type, latitude, longitude, address, audio_url, video_link, status, created_at
		FROM alerts
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	alerts := []domain.Alert{}
	for rows.Next() {
		var (
			a           domain.Alert
			typ, status string
		)
		if err := rows.Scan(&a.ID, &a.UserID, &typ, &a.Location.Latitude, &a.Location.Longitude,
			&a.Location.Address, &a.AudioURL, &a.VideoLink, &status, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.Type = domain.AlertType(typ)
		a.Status = domain.AlertStatus(status)
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return alerts, nil
}

// Resolve marks an alert as resolved.
func (s *SQLiteStore) Resolve(id int64) error {
	res, err := s.db.Exec("UPDATE alerts SET status = ? WHERE id = ?", string(domain.StatusResolved), id)
	if err != nil {
		return fmt.Errorf("resolve alert %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolve alert %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

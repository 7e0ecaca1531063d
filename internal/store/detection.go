package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// MaxListLimit caps the number of rows returned by List.
const MaxListLimit = 500

// Detection is one recorded recognition result.
// An empty Alphabet records a frame in which no sign was recognized.
type Detection struct {
	ID        string
	Alphabet  string
	Hands     int
	Features  int
	CreatedAt time.Time
}

// DetectionRepository provides access to the detection history.
type DetectionRepository struct {
	db *sql.DB
}

// Detections returns the detection repository for this store.
func (s *Store) Detections() *DetectionRepository {
	return &DetectionRepository{db: s.db}
}

// Create inserts d, assigning an ID and timestamp when they are unset.
func (r *DetectionRepository) Create(d *Detection) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	d.CreatedAt = d.CreatedAt.UTC()

	_, err := r.db.Exec(
		`INSERT INTO detections (id, alphabet, hands, features, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		d.ID, d.Alphabet, d.Hands, d.Features, d.CreatedAt,
	)
	return err
}

// GetByID retrieves a detection by its ID.
func (r *DetectionRepository) GetByID(id string) (*Detection, error) {
	d := &Detection{}

	err := r.db.QueryRow(
		`SELECT id, alphabet, hands, features, created_at
		 FROM detections WHERE id = ?`,
		id,
	).Scan(&d.ID, &d.Alphabet, &d.Hands, &d.Features, &d.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return d, nil
}

// List returns up to limit detections, newest first.
// A limit outside 1..MaxListLimit is clamped.
func (r *DetectionRepository) List(limit int) ([]*Detection, error) {
	if limit <= 0 {
		limit = 1
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	rows, err := r.db.Query(
		`SELECT id, alphabet, hands, features, created_at
		 FROM detections ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var detections []*Detection
	for rows.Next() {
		d := &Detection{}
		if err := rows.Scan(&d.ID, &d.Alphabet, &d.Hands, &d.Features, &d.CreatedAt); err != nil {
			return nil, err
		}
		detections = append(detections, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return detections, nil
}

// Count returns the number of stored detections.
func (r *DetectionRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM detections`).Scan(&n)
	return n, err
}

// Clear removes every detection and returns how many were deleted.
func (r *DetectionRepository) Clear() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM detections`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

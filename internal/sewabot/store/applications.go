package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when no application exists for the given ID.
var ErrNotFound = errors.New("store: application not found")

// StatusSubmitted is the status every freshly persisted application gets.
// Downstream processing (outside this service) moves it through review.
const StatusSubmitted = "submitted"

// Application is a persisted ex-gratia submission.
type Application struct {
	ID        string
	UserID    string
	Language  string
	Data      map[string]string
	Status    string
	CreatedAt time.Time
}

// InsertApplication persists a new application. The caller supplies the ID;
// CreatedAt and Status are stamped here.
func (s *Store) InsertApplication(ctx context.Context, app *Application) error {
	data, err := json.Marshal(app.Data)
	if err != nil {
		return fmt.Errorf("store: encode application data: %w", err)
	}

	app.Status = StatusSubmitted
	app.CreatedAt = time.Now()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO applications (id, user_id, language, data, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, app.ID, app.UserID, app.Language, string(data), app.Status, app.CreatedAt)
	if err != nil {
		return fmt.Errorf("store: insert application: %w", err)
	}
	return nil
}

// GetApplication looks up an application by ID. The lookup is
// case-insensitive on the ID so citizens can type it however they like.
func (s *Store) GetApplication(ctx context.Context, id string) (*Application, error) {
	app := &Application{}
	var data string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, language, data, status, created_at
		FROM applications
		WHERE UPPER(id) = ?
	`, strings.ToUpper(id)).Scan(
		&app.ID, &app.UserID, &app.Language, &data, &app.Status, &app.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get application: %w", err)
	}

	if err := json.Unmarshal([]byte(data), &app.Data); err != nil {
		return nil, fmt.Errorf("store: decode application data: %w", err)
	}
	return app, nil
}

// CountApplications returns the number of persisted applications.
func (s *Store) CountApplications(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM applications").Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count applications: %w", err)
	}
	return n, nil
}

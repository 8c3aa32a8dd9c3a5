package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"

	"github.com/edgard/notebot/internal/errs"
	"github.com/edgard/notebot/internal/logger"
	"github.com/edgard/notebot/internal/notes"
)

// DayLayout is the calendar-day key of the delivery journal.
const DayLayout = "2006-01-02"

type noteRow struct {
	ID      int64  `db:"id"`
	Text    string `db:"text"`
	SavedAt string `db:"saved_at"`
}

// Store is the SQLite-backed note ledger and delivery journal.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
	clock  clockwork.Clock
	loc    *time.Location
}

// NewStore wraps a migrated database. Timestamps are taken from clock and
// rendered in loc.
func NewStore(db *sqlx.DB, log *slog.Logger, clock clockwork.Clock, loc *time.Location) *Store {
	if log == nil {
		log = logger.Discard()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Store{
		db:     db,
		logger: log.With("component", "store"),
		clock:  clock,
		loc:    loc,
	}
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Append inserts a note stamped with the current time.
func (s *Store) Append(ctx context.Context, text string) error {
	savedAt := notes.FormatTimestamp(s.clock.Now().In(s.loc))

	_, err := s.db.ExecContext(ctx, `INSERT INTO notes (text, saved_at) VALUES (?, ?)`, text, savedAt)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to append note", "error", err)
		return errs.NewPersistenceError("failed to append note", err)
	}

	s.logger.DebugContext(ctx, "Appended note", "saved_at", savedAt, "length", len(text))
	return nil
}

// ListAll returns every note in insertion order.
func (s *Store) ListAll(ctx context.Context) ([]notes.Note, error) {
	var rows []noteRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, text, saved_at FROM notes ORDER BY id`); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list notes", "error", err)
		return nil, errs.NewPersistenceError("failed to list notes", err)
	}

	out := make([]notes.Note, 0, len(rows))
	for _, r := range rows {
		savedAt, ok := notes.ParseTimestamp(r.SavedAt, s.loc)
		if !ok {
			s.logger.WarnContext(ctx, "Note has malformed timestamp", "note_id", r.ID, "saved_at", r.SavedAt)
		}
		out = append(out, notes.Note{Text: r.Text, SavedAt: savedAt, RawSavedAt: r.SavedAt})
	}
	return out, nil
}

// LastClaimedDay returns the most recent journaled day (YYYY-MM-DD), or ""
// when the journal is empty.
func (s *Store) LastClaimedDay(ctx context.Context) (string, error) {
	var day string
	if err := s.db.GetContext(ctx, &day, `SELECT COALESCE(MAX(day), '') FROM deliveries`); err != nil {
		return "", errs.NewPersistenceError("failed to read last delivery day", err)
	}
	return day, nil
}

// ClaimDay records a delivery attempt for day. claimed is false when the day
// already has a record, in which case no delivery must happen.
func (s *Store) ClaimDay(ctx context.Context, day string) (deliveryID string, claimed bool, err error) {
	if _, parseErr := time.Parse(DayLayout, day); parseErr != nil {
		return "", false, fmt.Errorf("invalid day %q: %w", day, parseErr)
	}

	deliveryID = uuid.NewString()
	claimedAt := notes.FormatTimestamp(s.clock.Now().In(s.loc))

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO deliveries (delivery_id, day, claimed_at) VALUES (?, ?, ?) ON CONFLICT(day) DO NOTHING`,
		deliveryID, day, claimedAt)
	if err != nil {
		return "", false, errs.NewPersistenceError("failed to claim delivery day", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return "", false, errs.NewPersistenceError("failed to read claim result", err)
	}
	if n == 0 {
		s.logger.InfoContext(ctx, "Delivery day already claimed", "day", day)
		return "", false, nil
	}

	s.logger.DebugContext(ctx, "Claimed delivery day", "day", day, "delivery_id", deliveryID)
	return deliveryID, true, nil
}

// CompleteDelivery stores the outcome of a claimed delivery.
func (s *Store) CompleteDelivery(ctx context.Context, deliveryID string, sent, failed int) error {
	if deliveryID == "" {
		return errors.New("delivery id cannot be empty")
	}

	completedAt := notes.FormatTimestamp(s.clock.Now().In(s.loc))
	res, err := s.db.ExecContext(ctx,
		`UPDATE deliveries SET completed_at = ?, sent = ?, failed = ? WHERE delivery_id = ?`,
		completedAt, sent, failed, deliveryID)
	if err != nil {
		return errs.NewPersistenceError("failed to complete delivery", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.NewPersistenceError(fmt.Sprintf("delivery %s not found", deliveryID), nil)
	}
	return nil
}

// PruneDeliveries deletes journal records for days before the given day.
func (s *Store) PruneDeliveries(ctx context.Context, before string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM deliveries WHERE day < ?`, before)
	if err != nil {
		return 0, errs.NewPersistenceError("failed to prune deliveries", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errs.NewPersistenceError("failed to read prune result", err)
	}
	return n, nil
}

// RunSQLMaintenance compacts the database file.
func (s *Store) RunSQLMaintenance(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Running database maintenance (VACUUM)")

	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed")
	return nil
}

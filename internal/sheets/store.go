// Package sheets implements the note ledger on a Google Sheets worksheet.
package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/edgard/notebot/internal/errs"
	"github.com/edgard/notebot/internal/logger"
	"github.com/edgard/notebot/internal/notes"
)

// Size of a newly created worksheet.
const (
	newSheetRows    = 1000
	newSheetColumns = 2
)

// Options configures a Store.
type Options struct {
	SpreadsheetID   string
	Worksheet       string
	CredentialsFile string

	Clock    clockwork.Clock
	Location *time.Location
	Logger   *slog.Logger
}

// Store is a notes.Store on one worksheet of a spreadsheet. Column A holds the
// note text and column B its timestamp; the first row is the header.
type Store struct {
	api       sheetsAPI
	worksheet string
	clock     clockwork.Clock
	loc       *time.Location
	logger    *slog.Logger
}

// New authenticates with the service account credentials file and opens (or
// creates) the configured worksheet.
func New(ctx context.Context, opts Options) (*Store, error) {
	svc, err := gsheets.NewService(ctx,
		option.WithCredentialsFile(opts.CredentialsFile),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, errs.NewPersistenceError("failed to create sheets client", err)
	}
	return NewWithService(ctx, svc, opts)
}

// NewWithService is New with a caller-built Sheets service.
func NewWithService(ctx context.Context, svc *gsheets.Service, opts Options) (*Store, error) {
	s := newStore(&serviceAPI{svc: svc, spreadsheetID: opts.SpreadsheetID}, opts)
	if err := s.ensureWorksheet(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func newStore(api sheetsAPI, opts Options) *Store {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	return &Store{
		api:       api,
		worksheet: opts.Worksheet,
		clock:     clock,
		loc:       loc,
		logger:    log.With("component", "sheets_store", "worksheet", opts.Worksheet),
	}
}

// columnRange is the A1 range covering both ledger columns of the worksheet.
func (s *Store) columnRange() string {
	return fmt.Sprintf("'%s'!A:B", strings.ReplaceAll(s.worksheet, "'", "''"))
}

func (s *Store) ensureWorksheet(ctx context.Context) error {
	titles, err := s.api.sheetTitles(ctx)
	if err != nil {
		return errs.NewPersistenceError("failed to open spreadsheet", err)
	}
	if slices.Contains(titles, s.worksheet) {
		s.logger.DebugContext(ctx, "Worksheet found")
		return nil
	}

	s.logger.InfoContext(ctx, "Worksheet not found, creating it")
	if err := s.api.addSheet(ctx, s.worksheet, newSheetRows, newSheetColumns); err != nil {
		return errs.NewPersistenceError("failed to create worksheet", err)
	}

	header := make([]any, len(notes.Header))
	for i, h := range notes.Header {
		header[i] = h
	}
	if err := s.api.appendRow(ctx, s.columnRange(), header); err != nil {
		return errs.NewPersistenceError("failed to write worksheet header", err)
	}
	return nil
}

// Append adds a [text, timestamp] row after the last ledger row.
func (s *Store) Append(ctx context.Context, text string) error {
	savedAt := notes.FormatTimestamp(s.clock.Now().In(s.loc))

	if err := s.api.appendRow(ctx, s.columnRange(), []any{text, savedAt}); err != nil {
		s.logger.ErrorContext(ctx, "Failed to append note", "error", err)
		return errs.NewPersistenceError("failed to append note", err)
	}

	s.logger.InfoContext(ctx, "Saved note", "saved_at", savedAt, "length", len(text))
	return nil
}

// ListAll reads the whole worksheet. The header row and rows with an empty
// note cell are skipped.
func (s *Store) ListAll(ctx context.Context) ([]notes.Note, error) {
	rows, err := s.api.getValues(ctx, s.columnRange())
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to read worksheet", "error", err)
		return nil, errs.NewPersistenceError("failed to list notes", err)
	}

	out := make([]notes.Note, 0, len(rows))
	for i, row := range rows {
		cells := cellStrings(row)
		if i == 0 && notes.IsHeader(cells) {
			continue
		}
		if len(cells) == 0 || strings.TrimSpace(cells[0]) == "" {
			continue
		}

		n := notes.Note{Text: cells[0]}
		if len(cells) > 1 {
			n.RawSavedAt = cells[1]
			n.SavedAt, _ = notes.ParseTimestamp(cells[1], s.loc)
		}
		out = append(out, n)
	}
	return out, nil
}

func cellStrings(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			out[i] = s
		} else {
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}

// Package notes defines the note ledger model and the storage contract
// implemented by the spreadsheet and SQLite backends.
package notes

import (
	"context"
	"strings"
	"time"
)

// TimestampLayout is the wire format of a note's saved-at column.
const TimestampLayout = "2006-01-02 15:04:05"

// Header is the first row written to a freshly created ledger.
var Header = []string{"Note", "Timestamp"}

// Note is one immutable ledger entry.
type Note struct {
	Text    string
	SavedAt time.Time
	// RawSavedAt is the stored timestamp cell as read, kept when it does not
	// parse with TimestampLayout.
	RawSavedAt string
}

// Store is an append-only note ledger.
type Store interface {
	// Append adds text to the end of the ledger stamped with the current time.
	Append(ctx context.Context, text string) error

	// ListAll returns every note in insertion order. An empty ledger yields an
	// empty slice and no error.
	ListAll(ctx context.Context) ([]Note, error)
}

// FormatTimestamp renders t in the ledger wire format.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseTimestamp parses a ledger timestamp in loc. A malformed value yields the
// zero time and false.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SavedAtString renders the note's timestamp. A timestamp that did not parse
// is shown as stored; a missing one as "unknown".
func (n Note) SavedAtString() string {
	if n.SavedAt.IsZero() {
		if raw := strings.TrimSpace(n.RawSavedAt); raw != "" {
			return raw
		}
		return "unknown"
	}
	return FormatTimestamp(n.SavedAt)
}

// IsHeader reports whether row is the ledger header row.
func IsHeader(row []string) bool {
	if len(row) < len(Header) {
		return false
	}
	for i, h := range Header {
		if !strings.EqualFold(strings.TrimSpace(row[i]), h) {
			return false
		}
	}
	return true
}

package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime/debug"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/edgard/notebot/internal/database"
	"github.com/edgard/notebot/internal/delivery"
	"github.com/edgard/notebot/internal/errs"
	"github.com/edgard/notebot/internal/logger"
)

// DefaultRetryBackoff is the pause before a failed scheduling cycle restarts.
const DefaultRetryBackoff = time.Minute

// Deliverer sends the daily random note.
type Deliverer interface {
	Deliver(ctx context.Context) (delivery.Result, error)
}

// DeliveryJournal persists which days already had a delivery attempt.
type DeliveryJournal interface {
	LastClaimedDay(ctx context.Context) (string, error)
	ClaimDay(ctx context.Context, day string) (deliveryID string, claimed bool, err error)
	CompleteDelivery(ctx context.Context, deliveryID string, sent, failed int) error
}

// DailyOptions configures a RandomNoteScheduler.
type DailyOptions struct {
	Clock     clockwork.Clock
	Location  *time.Location
	MinHour   int
	MaxHour   int
	Deliverer Deliverer
	// Journal is optional. Without it at-most-once holds per process only.
	Journal DeliveryJournal
	Logger  *slog.Logger

	// Draw returns the hour and minute of the next delivery. Defaults to a
	// uniform draw in [MinHour, MaxHour] x [0, 59].
	Draw         func() (hour, minute int)
	RetryBackoff time.Duration
}

// RandomNoteScheduler fires one delivery per calendar day at a random time.
// Each cycle picks a time, waits for it, delivers, then sleeps until the next
// midnight. A failed cycle is logged and restarted after a back-off.
type RandomNoteScheduler struct {
	clock     clockwork.Clock
	loc       *time.Location
	draw      func() (int, int)
	deliverer Deliverer
	journal   DeliveryJournal
	backoff   time.Duration
	logger    *slog.Logger

	// lastFiredDay is the last day (DayLayout) a delivery was attempted or
	// skipped by this process. Only touched by the Run goroutine.
	lastFiredDay string
}

// NewRandomNoteScheduler validates opts and creates the scheduler.
func NewRandomNoteScheduler(opts DailyOptions) (*RandomNoteScheduler, error) {
	if opts.Deliverer == nil {
		return nil, errors.New("deliverer cannot be nil")
	}
	if opts.MinHour < 0 || opts.MaxHour > 23 || opts.MinHour > opts.MaxHour {
		return nil, fmt.Errorf("invalid delivery window %d..%d", opts.MinHour, opts.MaxHour)
	}

	s := &RandomNoteScheduler{
		clock:     opts.Clock,
		loc:       opts.Location,
		draw:      opts.Draw,
		deliverer: opts.Deliverer,
		journal:   opts.Journal,
		backoff:   opts.RetryBackoff,
		logger:    opts.Logger,
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.draw == nil {
		s.draw = uniformDraw(opts.MinHour, opts.MaxHour)
	}
	if s.backoff <= 0 {
		s.backoff = DefaultRetryBackoff
	}
	if s.logger == nil {
		s.logger = logger.Discard()
	}
	s.logger = s.logger.With("component", "random_note_scheduler")
	return s, nil
}

func uniformDraw(minHour, maxHour int) func() (int, int) {
	return func() (int, int) {
		return minHour + rand.IntN(maxHour-minHour+1), rand.IntN(60)
	}
}

// NextFireTime returns hour:minute:00 on now's date in now's location, moved
// to the following day when it is not strictly after now.
func NextFireTime(now time.Time, hour, minute int) time.Time {
	y, m, d := now.Date()
	t := time.Date(y, m, d, hour, minute, 0, 0, now.Location())
	if !t.After(now) {
		t = time.Date(y, m, d+1, hour, minute, 0, 0, now.Location())
	}
	return t
}

// NextMidnight returns 00:00 of the day after t, in t's location.
func NextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}

// Run loops until ctx is cancelled. It always returns nil.
func (s *RandomNoteScheduler) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Random note scheduler started", "location", s.loc.String())

	for ctx.Err() == nil {
		if err := s.cycle(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			s.logger.ErrorContext(ctx, "Scheduling cycle failed, restarting after back-off",
				"error", err,
				"backoff", s.backoff)
			s.sleep(ctx, s.backoff)
		}
	}

	s.logger.InfoContext(ctx, "Random note scheduler stopped")
	return nil
}

func (s *RandomNoteScheduler) cycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "Panic in scheduling cycle", "panic", r, "stack", string(debug.Stack()))
			err = errs.NewSchedulingError(fmt.Sprintf("panic in scheduling cycle: %v", r), nil)
		}
	}()

	fireAt := s.plan(ctx, s.clock.Now().In(s.loc))
	s.logger.InfoContext(ctx, "Next random note scheduled", "fire_at", fireAt.Format(time.RFC3339))

	if !s.sleep(ctx, fireAt.Sub(s.clock.Now())) {
		return nil
	}

	s.fire(ctx, fireAt)

	midnight := NextMidnight(fireAt)
	s.logger.DebugContext(ctx, "Sleeping until midnight", "until", midnight.Format(time.RFC3339))
	s.sleep(ctx, midnight.Sub(s.clock.Now()))
	return nil
}

// plan draws the next fire instant after now, on a day later than any day
// already fired by this process or recorded in the journal.
func (s *RandomNoteScheduler) plan(ctx context.Context, now time.Time) time.Time {
	hour, minute := s.draw()
	fireAt := NextFireTime(now, hour, minute)

	floor := s.lastFiredDay
	if s.journal != nil {
		day, err := s.journal.LastClaimedDay(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "Failed to read delivery journal", "error", err)
		} else if day > floor {
			floor = day
		}
	}

	if floor == "" || fireAt.Format(database.DayLayout) > floor {
		return fireAt
	}

	last, err := time.ParseInLocation(database.DayLayout, floor, s.loc)
	if err != nil {
		s.logger.WarnContext(ctx, "Ignoring malformed journal day", "day", floor, "error", err)
		return fireAt
	}
	y, m, d := last.Date()
	return time.Date(y, m, d+1, hour, minute, 0, 0, s.loc)
}

func (s *RandomNoteScheduler) fire(ctx context.Context, fireAt time.Time) {
	day := fireAt.Format(database.DayLayout)
	log := s.logger.With("day", day)
	s.lastFiredDay = day

	var deliveryID string
	if s.journal != nil {
		id, claimed, err := s.journal.ClaimDay(ctx, day)
		switch {
		case err != nil:
			log.WarnContext(ctx, "Failed to claim delivery day, delivering anyway", "error", err)
		case !claimed:
			log.InfoContext(ctx, "Delivery already recorded for this day, skipping")
			return
		default:
			deliveryID = id
		}
	}

	log.InfoContext(ctx, "Delivering random note", "delivery_id", deliveryID)
	res, err := s.deliverer.Deliver(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Random note delivery failed", "error", err, "code", errs.Code(err))
	}

	if deliveryID != "" {
		if err := s.journal.CompleteDelivery(ctx, deliveryID, res.Sent, res.Failed); err != nil {
			log.WarnContext(ctx, "Failed to record delivery outcome", "delivery_id", deliveryID, "error", err)
		}
	}
}

// sleep waits for d on the scheduler clock. It reports false when ctx was
// cancelled first.
func (s *RandomNoteScheduler) sleep(ctx context.Context, d time.Duration) bool {
	timer := s.clock.NewTimer(max(d, 0))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}

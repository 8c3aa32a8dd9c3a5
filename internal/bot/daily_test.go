package bot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/edgard/notebot/internal/delivery"
)

var testLoc = time.UTC

type fakeDeliverer struct {
	clock clockwork.Clock
	calls chan time.Time

	mu       sync.Mutex
	failures []error // consumed in order, nil means success
	panics   int     // number of leading calls that panic
}

func newFakeDeliverer(clock clockwork.Clock) *fakeDeliverer {
	return &fakeDeliverer{clock: clock, calls: make(chan time.Time, 16)}
}

func (f *fakeDeliverer) Deliver(context.Context) (delivery.Result, error) {
	f.calls <- f.clock.Now()

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panics > 0 {
		f.panics--
		panic("ledger exploded")
	}
	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]
		if err != nil {
			return delivery.Result{}, err
		}
	}
	return delivery.Result{Sent: 1}, nil
}

type fakeJournal struct {
	mu        sync.Mutex
	days      map[string]string
	lastDay   string // overrides LastClaimedDay when set
	rejectAll bool
	completed map[string][2]int
}

func newFakeJournal() *fakeJournal {
	return &fakeJournal{days: make(map[string]string), completed: make(map[string][2]int)}
}

func (j *fakeJournal) LastClaimedDay(context.Context) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	last := j.lastDay
	for day := range j.days {
		if day > last {
			last = day
		}
	}
	return last, nil
}

func (j *fakeJournal) ClaimDay(_ context.Context, day string) (string, bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, ok := j.days[day]; ok || j.rejectAll {
		return "", false, nil
	}
	id := "delivery-" + day
	j.days[day] = id
	return id, true, nil
}

func (j *fakeJournal) CompleteDelivery(_ context.Context, id string, sent, failed int) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.completed[id] = [2]int{sent, failed}
	return nil
}

func fixedDraw(hour, minute int) func() (int, int) {
	return func() (int, int) { return hour, minute }
}

// harness runs a scheduler on a fake clock and lets the test step through it.
type harness struct {
	t      *testing.T
	ctx    context.Context
	clock  *clockwork.FakeClock
	done   chan struct{}
	cancel context.CancelFunc
}

func startScheduler(t *testing.T, start time.Time, opts DailyOptions) *harness {
	t.Helper()

	clock := clockwork.NewFakeClockAt(start)
	if d, ok := opts.Deliverer.(*fakeDeliverer); ok {
		d.clock = clock
	}
	opts.Clock = clock
	opts.Location = testLoc

	s, err := NewRandomNoteScheduler(opts)
	if err != nil {
		t.Fatalf("NewRandomNoteScheduler() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	h := &harness{t: t, ctx: ctx, clock: clock, done: make(chan struct{}), cancel: cancel}
	go func() {
		defer close(h.done)
		_ = s.Run(ctx)
	}()
	t.Cleanup(h.stop)
	return h
}

func (h *harness) stop() {
	h.cancel()
	<-h.done
}

// advanceTo waits for the scheduler to arm a timer and moves the clock to at.
func (h *harness) advanceTo(at time.Time) {
	h.t.Helper()
	if err := h.clock.BlockUntilContext(h.ctx, 1); err != nil {
		h.t.Fatalf("scheduler never armed a timer: %v", err)
	}
	h.clock.Advance(at.Sub(h.clock.Now()))
}

func (h *harness) waitIdle() {
	h.t.Helper()
	if err := h.clock.BlockUntilContext(h.ctx, 1); err != nil {
		h.t.Fatalf("scheduler never went back to sleep: %v", err)
	}
}

func expectCall(t *testing.T, d *fakeDeliverer, want time.Time) {
	t.Helper()
	select {
	case got := <-d.calls:
		if !got.Equal(want) {
			t.Fatalf("delivery at %v, want %v", got, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no delivery, want one at %v", want)
	}
}

func expectNoCall(t *testing.T, d *fakeDeliverer) {
	t.Helper()
	select {
	case got := <-d.calls:
		t.Fatalf("unexpected delivery at %v", got)
	default:
	}
}

func TestNextFireTimeAlwaysAfterNow(t *testing.T) {
	t.Parallel()

	nows := []time.Time{
		time.Date(2026, 10, 19, 0, 0, 0, 0, testLoc),
		time.Date(2026, 10, 19, 10, 0, 0, 0, testLoc),
		time.Date(2026, 10, 19, 14, 30, 0, 1, testLoc),
		time.Date(2026, 10, 19, 23, 59, 59, 999, testLoc),
		time.Date(2026, 12, 31, 23, 0, 0, 0, testLoc),
		time.Date(2028, 2, 28, 22, 0, 0, 0, testLoc),
	}
	for _, now := range nows {
		for hour := range 24 {
			for minute := range 60 {
				got := NextFireTime(now, hour, minute)
				if !got.After(now) {
					t.Fatalf("NextFireTime(%v, %d, %d) = %v, not after now", now, hour, minute, got)
				}
				if got.Sub(now) > 24*time.Hour {
					t.Fatalf("NextFireTime(%v, %d, %d) = %v, more than a day ahead", now, hour, minute, got)
				}
				if got.Hour() != hour || got.Minute() != minute || got.Second() != 0 {
					t.Fatalf("NextFireTime(%v, %d, %d) = %v, wrong time of day", now, hour, minute, got)
				}
			}
		}
	}
}

func TestNextFireTimeLateEvening(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 19, 23, 0, 0, 0, testLoc)
	draw := uniformDraw(10, 22)
	for range 1000 {
		hour, minute := draw()
		got := NextFireTime(now, hour, minute)
		if got.Day() != 20 {
			t.Fatalf("fire time %v is not on the next day", got)
		}
		if got.Hour() < 10 || got.Hour() > 22 || got.Minute() > 59 {
			t.Fatalf("fire time %v outside 10:00-22:59", got)
		}
	}
}

func TestNextFireTimeExactlyNow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 19, 10, 0, 0, 0, testLoc)
	want := time.Date(2026, 10, 20, 10, 0, 0, 0, testLoc)
	if got := NextFireTime(now, 10, 0); !got.Equal(want) {
		t.Errorf("NextFireTime() = %v, want %v", got, want)
	}
}

func TestNextMidnight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   time.Time
		want time.Time
	}{
		{time.Date(2026, 10, 19, 10, 0, 0, 0, testLoc), time.Date(2026, 10, 20, 0, 0, 0, 0, testLoc)},
		{time.Date(2026, 10, 19, 0, 0, 0, 0, testLoc), time.Date(2026, 10, 20, 0, 0, 0, 0, testLoc)},
		{time.Date(2026, 12, 31, 23, 59, 0, 0, testLoc), time.Date(2027, 1, 1, 0, 0, 0, 0, testLoc)},
	}
	for _, tt := range tests {
		if got := NextMidnight(tt.in); !got.Equal(tt.want) {
			t.Errorf("NextMidnight(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestUniformDrawWithinWindow(t *testing.T) {
	t.Parallel()

	draw := uniformDraw(10, 10)
	for range 200 {
		hour, minute := draw()
		if hour != 10 || minute < 0 || minute > 59 {
			t.Fatalf("draw() = %d:%d, want 10:00-10:59", hour, minute)
		}
	}
}

func TestNewRandomNoteSchedulerValidation(t *testing.T) {
	t.Parallel()

	d := newFakeDeliverer(nil)
	tests := []struct {
		name string
		opts DailyOptions
	}{
		{"no deliverer", DailyOptions{MinHour: 10, MaxHour: 22}},
		{"inverted window", DailyOptions{MinHour: 22, MaxHour: 10, Deliverer: d}},
		{"hour out of range", DailyOptions{MinHour: 0, MaxHour: 24, Deliverer: d}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewRandomNoteScheduler(tt.opts); err == nil {
				t.Error("NewRandomNoteScheduler() succeeded, want error")
			}
		})
	}
}

func TestPlanSkipsDaysAlreadyFired(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 19, 10, 1, 0, 0, testLoc)

	tests := []struct {
		name       string
		lastFired  string
		journalDay string
		want       time.Time
	}{
		{"fresh", "", "", time.Date(2026, 10, 19, 23, 0, 0, 0, testLoc)},
		{"fired yesterday", "2026-10-18", "", time.Date(2026, 10, 19, 23, 0, 0, 0, testLoc)},
		{"fired today", "2026-10-19", "", time.Date(2026, 10, 20, 23, 0, 0, 0, testLoc)},
		{"journaled today", "", "2026-10-19", time.Date(2026, 10, 20, 23, 0, 0, 0, testLoc)},
		{"journal ahead of process", "2026-10-18", "2026-10-20", time.Date(2026, 10, 21, 23, 0, 0, 0, testLoc)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			j := newFakeJournal()
			j.lastDay = tt.journalDay
			s, err := NewRandomNoteScheduler(DailyOptions{
				Location:  testLoc,
				MinHour:   10,
				MaxHour:   23,
				Deliverer: newFakeDeliverer(nil),
				Journal:   j,
				Draw:      fixedDraw(23, 0),
			})
			if err != nil {
				t.Fatalf("NewRandomNoteScheduler() error = %v", err)
			}
			s.lastFiredDay = tt.lastFired

			got := s.plan(context.Background(), now)
			if !got.Equal(tt.want) {
				t.Errorf("plan() = %v, want %v", got, tt.want)
			}
			if !got.After(now) {
				t.Errorf("plan() = %v, not after %v", got, now)
			}
		})
	}
}

func TestRunDeliversOncePerDay(t *testing.T) {
	t.Parallel()

	d := newFakeDeliverer(nil)
	start := time.Date(2026, 10, 19, 8, 0, 0, 0, testLoc)
	h := startScheduler(t, start, DailyOptions{MinHour: 10, MaxHour: 22, Deliverer: d, Draw: fixedDraw(10, 0)})

	day1 := time.Date(2026, 10, 19, 10, 0, 0, 0, testLoc)
	h.advanceTo(day1)
	expectCall(t, d, day1)

	h.advanceTo(time.Date(2026, 10, 20, 0, 0, 0, 0, testLoc))

	day2 := time.Date(2026, 10, 20, 10, 0, 0, 0, testLoc)
	h.advanceTo(day2)
	expectCall(t, d, day2)

	h.waitIdle()
	expectNoCall(t, d)
}

func TestRunLateStartFiresNextDay(t *testing.T) {
	t.Parallel()

	d := newFakeDeliverer(nil)
	start := time.Date(2026, 10, 19, 23, 0, 0, 0, testLoc)
	h := startScheduler(t, start, DailyOptions{MinHour: 10, MaxHour: 22, Deliverer: d, Draw: fixedDraw(22, 59)})

	want := time.Date(2026, 10, 20, 22, 59, 0, 0, testLoc)
	h.advanceTo(want)
	expectCall(t, d, want)
}

func TestRunContinuesAfterDeliveryError(t *testing.T) {
	t.Parallel()

	d := newFakeDeliverer(nil)
	d.failures = []error{errors.New("sheet unavailable")}
	start := time.Date(2026, 10, 19, 8, 0, 0, 0, testLoc)
	h := startScheduler(t, start, DailyOptions{MinHour: 10, MaxHour: 22, Deliverer: d, Draw: fixedDraw(12, 30)})

	day1 := time.Date(2026, 10, 19, 12, 30, 0, 0, testLoc)
	h.advanceTo(day1)
	expectCall(t, d, day1)

	h.advanceTo(time.Date(2026, 10, 20, 0, 0, 0, 0, testLoc))

	day2 := time.Date(2026, 10, 20, 12, 30, 0, 0, testLoc)
	h.advanceTo(day2)
	expectCall(t, d, day2)
}

func TestRunRecoversFromPanic(t *testing.T) {
	t.Parallel()

	d := newFakeDeliverer(nil)
	d.panics = 1
	start := time.Date(2026, 10, 19, 8, 0, 0, 0, testLoc)
	h := startScheduler(t, start, DailyOptions{
		MinHour:      10,
		MaxHour:      22,
		Deliverer:    d,
		Draw:         fixedDraw(10, 0),
		RetryBackoff: time.Minute,
	})

	day1 := time.Date(2026, 10, 19, 10, 0, 0, 0, testLoc)
	h.advanceTo(day1)
	expectCall(t, d, day1)

	h.advanceTo(day1.Add(time.Minute))

	day2 := time.Date(2026, 10, 20, 10, 0, 0, 0, testLoc)
	h.advanceTo(day2)
	expectCall(t, d, day2)
}

func TestRunRecordsDeliveryInJournal(t *testing.T) {
	t.Parallel()

	d := newFakeDeliverer(nil)
	j := newFakeJournal()
	start := time.Date(2026, 10, 19, 8, 0, 0, 0, testLoc)
	h := startScheduler(t, start, DailyOptions{MinHour: 10, MaxHour: 22, Deliverer: d, Journal: j, Draw: fixedDraw(11, 0)})

	fireAt := time.Date(2026, 10, 19, 11, 0, 0, 0, testLoc)
	h.advanceTo(fireAt)
	expectCall(t, d, fireAt)
	h.waitIdle()

	j.mu.Lock()
	defer j.mu.Unlock()
	if got, ok := j.completed["delivery-2026-10-19"]; !ok || got != [2]int{1, 0} {
		t.Errorf("journal outcome = %v (recorded %v), want sent=1 failed=0", got, ok)
	}
}

func TestRunSkipsDayAlreadyJournaled(t *testing.T) {
	t.Parallel()

	d := newFakeDeliverer(nil)
	j := newFakeJournal()
	j.days["2026-10-19"] = "earlier-run"
	start := time.Date(2026, 10, 19, 8, 0, 0, 0, testLoc)
	h := startScheduler(t, start, DailyOptions{MinHour: 10, MaxHour: 22, Deliverer: d, Journal: j, Draw: fixedDraw(15, 0)})

	want := time.Date(2026, 10, 20, 15, 0, 0, 0, testLoc)
	h.advanceTo(want)
	expectCall(t, d, want)
}

func TestRunLostClaimSkipsDelivery(t *testing.T) {
	t.Parallel()

	d := newFakeDeliverer(nil)
	j := newFakeJournal()
	j.rejectAll = true
	start := time.Date(2026, 10, 19, 8, 0, 0, 0, testLoc)
	h := startScheduler(t, start, DailyOptions{MinHour: 10, MaxHour: 22, Deliverer: d, Journal: j, Draw: fixedDraw(10, 0)})

	h.advanceTo(time.Date(2026, 10, 19, 10, 0, 0, 0, testLoc))
	h.waitIdle()
	expectNoCall(t, d)
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	d := newFakeDeliverer(nil)
	h := startScheduler(t, time.Date(2026, 10, 19, 8, 0, 0, 0, testLoc),
		DailyOptions{MinHour: 10, MaxHour: 22, Deliverer: d, Draw: fixedDraw(10, 0)})

	h.waitIdle()
	h.cancel()

	select {
	case <-h.done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	expectNoCall(t, d)
}

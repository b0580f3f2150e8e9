package sync

import (
	"context"
	"math/rand"
	"time"

	"github.com/eshaffer321/foodtracker/internal/domain/order"
)

// State is the engine's position in a session.
type State string

const (
	StateIdle        State = "idle"
	StateFetching    State = "fetching"
	StateClassifying State = "classifying"
	StateDeduping    State = "deduping"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// Options holds per-session settings.
type Options struct {
	// MaxPages overrides the platform's page ceiling when positive.
	MaxPages int

	// KnownIDs seeds the seen-set, so the session stops once it reaches
	// orders that are already stored.
	KnownIDs []string

	Notifier Notifier
	// Pacer overrides the platform's courtesy delay.
	Pacer Pacer
}

// Result is the outcome of a session. Orders holds everything collected
// before the terminal state, including after a failure.
type Result struct {
	Platform   string
	Orders     []order.Order
	Pages      int
	Rejected   int
	State      State
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Progress is reported after every fetch cycle.
type Progress struct {
	Platform string
	Message  string
	Page     int
	Count    int
	Percent  int
}

// Notifier receives progress events. Notify must not block the engine.
type Notifier interface {
	Notify(Progress)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Progress)

func (f NotifierFunc) Notify(p Progress) { f(p) }

// Pacer waits between page requests.
type Pacer interface {
	Wait(ctx context.Context) error
}

// DelayPacer sleeps Base plus a random share of Jitter.
type DelayPacer struct {
	Base   time.Duration
	Jitter time.Duration
}

// Wait returns early with the context error when ctx is done.
func (p DelayPacer) Wait(ctx context.Context) error {
	d := p.Base
	if p.Jitter > 0 {
		d += time.Duration(rand.Int63n(int64(p.Jitter)))
	}
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package activation

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/clinickit/pkg/logger"
	"github.com/dmitrymomot/clinickit/pkg/scheduler"
	"github.com/dmitrymomot/clinickit/pkg/subscription"
)

const (
	DefaultMaxAttempts  = 3
	DefaultPollInterval = 5 * time.Second
)

// StatusSource reads the caller's current subscription from the backend.
type StatusSource interface {
	CurrentSubscription(ctx context.Context) (*subscription.Subscription, error)
}

// Poller checks a freshly submitted subscription a bounded number of times,
// waiting a fixed interval before every check.
type Poller struct {
	source      StatusSource
	sched       scheduler.Scheduler
	maxAttempts int
	interval    time.Duration
	logger      *slog.Logger
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithMaxAttempts sets how many status checks a session makes. Values below 1 are ignored.
func WithMaxAttempts(n int) PollerOption {
	return func(p *Poller) {
		if n > 0 {
			p.maxAttempts = n
		}
	}
}

// WithInterval sets the delay before each status check. Non-positive values are ignored.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithScheduler replaces the wall-clock scheduler.
func WithScheduler(s scheduler.Scheduler) PollerOption {
	return func(p *Poller) {
		if s != nil {
			p.sched = s
		}
	}
}

// WithPollerLogger sets the poller logger.
func WithPollerLogger(l *slog.Logger) PollerOption {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPoller creates a poller reading from source. Panics if source is nil.
func NewPoller(source StatusSource, opts ...PollerOption) *Poller {
	if source == nil {
		panic("activation: StatusSource is required")
	}
	p := &Poller{
		source:      source,
		sched:       scheduler.NewReal(),
		maxAttempts: DefaultMaxAttempts,
		interval:    DefaultPollInterval,
		logger:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// MaxAttempts returns the attempt budget of each session.
func (p *Poller) MaxAttempts() int {
	return p.maxAttempts
}

// Interval returns the delay preceding each attempt.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// PollHandlers receive session progress. Both are optional and are never
// called after the session has been cancelled.
type PollHandlers struct {
	// OnAttempt runs right before the n-th status query.
	OnAttempt func(n, max int)
	// OnDone runs exactly once when the session reaches a terminal state.
	OnDone func(PollResult)
}

// Start opens a polling session for ref. The first query happens one
// interval from now. Queries use ctx; cancel the session, not ctx, to stop
// polling without a terminal callback.
func (p *Poller) Start(ctx context.Context, ref subscription.Ref, h PollHandlers) *PollingSession {
	s := newSession(ctx, p, ref, h)
	s.begin()
	return s
}

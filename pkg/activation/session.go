package activation

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/clinickit/pkg/logger"
	"github.com/dmitrymomot/clinickit/pkg/scheduler"
	"github.com/dmitrymomot/clinickit/pkg/statemachine"
	"github.com/dmitrymomot/clinickit/pkg/subscription"
)

// PollState is the state of a polling session.
type PollState string

const (
	PollIdle      PollState = "idle"
	PollAwaiting  PollState = "awaiting"
	PollConfirmed PollState = "confirmed"
	PollExhausted PollState = "exhausted"
	PollErrored   PollState = "errored"
	PollCancelled PollState = "cancelled"
)

// IsTerminal reports whether no further transitions can leave the state.
func (s PollState) IsTerminal() bool {
	switch s {
	case PollConfirmed, PollExhausted, PollErrored, PollCancelled:
		return true
	}
	return false
}

type pollEvent string

const (
	evStart  pollEvent = "start"
	evResult pollEvent = "result"
	evCancel pollEvent = "cancel"
)

// attemptResult is the data carried by evResult.
type attemptResult struct {
	n, max int
	sub    *subscription.Subscription
	err    error
}

func resultData(data any) attemptResult {
	r, _ := data.(attemptResult)
	return r
}

var (
	subscriptionActive statemachine.Guard[PollState, pollEvent] = func(_ context.Context, _ PollState, _ pollEvent, data any) bool {
		r := resultData(data)
		return r.err == nil && r.sub.IsActive()
	}
	budgetLeft statemachine.Guard[PollState, pollEvent] = func(_ context.Context, _ PollState, _ pollEvent, data any) bool {
		r := resultData(data)
		return r.n < r.max
	}
	queryFailed statemachine.Guard[PollState, pollEvent] = func(_ context.Context, _ PollState, _ pollEvent, data any) bool {
		return resultData(data).err != nil
	}
)

// newPollMachine builds the session state machine. Result transitions are
// tried in order: active wins, then a retry while budget remains, then the
// last attempt resolves to errored or exhausted.
func newPollMachine(l statemachine.Listener[PollState, pollEvent]) *statemachine.Machine[PollState, pollEvent] {
	return statemachine.MustNew(PollIdle,
		statemachine.WithTransition(PollIdle, PollAwaiting, evStart),
		statemachine.WithTransition(PollIdle, PollCancelled, evCancel),
		statemachine.WithTransition(PollAwaiting, PollConfirmed, evResult, statemachine.WithGuard(subscriptionActive)),
		statemachine.WithTransition(PollAwaiting, PollAwaiting, evResult, statemachine.WithGuard(budgetLeft)),
		statemachine.WithTransition(PollAwaiting, PollErrored, evResult, statemachine.WithGuard(queryFailed)),
		statemachine.WithTransition(PollAwaiting, PollExhausted, evResult),
		statemachine.WithTransition(PollAwaiting, PollCancelled, evCancel),
		statemachine.WithTerminal[PollState, pollEvent](PollConfirmed, PollExhausted, PollErrored, PollCancelled),
		statemachine.WithListener(l),
	)
}

// PollResult describes how a polling session ended.
type PollResult struct {
	State        PollState
	Attempts     int
	Subscription *subscription.Subscription // last observed value, may be nil
	Err          error                      // last query error when State is PollErrored
}

// PollingSession is one run of the confirmation poller.
// It is owned by the Poller that started it; callers may only observe or cancel it.
type PollingSession struct {
	poller   *Poller
	ref      subscription.Ref
	handlers PollHandlers
	log      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	fsm    *statemachine.Machine[PollState, pollEvent]

	mu      sync.Mutex
	attempt int
	timer   scheduler.Timer
	result  *PollResult
	done    chan struct{}
}

func newSession(ctx context.Context, p *Poller, ref subscription.Ref, h PollHandlers) *PollingSession {
	ctx, cancel := context.WithCancel(ctx)
	s := &PollingSession{
		poller:   p,
		ref:      ref,
		handlers: h,
		log:      p.logger.With(logger.SubscriptionRef(string(ref))),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	s.fsm = newPollMachine(s.logTransition)
	return s
}

func (s *PollingSession) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fsm.Fire(s.ctx, evStart, nil); err != nil {
		s.log.ErrorContext(s.ctx, "polling session failed to start", logger.Error(err))
		return
	}
	s.scheduleLocked()
}

func (s *PollingSession) scheduleLocked() {
	s.timer = s.poller.sched.AfterFunc(s.poller.interval, s.tick)
}

func (s *PollingSession) tick() {
	s.mu.Lock()
	if s.fsm.Current() != PollAwaiting {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.attempt++
	n, total := s.attempt, s.poller.maxAttempts
	s.mu.Unlock()

	if h := s.handlers.OnAttempt; h != nil && s.awaiting() {
		h(n, total)
	}

	sub, err := s.poller.source.CurrentSubscription(s.ctx)

	s.mu.Lock()
	if s.fsm.Current() != PollAwaiting {
		// Cancelled while the query was in flight.
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.log.WarnContext(s.ctx, "subscription status query failed", logger.Attempt(n, total), logger.Error(err))
	} else {
		s.log.DebugContext(s.ctx, "subscription status", logger.Attempt(n, total), slog.Any("status", statusOf(sub)))
	}

	if fireErr := s.fsm.Fire(s.ctx, evResult, attemptResult{n: n, max: total, sub: sub, err: err}); fireErr != nil {
		s.log.ErrorContext(s.ctx, "polling transition failed", logger.Error(fireErr))
		s.mu.Unlock()
		return
	}

	state := s.fsm.Current()
	if state == PollAwaiting {
		s.scheduleLocked()
		s.mu.Unlock()
		return
	}

	result := PollResult{State: state, Attempts: n, Subscription: sub}
	if state == PollErrored {
		result.Err = err
	}
	s.finishLocked(result)
	s.mu.Unlock()

	if h := s.handlers.OnDone; h != nil {
		h(result)
	}
}

// Cancel stops the session and aborts an in-flight query. Once Cancel returns
// the session starts no query and fires no transition or callback; a callback
// already running may still complete. Reports false if the session had
// already ended.
func (s *PollingSession) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fsm.IsTerminal() {
		return false
	}
	if err := s.fsm.Fire(s.ctx, evCancel, nil); err != nil {
		return false
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.finishLocked(PollResult{State: PollCancelled, Attempts: s.attempt})
	return true
}

func (s *PollingSession) finishLocked(r PollResult) {
	s.result = &r
	s.cancel()
	close(s.done)
}

func (s *PollingSession) awaiting() bool {
	return s.fsm.Current() == PollAwaiting
}

func (s *PollingSession) logTransition(ctx context.Context, from, to PollState, event pollEvent) {
	s.log.DebugContext(ctx, "polling state changed",
		slog.String("from", string(from)),
		slog.String("to", string(to)),
		slog.String("event", string(event)),
	)
}

// Ref returns the subscription reference being confirmed.
func (s *PollingSession) Ref() subscription.Ref {
	return s.ref
}

// State returns the current session state.
func (s *PollingSession) State() PollState {
	return s.fsm.Current()
}

// Attempt returns the number of queries started so far.
func (s *PollingSession) Attempt() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempt
}

// Done is closed when the session ends, including by cancellation.
func (s *PollingSession) Done() <-chan struct{} {
	return s.done
}

// Result returns the final result once the session has ended.
func (s *PollingSession) Result() (PollResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return PollResult{}, false
	}
	return *s.result, true
}

func statusOf(sub *subscription.Subscription) subscription.Status {
	if sub == nil {
		return ""
	}
	return sub.Status
}

package activation_test

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrymomot/clinickit/pkg/activation"
	"github.com/dmitrymomot/clinickit/pkg/scheduler"
	"github.com/dmitrymomot/clinickit/pkg/subscription"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

type statusReply struct {
	status subscription.Status
	err    error
}

func pending() statusReply { return statusReply{status: subscription.StatusPending} }
func active() statusReply { return statusReply{status: subscription.StatusActive} }
func failure(err error) statusReply { return statusReply{err: err} }

func repeat(r statusReply, n int) []statusReply {
	out := make([]statusReply, n)
	for i := range out {
		out[i] = r
	}
	return out
}

// scriptedStatus answers status queries from a script; the last reply repeats.
type scriptedStatus struct {
	clock *scheduler.Manual

	mu     sync.Mutex
	script []statusReply
	calls  []time.Time
}

func newScriptedStatus(clock *scheduler.Manual, script ...statusReply) *scriptedStatus {
	return &scriptedStatus{clock: clock, script: script}
}

func (s *scriptedStatus) CurrentSubscription(ctx context.Context) (*subscription.Subscription, error) {
	s.mu.Lock()
	i := len(s.calls)
	s.calls = append(s.calls, s.clock.Now())
	reply := pending()
	if len(s.script) > 0 {
		reply = s.script[min(i, len(s.script)-1)]
	}
	s.mu.Unlock()

	if reply.err != nil {
		return nil, reply.err
	}
	return &subscription.Subscription{ID: "sub_1", Status: reply.status}, nil
}

func (s *scriptedStatus) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *scriptedStatus) Times() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Time(nil), s.calls...)
}

// blockingStatus blocks every query until its context is cancelled.
type blockingStatus struct {
	entered chan struct{}
	exited  chan error
}

func (b *blockingStatus) CurrentSubscription(ctx context.Context) (*subscription.Subscription, error) {
	b.entered <- struct{}{}
	<-ctx.Done()
	b.exited <- ctx.Err()
	return nil, ctx.Err()
}

type fakeCreator struct {
	ref subscription.Ref
	err error

	// entered receives one value per call when set; release blocks calls until closed.
	entered chan struct{}
	release chan struct{}

	mu    sync.Mutex
	calls []subscription.CreateRequest
}

func (f *fakeCreator) CreateSubscription(ctx context.Context, req subscription.CreateRequest) (subscription.Ref, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return f.ref, f.err
}

func (f *fakeCreator) Calls() []subscription.CreateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]subscription.CreateRequest(nil), f.calls...)
}

type pollRecorder struct {
	mu       sync.Mutex
	attempts [][2]int
	results  []activation.PollResult
}

func (r *pollRecorder) onAttempt(n, total int) {
	r.mu.Lock()
	r.attempts = append(r.attempts, [2]int{n, total})
	r.mu.Unlock()
}

func (r *pollRecorder) onDone(res activation.PollResult) {
	r.mu.Lock()
	r.results = append(r.results, res)
	r.mu.Unlock()
}

func (r *pollRecorder) Attempts() [][2]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][2]int(nil), r.attempts...)
}

func (r *pollRecorder) handlers() activation.PollHandlers {
	return activation.PollHandlers{OnAttempt: r.onAttempt, OnDone: r.onDone}
}

func (r *pollRecorder) Results() []activation.PollResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]activation.PollResult(nil), r.results...)
}

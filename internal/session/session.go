// Package session runs projections for an interactive caller: at most one
// projection at a time, newer requests cancel older ones, and bursts of
// parameter changes collapse into a single run after a quiet period.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lukaszgryglicki/stereoproj/internal/stereoproj"
)

// QuietPeriod is the default debounce delay.
const QuietPeriod = 100 * time.Millisecond

var (
	// ErrSuperseded is the cancellation cause of a run replaced by a newer one.
	ErrSuperseded = errors.New("superseded by a newer projection")
	// ErrClosed is returned once Close has been called.
	ErrClosed = errors.New("session closed")
)

// ProjectFunc has the signature of stereoproj.Project.
type ProjectFunc func(ctx context.Context, src *stereoproj.Image, p stereoproj.Params, opts ...stereoproj.Option) (*stereoproj.Image, error)

type request struct {
	src  *stereoproj.Image
	p    stereoproj.Params
	opts []stereoproj.Option
	done func(*stereoproj.Image, error)
}

// Session serializes projections for one interactive caller.
type Session struct {
	project ProjectFunc
	quiet   time.Duration

	ctx  context.Context // cancelled by Close
	stop context.CancelCauseFunc

	mu      sync.Mutex
	cancel  context.CancelCauseFunc // in-flight run
	done    chan struct{}           // closed when the in-flight run returns
	pending *request
	timer   *time.Timer
	closed  bool
}

// New returns a Session calling project (stereoproj.Project when nil) and
// debouncing Schedule by quiet (QuietPeriod when <= 0).
func New(project ProjectFunc, quiet time.Duration) *Session {
	if project == nil {
		project = stereoproj.Project
	}
	if quiet <= 0 {
		quiet = QuietPeriod
	}
	ctx, stop := context.WithCancelCause(context.Background())
	return &Session{project: project, quiet: quiet, ctx: ctx, stop: stop}
}

// Run cancels the in-flight projection, if any, waits for it to return and
// then projects src. A run cancelled this way returns an error matching both
// stereoproj.ErrCancelled and ErrSuperseded. A run cancelled while still
// waiting returns only after the run it waited on has.
func (s *Session) Run(ctx context.Context, src *stereoproj.Image, p stereoproj.Params, opts ...stereoproj.Option) (*stereoproj.Image, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	if s.cancel != nil {
		s.cancel(ErrSuperseded)
	}
	prev := s.done
	runCtx, cancel := context.WithCancelCause(ctx)
	done := make(chan struct{})
	s.cancel, s.done = cancel, done
	s.mu.Unlock()

	defer func() {
		cancel(nil)
		// A run that gave up waiting still holds the slot until prev returns.
		if prev != nil {
			<-prev
		}
		s.mu.Lock()
		if s.done == done {
			s.cancel, s.done = nil, nil
		}
		s.mu.Unlock()
		close(done)
	}()

	if prev != nil {
		select {
		case <-prev:
		case <-runCtx.Done():
			return nil, fmt.Errorf("%w: %w", stereoproj.ErrCancelled, context.Cause(runCtx))
		}
	}
	return s.project(runCtx, src, p, opts...)
}

// Schedule debounces: the projection starts once no newer Schedule call has
// arrived for the quiet period, and only the latest request runs. done is
// called from another goroutine with the result of that run; callbacks of
// requests replaced while waiting are dropped.
func (s *Session) Schedule(src *stereoproj.Image, p stereoproj.Params, done func(*stereoproj.Image, error), opts ...stereoproj.Option) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pending = &request{src: src, p: p, opts: opts, done: done}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.quiet, s.fire)
}

func (s *Session) fire() {
	s.mu.Lock()
	req := s.pending
	s.pending = nil
	s.mu.Unlock()
	if req == nil {
		return
	}
	img, err := s.Run(s.ctx, req.src, req.p, req.opts...)
	if req.done != nil {
		req.done(img, err)
	}
}

// Close drops any pending request and cancels the in-flight projection.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.cancel != nil {
		s.cancel(ErrClosed)
	}
	s.stop(ErrClosed)
}

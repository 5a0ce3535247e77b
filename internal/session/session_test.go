package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lukaszgryglicki/stereoproj/internal/stereoproj"
)

// blocking returns a ProjectFunc that blocks runs with OutputSize 1 until
// their context ends and returns every other run at once. It fails the test
// if two runs ever overlap.
func blocking(t *testing.T, started chan<- struct{}) ProjectFunc {
	var active int32
	return func(ctx context.Context, src *stereoproj.Image, p stereoproj.Params, _ ...stereoproj.Option) (*stereoproj.Image, error) {
		if n := atomic.AddInt32(&active, 1); n > 1 {
			t.Errorf("%d projections running at once", n)
		}
		defer atomic.AddInt32(&active, -1)
		if p.OutputSize == 1 {
			if started != nil {
				started <- struct{}{}
			}
			<-ctx.Done()
			return nil, fmt.Errorf("%w: %w", stereoproj.ErrCancelled, context.Cause(ctx))
		}
		return stereoproj.NewImage(p.OutputSize, p.OutputSize), nil
	}
}

func sized(n int) stereoproj.Params {
	p := stereoproj.DefaultParams()
	p.OutputSize = n
	return p
}

func TestRunSupersedesInFlight(t *testing.T) {
	started := make(chan struct{}, 1)
	s := New(blocking(t, started), 0)
	defer s.Close()
	src := stereoproj.NewImage(4, 2)

	firstErr := make(chan error, 1)
	go func() {
		_, err := s.Run(context.Background(), src, sized(1))
		firstErr <- err
	}()
	<-started

	img, err := s.Run(context.Background(), src, sized(8))
	if err != nil {
		t.Fatal(err)
	}
	if img.Width != 8 {
		t.Fatalf("got width %d", img.Width)
	}
	err = <-firstErr
	if !errors.Is(err, stereoproj.ErrCancelled) || !errors.Is(err, ErrSuperseded) {
		t.Fatalf("first run: %v", err)
	}
}

func TestScheduleRunsLatestOnly(t *testing.T) {
	var calls int32
	project := func(ctx context.Context, src *stereoproj.Image, p stereoproj.Params, _ ...stereoproj.Option) (*stereoproj.Image, error) {
		atomic.AddInt32(&calls, 1)
		return stereoproj.NewImage(p.OutputSize, p.OutputSize), nil
	}
	s := New(project, 50*time.Millisecond)
	defer s.Close()
	src := stereoproj.NewImage(4, 2)

	results := make(chan int, 8)
	for i := 1; i <= 5; i++ {
		s.Schedule(src, sized(i), func(img *stereoproj.Image, err error) {
			if err != nil {
				t.Errorf("scheduled run: %v", err)
				results <- 0
				return
			}
			results <- img.Width
		})
	}

	select {
	case w := <-results:
		if w != 5 {
			t.Fatalf("ran request of size %d, want the latest (5)", w)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled projection never ran")
	}
	select {
	case w := <-results:
		t.Fatalf("unexpected extra run of size %d", w)
	case <-time.After(150 * time.Millisecond):
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("project called %d times", n)
	}
}

func TestCloseCancelsAndRejects(t *testing.T) {
	started := make(chan struct{}, 1)
	s := New(blocking(t, started), 0)
	src := stereoproj.NewImage(4, 2)

	errc := make(chan error, 1)
	go func() {
		_, err := s.Run(context.Background(), src, sized(1))
		errc <- err
	}()
	<-started
	s.Close()

	if err := <-errc; !errors.Is(err, ErrClosed) {
		t.Fatalf("in-flight run: %v", err)
	}
	if _, err := s.Run(context.Background(), src, sized(8)); !errors.Is(err, ErrClosed) {
		t.Fatalf("run after close: %v", err)
	}
	s.Schedule(src, sized(8), func(*stereoproj.Image, error) {
		t.Error("callback after close")
	})
	time.Sleep(3 * QuietPeriod / 2)
	s.Close()
}

func TestRunCallerCancel(t *testing.T) {
	started := make(chan struct{}, 1)
	s := New(blocking(t, started), 0)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := s.Run(ctx, stereoproj.NewImage(4, 2), sized(1))
		errc <- err
	}()
	<-started
	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled cause, got %v", err)
	}
}

func TestRunDefaultProjector(t *testing.T) {
	s := New(nil, 0)
	defer s.Close()

	src := stereoproj.NewImage(6, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 6; x++ {
			src.Set(y, x, stereoproj.RGB{R: 200, G: 100, B: 50})
		}
	}
	img, err := s.Run(context.Background(), src, sized(12))
	if err != nil {
		t.Fatal(err)
	}
	if img.Width != 12 || img.Height != 12 {
		t.Fatalf("got %dx%d", img.Width, img.Height)
	}
	if c := img.At(6, 6); c != (stereoproj.RGB{R: 200, G: 100, B: 50}) {
		t.Fatalf("uniform source projected to %v", c)
	}
}

// current returns the done channel of the latest registered run.
func (s *Session) current() chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

func waitNewRun(t *testing.T, s *Session, old chan struct{}) chan struct{} {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if d := s.current(); d != nil && d != old {
			return d
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("run never registered")
	return nil
}

func TestRunWaiterCancelledKeepsSlot(t *testing.T) {
	release := make(chan struct{})
	started := make(chan int, 3)
	var active, peak int32
	project := func(ctx context.Context, src *stereoproj.Image, p stereoproj.Params, _ ...stereoproj.Option) (*stereoproj.Image, error) {
		n := atomic.AddInt32(&active, 1)
		defer atomic.AddInt32(&active, -1)
		for {
			old := atomic.LoadInt32(&peak)
			if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
				break
			}
		}
		started <- p.OutputSize
		if p.OutputSize == 1 {
			// ignores ctx until released
			<-release
		}
		return stereoproj.NewImage(p.OutputSize, p.OutputSize), nil
	}
	s := New(project, 0)
	defer s.Close()
	src := stereoproj.NewImage(4, 2)

	type result struct {
		img *stereoproj.Image
		err error
	}
	run := func(size int) <-chan result {
		ch := make(chan result, 1)
		go func() {
			img, err := s.Run(context.Background(), src, sized(size))
			ch <- result{img, err}
		}()
		return ch
	}

	resA := run(1)
	if got := <-started; got != 1 {
		t.Fatalf("first projection had size %d", got)
	}
	doneA := s.current()
	resB := run(2)
	doneB := waitNewRun(t, s, doneA)
	resC := run(3)
	waitNewRun(t, s, doneB)

	select {
	case got := <-started:
		t.Fatalf("projection of size %d started while the first was still running", got)
	case <-time.After(50 * time.Millisecond):
	}
	close(release)

	if r := <-resA; r.err != nil {
		t.Fatalf("first run: %v", r.err)
	}
	if r := <-resB; !errors.Is(r.err, ErrSuperseded) || !errors.Is(r.err, stereoproj.ErrCancelled) {
		t.Fatalf("waiting run: %v", r.err)
	}
	r := <-resC
	if r.err != nil || r.img.Width != 3 {
		t.Fatalf("last run: %v", r.err)
	}
	if got := <-started; got != 3 {
		t.Fatalf("unexpected projection of size %d", got)
	}
	if p := atomic.LoadInt32(&peak); p != 1 {
		t.Fatalf("peak concurrent projections = %d", p)
	}
}

package stereoproj

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/lukaszgryglicki/stereoproj/internal/stereoproj"

type options struct {
	progress     func(Real)
	workers      int
	progressRows int
}

// Option tunes a single Project call.
type Option func(*options)

// WithProgress registers a callback receiving the completed fraction in
// [0,1]. Calls are serialized and never decrease; the last one reports 1.
func WithProgress(fn func(Real)) Option { return func(o *options) { o.progress = fn } }

// WithWorkers sets how many goroutines share the rows. n < 1 means 1.
func WithWorkers(n int) Option { return func(o *options) { o.workers = n } }

// WithProgressRows reports progress every n completed rows.
func WithProgressRows(n int) Option { return func(o *options) { o.progressRows = n } }

// projector holds everything derived from Params once per call.
type projector struct {
	src     *Image
	size    int
	center  Real
	maxDist Real
	radius  Real
	pole    Pole
	rot     mgl64.Mat3
}

func newProjector(src *Image, p Params) *projector {
	center := Real(p.OutputSize / 2)
	return &projector{
		src:     src,
		size:    p.OutputSize,
		center:  center,
		maxDist: center * DiskFraction * p.RadiusScale,
		radius:  p.SphereRadius,
		pole:    p.Pole,
		rot:     p.rotation(),
	}
}

// normalize maps an output pixel coordinate into the plane of the projection.
// A 1x1 output has no extent; its only pixel is the plane origin.
func (pr *projector) normalize(c int) Real {
	if pr.maxDist == 0 {
		return 0
	}
	return (Real(c) - pr.center) / pr.maxDist
}

// pixel returns the blended source color for output pixel (x, y). ok is false
// when the pixel keeps the background.
func (pr *projector) pixel(x, y int) (c [3]Real, ok bool, err error) {
	nx, ny := pr.normalize(x), pr.normalize(y)

	pt := SpherePoint(nx, ny, pr.pole).Mul(pr.radius)
	if !finiteVec(pt) {
		return c, false, &ComputeError{X: x, Y: y, Stage: "inverse projection", Value: firstNonFinite(pt)}
	}
	rp := pr.rot.Mul3x1(pt)

	u, v, ok := SphericalToSource(rp, pr.src.Width, pr.src.Height)
	if !ok {
		return c, false, nil
	}
	if !isFinite(u) || !isFinite(v) {
		bad := u
		if isFinite(u) {
			bad = v
		}
		return c, false, &ComputeError{X: x, Y: y, Stage: "spherical mapping", Value: bad}
	}
	c, ok = Bilinear(pr.src, u, v)
	return c, ok, nil
}

// row renders output row y into out.
func (pr *projector) row(y int, out *Image) error {
	for x := 0; x < pr.size; x++ {
		c, ok, err := pr.pixel(x, y)
		if err != nil {
			return err
		}
		if ok {
			out.Set(y, x, quantize(c))
		}
	}
	return nil
}

type progress struct {
	mu    sync.Mutex
	fn    func(Real)
	done  int
	total int
	every int
}

func (p *progress) rowDone() {
	if p.fn == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	if p.done%p.every == 0 || p.done == p.total {
		p.fn(Real(p.done) / Real(p.total))
	}
}

// Project renders src, an equirectangular RGB image, through a rotated sphere
// onto a square OutputSize x OutputSize image.
//
// It returns an *InputError (ErrInvalidInput) before touching any pixel when
// src or p is unusable, an error wrapping ErrCancelled when ctx ends first, or
// a *ComputeError (ErrCompute) on a non-finite intermediate. The image is
// non-nil only when err is nil.
func Project(ctx context.Context, src *Image, p Params, opts ...Option) (*Image, error) {
	o := options{workers: Workers, progressRows: ProgressRows}
	for _, opt := range opts {
		opt(&o)
	}
	if err := validateSource(src); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if o.progressRows < 1 {
		o.progressRows = 1
	}
	workers := min(max(o.workers, 1), p.OutputSize)
	if workers < o.workers {
		DebugLogOnce("Project: %d workers capped to %d rows", o.workers, workers)
	}

	if ctx.Err() != nil {
		return nil, cancelled(ctx)
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "stereoproj.Project", trace.WithAttributes(
		attribute.Int("stereoproj.source.width", src.Width),
		attribute.Int("stereoproj.source.height", src.Height),
		attribute.Int("stereoproj.output_size", p.OutputSize),
		attribute.Float64("stereoproj.sphere_radius", p.SphereRadius),
		attribute.Float64("stereoproj.radius_scale", p.RadiusScale),
		attribute.String("stereoproj.pole", p.Pole.String()),
		attribute.Float64Slice("stereoproj.rotation_deg", []float64{p.RotX, p.RotY, p.RotZ}),
		attribute.Int("stereoproj.workers", workers),
	))
	defer span.End()

	pr := newProjector(src, p)
	DebugLog("Project: src=%dx%d size=%d center=%.1f maxDist=%.4f pole=%s workers=%d",
		src.Width, src.Height, pr.size, pr.center, pr.maxDist, pr.pole, workers)

	out := NewImage(p.OutputSize, p.OutputSize) // zero is the background
	rep := &progress{fn: o.progress, total: p.OutputSize, every: o.progressRows}

	// Rows are handed out in order; each worker writes only its own rows.
	var next atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				y := int(next.Add(1) - 1)
				if y >= pr.size {
					return nil
				}
				if gctx.Err() != nil {
					return cancelled(gctx)
				}
				if err := pr.row(y, out); err != nil {
					return err
				}
				rep.rowDone()
			}
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		DebugLog("Project failed: %v", err)
		return nil, err
	}
	return out, nil
}

func finiteVec(v mgl64.Vec3) bool { return isFinite(v[0]) && isFinite(v[1]) && isFinite(v[2]) }

func firstNonFinite(v mgl64.Vec3) Real {
	for _, c := range v {
		if !isFinite(c) {
			return c
		}
	}
	return 0
}

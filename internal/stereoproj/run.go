package stereoproj

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Run loads cfg.Input, projects it and writes cfg.Output (and cfg.Preview
// when set). Progress lines go to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if cfg.Input == "" {
		return errors.New("input image path is required")
	}
	if cfg.Output == "" {
		return errors.New("output image path is required")
	}
	p, err := cfg.Params()
	if err != nil {
		return err
	}

	src, err := LoadImage(cfg.Input)
	if err != nil {
		return err
	}

	start := time.Now()
	img, err := Project(ctx, src, p,
		WithWorkers(cfg.Workers),
		WithProgress(func(f Real) {
			fmt.Fprintf(out, "[PROGRESS] %.2f%%\n", f*100)
		}),
	)
	if err != nil {
		return fmt.Errorf("project %s: %w", cfg.Input, err)
	}
	DebugLog("Projected %dx%d -> %dx%d in %s", src.Width, src.Height, img.Width, img.Height, time.Since(start))

	if err := SaveImage(img, cfg.Output); err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved %s (%dx%d)\n", cfg.Output, img.Width, img.Height)

	if cfg.Preview != "" {
		if err := SaveThumbnail(img, cfg.PreviewSize, cfg.Preview); err != nil {
			return err
		}
		DebugLog("Saved preview %s", cfg.Preview)
	}
	return nil
}

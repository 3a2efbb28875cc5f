package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/stwalsh4118/cclive/internal/app"
)

// DefaultRenderDuration is how long render listens before printing.
const DefaultRenderDuration = 10 * time.Second

// RunRender reconciles the page headlessly for d, then writes the resulting
// HTML to w.
func RunRender(ctx context.Context, opts app.Options, d time.Duration, w io.Writer) error {
	if d <= 0 {
		d = DefaultRenderDuration
	}

	rt, err := app.New(ctx, opts)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	if err := rt.Run(runCtx); err != nil {
		return fmt.Errorf("reconcile page: %w", err)
	}

	if err := rt.Render(w); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/chromedp"

	appLog "careerline/internal/log"
)

const (
	DefaultWidth   = 1600
	DefaultHeight  = 900
	DefaultTimeout = 30 * time.Second

	// readySelector matches the page root once the layout is in the DOM.
	readySelector = `[data-ready="true"]`
)

// Options defines a headless Chromium screenshot of the timeline page.
type Options struct {
	// URL of the page, e.g. "http://127.0.0.1:8080/".
	URL string
	// OutputPath receives the PNG. Empty means "return bytes only".
	OutputPath string

	// Viewport size in pixels; zero picks the defaults.
	Width  int
	Height int

	// Timeout bounds the whole capture. Zero picks DefaultTimeout.
	Timeout time.Duration
}

func (o *Options) normalize() error {
	if o.URL == "" {
		return errors.New("capture: URL is required")
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return nil
}

// PNG loads opts.URL in headless Chromium, waits until the timeline root
// reports data-ready="true", and returns a full-page screenshot. When
// OutputPath is set the PNG is also written there.
func PNG(parentCtx context.Context, opts Options) ([]byte, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(readySelector, chromedp.ByQuery),
		// icons and web fonts
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.FullScreenshot(&png, 100),
	}

	start := time.Now()
	if err := chromedp.Run(ctx, tasks); err != nil {
		return nil, fmt.Errorf("capture: chromedp run failed: %w", err)
	}
	appLog.Info("capture completed", "url", opts.URL, "bytes", len(png), "elapsed", time.Since(start).Round(time.Millisecond))

	if opts.OutputPath != "" {
		if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
			return nil, fmt.Errorf("capture: failed to write PNG: %w", err)
		}
	}
	return png, nil
}

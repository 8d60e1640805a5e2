package capture

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// Default capture parameters. The viewport fits two months side by side;
// FullScreenshot grows past it for longer domains.
const (
	DefaultWidth      = 1024
	DefaultHeight     = 768
	DefaultTimeoutSec = 30
)

// readySelector matches the root element of /calendar once it is rendered.
const readySelector = `[data-ready="true"]`

// Options defines parameters for a Chromium-based screenshot capture.
type Options struct {
	// URL to capture, e.g. "http://127.0.0.1:8080/calendar".
	URL string

	// OutputPath is where the PNG is written.
	OutputPath string

	// Width and Height are the viewport dimensions in pixels. If zero,
	// DefaultWidth / DefaultHeight are used.
	Width  int
	Height int

	// Username and Password, when both set, are sent as HTTP Basic Auth on
	// every request the page makes.
	Username string
	Password string

	// Timeout bounds the entire capture operation. If zero, DefaultTimeoutSec
	// is used.
	Timeout time.Duration
}

// CalendarPNG launches a headless Chromium via chromedp, loads opts.URL,
// waits for the grid to signal it is rendered and writes a full-page PNG.
func CalendarPNG(parentCtx context.Context, opts Options) error {
	if opts.URL == "" {
		return fmt.Errorf("capture: URL is required")
	}
	if opts.OutputPath == "" {
		return fmt.Errorf("capture: OutputPath is required")
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Duration(DefaultTimeoutSec) * time.Second
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	if err := chromedp.Run(ctx, tasks(opts, &png)); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}
	return nil
}

func tasks(opts Options, png *[]byte) chromedp.Tasks {
	var t chromedp.Tasks
	if h := authHeaders(opts.Username, opts.Password); h != nil {
		t = append(t, network.Enable(), network.SetExtraHTTPHeaders(h))
	}
	return append(t,
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(readySelector, chromedp.ByQuery),
		// Small extra delay to allow final paints.
		chromedp.Sleep(250*time.Millisecond),
		chromedp.FullScreenshot(png, 100),
	)
}

func authHeaders(username, password string) network.Headers {
	if username == "" || password == "" {
		return nil
	}
	token := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return network.Headers{"Authorization": "Basic " + token}
}

// Package render rasterizes HTML pages to PNG screenshots with headless Chrome.
package render

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/JaimeStill/scrivener/pkg/lifecycle"
)

var (
	ErrNotStarted        = errors.New("renderer not started")
	ErrInvalidDimensions = errors.New("width and height must be positive")
)

// Request describes one render: the HTML to load and the viewport size in
// pixels. Dir overrides the configured output directory.
type Request struct {
	HTML   string
	Width  int
	Height int
	Dir    string
}

// Service renders HTML to an image file and returns its path.
type Service interface {
	Render(ctx context.Context, req Request) (string, error)
}

// System is a Service bound to the lifecycle coordinator.
type System interface {
	Service
	Start(lc *lifecycle.Coordinator) error
}

type chrome struct {
	opts    []chromedp.ExecAllocatorOption
	timeout time.Duration
	dir     string
	logger  *slog.Logger

	mu      sync.RWMutex
	browser context.Context
}

// New creates a headless Chrome renderer. The browser is launched when
// Start runs and closed on shutdown.
func New(cfg *Config, logger *slog.Logger) System {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	opts = append(opts, chromedp.Flag("headless", cfg.IsHeadless()))

	return &chrome{
		opts:    opts,
		timeout: cfg.TimeoutDuration(),
		dir:     cfg.Dir,
		logger:  logger.With("system", "render"),
	}
}

func (c *chrome) Start(lc *lifecycle.Coordinator) error {
	c.logger.Info("starting renderer")

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(lc.Context(), c.opts...)
	browser, cancelBrowser := chromedp.NewContext(allocCtx)

	lc.OnStartup(func() {
		if err := chromedp.Run(browser); err != nil {
			c.logger.Error("browser launch failed", "error", err)
			return
		}

		c.mu.Lock()
		c.browser = browser
		c.mu.Unlock()

		c.logger.Info("renderer ready")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		c.logger.Info("closing browser")

		cancelBrowser()
		cancelAlloc()

		c.logger.Info("browser closed")
	})

	return nil
}

func (c *chrome) Render(ctx context.Context, req Request) (string, error) {
	if req.Width <= 0 || req.Height <= 0 {
		return "", ErrInvalidDimensions
	}

	c.mu.RLock()
	browser := c.browser
	c.mu.RUnlock()
	if browser == nil {
		return "", ErrNotStarted
	}

	tab, cancelTab := chromedp.NewContext(browser)
	defer cancelTab()

	tab, cancelTimeout := context.WithTimeout(tab, c.timeout)
	defer cancelTimeout()

	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var buf []byte
	err := chromedp.Run(tab,
		chromedp.EmulateViewport(int64(req.Width), int64(req.Height)),
		chromedp.Navigate(dataURL(req.HTML)),
		chromedp.FullScreenshot(&buf, 100),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("render page: %w", err)
	}

	dir := req.Dir
	if dir == "" {
		dir = c.dir
	}

	f, err := os.CreateTemp(dir, "render-*.png")
	if err != nil {
		return "", fmt.Errorf("create screenshot file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(buf); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}

	c.logger.Debug("page rendered", "path", f.Name(), "width", req.Width, "height", req.Height)
	return f.Name(), nil
}

func dataURL(html string) string {
	return "data:text/html;charset=utf-8;base64," + base64.StdEncoding.EncodeToString([]byte(html))
}

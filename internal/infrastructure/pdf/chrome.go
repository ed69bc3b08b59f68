package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	defaultRenderTimeout = 30 * time.Second

	// A4 portrait in inches, the only paper size invoices are printed on
	a4WidthInches  = 8.27
	a4HeightInches = 11.69
	marginInches   = 0.4
)

// ChromeConfig contains configuration for the Chrome-based printer
type ChromeConfig struct {
	// Timeout is the per-document rendering deadline
	Timeout time.Duration
	// ChromePath is an explicit browser binary. Empty lets chromedp
	// search the usual install locations.
	ChromePath string
	// NoSandbox runs Chrome without sandbox (required for Docker/root)
	NoSandbox bool
	// Logger for debug output
	Logger *zap.Logger
}

// ChromePrinter converts HTML documents to PDF through the Chrome
// DevTools Protocol. One printer holds a single browser allocator and is
// safe for concurrent use: every PrintHTML call opens its own tab.
type ChromePrinter struct {
	config      *ChromeConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromePrinter creates a new Chrome-backed HTML to PDF printer
func NewChromePrinter(config *ChromeConfig) *ChromePrinter {
	if config == nil {
		config = &ChromeConfig{}
	}
	if config.Timeout == 0 {
		config.Timeout = defaultRenderTimeout
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &ChromePrinter{
		config: config,
		logger: logger,
	}
	p.initAllocator()
	return p
}

// initAllocator initializes the Chrome allocator
func (p *ChromePrinter) initAllocator() {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true), // Important for Docker
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		// Font rendering
		chromedp.Flag("font-render-hinting", "none"),
	)

	if p.config.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	if p.config.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(p.config.ChromePath))
	}

	p.allocCtx, p.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
}

// PrintHTML renders an HTML document to PDF bytes on A4 portrait paper
func (p *ChromePrinter) PrintHTML(ctx context.Context, html string) ([]byte, error) {
	if strings.TrimSpace(html) == "" {
		return nil, fmt.Errorf("HTML content is empty")
	}

	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(p.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			p.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()

	var pdfData []byte

	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(a4WidthInches).
				WithPaperHeight(a4HeightInches).
				WithMarginTop(marginInches).
				WithMarginRight(marginInches).
				WithMarginBottom(marginInches).
				WithMarginLeft(marginInches).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfData = data
			return nil
		}),
	)

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("PDF rendering timed out after %v: %w", p.config.Timeout, err)
		}
		return nil, fmt.Errorf("PDF rendering failed: %w", err)
	}

	p.logger.Debug("rendered PDF document",
		zap.Int("size_bytes", len(pdfData)),
		zap.Duration("duration", time.Since(startTime)))

	return pdfData, nil
}

// Close shuts down the browser allocator
func (p *ChromePrinter) Close() {
	if p.allocCancel != nil {
		p.allocCancel()
	}
}

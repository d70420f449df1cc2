// Package printing turns invoice and letter HTML into PDF files.
package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/infra/config"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

var _ usecase.PDFRenderer = (*ChromeRenderer)(nil)

// Letter size with half inch margins.
const (
	paperWidthIn  = 8.5
	paperHeightIn = 11.0
	marginIn      = 0.5
)

// ChromeRenderer prints HTML through headless Chrome, either a local process
// or a remote instance reached over the DevTools websocket.
type ChromeRenderer struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	timeout     time.Duration
	logger      *zap.Logger
}

func NewChromeRenderer(cfg config.PDFConfig, logger *zap.Logger) *ChromeRenderer {
	r := &ChromeRenderer{
		timeout: cfg.Timeout,
		logger:  logger.Named("printing"),
	}
	if r.timeout <= 0 {
		r.timeout = 30 * time.Second
	}

	if cfg.ChromeRemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.ChromeRemoteURL)
		return r
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return r
}

func (r *ChromeRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// The browser tab inherits the allocator, the deadline comes from ctx.
	tabCtx, tabCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer tabCancel()
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	var out []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidthIn).
				WithPaperHeight(paperHeightIn).
				WithMarginTop(marginIn).
				WithMarginBottom(marginIn).
				WithMarginLeft(marginIn).
				WithMarginRight(marginIn).
				WithPreferCSSPageSize(true).
				Do(ctx)
			out = data
			return err
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("pdf rendering timed out after %s: %w", r.timeout, err)
		}
		return nil, fmt.Errorf("chrome print: %w", err)
	}
	if len(out) == 0 {
		return nil, errors.New("chrome returned an empty pdf")
	}

	r.logger.Debug("pdf rendered", zap.Int("bytes", len(out)), zap.Duration("duration", time.Since(start)))
	return out, nil
}

// CountPages reads the page tree of a rendered pdf.
func (r *ChromeRenderer) CountPages(data []byte) (int, error) {
	return CountPages(data)
}

func (r *ChromeRenderer) Close() {
	if r.allocCancel != nil {
		r.allocCancel()
	}
}

func CountPages(data []byte) (n int, err error) {
	// The pdf reader panics on some malformed trailers.
	defer func() {
		if rec := recover(); rec != nil {
			n, err = 0, fmt.Errorf("parse pdf: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("parse pdf: %w", err)
	}
	return reader.NumPage(), nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"chem-purchase-assistant/models"
	"chem-purchase-assistant/summary"
)

// ExportFormat is the output of a summary export
type ExportFormat string

const (
	FormatPDF   ExportFormat = "pdf"
	FormatPNG   ExportFormat = "png"
	FormatThumb ExportFormat = "thumb"
	FormatXLSX  ExportFormat = "xlsx"
)

// ErrUnsupportedFormat is returned for an unknown export format
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseExportFormat parses the format query value. Empty means PDF.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return FormatPDF, nil
	case FormatPDF, FormatPNG, FormatThumb, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, raw)
	}
}

// ExportResult is an exported summary file
type ExportResult struct {
	Data        []byte
	ContentType string
	Filename    string
}

// PageRenderer prints a standalone HTML document
type PageRenderer interface {
	PrintPDF(ctx context.Context, html string) ([]byte, error)
	// Screenshot captures the element matching selector as PNG
	Screenshot(ctx context.Context, html, selector string) ([]byte, error)
}

// SummaryExportServiceInterface defines the contract for summary exports
type SummaryExportServiceInterface interface {
	Export(ctx context.Context, req models.SummaryExportRequest, format ExportFormat) (*ExportResult, error)
}

// SummaryExportService renders order summaries and prints them through a PageRenderer
type SummaryExportService struct {
	renderer PageRenderer
	now      func() time.Time
	mu       sync.Mutex
	rng      *rand.Rand
	logger   *zap.Logger
}

// NewSummaryExportService creates a SummaryExportService
func NewSummaryExportService(renderer PageRenderer, logger *zap.Logger) *SummaryExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryExportService{
		renderer: renderer,
		now:      time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:   logger,
	}
}

var _ SummaryExportServiceInterface = (*SummaryExportService)(nil)

// Export renders the summary for the order and converts it to format
func (s *SummaryExportService) Export(ctx context.Context, req models.SummaryExportRequest, format ExportFormat) (*ExportResult, error) {
	if strings.TrimSpace(req.Supplier) == "" && strings.TrimSpace(req.SupplierName) == "" {
		return nil, ErrInvalidPurchase
	}

	s.mu.Lock()
	data := summary.Build(req.Supplier, req.SupplierName, &req.Order, s.now(), s.rng)
	s.mu.Unlock()

	fragment, err := summary.Render(data)
	if err != nil {
		return nil, err
	}
	document := summary.Document(fragment)
	base := exportBaseName(data.OrderID)

	start := time.Now()
	var result *ExportResult
	switch format {
	case FormatPDF:
		pdf, err := s.renderer.PrintPDF(ctx, document)
		if err != nil {
			return nil, err
		}
		result = &ExportResult{Data: pdf, ContentType: "application/pdf", Filename: base + ".pdf"}
	case FormatPNG, FormatThumb:
		png, err := s.renderer.Screenshot(ctx, document, ".order-summary")
		if err != nil {
			return nil, err
		}
		result = &ExportResult{Data: png, ContentType: "image/png", Filename: base + ".png"}
		if format == FormatThumb {
			thumb, err := Thumbnail(png, maxThumbWidth, thumbQuality)
			if err != nil {
				return nil, err
			}
			result = &ExportResult{Data: thumb, ContentType: "image/jpeg", Filename: base + "-thumb.jpg"}
		}
	case FormatXLSX:
		sheet, err := OrderSheet(data, req.Order.Items)
		if err != nil {
			return nil, err
		}
		result = &ExportResult{Data: sheet, ContentType: xlsxMIME, Filename: base + ".xlsx"}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	s.logger.Info("order summary exported",
		zap.String("order_id", data.OrderID),
		zap.String("format", string(format)),
		zap.Int("bytes", len(result.Data)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

func exportBaseName(orderID string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return -1
		}
	}, orderID)
	if clean == "" {
		clean = "order"
	}
	return "order-summary-" + clean
}

// ChromeRenderer prints HTML with a headless Chrome started per call
type ChromeRenderer struct {
	chromePath string
	timeout    time.Duration
}

// NewChromeRenderer creates a ChromeRenderer. An empty chromePath is detected
// from CHROME_PATH and the usual install locations.
func NewChromeRenderer(chromePath string, timeout time.Duration) *ChromeRenderer {
	if chromePath == "" {
		chromePath = detectChromePath()
	}
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &ChromeRenderer{chromePath: chromePath, timeout: timeout}
}

var _ PageRenderer = (*ChromeRenderer)(nil)

// detectChromePath checks CHROME_PATH first, then common installation paths
func detectChromePath() string {
	if chromePath := os.Getenv("CHROME_PATH"); chromePath != "" {
		if _, err := os.Stat(chromePath); err == nil {
			return chromePath
		}
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// PrintPDF prints html to an A4 PDF
func (r *ChromeRenderer) PrintPDF(ctx context.Context, html string) ([]byte, error) {
	var pdfBuf []byte
	err := r.run(ctx, html, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		pdfBuf, _, err = page.PrintToPDF().
			WithPrintBackground(true).
			WithPaperWidth(8.27).   // 210mm
			WithPaperHeight(11.69). // 297mm
			WithMarginTop(0.4).
			WithMarginBottom(0.4).
			WithMarginLeft(0.4).
			WithMarginRight(0.4).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return pdfBuf, nil
}

// Screenshot captures the element matching selector as PNG
func (r *ChromeRenderer) Screenshot(ctx context.Context, html, selector string) ([]byte, error) {
	var buf []byte
	err := r.run(ctx, html, chromedp.Screenshot(selector, &buf, chromedp.NodeVisible, chromedp.ByQuery))
	if err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return buf, nil
}

func (r *ChromeRenderer) run(ctx context.Context, html string, capture chromedp.Action) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.NoSandbox)
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctxTimeout, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	return chromedp.Run(browserCtx,
		chromedp.EmulateViewport(794, 1123),
		chromedp.Navigate("about:blank"),
		setDocumentContent(html),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(`document.fonts.ready.then(() => true)`, nil, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}),
		capture,
	)
}

// setDocumentContent replaces the blank page with html without a server round trip
func setDocumentContent(html string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
	})
}

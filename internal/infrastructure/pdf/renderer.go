package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	appinvoicing "github.com/ecobat/backend/internal/application/invoicing"
	"github.com/ecobat/backend/internal/domain/invoicing"
)

// HTMLPrinter converts an HTML document into PDF bytes. ChromePrinter is
// the production implementation.
type HTMLPrinter interface {
	PrintHTML(ctx context.Context, html string) ([]byte, error)
}

// Renderer produces the stored PDF document for an issued invoice. The
// file name is derived from the invoice number, so re-rendering an
// invoice overwrites the previous document instead of accumulating
// copies.
type Renderer struct {
	printer HTMLPrinter
	dir     string
	logger  *zap.Logger
}

var _ appinvoicing.InvoiceRenderer = (*Renderer)(nil)

// NewRenderer creates a renderer writing documents under storageDir,
// creating the directory when missing.
func NewRenderer(printer HTMLPrinter, storageDir string, logger *zap.Logger) (*Renderer, error) {
	if storageDir == "" {
		return nil, fmt.Errorf("storage directory is required")
	}
	if err := os.MkdirAll(storageDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", storageDir, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{
		printer: printer,
		dir:     storageDir,
		logger:  logger,
	}, nil
}

// Render renders the invoice document and returns the path it was
// written to.
func (r *Renderer) Render(ctx context.Context, invoice *invoicing.Invoice) (string, error) {
	if invoice == nil {
		return "", fmt.Errorf("invoice is nil")
	}

	html, err := renderInvoiceHTML(invoice)
	if err != nil {
		return "", err
	}

	data, err := r.printer.PrintHTML(ctx, html)
	if err != nil {
		return "", err
	}

	path := filepath.Join(r.dir, documentFileName(invoice.Number))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write invoice document: %w", err)
	}

	r.logger.Info("stored invoice document",
		zap.String("invoice_number", invoice.Number),
		zap.String("path", path),
		zap.Int("size_bytes", len(data)))

	return path, nil
}

// documentFileName maps an invoice number to a safe file name. Numbers
// only contain letters, digits and dashes today, anything else is
// replaced rather than trusted.
func documentFileName(number string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, number)
	if sanitized == "" {
		sanitized = "invoice"
	}
	return sanitized + ".pdf"
}

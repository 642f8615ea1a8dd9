package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"opsdesk/config"
	"opsdesk/models"
	"opsdesk/storage"
)

// DocumentService renders invoice PDFs through a headless browser and
// stores them in the document bucket. Generation is synchronous within the
// request that asked for it.
type DocumentService struct {
	Cfg      *config.Config
	DB       *gorm.DB
	S3Client *s3.Client
	Logger   *zap.Logger
}

func NewDocumentService(cfg *config.Config, db *gorm.DB, s3Client *s3.Client, logger *zap.Logger) *DocumentService {
	return &DocumentService{Cfg: cfg, DB: db, S3Client: s3Client, Logger: logger}
}

var invoiceTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><style>
body { font-family: Helvetica, Arial, sans-serif; margin: 48px; color: #1a1a1a; }
h1 { font-size: 22px; }
table { width: 100%; border-collapse: collapse; margin-top: 24px; }
td, th { padding: 8px 4px; border-bottom: 1px solid #ddd; text-align: left; }
.total { font-weight: bold; }
.muted { color: #777; font-size: 12px; }
</style></head>
<body>
<h1>Invoice {{.Number}}</h1>
<p class="muted">Issued {{.IssuedDisplay}}{{if .DueDisplay}} &middot; due {{.DueDisplay}}{{end}}</p>
<p>Billed to: <strong>{{.CustomerName}}</strong></p>
{{if .Reference}}<p>Reference: {{.Reference}}</p>{{end}}
<table>
<tr><th>Description</th><th>Amount</th></tr>
<tr><td>Services per reference {{.Reference}}</td><td>{{printf "%.2f" .Total}} {{.Currency}}</td></tr>
<tr class="total"><td>Amount due</td><td>{{printf "%.2f" .AmountDue}} {{.Currency}}</td></tr>
</table>
</body>
</html>`))

type invoiceView struct {
	models.Invoice
	IssuedDisplay string
	DueDisplay    string
}

// GenerateInvoicePDF renders the invoice as HTML, prints it to PDF via a
// headless Chrome instance, uploads the result and records the link on the
// invoice row.
func (s *DocumentService) GenerateInvoicePDF(ctx context.Context, number string) (string, error) {
	var invoice models.Invoice
	if err := s.DB.WithContext(ctx).Where("number = ?", number).First(&invoice).Error; err != nil {
		return "", err
	}

	view := invoiceView{Invoice: invoice}
	if invoice.IssueDate != nil {
		view.IssuedDisplay = invoice.IssueDate.Format("02 Jan 2006")
	}
	if invoice.DueDate != nil {
		view.DueDisplay = invoice.DueDate.Format("02 Jan 2006")
	}
	if view.Currency == "" {
		view.Currency = "AED"
	}

	var html bytes.Buffer
	if err := invoiceTemplate.Execute(&html, view); err != nil {
		return "", err
	}

	pdf, err := s.printToPDF(ctx, html.String())
	if err != nil {
		s.Logger.Error("Invoice PDF rendering failed", zap.String("number", number), zap.Error(err))
		return "", err
	}

	key := fmt.Sprintf("invoices/%s-%s.pdf", invoice.Number, time.Now().UTC().Format("20060102T150405Z"))
	link, err := storage.UploadDocument(ctx, s.S3Client, s.Cfg, key, pdf, "application/pdf")
	if err != nil {
		s.Logger.Error("Invoice PDF upload failed", zap.String("number", number), zap.Error(err))
		return "", err
	}

	if err := s.DB.WithContext(ctx).Model(&invoice).Update("pdf_url", link).Error; err != nil {
		return "", err
	}

	s.Logger.Info("Invoice PDF generated", zap.String("number", number), zap.String("url", link))
	return link, nil
}

func (s *DocumentService) printToPDF(ctx context.Context, html string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	browserCtx, timeoutCancel := context.WithTimeout(browserCtx, 60*time.Second)
	defer timeoutCancel()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("data:text/html,"+url.PathEscape(html)),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdf, nil
}

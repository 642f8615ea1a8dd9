package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"opsdesk/integrations/resend"
	"opsdesk/models"
)

// ImportService runs spreadsheet imports: parse, dedupe against the stored
// staging rows, insert what is new, report what was rejected.
type ImportService struct {
	DB          *gorm.DB
	Logger      *zap.Logger
	Mailer      *resend.Client // nil when mail is not configured
	NotifyEmail string
}

func NewImportService(db *gorm.DB, logger *zap.Logger, mailer *resend.Client, notifyEmail string) *ImportService {
	return &ImportService{DB: db, Logger: logger, Mailer: mailer, NotifyEmail: notifyEmail}
}

// PayrunImportReport summarizes one payrun sheet import.
type PayrunImportReport struct {
	SourceRows int               `json:"source_rows"`
	Flattened  int               `json:"flattened"`
	Inserted   int               `json:"inserted"`
	Duplicates []PayrunDuplicate `json:"duplicates"`
}

// ImportPayrunSheet reads a wide payrun xlsx, flattens it into long-form
// entries, drops entries already stored and inserts the rest. The whole
// import runs within the caller's request; there is no queueing.
func (s *ImportService) ImportPayrunSheet(ctx context.Context, r io.Reader) (*PayrunImportReport, error) {
	rows, err := ReadSheetRows(r)
	if err != nil {
		return nil, err
	}
	entries := FlattenPayrunMatrix(rows)

	var existing []models.TempPayrunEntry
	if err := s.DB.WithContext(ctx).Find(&existing).Error; err != nil {
		s.Logger.Error("Failed to load existing payrun entries", zap.Error(err))
		return nil, err
	}

	result := CheckForTempPayrunDuplicates(entries, existing)
	if len(result.Unique) > 0 {
		if err := s.DB.WithContext(ctx).CreateInBatches(result.Unique, 200).Error; err != nil {
			s.Logger.Error("Failed to insert payrun entries", zap.Error(err))
			return nil, err
		}
	}

	report := &PayrunImportReport{
		SourceRows: len(rows),
		Flattened:  len(entries),
		Inserted:   len(result.Unique),
		Duplicates: result.Duplicates,
	}
	s.Logger.Info("Payrun sheet imported",
		zap.Int("source_rows", report.SourceRows),
		zap.Int("inserted", report.Inserted),
		zap.Int("duplicates", len(report.Duplicates)))

	s.notify(ctx, "Payrun import finished", fmt.Sprintf(
		"<p>Imported %d of %d flattened entries (%d duplicates rejected).</p>",
		report.Inserted, report.Flattened, len(report.Duplicates)))

	return report, nil
}

// StagingImportReport summarizes a quote/invoice staging sheet import.
type StagingImportReport struct {
	SourceRows int            `json:"source_rows"`
	Inserted   int            `json:"inserted"`
	Skipped    int            `json:"skipped"`
	Duplicates []DuplicateRow `json:"duplicates"`
}

var stagingUniqueKeys = []string{"Number", "Customer"}

// ImportQuoteSheet loads quote rows into temp_quotes, rejecting rows whose
// (Number, Customer) signature is already staged. Rows without a Number are
// skipped and counted.
func (s *ImportService) ImportQuoteSheet(ctx context.Context, r io.Reader) (*StagingImportReport, error) {
	rows, err := ReadSheetRows(r)
	if err != nil {
		return nil, err
	}

	var stored []models.TempQuote
	if err := s.DB.WithContext(ctx).Find(&stored).Error; err != nil {
		return nil, err
	}
	existing := make([]Row, 0, len(stored))
	for _, q := range stored {
		existing = append(existing, Row{"Number": q.Number, "Customer": q.CustomerName})
	}

	result := CheckForDuplicates(rows, existing, stagingUniqueKeys)
	dupAt := map[int]bool{}
	for _, d := range result.Duplicates {
		dupAt[d.RowNumber] = true
	}

	report := &StagingImportReport{SourceRows: len(rows), Duplicates: result.Duplicates}
	batch := []models.TempQuote{}
	for idx, row := range rows {
		rowNumber := idx + 2
		if dupAt[rowNumber] {
			continue
		}
		if strings.TrimSpace(row["Number"]) == "" {
			report.Skipped++
			continue
		}
		raw, _ := json.Marshal(row)
		batch = append(batch, models.TempQuote{
			Number:       row["Number"],
			Reference:    row["Reference"],
			CustomerName: row["Customer"],
			Total:        parseMoney(row["Total"]),
			RowNumber:    rowNumber,
			Raw:          raw,
		})
	}
	if len(batch) > 0 {
		if err := s.DB.WithContext(ctx).CreateInBatches(batch, 200).Error; err != nil {
			s.Logger.Error("Failed to insert temp quotes", zap.Error(err))
			return nil, err
		}
	}
	report.Inserted = len(batch)
	return report, nil
}

// ImportInvoiceSheet is the invoice counterpart of ImportQuoteSheet.
func (s *ImportService) ImportInvoiceSheet(ctx context.Context, r io.Reader) (*StagingImportReport, error) {
	rows, err := ReadSheetRows(r)
	if err != nil {
		return nil, err
	}

	var stored []models.TempInvoice
	if err := s.DB.WithContext(ctx).Find(&stored).Error; err != nil {
		return nil, err
	}
	existing := make([]Row, 0, len(stored))
	for _, inv := range stored {
		existing = append(existing, Row{"Number": inv.Number, "Customer": inv.CustomerName})
	}

	result := CheckForDuplicates(rows, existing, stagingUniqueKeys)
	dupAt := map[int]bool{}
	for _, d := range result.Duplicates {
		dupAt[d.RowNumber] = true
	}

	report := &StagingImportReport{SourceRows: len(rows), Duplicates: result.Duplicates}
	batch := []models.TempInvoice{}
	for idx, row := range rows {
		rowNumber := idx + 2
		if dupAt[rowNumber] {
			continue
		}
		if strings.TrimSpace(row["Number"]) == "" {
			report.Skipped++
			continue
		}
		raw, _ := json.Marshal(row)
		batch = append(batch, models.TempInvoice{
			Number:       row["Number"],
			Reference:    row["Reference"],
			CustomerName: row["Customer"],
			Total:        parseMoney(row["Total"]),
			RowNumber:    rowNumber,
			Raw:          raw,
		})
	}
	if len(batch) > 0 {
		if err := s.DB.WithContext(ctx).CreateInBatches(batch, 200).Error; err != nil {
			s.Logger.Error("Failed to insert temp invoices", zap.Error(err))
			return nil, err
		}
	}
	report.Inserted = len(batch)
	return report, nil
}

func parseMoney(raw string) float64 {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

// notify sends a best-effort summary mail; failures are logged, never
// propagated into the import result.
func (s *ImportService) notify(ctx context.Context, subject, html string) {
	if s.Mailer == nil || s.NotifyEmail == "" {
		return
	}
	if err := s.Mailer.Send(ctx, s.NotifyEmail, subject, html); err != nil {
		s.Logger.Warn("Import notification mail failed", zap.Error(err))
	}
}

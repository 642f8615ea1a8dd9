package xero

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SyncService mirrors Xero invoices and quotes into the local tables.
type SyncService struct {
	DB     *gorm.DB
	Client *Client
	Logger *zap.Logger
}

func NewSyncService(db *gorm.DB, client *Client, logger *zap.Logger) *SyncService {
	return &SyncService{DB: db, Client: client, Logger: logger}
}

// SyncInvoices fetches all invoices and upserts them by number. Returns the
// number of invoices processed.
func (s *SyncService) SyncInvoices(ctx context.Context) (int, error) {
	invoices, err := s.Client.FetchInvoices(ctx)
	if err != nil {
		s.Logger.Error("Xero invoice fetch failed", zap.Error(err))
		return 0, err
	}

	for _, inv := range invoices {
		err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "number"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"reference", "customer_name", "total", "amount_due", "currency",
				"status", "issue_date", "due_date", "xero_id", "updated_at",
			}),
		}).Create(&inv).Error
		if err != nil {
			s.Logger.Error("Failed to upsert invoice", zap.String("number", inv.Number), zap.Error(err))
			return 0, err
		}
	}

	s.Logger.Info("Xero invoice sync completed", zap.Int("count", len(invoices)))
	return len(invoices), nil
}

// SyncQuotes is the quote counterpart of SyncInvoices.
func (s *SyncService) SyncQuotes(ctx context.Context) (int, error) {
	quotes, err := s.Client.FetchQuotes(ctx)
	if err != nil {
		s.Logger.Error("Xero quote fetch failed", zap.Error(err))
		return 0, err
	}

	for _, q := range quotes {
		err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "number"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"reference", "customer_name", "total", "status", "issue_date",
				"xero_id", "updated_at",
			}),
		}).Create(&q).Error
		if err != nil {
			s.Logger.Error("Failed to upsert quote", zap.String("number", q.Number), zap.Error(err))
			return 0, err
		}
	}

	s.Logger.Info("Xero quote sync completed", zap.Int("count", len(quotes)))
	return len(quotes), nil
}

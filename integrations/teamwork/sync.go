package teamwork

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SyncService mirrors Teamwork tickets into the local tickets table.
type SyncService struct {
	DB     *gorm.DB
	Client *Client
	Logger *zap.Logger
}

func NewSyncService(db *gorm.DB, client *Client, logger *zap.Logger) *SyncService {
	return &SyncService{DB: db, Client: client, Logger: logger}
}

// SyncTickets fetches all tickets and upserts them by ticketid. Returns the
// number of tickets processed.
func (s *SyncService) SyncTickets(ctx context.Context) (int, error) {
	tickets, err := s.Client.FetchTickets(ctx)
	if err != nil {
		s.Logger.Error("Teamwork ticket fetch failed", zap.Error(err))
		return 0, err
	}

	for _, t := range tickets {
		err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "ticketid"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"subject", "status", "customer_name", "assigned_to", "updated_at",
			}),
		}).Create(&t).Error
		if err != nil {
			s.Logger.Error("Failed to upsert ticket", zap.String("ticketid", t.TicketID), zap.Error(err))
			return 0, err
		}
	}

	s.Logger.Info("Teamwork ticket sync completed", zap.Int("count", len(tickets)))
	return len(tickets), nil
}

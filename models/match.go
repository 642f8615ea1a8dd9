package models

import (
	"time"

	"gorm.io/datatypes"
)

// Match is a human-confirmed ticket/quote/invoice association. The triple
// (ticketid, quote_number, invoice_number) is unique; confirming the same
// triple again overwrites score and confidence.
type Match struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Empty string means "no quote" / "no invoice"; a match may involve
	// only one of them.
	TicketID      string `json:"ticketid" gorm:"column:ticketid;index:idx_matches_triple,unique;size:64;not null"`
	QuoteNumber   string `json:"quote_number" gorm:"index:idx_matches_triple,unique;size:64;default:''"`
	InvoiceNumber string `json:"invoice_number" gorm:"index:idx_matches_triple,unique;size:64;default:''"`

	MatchScore float64 `json:"match_score"`
	Confidence string  `json:"confidence" gorm:"index"` // high, medium, low

	ConfirmedBy string `json:"confirmed_by,omitempty"`

	// Scoring details (compared fields, component scores) for audit.
	Evidence datatypes.JSON `json:"evidence,omitempty" gorm:"type:jsonb"`
}

func (Match) TableName() string { return "matches" }

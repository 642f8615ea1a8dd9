package models

import (
	"time"

	"gorm.io/datatypes"
)

// TempQuote is a staging row from a quote spreadsheet import, held until it
// is reconciled against canonical quotes or matched to a ticket.
type TempQuote struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	Number       string  `json:"number" gorm:"index;not null"`
	Reference    string  `json:"reference,omitempty"`
	CustomerName string  `json:"customer_name,omitempty"`
	Total        float64 `json:"total"`

	MatchedTicketID string `json:"matched_ticketid,omitempty" gorm:"column:matched_ticketid;index"`

	// Spreadsheet-visible row number of the source line (header + 1-based).
	RowNumber int            `json:"row_number"`
	Raw       datatypes.JSON `json:"raw,omitempty" gorm:"type:jsonb"`
}

func (TempQuote) TableName() string { return "temp_quotes" }

// TempInvoice is the invoice counterpart of TempQuote.
type TempInvoice struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	Number       string  `json:"number" gorm:"index;not null"`
	Reference    string  `json:"reference,omitempty"`
	CustomerName string  `json:"customer_name,omitempty"`
	Total        float64 `json:"total"`

	MatchedTicketID    string `json:"matched_ticketid,omitempty" gorm:"column:matched_ticketid;index"`
	MatchedQuoteNumber string `json:"matched_quote_number,omitempty" gorm:"index"`

	RowNumber int            `json:"row_number"`
	Raw       datatypes.JSON `json:"raw,omitempty" gorm:"type:jsonb"`
}

func (TempInvoice) TableName() string { return "temp_invoices" }

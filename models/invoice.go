package models

import (
	"time"
)

// Invoice is a billing record, synced from Xero.
type Invoice struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Number       string     `json:"number" gorm:"uniqueIndex;not null"`
	Reference    string     `json:"reference,omitempty"`
	CustomerName string     `json:"customer_name" gorm:"index"`
	Total        float64    `json:"total"`
	AmountDue    float64    `json:"amount_due"`
	Currency     string     `json:"currency,omitempty"`
	Status       string     `json:"status,omitempty" gorm:"index"` // DRAFT, AUTHORISED, PAID, VOIDED
	IssueDate    *time.Time `json:"issue_date,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`

	QuoteNumber     string `json:"quote_number,omitempty" gorm:"index"`
	MatchedTicketID string `json:"matched_ticketid,omitempty" gorm:"column:matched_ticketid;index"`

	XeroID string `json:"xero_id,omitempty" gorm:"column:xero_id;index"`
	PDFUrl string `json:"pdf_url,omitempty" gorm:"column:pdf_url"`
}

func (Invoice) TableName() string { return "invoices" }

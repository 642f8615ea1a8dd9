package models

import (
	"time"
)

// Quote is a sales quotation, synced from Xero or imported from spreadsheets.
type Quote struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Number       string     `json:"number" gorm:"uniqueIndex;not null"`
	Reference    string     `json:"reference,omitempty"`
	CustomerName string     `json:"customer_name" gorm:"index"`
	Total        float64    `json:"total"`
	Status       string     `json:"status,omitempty" gorm:"index"` // DRAFT, SENT, ACCEPTED, DECLINED
	IssueDate    *time.Time `json:"issue_date,omitempty"`

	// Set once a human confirms a ticket match.
	MatchedTicketID string `json:"matched_ticketid,omitempty" gorm:"column:matched_ticketid;index"`

	XeroID string `json:"xero_id,omitempty" gorm:"column:xero_id;index"`
}

func (Quote) TableName() string { return "quotes" }

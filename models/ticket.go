package models

import (
	"time"
)

// Ticket is a support/service record, usually synced from Teamwork Desk.
// TicketID is the remote identifier and the target of quote/invoice matching.
type Ticket struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TicketID     string `json:"ticketid" gorm:"column:ticketid;uniqueIndex;not null"`
	Subject      string `json:"subject"`
	CustomerName string `json:"customer_name" gorm:"index"`
	Status       string `json:"status" gorm:"index;default:'open'"` // open, closed
	Source       string `json:"source,omitempty"`                   // teamwork, manual

	AssignedTo string     `json:"assigned_to,omitempty"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
}

func (Ticket) TableName() string { return "tickets" }

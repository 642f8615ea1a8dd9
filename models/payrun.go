package models

import (
	"time"
)

// TempPayrunEntry is one normalized long-form row produced by flattening a
// wide payrun spreadsheet (one column per payrun date).
type TempPayrunEntry struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	EmployerID      string     `json:"employer_id" gorm:"index"`
	EmployeeID      string     `json:"employee_id" gorm:"index"`
	TempPaytypeName string     `json:"temp_paytype_name"`
	PayrunCode      string     `json:"payrun_code" gorm:"index"`
	TempPayrunDate  *time.Time `json:"temp_payrun_date"`
	Amount          float64    `json:"amount"`
	Currency        string     `json:"currency"`

	// Spreadsheet-visible row number of the source line.
	RowNumber int `json:"row_number"`
}

func (TempPayrunEntry) TableName() string { return "temp_payrun_entries" }

package models

import "time"

// XeroConnection stores the OAuth2 token set for one connected Xero
// organisation (tenant). One row per tenant.
type XeroConnection struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TenantID   string `json:"tenant_id" gorm:"uniqueIndex;not null"`
	TenantName string `json:"tenant_name,omitempty"`

	AccessToken  string    `json:"-" gorm:"type:text"`
	RefreshToken string    `json:"-" gorm:"type:text"`
	TokenExpiry  time.Time `json:"token_expiry"`
}

func (XeroConnection) TableName() string { return "xero_connections" }

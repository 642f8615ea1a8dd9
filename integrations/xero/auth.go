package xero

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"opsdesk/config"
	"opsdesk/models"
)

const connectionsURL = "https://api.xero.com/connections"

// OAuthConfig builds the oauth2 config for the Xero authorization-code
// flow. offline_access is required to receive a refresh token.
func OAuthConfig(cfg *config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.XeroClientID,
		ClientSecret: cfg.XeroClientSecret,
		RedirectURL:  cfg.XeroRedirectURL,
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.XeroAuthURL,
			TokenURL: cfg.XeroTokenURL,
		},
		Scopes: []string{"offline_access", "accounting.transactions", "accounting.contacts.read"},
	}
}

// Connection is one Xero organisation reachable with a token set.
type Connection struct {
	TenantID   string `json:"tenant_id"`
	TenantName string `json:"tenant_name"`
}

// FetchConnections lists the organisations the freshly exchanged token can
// access. Xero returns these from a separate identity endpoint, not the
// Accounting API.
func FetchConnections(ctx context.Context, token *oauth2.Token) ([]Connection, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, connectionsURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("xero connections: status %d: %s", resp.StatusCode, string(detail))
	}

	var wire []wireConnection
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, err
	}

	out := make([]Connection, 0, len(wire))
	for _, c := range wire {
		if c.TenantType != "" && c.TenantType != "ORGANISATION" {
			continue
		}
		out = append(out, Connection{TenantID: c.TenantID, TenantName: c.TenantName})
	}
	return out, nil
}

// SaveConnection upserts the token set for one tenant.
func SaveConnection(db *gorm.DB, conn Connection, token *oauth2.Token) error {
	row := models.XeroConnection{
		TenantID:     conn.TenantID,
		TenantName:   conn.TenantName,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenExpiry:  token.Expiry,
	}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"tenant_name", "access_token", "refresh_token", "token_expiry", "updated_at",
		}),
	}).Create(&row).Error
}

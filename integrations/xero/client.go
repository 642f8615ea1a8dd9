package xero

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"opsdesk/config"
	"opsdesk/models"
)

// ErrNotConnected is returned when no Xero organisation has completed the
// OAuth flow yet.
var ErrNotConnected = errors.New("no xero connection configured")

// Client talks to the Xero Accounting API for the first connected tenant.
// Tokens are refreshed through the oauth2 token source and persisted back
// when they rotate.
type Client struct {
	cfg        *config.Config
	db         *gorm.DB
	log        *zap.Logger
	HTTPClient *http.Client
}

func NewClient(cfg *config.Config, db *gorm.DB, log *zap.Logger) *Client {
	return &Client{
		cfg: cfg,
		db:  db,
		log: log,
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *Client) activeConnection(ctx context.Context) (*models.XeroConnection, error) {
	var conn models.XeroConnection
	if err := c.db.WithContext(ctx).First(&conn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotConnected
		}
		return nil, err
	}
	return &conn, nil
}

// token returns a live access token for the connection, refreshing and
// persisting it when expired.
func (c *Client) token(ctx context.Context, conn *models.XeroConnection) (string, error) {
	saved := &oauth2.Token{
		AccessToken:  conn.AccessToken,
		RefreshToken: conn.RefreshToken,
		Expiry:       conn.TokenExpiry,
	}
	tok, err := OAuthConfig(c.cfg).TokenSource(ctx, saved).Token()
	if err != nil {
		return "", err
	}

	if tok.AccessToken != conn.AccessToken {
		conn.AccessToken = tok.AccessToken
		conn.RefreshToken = tok.RefreshToken
		conn.TokenExpiry = tok.Expiry
		if err := c.db.WithContext(ctx).Save(conn).Error; err != nil {
			c.log.Warn("Failed to persist refreshed Xero token", zap.Error(err))
		}
	}
	return tok.AccessToken, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	conn, err := c.activeConnection(ctx)
	if err != nil {
		return err
	}
	accessToken, err := c.token(ctx, conn)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.XeroAPIBaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Xero-Tenant-Id", conn.TenantID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("xero: GET %s: status %d: %s", path, resp.StatusCode, string(detail))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// FetchInvoices pages through /Invoices (100 per page) and maps them onto
// the local model.
func (c *Client) FetchInvoices(ctx context.Context) ([]models.Invoice, error) {
	out := []models.Invoice{}
	for page := 1; ; page++ {
		var payload invoicesResponse
		if err := c.get(ctx, fmt.Sprintf("/Invoices?page=%d", page), &payload); err != nil {
			return nil, err
		}
		if len(payload.Invoices) == 0 {
			break
		}
		for _, inv := range payload.Invoices {
			if inv.InvoiceNumber == "" {
				continue
			}
			out = append(out, models.Invoice{
				Number:       inv.InvoiceNumber,
				Reference:    inv.Reference,
				CustomerName: inv.Contact.Name,
				Total:        inv.Total,
				AmountDue:    inv.AmountDue,
				Currency:     inv.CurrencyCode,
				Status:       inv.Status,
				IssueDate:    parseXeroDate(inv.DateString),
				DueDate:      parseXeroDate(inv.DueDateString),
				XeroID:       inv.InvoiceID,
			})
		}
	}
	return out, nil
}

// FetchQuotes pages through /Quotes.
func (c *Client) FetchQuotes(ctx context.Context) ([]models.Quote, error) {
	out := []models.Quote{}
	for page := 1; ; page++ {
		var payload quotesResponse
		if err := c.get(ctx, fmt.Sprintf("/Quotes?page=%d", page), &payload); err != nil {
			return nil, err
		}
		if len(payload.Quotes) == 0 {
			break
		}
		for _, q := range payload.Quotes {
			if q.QuoteNumber == "" {
				continue
			}
			out = append(out, models.Quote{
				Number:       q.QuoteNumber,
				Reference:    q.Reference,
				CustomerName: q.Contact.Name,
				Total:        q.Total,
				Status:       q.Status,
				IssueDate:    parseXeroDate(q.DateString),
				XeroID:       q.QuoteID,
			})
		}
	}
	return out, nil
}

package teamwork

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"opsdesk/config"
	"opsdesk/models"
)

// Client fetches tickets from the Teamwork Desk API. Auth is the API key
// as basic-auth username, per the Desk docs.
type Client struct {
	cfg        *config.Config
	log        *zap.Logger
	HTTPClient *http.Client
}

func NewClient(cfg *config.Config, log *zap.Logger) *Client {
	return &Client{
		cfg: cfg,
		log: log,
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// FetchTickets pages through /desk/api/v2/tickets.json and maps the wire
// tickets onto the local model. Statuses other than active/open map to
// closed.
func (c *Client) FetchTickets(ctx context.Context) ([]models.Ticket, error) {
	out := []models.Ticket{}
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/desk/api/v2/tickets.json?page=%d&pageSize=100", strings.TrimRight(c.cfg.TeamworkBaseURL, "/"), page)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.SetBasicAuth(c.cfg.TeamworkAPIKey, "")

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			resp.Body.Close()
			return nil, fmt.Errorf("teamwork: status %d: %s", resp.StatusCode, string(detail))
		}

		var payload ticketsResponse
		err = json.NewDecoder(resp.Body).Decode(&payload)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}

		for _, t := range payload.Tickets {
			out = append(out, mapTicket(t))
		}
		if !payload.Pagination.HasMore || len(payload.Tickets) == 0 {
			break
		}
	}
	c.log.Info("Fetched tickets from Teamwork", zap.Int("count", len(out)))
	return out, nil
}

func mapTicket(t wireTicket) models.Ticket {
	status := "closed"
	switch strings.ToLower(t.Status) {
	case "active", "open", "waiting":
		status = "open"
	}
	return models.Ticket{
		TicketID:     strconv.FormatInt(t.ID, 10),
		Subject:      t.Subject,
		Status:       status,
		Source:       "teamwork",
		CustomerName: strings.TrimSpace(t.Customer.FirstName + " " + t.Customer.LastName),
		AssignedTo:   strings.TrimSpace(t.Agent.FirstName + " " + t.Agent.LastName),
	}
}

package teamwork

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"

	"go.uber.org/zap"

	"opsdesk/config"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func testClient(rt roundTripFunc) *Client {
	c := NewClient(&config.Config{
		TeamworkBaseURL: "https://example.teamwork.com",
		TeamworkAPIKey:  "tw-key",
	}, zap.NewNop())
	c.HTTPClient = &http.Client{Transport: rt}
	return c
}

func TestFetchTicketsPaging(t *testing.T) {
	page1 := `{
		"tickets": [
			{"id": 101, "subject": "Aircon down", "status": "active",
			 "customer": {"firstName": "Jane", "lastName": "Doe"},
			 "agent": {"firstName": "Sam", "lastName": "Lee"}}
		],
		"pagination": {"page": 1, "pages": 2, "hasMore": true}
	}`
	page2 := `{
		"tickets": [
			{"id": 102, "subject": "Invoice query", "status": "solved",
			 "customer": {"firstName": "John", "lastName": "Roe"},
			 "agent": {}}
		],
		"pagination": {"page": 2, "pages": 2, "hasMore": false}
	}`

	var requests []string
	client := testClient(func(req *http.Request) (*http.Response, error) {
		requests = append(requests, req.URL.String())
		user, _, ok := req.BasicAuth()
		if !ok || user != "tw-key" {
			t.Errorf("expected API key as basic-auth user, got %q", user)
		}
		switch req.URL.Query().Get("page") {
		case "1":
			return jsonResponse(http.StatusOK, page1), nil
		case "2":
			return jsonResponse(http.StatusOK, page2), nil
		default:
			return jsonResponse(http.StatusNotFound, `{}`), nil
		}
	})

	tickets, err := client.FetchTickets(context.Background())
	if err != nil {
		t.Fatalf("FetchTickets returned error: %v", err)
	}
	if len(requests) != 2 {
		t.Fatalf("expected 2 page requests, got %d: %v", len(requests), requests)
	}
	if len(tickets) != 2 {
		t.Fatalf("expected 2 tickets, got %d", len(tickets))
	}

	first := tickets[0]
	if first.TicketID != "101" {
		t.Errorf("TicketID = %q, want 101", first.TicketID)
	}
	if first.Status != "open" {
		t.Errorf("active should map to open, got %q", first.Status)
	}
	if first.Source != "teamwork" {
		t.Errorf("Source = %q, want teamwork", first.Source)
	}
	if first.CustomerName != "Jane Doe" {
		t.Errorf("CustomerName = %q, want Jane Doe", first.CustomerName)
	}
	if first.AssignedTo != "Sam Lee" {
		t.Errorf("AssignedTo = %q, want Sam Lee", first.AssignedTo)
	}

	second := tickets[1]
	if second.Status != "closed" {
		t.Errorf("solved should map to closed, got %q", second.Status)
	}
	if second.AssignedTo != "" {
		t.Errorf("empty agent should map to empty AssignedTo, got %q", second.AssignedTo)
	}
}

func TestFetchTicketsAPIError(t *testing.T) {
	client := testClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusUnauthorized, `{"error":"bad key"}`), nil
	})

	_, err := client.FetchTickets(context.Background())
	if err == nil {
		t.Fatal("expected error on 401, got nil")
	}
}

func TestFetchTicketsTransportError(t *testing.T) {
	client := testClient(func(req *http.Request) (*http.Response, error) {
		return nil, fmt.Errorf("connection refused")
	})

	if _, err := client.FetchTickets(context.Background()); err == nil {
		t.Fatal("expected transport error to propagate, got nil")
	}
}

func TestMapTicketStatuses(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"active", "open"},
		{"Open", "open"},
		{"WAITING", "open"},
		{"solved", "closed"},
		{"spam", "closed"},
		{"", "closed"},
	}

	for _, tc := range tests {
		got := mapTicket(wireTicket{ID: 1, Status: tc.in})
		if got.Status != tc.want {
			t.Errorf("mapTicket status %q = %q, want %q", tc.in, got.Status, tc.want)
		}
	}
}

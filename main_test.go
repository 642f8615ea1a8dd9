package main

import (
	"encoding/json"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestMatchFromConfirmRequest(t *testing.T) {
	req := confirmMatchRequest{
		TicketID:      "T-42",
		QuoteNumber:   strPtr("Q-7"),
		MatchScore:    0.82,
		ConfirmedBy:   "reviewer@example.com",
		Confidence:    "",
		InvoiceNumber: nil,
	}

	match := matchFromConfirmRequest(req)

	if match.TicketID != "T-42" || match.QuoteNumber != "Q-7" {
		t.Errorf("identity fields wrong: %+v", match)
	}
	if match.InvoiceNumber != "" {
		t.Errorf("nil invoice number should map to empty string, got %q", match.InvoiceNumber)
	}
	if match.Confidence != "high" {
		t.Errorf("confidence should derive from score when omitted, got %q", match.Confidence)
	}
	if len(match.Evidence) != 0 {
		t.Errorf("no evidence in request should leave the column empty, got %s", match.Evidence)
	}
}

func TestMatchFromConfirmRequestKeepsExplicitConfidence(t *testing.T) {
	match := matchFromConfirmRequest(confirmMatchRequest{
		TicketID:    "T-1",
		QuoteNumber: strPtr("Q-1"),
		MatchScore:  0.95,
		Confidence:  "medium", // reviewer override wins over the derived band
	})
	if match.Confidence != "medium" {
		t.Errorf("explicit confidence overridden: got %q", match.Confidence)
	}
}

func TestMatchFromConfirmRequestStoresEvidence(t *testing.T) {
	evidence := json.RawMessage(`{"subject_score":0.9,"name_score":0.4}`)
	match := matchFromConfirmRequest(confirmMatchRequest{
		TicketID:      "T-9",
		InvoiceNumber: strPtr("INV-3"),
		MatchScore:    0.75,
		Evidence:      evidence,
	})

	if string(match.Evidence) != string(evidence) {
		t.Errorf("evidence not stored verbatim: got %s", match.Evidence)
	}

	var decoded map[string]float64
	if err := json.Unmarshal(match.Evidence, &decoded); err != nil {
		t.Fatalf("stored evidence is not valid JSON: %v", err)
	}
	if decoded["subject_score"] != 0.9 {
		t.Errorf("evidence content mangled: %v", decoded)
	}
}

package services

import (
	"testing"

	"opsdesk/models"
)

func TestConfidenceForScore(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{1.0, "high"},
		{0.70, "high"}, // boundary is inclusive
		{0.699, "medium"},
		{0.40, "medium"}, // boundary is inclusive
		{0.399, "low"},
		{0.0, "low"},
	}

	for _, tc := range tests {
		if got := ConfidenceForScore(tc.score); got != tc.want {
			t.Errorf("ConfidenceForScore(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestEffectiveMinScore(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-1, DefaultMinScore},
		{-0.001, DefaultMinScore},
		{0, 0}, // explicit zero keeps every candidate
		{0.5, 0.5},
		{1, 1},
	}

	for _, tc := range tests {
		if got := effectiveMinScore(tc.in); got != tc.want {
			t.Errorf("effectiveMinScore(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeRef(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Ticket #1234!  ", "TICKET 1234"},
		{"INV-001/2024", "INV-001/2024"},
		{"Acme   Corp.", "ACME CORP."},
		{"", ""},
	}

	for _, tc := range tests {
		if got := normalizeRef(tc.in); got != tc.want {
			t.Errorf("normalizeRef(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestScoreReference(t *testing.T) {
	t.Run("identical strings score 1", func(t *testing.T) {
		if got := scoreReference("Acme Corp repairs", "Acme Corp repairs"); got < 0.999 {
			t.Errorf("identical strings scored %v", got)
		}
	})

	t.Run("disjoint strings score 0", func(t *testing.T) {
		if got := scoreReference("zzzz", "qqqq"); got != 0 {
			t.Errorf("disjoint strings scored %v", got)
		}
	})

	t.Run("partial overlap lands between", func(t *testing.T) {
		got := scoreReference("Acme Corp aircon repair", "Acme Corp plumbing")
		if got <= 0 || got >= 1 {
			t.Errorf("partial overlap scored %v, want in (0,1)", got)
		}
	})

	t.Run("bounded in unit interval", func(t *testing.T) {
		pairs := [][2]string{
			{"a", "a"},
			{"AB-1 AB-1 AB-1", "AB-1"},
			{"short", "a considerably longer reference string here"},
		}
		for _, p := range pairs {
			got := scoreReference(p[0], p[1])
			if got < 0 || got > 1 {
				t.Errorf("scoreReference(%q, %q) = %v, out of [0,1]", p[0], p[1], got)
			}
		}
	})
}

func TestDiceCoefficient(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "anything", 0},
		{"same", "same", 1},
		{"a", "b", 0}, // too short for bigrams
	}

	for _, tc := range tests {
		if got := diceCoefficient(tc.a, tc.b); got != tc.want {
			t.Errorf("diceCoefficient(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestScoreTicketDocumentDirectReference(t *testing.T) {
	ticket := models.Ticket{
		TicketID:     "7781",
		Subject:      "completely unrelated subject",
		CustomerName: "Nobody",
	}

	got := scoreTicketDocument(ticket, "Re: ticket 7781 follow-up", "Someone Else")
	if got != 0.99 {
		t.Errorf("reference containing the ticket id should score 0.99, got %v", got)
	}

	// Without the id in the reference, the blend applies and stays lower.
	got = scoreTicketDocument(ticket, "Re: follow-up", "Someone Else")
	if got >= 0.99 {
		t.Errorf("blended score unexpectedly reached %v", got)
	}
}

func TestScoreTicketDocumentBlend(t *testing.T) {
	ticket := models.Ticket{
		TicketID:     "T-1",
		Subject:      "Aircon repair Acme warehouse",
		CustomerName: "Acme Corp",
	}

	strong := scoreTicketDocument(ticket, "Aircon repair Acme warehouse", "Acme Corp")
	weak := scoreTicketDocument(ticket, "Plumbing quote", "Globex")
	if strong <= weak {
		t.Errorf("strong candidate (%v) should outscore weak one (%v)", strong, weak)
	}
	if strong < 0.9 {
		t.Errorf("near-exact candidate scored only %v", strong)
	}
}

func TestSortCandidates(t *testing.T) {
	in := []MatchCandidate{
		{TicketID: "B", QuoteNumber: "Q-2", MatchScore: 0.5},
		{TicketID: "A", QuoteNumber: "Q-9", MatchScore: 0.5},
		{TicketID: "A", QuoteNumber: "Q-1", MatchScore: 0.5},
		{TicketID: "C", QuoteNumber: "Q-3", MatchScore: 0.8},
	}

	sortCandidates(in)

	wantOrder := []string{"Q-3", "Q-1", "Q-9", "Q-2"}
	for i, want := range wantOrder {
		if in[i].QuoteNumber != want {
			t.Fatalf("position %d: got %s, want %s (order: %+v)", i, in[i].QuoteNumber, want, in)
		}
	}
}

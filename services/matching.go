package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"opsdesk/models"
)

// Confidence band boundaries. GetMatchingStats recomputes bands from the
// stored scores through the same function, so the two surfaces can never
// disagree.
const (
	ConfidenceHighThreshold   = 0.70
	ConfidenceMediumThreshold = 0.40

	// DefaultMinScore is the candidate cutoff when the caller passes none.
	DefaultMinScore = 0.3

	// Score assigned when a quote/invoice reference names the ticket id
	// verbatim. Treated as a near-certain match, same as a code hit.
	directReferenceScore = 0.99
)

// ConfidenceForScore maps a match score onto the three-band classification.
func ConfidenceForScore(score float64) string {
	switch {
	case score >= ConfidenceHighThreshold:
		return "high"
	case score >= ConfidenceMediumThreshold:
		return "medium"
	default:
		return "low"
	}
}

// MatchCandidate is one proposed ticket/quote/invoice association. Nothing
// is persisted until a human confirms it via the confirm endpoint.
type MatchCandidate struct {
	TicketID      string  `json:"ticketid"`
	QuoteNumber   string  `json:"quote_number,omitempty"`
	InvoiceNumber string  `json:"invoice_number,omitempty"`
	MatchScore    float64 `json:"match_score"`
	Confidence    string  `json:"confidence"`
}

// MatchingStats summarizes the stored (confirmed) matches.
type MatchingStats struct {
	Total           int        `json:"total"`
	High            int        `json:"high"`
	Medium          int        `json:"medium"`
	Low             int        `json:"low"`
	AverageScore    float64    `json:"average_score"`
	LastConfirmedAt *time.Time `json:"last_confirmed_at,omitempty"`
}

// MatchService scores open tickets against quotes and invoices.
type MatchService struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

func NewMatchService(db *gorm.DB, logger *zap.Logger) *MatchService {
	return &MatchService{DB: db, Logger: logger}
}

// effectiveMinScore substitutes the default cutoff only for a negative
// input. Zero is a legitimate explicit cutoff that keeps every candidate.
func effectiveMinScore(v float64) float64 {
	if v < 0 {
		return DefaultMinScore
	}
	return v
}

// FindTicketQuoteMatches scans all open tickets against all quotes and
// invoices and returns candidates scoring at least minScore, sorted by
// descending score (ties broken by ticket id, quote number, invoice
// number). Pass a negative minScore for the default cutoff. Read-only;
// nothing is written.
func (s *MatchService) FindTicketQuoteMatches(ctx context.Context, minScore float64) ([]MatchCandidate, error) {
	minScore = effectiveMinScore(minScore)

	var tickets []models.Ticket
	if err := s.DB.WithContext(ctx).Where("status = ?", "open").Find(&tickets).Error; err != nil {
		s.Logger.Error("Failed to load open tickets for matching", zap.Error(err))
		return nil, err
	}
	var quotes []models.Quote
	if err := s.DB.WithContext(ctx).Find(&quotes).Error; err != nil {
		s.Logger.Error("Failed to load quotes for matching", zap.Error(err))
		return nil, err
	}
	var invoices []models.Invoice
	if err := s.DB.WithContext(ctx).Find(&invoices).Error; err != nil {
		s.Logger.Error("Failed to load invoices for matching", zap.Error(err))
		return nil, err
	}

	invoiceByQuote := make(map[string]models.Invoice, len(invoices))
	for _, inv := range invoices {
		if inv.QuoteNumber != "" {
			invoiceByQuote[inv.QuoteNumber] = inv
		}
	}

	out := []MatchCandidate{}
	for _, t := range tickets {
		for _, q := range quotes {
			score := scoreTicketDocument(t, q.Reference, q.CustomerName)
			if score < minScore {
				continue
			}
			cand := MatchCandidate{
				TicketID:    t.TicketID,
				QuoteNumber: q.Number,
				MatchScore:  score,
				Confidence:  ConfidenceForScore(score),
			}
			if inv, ok := invoiceByQuote[q.Number]; ok {
				cand.InvoiceNumber = inv.Number
			}
			out = append(out, cand)
		}

		// Invoices without a quote reference are matched directly.
		for _, inv := range invoices {
			if inv.QuoteNumber != "" {
				continue
			}
			score := scoreTicketDocument(t, inv.Reference, inv.CustomerName)
			if score < minScore {
				continue
			}
			out = append(out, MatchCandidate{
				TicketID:      t.TicketID,
				InvoiceNumber: inv.Number,
				MatchScore:    score,
				Confidence:    ConfidenceForScore(score),
			})
		}
	}

	sortCandidates(out)
	return out, nil
}

// scoreTicketDocument compares a ticket with one quote/invoice. A reference
// naming the ticket id verbatim short-circuits to a near-certain score;
// otherwise subject and customer name are blended.
func scoreTicketDocument(t models.Ticket, reference, customerName string) float64 {
	if t.TicketID != "" && reference != "" &&
		strings.Contains(normalizeRef(reference), normalizeRef(t.TicketID)) {
		return directReferenceScore
	}

	refScore := scoreReference(t.Subject, reference)
	nameScore := scoreReference(t.CustomerName, customerName)
	if nameScore > refScore {
		refScore, nameScore = nameScore, refScore
	}
	return 0.7*refScore + 0.3*nameScore
}

// GetMatchingStats aggregates the stored matches per confidence band. Pure
// read; bands are derived from the stored scores with ConfidenceForScore.
func (s *MatchService) GetMatchingStats(ctx context.Context) (*MatchingStats, error) {
	var scores []float64
	if err := s.DB.WithContext(ctx).Model(&models.Match{}).Pluck("match_score", &scores).Error; err != nil {
		s.Logger.Error("Failed to load match scores for stats", zap.Error(err))
		return nil, err
	}

	stats := &MatchingStats{Total: len(scores)}
	sum := 0.0
	for _, score := range scores {
		sum += score
		switch ConfidenceForScore(score) {
		case "high":
			stats.High++
		case "medium":
			stats.Medium++
		default:
			stats.Low++
		}
	}
	if stats.Total > 0 {
		stats.AverageScore = sum / float64(stats.Total)
	}

	var latest models.Match
	err := s.DB.WithContext(ctx).Order("updated_at desc").First(&latest).Error
	if err == nil {
		stats.LastConfirmedAt = &latest.UpdatedAt
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return stats, nil
}

package xero

import "time"

// Wire types for the Xero Accounting API. Only what the sync consumes.

type invoicesResponse struct {
	Invoices []wireInvoice `json:"Invoices"`
}

type wireInvoice struct {
	InvoiceID     string  `json:"InvoiceID"`
	InvoiceNumber string  `json:"InvoiceNumber"`
	Reference     string  `json:"Reference"`
	Contact       contact `json:"Contact"`
	Total         float64 `json:"Total"`
	AmountDue     float64 `json:"AmountDue"`
	CurrencyCode  string  `json:"CurrencyCode"`
	Status        string  `json:"Status"`
	DateString    string  `json:"DateString"`
	DueDateString string  `json:"DueDateString"`
}

type quotesResponse struct {
	Quotes []wireQuote `json:"Quotes"`
}

type wireQuote struct {
	QuoteID     string  `json:"QuoteID"`
	QuoteNumber string  `json:"QuoteNumber"`
	Reference   string  `json:"Reference"`
	Contact     contact `json:"Contact"`
	Total       float64 `json:"Total"`
	Status      string  `json:"Status"`
	DateString  string  `json:"DateString"`
}

type contact struct {
	Name string `json:"Name"`
}

type wireConnection struct {
	TenantID   string `json:"tenantId"`
	TenantName string `json:"tenantName"`
	TenantType string `json:"tenantType"`
}

// Xero date strings look like "2024-01-31T00:00:00".
func parseXeroDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	d, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		return nil
	}
	return &d
}

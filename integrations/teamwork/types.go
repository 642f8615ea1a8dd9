package teamwork

// Wire types for the Teamwork Desk v2 API. Only the fields the sync needs.

type ticketsResponse struct {
	Tickets    []wireTicket `json:"tickets"`
	Pagination struct {
		Page    int  `json:"page"`
		Pages   int  `json:"pages"`
		HasMore bool `json:"hasMore"`
	} `json:"pagination"`
}

type wireTicket struct {
	ID       int64  `json:"id"`
	Subject  string `json:"subject"`
	Status   string `json:"status"`
	Customer struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	} `json:"customer"`
	Agent struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	} `json:"agent"`
}

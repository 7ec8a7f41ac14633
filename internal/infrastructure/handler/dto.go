package handler

// WebhookResponse is returned for every accepted webhook delivery
type WebhookResponse struct {
	OK      bool `json:"ok"`
	Ignored bool `json:"ignored,omitempty"`
}

// SupporterResponse is one recent supporter in the display currency
type SupporterResponse struct {
	Name      string `json:"name"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// SummaryResponse represents the response for the summary endpoint
type SummaryResponse struct {
	Currency         string              `json:"currency"`
	TotalAmount      int64               `json:"totalAmount"`
	SupportersCount  int64               `json:"supportersCount"`
	RecentSupporters []SupporterResponse `json:"recentSupporters"`
	LastUpdatedIso   string              `json:"lastUpdatedIso"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error       string `json:"error"`
	Status      int    `json:"status"`
	Description string `json:"description,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

package http

// WebhookResponse is the envelope returned by the webhook endpoint.
type WebhookResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	Code          string `json:"code,omitempty"`
	Outcome       string `json:"outcome,omitempty"`
	BasketID      string `json:"basket_id,omitempty"`
	RecordKey     string `json:"challan_id,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	StatusCode    string `json:"err_code,omitempty"`
	Deferred      bool   `json:"deferred,omitempty"`

	// Set only when the validation hash does not match.
	ComputedHash string `json:"computed_hash,omitempty"`
	ReceivedHash string `json:"received_hash,omitempty"`
}

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Store     string            `json:"store"`
	Endpoints []string          `json:"endpoints"`
	Checks    map[string]string `json:"checks"`
}

package model

// StatusSuccess is the status reported with every successful prediction.
const StatusSuccess = "success"

// Result is the body returned for a successful prediction.
type Result struct {
	DelayMinutes float64 `json:"delay_minutes"`
	Status       string  `json:"status"`
	Note         string  `json:"note,omitempty"`
}

// ErrorResponse is the body returned for any failed request.
type ErrorResponse struct {
	Error         string   `json:"error"`
	MissingFields []string `json:"missing_fields,omitempty"`
}

package api

// Error payloads. Conflict responses carry regenerate=true so the client
// discards its stale slot list and re-requests availability for the date.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type ConflictResponse struct {
	Error      string `json:"error"`
	Regenerate bool   `json:"regenerate"`
}

// Admin
type SaveRuleRequest struct {
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Enabled   bool   `json:"enabled"`
}

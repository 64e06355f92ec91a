package models

import "strings"

// Result type tags.
const (
	ResultTypeMetric = "metric"
	ResultTypeTable  = "table"
)

// QueryRequest is the body of POST /api/query. Question is a pointer so a
// missing key fails binding while an empty string reaches the service.
type QueryRequest struct {
	Question *string `json:"question" binding:"required"`
}

// Normalize trims whitespace from the question
func (r *QueryRequest) Normalize() string {
	if r.Question == nil {
		return ""
	}
	q := strings.TrimSpace(*r.Question)
	r.Question = &q
	return q
}

// QueryResult is the payload of a successful analysis.
type QueryResult struct {
	SQLQuery string           `json:"sql_query"`
	Data     []map[string]any `json:"data"`
	Type     string           `json:"type"`
	Insights string           `json:"insights"`
	RowCount int              `json:"row_count"`
}

// QueryResponse is the envelope returned by POST /api/query.
type QueryResponse struct {
	Success bool         `json:"success"`
	Result  *QueryResult `json:"result,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// Succeeded builds a success envelope.
func Succeeded(result *QueryResult) QueryResponse {
	return QueryResponse{Success: true, Result: result}
}

// Failed builds a failure envelope carrying msg.
func Failed(msg string) QueryResponse {
	return QueryResponse{Success: false, Error: msg}
}

// GenerationSummary counts the rows created by one sample data run.
type GenerationSummary struct {
	Users         int `json:"users"`
	Events        int `json:"events"`
	Subscriptions int `json:"subscriptions"`
}

// InitResult reports what InitializeDatabase did.
type InitResult struct {
	AlreadyInitialized bool
	UserCount          int64
	Generated          *GenerationSummary
}

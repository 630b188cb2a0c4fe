package backend

import (
	"net/http"

	"github.com/tidwall/gjson"
)

// MemoryQueryResult is the backend's answer to a memory lookup. Topic is
// empty when the backend did not classify the query.
type MemoryQueryResult struct {
	Message      string   `json:"message"`
	Topic        string   `json:"topic,omitempty"`
	Memories     []string `json:"memories"`
	TotalResults *int     `json:"total_results,omitempty"`
}

type StoreMemoryRequest struct {
	Query             string `json:"query"`
	AssistantResponse string `json:"assistant_response"`
}

type StoreMemoryResult struct {
	Message string `json:"message,omitempty"`
}

// APIError is a non-2xx backend response.
type APIError struct {
	StatusCode int
	StatusText string
	// Detail is the backend's {"detail": ...} field, empty when absent.
	Detail string
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status, StatusText: http.StatusText(status)}
	if gjson.ValidBytes(body) {
		if d := gjson.GetBytes(body, "detail"); d.Exists() && d.Type != gjson.Null {
			e.Detail = d.String()
		}
	}
	return e
}

// Message prefers the backend detail and falls back to the status text.
func (e *APIError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.StatusText
}

func (e *APIError) Error() string {
	return "Backend API error: " + e.Message()
}

package api

import (
	"fmt"

	"github.com/goccy/go-json"
)

// RequestError is a command or snapshot request that failed: a transport
// failure, a non-2xx response, or a 200 body carrying an error field.
type RequestError struct {
	Op         string
	StatusCode int // 0 when no response was received
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.StatusCode >= 300:
		if e.Message != "" {
			return fmt.Sprintf("%s: server returned %d: %s", e.Op, e.StatusCode, e.Message)
		}
		return fmt.Sprintf("%s: server returned %d", e.Op, e.StatusCode)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
}

func (e *RequestError) Unwrap() error { return e.Err }

// DecodeError is a response body that does not match the expected shape.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// errorBody covers both the FastAPI {"detail": ...} shape and the
// {"error": "..."} bodies the server returns with status 200.
type errorBody struct {
	Error  string          `json:"error"`
	Detail json.RawMessage `json:"detail"`
}

func (b errorBody) message() string {
	if b.Error != "" {
		return b.Error
	}
	if len(b.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(b.Detail, &s); err == nil {
		return s
	}
	return string(b.Detail)
}

func parseErrorBody(body []byte) string {
	var b errorBody
	if err := json.Unmarshal(body, &b); err != nil {
		return ""
	}
	return b.message()
}

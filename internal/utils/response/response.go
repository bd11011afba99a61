// Package response provides helpers for writing HTTP responses from the
// JSON handlers.
//
// Success responses carry the resource itself. The resource endpoints
// answer every other outcome of the store (absent record, empty result,
// store failure) with a bare status code and no body; only requests the
// server cannot even interpret (bad id, malformed JSON, missing query
// parameter) get the error envelope below.
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Response is the envelope returned for malformed requests:
//
//	{ "status": "error", "error": "field Title is required" }
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// Order matters: Header() → WriteHeader() → body writes. Once WriteHeader
// is called, headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteStatus writes only the status line, with no body and no
// Content-Type.
func WriteStatus(w http.ResponseWriter, status int) {
	w.WriteHeader(status)
}

// GeneralError wraps any Go error into the standard Response shape.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ValidationError converts validator.ValidationErrors into a single
// human-readable Response, one sentence per failing field joined by ", ".
func ValidationError(errs validator.ValidationErrors) Response {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Response{
		Status: StatusError,
		Error:  strings.Join(errMessages, ", "),
	}
}

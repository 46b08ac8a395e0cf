// Package httputil holds the JSON response helpers shared by all HTTP
// handlers: one envelope for successes, one for errors.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "github.com/geekskaran/cattel/pkg/domain-errors"
)

type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// WriteJSON writes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err to its HTTP status and writes the error
// envelope. Internal errors hide their message from the caller.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := errorBody{Error: string(code)}
	if code != dErrors.CodeInternal {
		body.Description = dErrors.MessageOf(err)
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), body)
}

// Decode parses the request body into T. A malformed or oversized body
// yields a bad_request error ready for WriteError.
func Decode[T any](r *http.Request) (T, error) {
	var payload T
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		return payload, dErrors.New(dErrors.CodeBadRequest, "malformed request body")
	}
	return payload, nil
}

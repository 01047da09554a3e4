package http

import (
	"encoding/json"
	"net/http"
)

// Response is the envelope every endpoint answers with. Errors is always
// present; Data is null on failure.
type Response struct {
	Data   any      `json:"data"`
	Errors []string `json:"errors"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The header is already sent; nothing useful can be done on failure.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData wraps data in the envelope.
func WriteData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Response{Data: data, Errors: []string{}})
}

// WriteSuccess writes a 200 envelope around data.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteData(w, http.StatusOK, data)
}

// WriteCreated writes a 201 envelope around data.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteData(w, http.StatusCreated, data)
}

// WriteErrors writes an envelope carrying only error messages.
func WriteErrors(w http.ResponseWriter, status int, messages ...string) {
	if messages == nil {
		messages = []string{}
	}
	WriteJSON(w, status, Response{Errors: messages})
}

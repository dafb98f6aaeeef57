package middleware

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ErrorKind string `json:"errorKind,omitempty"`
}

// writeJSONError writes the standard failure envelope with the correct Content-Type.
func writeJSONError(w http.ResponseWriter, status int, kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Message: msg, ErrorKind: kind})
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/workforce-verify/internal/domain"
)

// Envelope is the response wrapper for every verification-facing route.
type Envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	UserID    string `json:"userId,omitempty"`
	ErrorKind string `json:"errorKind,omitempty"`
	Service   string `json:"service,omitempty"`
}

// Error kinds reported in Envelope.ErrorKind.
const (
	KindInvalidRequest = "invalid_request"
	KindMalformedCode  = "malformed_code"
	KindNoActiveCode   = "no_active_code"
	KindExpired        = "expired"
	KindMismatch       = "mismatch"
	KindUserNotFound   = "user_not_found"
	KindNotFound       = "not_found"
	KindConflict       = "conflict"
	KindDirectoryWrite = "directory_write_failure"
	KindDelivery       = "delivery_failure"
	KindInternal       = "internal"
)

type errorClass struct {
	target  error
	status  int
	kind    string
	message string
	echo    bool // prefer the detail wrapped after the sentinel
}

// errorClasses is checked in order; the first errors.Is match wins.
var errorClasses = []errorClass{
	{domain.ErrMalformedCode, http.StatusBadRequest, KindMalformedCode, "Invalid verification code format", true},
	{domain.ErrUserNotFound, http.StatusNotFound, KindUserNotFound, "User not found", false},
	{domain.ErrNoActiveCode, http.StatusBadRequest, KindNoActiveCode, "No verification code found. Please request a new code.", false},
	{domain.ErrCodeExpired, http.StatusBadRequest, KindExpired, "Verification code has expired. Please request a new code.", false},
	{domain.ErrCodeMismatch, http.StatusBadRequest, KindMismatch, "Invalid verification code", false},
	{domain.ErrDeliveryFailed, http.StatusBadGateway, KindDelivery, "Failed to send verification email", false},
	{domain.ErrDirectoryWrite, http.StatusInternalServerError, KindDirectoryWrite, "Failed to update user record", false},
	{domain.ErrConflict, http.StatusConflict, KindConflict, "Email already registered", false},
	{domain.ErrNotFound, http.StatusNotFound, KindNotFound, "Not found", false},
}

// classify maps a service error to its HTTP status, kind and client message.
// Bad requests echo the validation detail; anything unknown is internal.
func classify(err error) (int, string, string) {
	for _, c := range errorClasses {
		if errors.Is(err, c.target) {
			if d, ok := detail(err, c.target); c.echo && ok {
				return c.status, c.kind, d
			}
			return c.status, c.kind, c.message
		}
	}
	if errors.Is(err, domain.ErrBadRequest) {
		if d, ok := detail(err, domain.ErrBadRequest); ok {
			return http.StatusBadRequest, KindInvalidRequest, d
		}
		return http.StatusBadRequest, KindInvalidRequest, "Invalid request"
	}
	return http.StatusInternalServerError, KindInternal, "Internal server error"
}

// detail returns the text wrapped directly after sentinel as "<sentinel>: <detail>".
func detail(err, sentinel error) (string, bool) {
	d, ok := strings.CutPrefix(err.Error(), sentinel.Error()+": ")
	return d, ok && d != ""
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, Envelope{Message: msg, ErrorKind: kind})
}

// writeServiceError writes the classified failure envelope. userID is kept so
// a client can continue after a partial success.
func writeServiceError(w http.ResponseWriter, err error, userID string) {
	status, kind, msg := classify(err)
	writeJSON(w, status, Envelope{Message: msg, ErrorKind: kind, UserID: userID})
}

// decode reads a JSON body into v, rejecting unknown fields.
func decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

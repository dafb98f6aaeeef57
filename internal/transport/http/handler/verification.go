package handler

import (
	"net/http"

	"github.com/workforce-verify/internal/application/verification"
	"github.com/workforce-verify/internal/pkg/validate"
)

// VerificationHandler exposes code issuance and validation.
type VerificationHandler struct {
	svc verification.Service
}

func NewVerificationHandler(svc verification.Service) *VerificationHandler {
	return &VerificationHandler{svc: svc}
}

type issueRequest struct {
	Email string `json:"email"`
}

type validateRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (h *VerificationHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, KindInvalidRequest, "invalid request body")
		return
	}
	email, err := validate.NormalizeEmail(req.Email)
	if err != nil {
		writeError(w, http.StatusBadRequest, KindInvalidRequest, "A valid email is required")
		return
	}
	res, err := h.svc.Issue(r.Context(), email)
	if err != nil {
		writeServiceError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, Envelope{
		Success: true,
		Message: "Verification code sent successfully",
		Service: res.Service,
	})
}

func (h *VerificationHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, KindInvalidRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Code == "" {
		writeError(w, http.StatusBadRequest, KindInvalidRequest, "Email and verification code are required")
		return
	}
	res, err := h.svc.Validate(r.Context(), req.Email, req.Code)
	if err != nil {
		writeServiceError(w, err, "")
		return
	}
	msg := "Email verified successfully"
	if res.AlreadyVerified {
		msg = "Email already verified"
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: msg, UserID: res.UserID})
}

package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/workforce-verify/internal/application/verification"
	"github.com/workforce-verify/internal/domain"
	"github.com/workforce-verify/internal/infrastructure/mail"
	"github.com/workforce-verify/internal/pkg/validate"
)

type testMailer interface {
	Send(ctx context.Context, msg mail.Message) (mail.DeliveryResult, error)
}

// AdminHandler serves operator-only endpoints.
type AdminHandler struct {
	verifications verification.Service
	mailer        testMailer
	productName   string
	now           func() time.Time
}

func NewAdminHandler(verifications verification.Service, mailer testMailer, productName string) *AdminHandler {
	return &AdminHandler{verifications: verifications, mailer: mailer, productName: productName, now: time.Now}
}

// verificationStatus is the audit view of a record.
type verificationStatus struct {
	*domain.VerificationRecord
	Expired bool `json:"expired"`
}

// VerificationStatus returns the stored verification record for a user. The code is never included.
func (h *AdminHandler) VerificationStatus(w http.ResponseWriter, r *http.Request) {
	rec, err := h.verifications.Status(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, KindNotFound, "verification record not found")
			return
		}
		writeServiceError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, verificationStatus{
		VerificationRecord: rec,
		Expired:            !rec.Verified && rec.Expired(h.now()),
	})
}

// TestEmail sends a connectivity check through the configured provider.
func (h *AdminHandler) TestEmail(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, KindInvalidRequest, "invalid request body")
		return
	}
	to, err := validate.NormalizeEmail(req.Email)
	if err != nil {
		writeError(w, http.StatusBadRequest, KindInvalidRequest, err.Error())
		return
	}
	msg, err := mail.TestEmail(h.productName, to, h.now())
	if err != nil {
		writeServiceError(w, err, "")
		return
	}
	res, err := h.mailer.Send(r.Context(), msg)
	if err != nil {
		status, kind, text := classify(err)
		writeJSON(w, status, Envelope{Message: text, ErrorKind: kind, Service: res.Service})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

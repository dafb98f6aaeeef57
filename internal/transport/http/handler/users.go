package handler

import (
	"net/http"

	"github.com/workforce-verify/internal/application/user"
	"github.com/workforce-verify/internal/domain"
)

// UserHandler handles account registration.
type UserHandler struct {
	svc user.Service
}

func NewUserHandler(svc user.Service) *UserHandler { return &UserHandler{svc: svc} }

// Register creates the account and sends the first code. When the account is
// created but the code could not be sent, the failure envelope still carries userId.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, KindInvalidRequest, "invalid request body")
		return
	}
	res, err := h.svc.Register(r.Context(), req)
	if err != nil {
		userID := ""
		if res != nil {
			userID = res.UserID
		}
		writeServiceError(w, err, userID)
		return
	}
	env := Envelope{
		Success: true,
		Message: "Registration successful. Please check your email for a verification code.",
		UserID:  res.UserID,
	}
	if res.Issue != nil {
		env.Service = res.Issue.Service
	}
	writeJSON(w, http.StatusCreated, env)
}

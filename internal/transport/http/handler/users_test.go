package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/workforce-verify/internal/application/user"
	"github.com/workforce-verify/internal/application/verification"
	"github.com/workforce-verify/internal/domain"
)

func registerBody() map[string]string {
	return map[string]string{
		"first_name": "Alice",
		"last_name":  "Smith",
		"email":      "alice@x.com",
		"password":   "s3cret-pass",
		"company":    "Acme",
	}
}

func TestRegister_Created(t *testing.T) {
	svc := &mockUserSvc{}
	svc.On("Register", mock.Anything, mock.AnythingOfType("domain.RegisterRequest")).
		Return(&user.RegisterResult{UserID: "u1", Issue: &verification.IssueResult{Service: "smtp"}}, nil)

	rr := serve(NewUserHandler(svc).Register, http.MethodPost, "/v1/auth/register", jsonBody(t, registerBody()))
	assert.Equal(t, http.StatusCreated, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.True(t, env.Success)
	assert.Equal(t, "u1", env.UserID)
	assert.Equal(t, "smtp", env.Service)
}

func TestRegister_Conflict(t *testing.T) {
	svc := &mockUserSvc{}
	svc.On("Register", mock.Anything, mock.Anything).Return(nil, domain.ErrConflict)

	rr := serve(NewUserHandler(svc).Register, http.MethodPost, "/v1/auth/register", jsonBody(t, registerBody()))
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, KindConflict, decodeEnvelope(t, rr).ErrorKind)
}

func TestRegister_DeliveryFailureKeepsUserID(t *testing.T) {
	svc := &mockUserSvc{}
	svc.On("Register", mock.Anything, mock.Anything).Return(&user.RegisterResult{UserID: "u1"}, domain.ErrDeliveryFailed)

	rr := serve(NewUserHandler(svc).Register, http.MethodPost, "/v1/auth/register", jsonBody(t, registerBody()))
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	env := decodeEnvelope(t, rr)
	assert.False(t, env.Success)
	assert.Equal(t, "u1", env.UserID)
	assert.Equal(t, KindDelivery, env.ErrorKind)
}

func TestRegister_UnknownFieldRejected(t *testing.T) {
	svc := &mockUserSvc{}
	body := registerBody()
	body["role"] = "admin"
	rr := serve(NewUserHandler(svc).Register, http.MethodPost, "/v1/auth/register", jsonBody(t, body))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

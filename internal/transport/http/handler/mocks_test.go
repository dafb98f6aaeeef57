package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/workforce-verify/internal/application/user"
	"github.com/workforce-verify/internal/application/verification"
	"github.com/workforce-verify/internal/domain"
	"github.com/workforce-verify/internal/infrastructure/mail"
)

// --- mocks ---

type mockVerificationSvc struct{ mock.Mock }

func (m *mockVerificationSvc) Issue(ctx context.Context, email string) (*verification.IssueResult, error) {
	args := m.Called(ctx, email)
	if r, _ := args.Get(0).(*verification.IssueResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockVerificationSvc) Validate(ctx context.Context, email, code string) (*verification.ValidateResult, error) {
	args := m.Called(ctx, email, code)
	if r, _ := args.Get(0).(*verification.ValidateResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockVerificationSvc) Status(ctx context.Context, userID string) (*domain.VerificationRecord, error) {
	args := m.Called(ctx, userID)
	if r, _ := args.Get(0).(*domain.VerificationRecord); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockUserSvc struct{ mock.Mock }

func (m *mockUserSvc) Register(ctx context.Context, req domain.RegisterRequest) (*user.RegisterResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*user.RegisterResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) Send(ctx context.Context, msg mail.Message) (mail.DeliveryResult, error) {
	args := m.Called(ctx, msg)
	return args.Get(0).(mail.DeliveryResult), args.Error(1)
}

// --- helpers ---

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func serve(h http.HandlerFunc, method, target string, body *bytes.Buffer) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	return env
}

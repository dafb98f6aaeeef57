package user

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/workforce-verify/internal/application/verification"
	"github.com/workforce-verify/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockLookup struct{ mock.Mock }

func (m *mockLookup) FindByEmail(ctx context.Context, email string) (*domain.UserIdentity, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.UserIdentity); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockIdentities struct{ mock.Mock }

func (m *mockIdentities) Put(ctx context.Context, u *domain.UserIdentity) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockIdentities) Delete(ctx context.Context, userID, email string) error {
	return m.Called(ctx, userID, email).Error(0)
}

type mockProfiles struct{ mock.Mock }

func (m *mockProfiles) CreateWithCompany(ctx context.Context, p *domain.UserProfile) error {
	return m.Called(ctx, p).Error(0)
}

type mockIssuer struct{ mock.Mock }

func (m *mockIssuer) Issue(ctx context.Context, email string) (*verification.IssueResult, error) {
	args := m.Called(ctx, email)
	if r, _ := args.Get(0).(*verification.IssueResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

type mocks struct {
	lookup     *mockLookup
	identities *mockIdentities
	profiles   *mockProfiles
	issuer     *mockIssuer
}

func newService() (Service, *mocks) {
	m := &mocks{&mockLookup{}, &mockIdentities{}, &mockProfiles{}, &mockIssuer{}}
	return NewService(ServiceDeps{
		Lookup:     m.lookup,
		Identities: m.identities,
		Profiles:   m.profiles,
		Issuer:     m.issuer,
	}), m
}

func validReq() domain.RegisterRequest {
	return domain.RegisterRequest{
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     " Alice@X.com",
		Password:  "s3cret-pass",
		Company:   "Acme",
	}
}

// --- tests ---

func TestRegister_Success(t *testing.T) {
	svc, m := newService()
	m.lookup.On("FindByEmail", mock.Anything, "alice@x.com").Return(nil, domain.ErrUserNotFound)

	var stored *domain.UserIdentity
	m.identities.On("Put", mock.Anything, mock.AnythingOfType("*domain.UserIdentity")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.UserIdentity) }).
		Return(nil)
	m.profiles.On("CreateWithCompany", mock.Anything, mock.MatchedBy(func(p *domain.UserProfile) bool {
		return p.Role == domain.RoleAdmin && p.CompanyName == "Acme" && p.FullName == "Alice Smith"
	})).Return(nil)
	m.issuer.On("Issue", mock.Anything, "alice@x.com").Return(&verification.IssueResult{Service: "sendgrid"}, nil)

	res, err := svc.Register(context.Background(), validReq())
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, stored.UserID, res.UserID)
	assert.Equal(t, "sendgrid", res.Issue.Service)

	assert.Equal(t, "alice@x.com", stored.Email)
	assert.False(t, stored.EmailVerified())
	assert.Equal(t, "Acme", stored.Metadata.String(domain.MetaCompany))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret-pass")))
	m.profiles.AssertExpectations(t)
}

func TestRegister_ValidationError(t *testing.T) {
	svc, m := newService()
	req := validReq()
	req.Password = "short"

	_, err := svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	m.lookup.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, m := newService()
	m.lookup.On("FindByEmail", mock.Anything, "alice@x.com").Return(&domain.UserIdentity{UserID: "u1"}, nil)

	_, err := svc.Register(context.Background(), validReq())
	assert.ErrorIs(t, err, domain.ErrConflict)
	m.identities.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestRegister_LookupFailureAborts(t *testing.T) {
	svc, m := newService()
	m.lookup.On("FindByEmail", mock.Anything, "alice@x.com").Return(nil, domain.ErrDirectoryRead)

	_, err := svc.Register(context.Background(), validReq())
	assert.ErrorIs(t, err, domain.ErrDirectoryRead)
	m.identities.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestRegister_ProfileFailureIsFatal(t *testing.T) {
	svc, m := newService()
	m.lookup.On("FindByEmail", mock.Anything, "alice@x.com").Return(nil, domain.ErrUserNotFound)
	var stored *domain.UserIdentity
	m.identities.On("Put", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.UserIdentity) }).
		Return(nil)
	m.identities.On("Delete", mock.Anything, mock.Anything, "alice@x.com").Return(nil)
	m.profiles.On("CreateWithCompany", mock.Anything, mock.Anything).Return(errors.New("relation does not exist"))

	res, err := svc.Register(context.Background(), validReq())
	assert.Error(t, err)
	assert.Nil(t, res)
	m.issuer.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
	m.identities.AssertCalled(t, "Delete", mock.Anything, stored.UserID, "alice@x.com")
}

// Two registrations racing past the lookup: the directory refuses the second
// identity for the same email, so nothing is left behind.
func TestRegister_ConcurrentDuplicateRejectedByDirectory(t *testing.T) {
	svc, m := newService()
	m.lookup.On("FindByEmail", mock.Anything, "alice@x.com").Return(nil, domain.ErrUserNotFound)
	m.identities.On("Put", mock.Anything, mock.Anything).
		Return(fmt.Errorf("email alice@x.com already registered: %w", domain.ErrConflict))

	res, err := svc.Register(context.Background(), validReq())
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Nil(t, res)
	m.profiles.AssertNotCalled(t, "CreateWithCompany", mock.Anything, mock.Anything)
	m.identities.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

// The profile table can still refuse the email; the identity is rolled back
// so lookups never land on an identity without a profile.
func TestRegister_ProfileConflictRollsBackIdentity(t *testing.T) {
	svc, m := newService()
	m.lookup.On("FindByEmail", mock.Anything, "alice@x.com").Return(nil, domain.ErrUserNotFound)
	m.identities.On("Put", mock.Anything, mock.Anything).Return(nil)
	m.identities.On("Delete", mock.Anything, mock.Anything, "alice@x.com").Return(nil)
	m.profiles.On("CreateWithCompany", mock.Anything, mock.Anything).Return(domain.ErrConflict)

	_, err := svc.Register(context.Background(), validReq())
	assert.ErrorIs(t, err, domain.ErrConflict)
	m.identities.AssertNumberOfCalls(t, "Delete", 1)
}

func TestRegister_IssueFailureStillReturnsUserID(t *testing.T) {
	svc, m := newService()
	m.lookup.On("FindByEmail", mock.Anything, "alice@x.com").Return(nil, domain.ErrUserNotFound)
	m.identities.On("Put", mock.Anything, mock.Anything).Return(nil)
	m.profiles.On("CreateWithCompany", mock.Anything, mock.Anything).Return(nil)
	m.issuer.On("Issue", mock.Anything, "alice@x.com").Return(nil, domain.ErrDeliveryFailed)

	res, err := svc.Register(context.Background(), validReq())
	assert.ErrorIs(t, err, domain.ErrDeliveryFailed)
	require.NotNil(t, res)
	assert.NotEmpty(t, res.UserID)
	assert.Nil(t, res.Issue)
}

package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/workforce-verify/internal/application/verification"
	"github.com/workforce-verify/internal/domain"
	"github.com/workforce-verify/internal/pkg/id"
	"github.com/workforce-verify/internal/pkg/validate"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*RegisterResult, error)
}

// RegisterResult is returned whenever the account was created, even if the
// verification email could not be issued. Issue is nil in that case.
type RegisterResult struct {
	UserID string
	Issue  *verification.IssueResult
}

type lookup interface {
	FindByEmail(ctx context.Context, email string) (*domain.UserIdentity, error)
}

// identityStore rejects a second identity for the same email with domain.ErrConflict.
type identityStore interface {
	Put(ctx context.Context, u *domain.UserIdentity) error
	Delete(ctx context.Context, userID, email string) error
}

type profileStore interface {
	CreateWithCompany(ctx context.Context, p *domain.UserProfile) error
}

type issuer interface {
	Issue(ctx context.Context, email string) (*verification.IssueResult, error)
}

type service struct {
	lookup     lookup
	identities identityStore
	profiles   profileStore
	issuer     issuer
	log        *zap.Logger
	now        func() time.Time
}

type ServiceDeps struct {
	Lookup     lookup
	Identities identityStore
	Profiles   profileStore
	Issuer     issuer
	Log        *zap.Logger
}

func NewService(deps ServiceDeps) Service {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &service{
		lookup:     deps.Lookup,
		identities: deps.Identities,
		profiles:   deps.Profiles,
		issuer:     deps.Issuer,
		log:        log,
		now:        time.Now,
	}
}

// Register creates the identity and its company profile, then issues the first
// verification code. A non-nil result with a non-nil error means the account
// exists but the code was not delivered.
func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*RegisterResult, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBadRequest, err)
	}
	email := req.Email

	_, err := s.lookup.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	fullName := strings.TrimSpace(req.FullName())
	company := strings.TrimSpace(req.Company)

	u := &domain.UserIdentity{
		UserID:       id.New(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hash),
		Metadata: domain.Metadata{
			domain.MetaFullName:      fullName,
			domain.MetaCompany:       company,
			domain.MetaEmailVerified: false,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.identities.Put(ctx, u); err != nil {
		return nil, err
	}

	profile := &domain.UserProfile{
		UserID:      u.UserID,
		Email:       email,
		FullName:    fullName,
		CompanyID:   id.New(),
		CompanyName: company,
		Role:        domain.RoleAdmin,
	}
	if err := s.profiles.CreateWithCompany(ctx, profile); err != nil {
		s.log.Error("create company profile", zap.String("user_id", u.UserID), zap.Error(err))
		if derr := s.identities.Delete(ctx, u.UserID, email); derr != nil {
			s.log.Error("roll back identity", zap.String("user_id", u.UserID), zap.Error(derr))
		}
		return nil, fmt.Errorf("create company profile: %w", err)
	}
	s.log.Info("user registered", zap.String("user_id", u.UserID), zap.String("email", email))

	res := &RegisterResult{UserID: u.UserID}
	issued, err := s.issuer.Issue(ctx, email)
	if err != nil {
		return res, err
	}
	res.Issue = issued
	return res, nil
}

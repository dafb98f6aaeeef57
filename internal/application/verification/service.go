package verification

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/workforce-verify/internal/domain"
	"github.com/workforce-verify/internal/infrastructure/mail"
	"github.com/workforce-verify/internal/pkg/code"
	"github.com/workforce-verify/internal/pkg/validate"
	"go.uber.org/zap"
)

// DefaultTTL is how long an issued code stays valid.
const DefaultTTL = 30 * time.Minute

type Service interface {
	Issue(ctx context.Context, email string) (*IssueResult, error)
	Validate(ctx context.Context, email, code string) (*ValidateResult, error)
	Status(ctx context.Context, userID string) (*domain.VerificationRecord, error)
}

// IssueResult reports a successful issuance. Degraded lists best-effort steps
// that failed without aborting the operation.
type IssueResult struct {
	UserID    string
	Service   string
	MessageID string
	ExpiresAt time.Time
	Resend    bool
	Degraded  []error
}

// ValidateResult reports a successful validation.
type ValidateResult struct {
	UserID          string
	AlreadyVerified bool
	Degraded        []error
}

type lookup interface {
	FindByEmail(ctx context.Context, email string) (*domain.UserIdentity, error)
}

type directoryWriter interface {
	MergeMetadata(ctx context.Context, userID string, patch domain.Metadata) error
	MarkEmailConfirmed(ctx context.Context, userID string, at time.Time) error
}

type recordStore interface {
	Upsert(ctx context.Context, rec *domain.VerificationRecord) error
	Get(ctx context.Context, userID string) (*domain.VerificationRecord, error)
	MarkVerified(ctx context.Context, userID string, at time.Time) error
}

type profileReader interface {
	GetByID(ctx context.Context, userID string) (*domain.UserProfile, error)
}

type mailer interface {
	Send(ctx context.Context, msg mail.Message) (mail.DeliveryResult, error)
}

type service struct {
	lookup      lookup
	directory   directoryWriter
	records     recordStore
	profiles    profileReader
	mailer      mailer
	log         *zap.Logger
	now         func() time.Time
	generate    func(length int) string
	ttl         time.Duration
	codeLength  int
	productName string
}

// ServiceDeps wires the service. Profiles is optional and only feeds the email
// greeting and footer. Now and Generate default to the wall clock and code.Generate.
type ServiceDeps struct {
	Lookup      lookup
	Directory   directoryWriter
	Records     recordStore
	Profiles    profileReader
	Mailer      mailer
	Log         *zap.Logger
	Now         func() time.Time
	Generate    func(length int) string
	TTL         time.Duration
	CodeLength  int
	ProductName string
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		lookup:      deps.Lookup,
		directory:   deps.Directory,
		records:     deps.Records,
		profiles:    deps.Profiles,
		mailer:      deps.Mailer,
		log:         deps.Log,
		now:         deps.Now,
		generate:    deps.Generate,
		ttl:         deps.TTL,
		codeLength:  deps.CodeLength,
		productName: deps.ProductName,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.generate == nil {
		s.generate = code.Generate
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}
	if s.codeLength <= 0 {
		s.codeLength = code.DefaultLength
	}
	return s
}

func (s *service) Issue(ctx context.Context, email string) (*IssueResult, error) {
	email, err := validate.NormalizeEmail(email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBadRequest, err)
	}
	u, err := s.lookup.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	log := s.log.With(zap.String("user_id", u.UserID), zap.String("email", email))

	now := s.now().UTC()
	newCode := s.generate(s.codeLength)
	expiresAt := now.Add(s.ttl)
	resend := u.Metadata.String(domain.MetaVerificationCode) != ""

	err = s.directory.MergeMetadata(ctx, u.UserID, domain.Metadata{
		domain.MetaVerificationCode:      newCode,
		domain.MetaVerificationExpiresAt: expiresAt.Format(time.RFC3339Nano),
		domain.MetaEmailVerified:         false,
	})
	if err != nil {
		log.Error("store verification code in directory", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrDirectoryWrite, err)
	}

	res := &IssueResult{UserID: u.UserID, ExpiresAt: expiresAt, Resend: resend}
	rec := &domain.VerificationRecord{UserID: u.UserID, Email: email, Code: newCode, IssuedAt: now, ExpiresAt: expiresAt}
	if err := s.records.Upsert(ctx, rec); err != nil {
		log.Warn("verification record not stored", zap.Error(err))
		res.Degraded = append(res.Degraded, fmt.Errorf("%w: %v", domain.ErrStorageWrite, err))
	}

	msg, err := s.render(ctx, u, email, newCode, resend)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}
	delivery, err := s.mailer.Send(ctx, msg)
	if err != nil {
		return nil, err
	}

	res.Service = delivery.Service
	res.MessageID = delivery.MessageID
	log.Info("verification code issued", zap.String("service", delivery.Service), zap.Bool("resend", resend))
	return res, nil
}

func (s *service) Validate(ctx context.Context, email, submitted string) (*ValidateResult, error) {
	if !code.IsCanonical(submitted, s.codeLength) {
		return nil, fmt.Errorf("%w: Verification code must be %d digits", domain.ErrMalformedCode, s.codeLength)
	}
	email, err := validate.NormalizeEmail(email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBadRequest, err)
	}
	u, err := s.lookup.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	log := s.log.With(zap.String("user_id", u.UserID), zap.String("email", email))

	if u.EmailVerified() {
		log.Info("email already verified")
		return &ValidateResult{UserID: u.UserID, AlreadyVerified: true}, nil
	}

	stored := u.Metadata.String(domain.MetaVerificationCode)
	if stored == "" {
		return nil, domain.ErrNoActiveCode
	}
	now := s.now().UTC()
	expiresAt, ok := u.Metadata.Time(domain.MetaVerificationExpiresAt)
	if !ok || now.After(expiresAt) {
		return nil, domain.ErrCodeExpired
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) != 1 {
		return nil, domain.ErrCodeMismatch
	}

	if err := s.directory.MarkEmailConfirmed(ctx, u.UserID, now); err != nil {
		log.Error("mark email confirmed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrDirectoryWrite, err)
	}

	res := &ValidateResult{UserID: u.UserID}
	if err := s.records.MarkVerified(ctx, u.UserID, now); err != nil {
		log.Warn("verification record not marked verified", zap.Error(err))
		res.Degraded = append(res.Degraded, fmt.Errorf("%w: %v", domain.ErrStorageWrite, err))
	}
	log.Info("email verified")
	return res, nil
}

// Status returns the supplementary record for userID. Read failures are errors,
// never an empty record.
func (s *service) Status(ctx context.Context, userID string) (*domain.VerificationRecord, error) {
	rec, err := s.records.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("read verification record: %w", err)
	}
	return rec, nil
}

func (s *service) render(ctx context.Context, u *domain.UserIdentity, email, newCode string, resend bool) (mail.Message, error) {
	e := mail.VerificationEmail{
		ProductName:   s.productName,
		RecipientName: u.DisplayName(),
		CompanyName:   u.Metadata.String(domain.MetaCompany),
		Code:          newCode,
		TTL:           s.ttl,
		Resend:        resend,
		Year:          s.now().Year(),
	}
	if s.profiles != nil {
		if p, err := s.profiles.GetByID(ctx, u.UserID); err == nil {
			if p.FullName != "" {
				e.RecipientName = p.FullName
			}
			if p.CompanyName != "" {
				e.CompanyName = p.CompanyName
			}
		} else if !errors.Is(err, domain.ErrNotFound) {
			s.log.Debug("profile unavailable for email personalisation", zap.String("user_id", u.UserID), zap.Error(err))
		}
	}
	return e.Render(email)
}

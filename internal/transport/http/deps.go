package http

import (
	"context"
	"time"

	"github.com/workforce-verify/internal/domain"
	"github.com/workforce-verify/internal/infrastructure/mail"
)

// IdentityDirectory is the minimal interface the router requires from the identity directory.
type IdentityDirectory interface {
	// Put fails with domain.ErrConflict when the id or email is taken.
	Put(ctx context.Context, u *domain.UserIdentity) error
	Delete(ctx context.Context, userID, email string) error
	Get(ctx context.Context, userID string) (*domain.UserIdentity, error)
	GetByEmail(ctx context.Context, email string) (*domain.UserIdentity, error)
	// MergeMetadata writes only the given keys of the metadata bag.
	MergeMetadata(ctx context.Context, userID string, patch domain.Metadata) error
	MarkEmailConfirmed(ctx context.Context, userID string, at time.Time) error
}

// ProfileRepository is the minimal interface the router requires from the relational user store.
type ProfileRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error)
	GetByID(ctx context.Context, userID string) (*domain.UserProfile, error)
	CreateWithCompany(ctx context.Context, p *domain.UserProfile) error
}

// VerificationRepository is the minimal interface the router requires from the verification record store.
type VerificationRepository interface {
	Upsert(ctx context.Context, rec *domain.VerificationRecord) error
	Get(ctx context.Context, userID string) (*domain.VerificationRecord, error)
	MarkVerified(ctx context.Context, userID string, at time.Time) error
}

// Mailer is the minimal interface the router requires from the email dispatcher.
type Mailer interface {
	Send(ctx context.Context, msg mail.Message) (mail.DeliveryResult, error)
}

package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/workforce-verify/internal/domain"
)

// Lookup resolves a user identity by email.
type Lookup interface {
	FindByEmail(ctx context.Context, email string) (*domain.UserIdentity, error)
}

// Strategy is one source the lookup can consult.
type Strategy interface {
	Name() string
	FindByEmail(ctx context.Context, email string) (*domain.UserIdentity, error)
}

// Chain tries each strategy in order. domain.ErrNotFound moves on to the next
// strategy; any other error stops the chain.
type Chain []Strategy

func (c Chain) FindByEmail(ctx context.Context, email string) (*domain.UserIdentity, error) {
	for _, s := range c {
		u, err := s.FindByEmail(ctx, email)
		if err == nil {
			return u, nil
		}
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		return nil, fmt.Errorf("%s lookup: %w: %v", s.Name(), domain.ErrDirectoryRead, err)
	}
	return nil, domain.ErrUserNotFound
}

type directoryReader interface {
	Get(ctx context.Context, userID string) (*domain.UserIdentity, error)
	GetByEmail(ctx context.Context, email string) (*domain.UserIdentity, error)
}

type profileReader interface {
	GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error)
}

// DirectoryStrategy finds the identity in the canonical directory by email.
type DirectoryStrategy struct {
	Directory directoryReader
}

func (DirectoryStrategy) Name() string { return "directory" }

func (s DirectoryStrategy) FindByEmail(ctx context.Context, email string) (*domain.UserIdentity, error) {
	return s.Directory.GetByEmail(ctx, email)
}

// ProfileStrategy finds the user in the relational users table, then
// re-resolves the canonical identity from the directory by id.
type ProfileStrategy struct {
	Profiles  profileReader
	Directory directoryReader
}

func (ProfileStrategy) Name() string { return "profile" }

func (s ProfileStrategy) FindByEmail(ctx context.Context, email string) (*domain.UserIdentity, error) {
	p, err := s.Profiles.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.Directory.Get(ctx, p.UserID)
}

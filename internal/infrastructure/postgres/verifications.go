package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/workforce-verify/internal/domain"
)

// VerificationRepo is the supplementary email_verifications store. It holds at
// most one row per user.
type VerificationRepo struct {
	db DB
}

func NewVerificationRepo(db DB) *VerificationRepo { return &VerificationRepo{db: db} }

// Upsert replaces the user's row and reopens it: verified is reset and
// verified_at cleared.
func (r *VerificationRepo) Upsert(ctx context.Context, rec *domain.VerificationRecord) error {
	_, err := r.db.Exec(ctx, `
INSERT INTO email_verifications (user_id, email, verification_code, issued_at, expires_at, verified, verified_at)
VALUES ($1, LOWER($2), $3, $4, $5, FALSE, NULL)
ON CONFLICT (user_id) DO UPDATE SET
	email             = EXCLUDED.email,
	verification_code = EXCLUDED.verification_code,
	issued_at         = EXCLUDED.issued_at,
	expires_at        = EXCLUDED.expires_at,
	verified          = FALSE,
	verified_at       = NULL`,
		rec.UserID, rec.Email, rec.Code, rec.IssuedAt.UTC(), rec.ExpiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert verification %s: %w", rec.UserID, err)
	}
	return nil
}

func (r *VerificationRepo) Get(ctx context.Context, userID string) (*domain.VerificationRecord, error) {
	var v domain.VerificationRecord
	err := r.db.QueryRow(ctx, `
SELECT user_id, email, verification_code, issued_at, expires_at, verified, verified_at
FROM email_verifications WHERE user_id = $1`, userID,
	).Scan(&v.UserID, &v.Email, &v.Code, &v.IssuedAt, &v.ExpiresAt, &v.Verified, &v.VerifiedAt)
	if isNoRows(err) {
		return nil, fmt.Errorf("verification record not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// MarkVerified sets verified on the user's row. verified_at keeps its first value.
// A missing row is not an error.
func (r *VerificationRepo) MarkVerified(ctx context.Context, userID string, at time.Time) error {
	_, err := r.db.Exec(ctx, `
UPDATE email_verifications
SET verified = TRUE, verified_at = COALESCE(verified_at, $2)
WHERE user_id = $1`, userID, at.UTC())
	if err != nil {
		return fmt.Errorf("mark verification %s: %w", userID, err)
	}
	return nil
}

package domain

import "time"

// VerificationRecord is the supplementary per-user row in email_verifications.
// There is at most one per user; a new issuance replaces it.
type VerificationRecord struct {
	UserID     string     `json:"user_id"`
	Email      string     `json:"email"`
	Code       string     `json:"-"`
	IssuedAt   time.Time  `json:"issued_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	Verified   bool       `json:"verified"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
}

// Expired reports whether the record's code is past its expiry at now.
func (r *VerificationRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

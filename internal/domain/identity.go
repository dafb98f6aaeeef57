package domain

import "time"

// Metadata keys written by the verification flow. Other keys in the bag belong to
// whoever else edits the identity and must survive our writes.
const (
	MetaFullName              = "full_name"
	MetaCompany               = "company"
	MetaVerificationCode      = "verification_code"
	MetaVerificationExpiresAt = "verification_code_expires_at"
	MetaEmailVerified         = "email_verified"
	MetaVerificationCompleted = "verification_completed_at"
)

// Metadata is the semi-structured per-identity key/value bag.
// Timestamps are stored as RFC 3339 strings.
type Metadata map[string]interface{}

func (m Metadata) String(key string) string {
	s, _ := m[key].(string)
	return s
}

func (m Metadata) Bool(key string) bool {
	b, _ := m[key].(bool)
	return b
}

// Time parses an RFC 3339 value. ok is false when the key is absent or unparsable.
func (m Metadata) Time(key string) (t time.Time, ok bool) {
	s := m.String(key)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// UserIdentity is a record in the identity directory. It carries credentials, the
// metadata bag, and the durable email confirmation marker.
type UserIdentity struct {
	UserID           string     `json:"id" dynamodbav:"user_id"`
	Email            string     `json:"email" dynamodbav:"email"`
	FullName         string     `json:"full_name" dynamodbav:"full_name"`
	PasswordHash     string     `json:"-" dynamodbav:"password_hash"`
	Metadata         Metadata   `json:"metadata" dynamodbav:"metadata"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty" dynamodbav:"email_confirmed_at,omitempty"`
	CreatedAt        time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt        time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// EmailVerified reports whether the identity is currently in the Verified state.
func (u *UserIdentity) EmailVerified() bool {
	return u.Metadata.Bool(MetaEmailVerified)
}

// DisplayName prefers the top-level name, then the metadata copy.
func (u *UserIdentity) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Metadata.String(MetaFullName)
}

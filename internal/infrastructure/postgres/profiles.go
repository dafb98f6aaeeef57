package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/workforce-verify/internal/domain"
)

// ProfileRepo reads and writes the relational users table joined with companies.
type ProfileRepo struct {
	db DB
}

func NewProfileRepo(db DB) *ProfileRepo { return &ProfileRepo{db: db} }

const selectProfile = `
SELECT u.id, u.email, u.full_name, COALESCE(u.company_id, ''), COALESCE(c.name, ''), u.role, u.created_at
FROM users u
LEFT JOIN companies c ON c.id = u.company_id`

func scanProfile(row interface {
	Scan(dest ...any) error
}) (*domain.UserProfile, error) {
	var p domain.UserProfile
	if err := row.Scan(&p.UserID, &p.Email, &p.FullName, &p.CompanyID, &p.CompanyName, &p.Role, &p.CreatedAt); err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("profile not found: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepo) GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	row := r.db.QueryRow(ctx, selectProfile+` WHERE u.email = LOWER($1)`, strings.ToLower(email))
	return scanProfile(row)
}

func (r *ProfileRepo) GetByID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	row := r.db.QueryRow(ctx, selectProfile+` WHERE u.id = $1`, userID)
	return scanProfile(row)
}

// CreateWithCompany inserts a company and its first user in one statement so a
// failed user insert leaves no orphan company behind.
func (r *ProfileRepo) CreateWithCompany(ctx context.Context, p *domain.UserProfile) error {
	const q = `
WITH c AS (
	INSERT INTO companies (id, name) VALUES ($1, $2) RETURNING id
)
INSERT INTO users (id, email, full_name, company_id, role)
SELECT $3, LOWER($4), $5, c.id, $6 FROM c
RETURNING created_at`
	err := r.db.QueryRow(ctx, q, p.CompanyID, p.CompanyName, p.UserID, p.Email, p.FullName, p.Role).Scan(&p.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("profile %s: %w", p.Email, domain.ErrConflict)
	}
	return err
}

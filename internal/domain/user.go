package domain

import "time"

// RoleAdmin is stored on the first profile of a company and gates the operator routes.
const RoleAdmin = "admin"

// UserProfile is the relational users row joined with its company.
type UserProfile struct {
	UserID      string    `json:"id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	CompanyID   string    `json:"company_id"`
	CompanyName string    `json:"company_name"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created"`
}

type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	Company   string `json:"company" validate:"required"`
}

func (r RegisterRequest) FullName() string {
	return r.FirstName + " " + r.LastName
}

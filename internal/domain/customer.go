package domain

import "time"

// Role identifies which credential table an account lives in.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

// Account is a credential-store row: a customer or a staff/admin member.
type Account struct {
	ID           int64     `json:"id"`
	Role         Role      `json:"role"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsStaff reports whether the account may use catalog management.
func (a Account) IsStaff() bool {
	return a.Role == RoleStaff || a.Role == RoleAdmin
}

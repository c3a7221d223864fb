package models

import "time"

// User is a portal account holder stored in SQLite.
type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Role          string    `json:"role"` // "admin" or "user"
	AccountNumber string    `json:"account_number,omitempty"`
	AccountType   string    `json:"account_type,omitempty"`
	Balance       float64   `json:"balance"`
	CreatedAt     time.Time `json:"created_at"`
}

// HasAccount reports whether the user finished bank account setup.
func (u *User) HasAccount() bool {
	return u.AccountNumber != "" && u.AccountType != ""
}

// RegisterRequest is the request body for registration.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateAccountRequest attaches bank account details to a registered user.
type CreateAccountRequest struct {
	AccountNumber string  `json:"account_number"`
	AccountType   string  `json:"account_type"`
	Balance       float64 `json:"balance"`
}

// CheckBalanceRequest looks up a balance by account number.
type CheckBalanceRequest struct {
	AccountNumber string `json:"account_number"`
}

// UserResponse is the API representation of a user.
type UserResponse struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	AccountNumber string    `json:"account_number,omitempty"`
	AccountType   string    `json:"account_type,omitempty"`
	Balance       float64   `json:"balance"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToResponse converts User to UserResponse.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		Role:          u.Role,
		AccountNumber: u.AccountNumber,
		AccountType:   u.AccountType,
		Balance:       u.Balance,
		CreatedAt:     u.CreatedAt,
	}
}

package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"bankbot/internal/database"
	"bankbot/internal/models"
)

var (
	// ErrEmailTaken is returned when registering an email that already exists
	ErrEmailTaken = errors.New("user with this email already exists")
	// ErrAccountTaken is returned when an account number is already in use
	ErrAccountTaken = errors.New("account number already exists")
	// ErrUserNotFound is returned when no user matches the lookup
	ErrUserNotFound = errors.New("user not found")
)

// UserService manages portal user accounts in SQLite
type UserService struct {
	db *database.DB
}

// NewUserService creates a new user service
func NewUserService(db *database.DB) *UserService {
	return &UserService{db: db}
}

// Create registers a new user. Email uniqueness is enforced by the schema.
func (s *UserService) Create(username, email, passwordHash, role string) (*models.User, error) {
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := s.db.Exec(`
		INSERT INTO users (id, username, email, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, user.ID, user.Username, user.Email, user.PasswordHash, user.Role, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetByID returns the user with the given id
func (s *UserService) GetByID(id string) (*models.User, error) {
	return s.getOne(`WHERE id = ?`, id)
}

// GetByEmail returns the user with the given email
func (s *UserService) GetByEmail(email string) (*models.User, error) {
	return s.getOne(`WHERE email = ?`, email)
}

// GetByAccountNumber returns the user owning the given bank account
func (s *UserService) GetByAccountNumber(accountNumber string) (*models.User, error) {
	return s.getOne(`WHERE account_number = ?`, accountNumber)
}

// SetAccount attaches bank account details to a registered user.
// Account numbers are unique across the portal.
func (s *UserService) SetAccount(userID, accountNumber, accountType string, balance float64) error {
	existing, err := s.GetByAccountNumber(accountNumber)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return err
	}
	if existing != nil && existing.ID != userID {
		return ErrAccountTaken
	}

	result, err := s.db.Exec(`
		UPDATE users SET account_number = ?, account_type = ?, balance = ?
		WHERE id = ?
	`, accountNumber, accountType, balance, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAccountTaken
		}
		return fmt.Errorf("failed to set account: %w", err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Count returns the number of registered users
func (s *UserService) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (s *UserService) getOne(where string, arg any) (*models.User, error) {
	query := `
		SELECT id, username, email, password_hash, role,
		       account_number, account_type, balance, created_at
		FROM users ` + where

	var user models.User
	var accountNumber, accountType sql.NullString
	err := s.db.QueryRow(query, arg).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role,
		&accountNumber, &accountType, &user.Balance, &user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	user.AccountNumber = accountNumber.String
	user.AccountType = accountType.String
	return &user, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

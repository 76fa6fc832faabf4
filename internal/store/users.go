package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/solacelabs/solace-backend/internal/model/user"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("email or username already registered")
)

// Users is the data-access layer for accounts.
type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// Create registers a new account. Email and username must be unique.
func (s *Users) Create(ctx context.Context, email, username, hashedPassword string) (*user.User, error) {
	account := user.User{
		Email:          strings.ToLower(strings.TrimSpace(email)),
		Username:       strings.TrimSpace(username),
		HashedPassword: hashedPassword,
		IsActive:       true,
	}

	var existing int64
	err := s.db.WithContext(ctx).
		Model(&user.User{}).
		Where("email = ? OR username = ?", account.Email, account.Username).
		Count(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check existing users: %w", err)
	}
	if existing > 0 {
		return nil, ErrUserExists
	}

	if err := s.db.WithContext(ctx).Create(&account).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &account, nil
}

// GetByEmail resolves an account by email.
func (s *Users) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var account user.User
	err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &account, nil
}

// SetActive flips the account's active flag.
func (s *Users) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result := s.db.WithContext(ctx).
		Model(&user.User{}).
		Where("id = ?", id).
		Update("is_active", active)
	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// GetByID resolves an account by identifier.
func (s *Users) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var account user.User
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &account, nil
}

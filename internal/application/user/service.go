package user

import (
	"context"
	"errors"
	"strings"

	"dutchie-backend/internal/application/auth"
	"dutchie-backend/internal/domain"
	"dutchie-backend/internal/pkg/validation"

	"gorm.io/gorm"
)

var (
	ErrMissingFields   = errors.New("Missing required fields")
	ErrInvalidEmail    = errors.New("Invalid email format")
	ErrInvalidPassword = errors.New("Invalid password format")
	ErrInvalidNickname = errors.New("Nickname must be 2-10 letters or digits")
	ErrEmailTaken      = errors.New("Email already registered")
	ErrNicknameTaken   = errors.New("Nickname already in use")
)

// Service holds DB for member operations.
type Service struct {
	DB *gorm.DB
}

// SignupInput is the signup request body.
type SignupInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

// Signup validates input, checks email and nickname uniqueness, and stores the member with a bcrypt hash.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	nickname := strings.TrimSpace(in.Nickname)
	if email == "" || in.Password == "" || nickname == "" {
		return nil, ErrMissingFields
	}
	if !validation.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if !validation.IsValidPassword(in.Password) {
		return nil, ErrInvalidPassword
	}
	if !validation.IsValidNickname(nickname) {
		return nil, ErrInvalidNickname
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{Email: email, Nickname: nickname, PasswordHash: hash}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Unscoped().Model(&domain.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrEmailTaken
		}
		taken, err := nicknameTaken(tx, nickname)
		if err != nil {
			return err
		}
		if taken {
			return ErrNicknameTaken
		}
		return tx.Create(u).Error
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// NicknameAvailable reports whether nickname is well-formed and unused.
func (s *Service) NicknameAvailable(ctx context.Context, nickname string) (bool, error) {
	nickname = strings.TrimSpace(nickname)
	if !validation.IsValidNickname(nickname) {
		return false, ErrInvalidNickname
	}
	taken, err := nicknameTaken(s.DB.WithContext(ctx), nickname)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

func nicknameTaken(db *gorm.DB, nickname string) (bool, error) {
	var n int64
	if err := db.Model(&domain.User{}).Where("nickname = ?", nickname).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"minimart/internal/cache"
	apperrors "minimart/internal/errors"
	"minimart/internal/model"
	"minimart/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// UserService exposes user administration operations.
type UserService interface {
	GetUser(ctx context.Context, id uint) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	ChangePassword(ctx context.Context, userID uint, current, newPassword, confirmation string) error
	UpdateMaxAmount(ctx context.Context, userID uint, maxAmount decimal.Decimal) (*model.User, error)
	GetMaxAmount(ctx context.Context, userID uint) (decimal.Decimal, error)
	DeleteUser(ctx context.Context, userID uint) error
}

type userService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	cache     *cache.Client
}

// NewUserService builds a UserService with repositories and cache.
func NewUserService(userRepo repository.UserRepository, tokenRepo repository.TokenRepository, cache *cache.Client) UserService {
	return &userService{userRepo: userRepo, tokenRepo: tokenRepo, cache: cache}
}

func userCacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, userCacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, userCacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.userRepo.List(ctx)
}

// ChangePassword verifies the current password, checks the confirmation and
// stores a new hash.
func (s *userService) ChangePassword(ctx context.Context, userID uint, current, newPassword, confirmation string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return apperrors.ErrInvalidCredentials
	}

	if newPassword != confirmation {
		return apperrors.ErrPasswordMismatch
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = string(hashed)
	if err := s.userRepo.Save(ctx, user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	_ = s.cache.Delete(ctx, userCacheKey(userID))
	return nil
}

// UpdateMaxAmount sets the user's credit ceiling. Zero removes the ceiling.
func (s *userService) UpdateMaxAmount(ctx context.Context, userID uint, maxAmount decimal.Decimal) (*model.User, error) {
	if maxAmount.IsNegative() {
		return nil, apperrors.ErrInvalidAmount
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	user.MaxAmount = maxAmount
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}

	_ = s.cache.Delete(ctx, userCacheKey(userID))
	return user, nil
}

func (s *userService) GetMaxAmount(ctx context.Context, userID uint) (decimal.Decimal, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return user.MaxAmount, nil
}

// DeleteUser removes the user's tokens first, then the user row. User owns
// Tokens by reference only, so the cascade is explicit here.
func (s *userService) DeleteUser(ctx context.Context, userID uint) error {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return err
	}

	if err := s.tokenRepo.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("delete tokens: %w", err)
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	_ = s.cache.Delete(ctx, userCacheKey(userID))
	return nil
}

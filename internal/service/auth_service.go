package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"minimart/internal/auth"
	apperrors "minimart/internal/errors"
	"minimart/internal/model"
	"minimart/internal/repository"
)

const bcryptCost = 10

const bearerPrefix = "Bearer "

// AuthResult carries freshly issued tokens plus the public profile view.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         model.PublicUser
}

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
	Role      model.Role
}

// AuthService handles registration, login and token refresh.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Authenticate(ctx context.Context, email, password string) (*AuthResult, error)
	Refresh(ctx context.Context, bearerHeader string) (*AuthResult, error)
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	ledger     auth.TokenLedgerInterface
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, ledger auth.TokenLedgerInterface) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		ledger:     ledger,
	}
}

// Register creates a new user with a hashed password and issues the first
// token pair. Duplicate emails are decided by the unique index, so two
// concurrent registrations for the same email cannot both succeed.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	role := input.Role
	if role == "" {
		role = model.RoleClient
	}
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", input.Role)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		Phone:        input.Phone,
		PasswordHash: string(hashedPassword),
		Role:         role,
		// The email verification sub-flow is disabled; accounts start verified.
		Verified: true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.issueTokens(ctx, user)
}

// Authenticate verifies credentials and rotates the user's token set. All
// previously valid tokens are revoked before the new one is recorded, so at
// most one token set is valid after any authentication event.
func (s *authService) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.Verified {
		return nil, apperrors.ErrUserNotVerified
	}

	if err := s.ledger.RevokeAll(ctx, user.ID); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

// Refresh exchanges a valid refresh token, presented as a bearer header,
// for a new access token. The refresh token itself is not rotated. A
// missing or malformed header is rejected outright rather than ignored.
func (s *authService) Refresh(ctx context.Context, bearerHeader string) (*AuthResult, error) {
	if !strings.HasPrefix(bearerHeader, bearerPrefix) {
		return nil, apperrors.ErrInvalidToken
	}
	refreshToken := strings.TrimPrefix(bearerHeader, bearerPrefix)

	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !s.jwtService.IsValidForUser(refreshToken, user) {
		return nil, apperrors.ErrInvalidToken
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	if err := s.ledger.RevokeAll(ctx, user.ID); err != nil {
		return nil, err
	}
	if err := s.ledger.Record(ctx, user.ID, accessToken); err != nil {
		return nil, err
	}

	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.Public(),
	}, nil
}

// issueTokens mints a fresh access+refresh pair and records the access
// token in the ledger.
func (s *authService) issueTokens(ctx context.Context, user *model.User) (*AuthResult, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.jwtService.GenerateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.ledger.Record(ctx, user.ID, accessToken); err != nil {
		return nil, err
	}

	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.Public(),
	}, nil
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"minimart/internal/model"
)

// TokenRepository defines token ledger persistence operations.
type TokenRepository interface {
	Create(ctx context.Context, token *model.Token) error
	FindByValue(ctx context.Context, value string) (*model.Token, error)
	FindValidByUserID(ctx context.Context, userID uint) ([]model.Token, error)
	RevokeAllForUser(ctx context.Context, userID uint) error
	DeleteByUserID(ctx context.Context, userID uint) error
}

type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new token repository.
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, token *model.Token) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *tokenRepository) FindByValue(ctx context.Context, value string) (*model.Token, error) {
	var token model.Token
	if err := r.db.WithContext(ctx).Where("value = ?", value).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// FindValidByUserID returns the user's tokens that are neither expired nor revoked.
func (r *tokenRepository) FindValidByUserID(ctx context.Context, userID uint) ([]model.Token, error) {
	var tokens []model.Token
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND expired = ? AND revoked = ?", userID, false, false).
		Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

// RevokeAllForUser flips both flags on every currently-valid token for the
// user in one batch update.
func (r *tokenRepository) RevokeAllForUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Model(&model.Token{}).
		Where("user_id = ? AND expired = ? AND revoked = ?", userID, false, false).
		Updates(map[string]interface{}{"expired": true, "revoked": true}).Error
}

// DeleteByUserID removes all token rows for a user. Used by the user delete
// cascade; User owns Tokens by reference only.
func (r *tokenRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Token{}).Error
}

package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"minimart/internal/model"
	"minimart/internal/repository"
)

// TokenLedgerInterface tracks issued access tokens so they can be revoked
// en masse when the user re-authenticates.
type TokenLedgerInterface interface {
	Record(ctx context.Context, userID uint, token string) error
	RevokeAll(ctx context.Context, userID uint) error
	IsCurrent(ctx context.Context, token string) (bool, error)
}

// TokenLedger is the database-backed ledger of issued access tokens.
// Revocation is enforced at request time: the router consults IsCurrent
// after signature verification, so signature validity alone is never
// enough to pass authentication.
type TokenLedger struct {
	tokens repository.TokenRepository
}

// Ensure TokenLedger implements TokenLedgerInterface
var _ TokenLedgerInterface = (*TokenLedger)(nil)

// NewTokenLedger creates a new token ledger.
func NewTokenLedger(tokens repository.TokenRepository) *TokenLedger {
	return &TokenLedger{tokens: tokens}
}

// Record stores a freshly issued access token as a valid bearer entry.
func (l *TokenLedger) Record(ctx context.Context, userID uint, token string) error {
	row := &model.Token{
		UserID:    userID,
		Value:     token,
		TokenType: model.TokenTypeBearer,
	}
	if err := l.tokens.Create(ctx, row); err != nil {
		return fmt.Errorf("record token: %w", err)
	}
	return nil
}

// RevokeAll marks every currently-valid token for the user as expired and
// revoked in one batch.
func (l *TokenLedger) RevokeAll(ctx context.Context, userID uint) error {
	if err := l.tokens.RevokeAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}
	return nil
}

// IsCurrent reports whether the exact token value is present in the ledger
// and still neither expired nor revoked. Unknown tokens are not current.
func (l *TokenLedger) IsCurrent(ctx context.Context, token string) (bool, error) {
	row, err := l.tokens.FindByValue(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("lookup token: %w", err)
	}
	return row.Live(), nil
}

package model

import "time"

// TokenType is the scheme a stored token was issued under.
type TokenType string

// TokenTypeBearer is the only scheme currently issued.
const TokenTypeBearer TokenType = "bearer"

// Token is a ledger row for an issued access token. Rows are never
// deleted on re-authentication; the flags are flipped instead so the
// history of issued tokens survives.
type Token struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Value     string    `json:"-" gorm:"size:512;uniqueIndex;not null"`
	TokenType TokenType `json:"token_type" gorm:"type:varchar(20);not null;default:'bearer'"`
	Expired   bool      `json:"expired" gorm:"not null;default:false"`
	Revoked   bool      `json:"revoked" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Live reports whether the ledger still considers the token acceptable.
func (t *Token) Live() bool {
	return !t.Expired && !t.Revoked
}

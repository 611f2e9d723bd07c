package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a stock-keeping item. Name is the lookup key used by
// purchases; Quantity is the remaining stock and is never negative.
type Product struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	Name      string          `json:"name" gorm:"uniqueIndex;size:255;not null"`
	Reference string          `json:"reference,omitempty" gorm:"size:100"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(20,2);not null"`
	Quantity  int             `json:"quantity" gorm:"not null;default:0"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

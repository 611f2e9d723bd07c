package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Purchase records a completed sale. Amount snapshots price × quantity
// at purchase time; later price changes do not touch existing rows.
type Purchase struct {
	ID          uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	ProductID   uint            `json:"product_id" gorm:"not null;index"`
	UserID      uint            `json:"user_id" gorm:"not null;index"`
	ProductName string          `json:"product_name" gorm:"size:255;not null"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	CreatedAt   time.Time       `json:"created_at"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Purchase) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

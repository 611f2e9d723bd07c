package repository

import (
	"context"

	"gorm.io/gorm"
)

// Tx bundles repositories bound to a single database transaction. Every
// operation performed through it commits or rolls back as one unit.
type Tx struct {
	Users     UserRepository
	Products  ProductRepository
	Purchases PurchaseRepository
	Tokens    TokenRepository
}

// TxManager runs a function inside a database transaction.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) error
}

type gormTxManager struct {
	db *gorm.DB
}

// NewTxManager creates a GORM-backed transaction manager.
func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

// WithTransaction executes fn with repositories bound to one transaction.
// A non-nil error from fn rolls everything back.
func (m *gormTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) error {
	return m.db.WithContext(ctx).Transaction(func(txDB *gorm.DB) error {
		tx := &Tx{
			Users:     NewUserRepository(txDB),
			Products:  NewProductRepository(txDB),
			Purchases: NewPurchaseRepository(txDB),
			Tokens:    NewTokenRepository(txDB),
		}
		return fn(ctx, tx)
	})
}

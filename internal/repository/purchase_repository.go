package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"minimart/internal/model"
)

// PurchaseRepository defines purchase persistence operations.
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *model.Purchase) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error)
	ListAll(ctx context.Context) ([]model.Purchase, error)
	ListByUserID(ctx context.Context, userID uint) ([]model.Purchase, error)
}

type purchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository creates a new purchase repository.
func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

// Create inserts a purchase row, retrying once on a transient failure.
// Constraint violations are not retried.
func (r *purchaseRepository) Create(ctx context.Context, purchase *model.Purchase) error {
	err := r.db.WithContext(ctx).Create(purchase).Error
	if err == nil || errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	return r.db.WithContext(ctx).Create(purchase).Error
}

func (r *purchaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	var purchase model.Purchase
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&purchase).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) ListAll(ctx context.Context) ([]model.Purchase, error) {
	var purchases []model.Purchase
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}

func (r *purchaseRepository) ListByUserID(ctx context.Context, userID uint) ([]model.Purchase, error) {
	var purchases []model.Purchase
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}

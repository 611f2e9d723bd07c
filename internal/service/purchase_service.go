package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"minimart/internal/cache"
	apperrors "minimart/internal/errors"
	"minimart/internal/model"
	"minimart/internal/repository"
)

// PurchaseService handles the purchase transaction and purchase queries.
type PurchaseService interface {
	Purchase(ctx context.Context, productName string, quantity int, userID uint) (*model.Purchase, error)
	ListAll(ctx context.Context) ([]model.Purchase, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Purchase, error)
}

type purchaseService struct {
	txManager    repository.TxManager
	purchaseRepo repository.PurchaseRepository
	cache        *cache.Client
}

// NewPurchaseService creates a new purchase service.
func NewPurchaseService(txManager repository.TxManager, purchaseRepo repository.PurchaseRepository, cache *cache.Client) PurchaseService {
	return &purchaseService{
		txManager:    txManager,
		purchaseRepo: purchaseRepo,
		cache:        cache,
	}
}

// Purchase decrements product stock, accrues the buyer's balance and records
// the purchase row, all inside one database transaction. The product row is
// locked for the duration, so concurrent purchases against the same product
// serialize and stock can never go negative. Amount snapshots the price at
// purchase time.
func (s *purchaseService) Purchase(ctx context.Context, productName string, quantity int, userID uint) (*model.Purchase, error) {
	if quantity <= 0 {
		return nil, apperrors.ErrInvalidQuantity
	}

	var purchase *model.Purchase
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context, tx *repository.Tx) error {
		product, err := tx.Products.FindByNameForUpdate(ctx, productName)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrProductNotFound
			}
			return fmt.Errorf("find product: %w", err)
		}

		if quantity > product.Quantity {
			return apperrors.ErrInsufficientStock
		}

		amount := product.Price.Mul(decimal.NewFromInt(int64(quantity)))

		user, err := tx.Users.FindByIDForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrUserNotFound
			}
			return fmt.Errorf("find user: %w", err)
		}

		newBalance := user.Balance.Add(amount)
		if user.MaxAmount.IsPositive() && newBalance.GreaterThan(user.MaxAmount) {
			return apperrors.ErrMaxAmountExceeded
		}

		if err := tx.Products.UpdateQuantity(ctx, product.ID, product.Quantity-quantity); err != nil {
			return fmt.Errorf("update stock: %w", err)
		}

		if err := tx.Users.UpdateBalance(ctx, userID, newBalance); err != nil {
			return fmt.Errorf("update balance: %w", err)
		}

		purchase = &model.Purchase{
			ProductID:   product.ID,
			UserID:      userID,
			ProductName: product.Name,
			Quantity:    quantity,
			Amount:      amount,
		}
		if err := tx.Purchases.Create(ctx, purchase); err != nil {
			return fmt.Errorf("create purchase: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Invalidate stale reads for the touched rows.
	_ = s.cache.Delete(ctx, productCacheKey(productName))
	_ = s.cache.Delete(ctx, userCacheKey(userID))

	return purchase, nil
}

func (s *purchaseService) ListAll(ctx context.Context) ([]model.Purchase, error) {
	return s.purchaseRepo.ListAll(ctx)
}

func (s *purchaseService) ListByUser(ctx context.Context, userID uint) ([]model.Purchase, error) {
	return s.purchaseRepo.ListByUserID(ctx, userID)
}

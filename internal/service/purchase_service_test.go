package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "minimart/internal/errors"
	"minimart/internal/model"
	"minimart/internal/repository"
)

func TestPurchaseService_Purchase(t *testing.T) {
	widget := func() *model.Product {
		return &model.Product{
			ID:       1,
			Name:     "widget",
			Price:    decimal.RequireFromString("10.00"),
			Quantity: 5,
		}
	}
	buyer := func() *model.User {
		return &model.User{
			ID:      7,
			Email:   "buyer@example.com",
			Balance: decimal.RequireFromString("20.00"),
		}
	}

	tests := []struct {
		name          string
		productName   string
		quantity      int
		userID        uint
		setupMock     func(*MockProductRepository, *MockUserRepository, *MockPurchaseRepository)
		expectedError error
		check         func(*testing.T, *model.Purchase)
	}{
		{
			name:        "successful purchase snapshots price and accrues balance",
			productName: "widget",
			quantity:    3,
			userID:      7,
			setupMock: func(mProd *MockProductRepository, mUser *MockUserRepository, mPurch *MockPurchaseRepository) {
				mProd.On("FindByNameForUpdate", mock.Anything, "widget").Return(widget(), nil)
				mUser.On("FindByIDForUpdate", mock.Anything, uint(7)).Return(buyer(), nil)
				mProd.On("UpdateQuantity", mock.Anything, uint(1), 2).Return(nil)
				mUser.On("UpdateBalance", mock.Anything, uint(7), decimal.RequireFromString("50.00")).Return(nil)
				mPurch.On("Create", mock.Anything, mock.AnythingOfType("*model.Purchase")).Return(nil)
			},
			check: func(t *testing.T, p *model.Purchase) {
				assert.Equal(t, uint(1), p.ProductID)
				assert.Equal(t, uint(7), p.UserID)
				assert.Equal(t, 3, p.Quantity)
				assert.True(t, p.Amount.Equal(decimal.RequireFromString("30.00")), "amount = %s", p.Amount)
			},
		},
		{
			name:        "quantity exceeding stock leaves state untouched",
			productName: "widget",
			quantity:    6,
			userID:      7,
			setupMock: func(mProd *MockProductRepository, mUser *MockUserRepository, mPurch *MockPurchaseRepository) {
				mProd.On("FindByNameForUpdate", mock.Anything, "widget").Return(widget(), nil)
			},
			expectedError: apperrors.ErrInsufficientStock,
		},
		{
			name:          "zero quantity is rejected before any lookup",
			productName:   "widget",
			quantity:      0,
			userID:        7,
			setupMock:     func(*MockProductRepository, *MockUserRepository, *MockPurchaseRepository) {},
			expectedError: apperrors.ErrInvalidQuantity,
		},
		{
			name:        "unknown product",
			productName: "vanished",
			quantity:    1,
			userID:      7,
			setupMock: func(mProd *MockProductRepository, mUser *MockUserRepository, mPurch *MockPurchaseRepository) {
				mProd.On("FindByNameForUpdate", mock.Anything, "vanished").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrProductNotFound,
		},
		{
			name:        "unknown user",
			productName: "widget",
			quantity:    1,
			userID:      99,
			setupMock: func(mProd *MockProductRepository, mUser *MockUserRepository, mPurch *MockPurchaseRepository) {
				mProd.On("FindByNameForUpdate", mock.Anything, "widget").Return(widget(), nil)
				mUser.On("FindByIDForUpdate", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrUserNotFound,
		},
		{
			name:        "credit ceiling blocks the purchase",
			productName: "widget",
			quantity:    3,
			userID:      7,
			setupMock: func(mProd *MockProductRepository, mUser *MockUserRepository, mPurch *MockPurchaseRepository) {
				mProd.On("FindByNameForUpdate", mock.Anything, "widget").Return(widget(), nil)
				capped := buyer()
				capped.MaxAmount = decimal.RequireFromString("40.00")
				mUser.On("FindByIDForUpdate", mock.Anything, uint(7)).Return(capped, nil)
			},
			expectedError: apperrors.ErrMaxAmountExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockProd := new(MockProductRepository)
			mockUser := new(MockUserRepository)
			mockPurch := new(MockPurchaseRepository)
			tt.setupMock(mockProd, mockUser, mockPurch)

			txManager := &stubTxManager{tx: &repository.Tx{
				Users:     mockUser,
				Products:  mockProd,
				Purchases: mockPurch,
			}}
			svc := NewPurchaseService(txManager, mockPurch, nil)

			purchase, err := svc.Purchase(context.Background(), tt.productName, tt.quantity, tt.userID)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, purchase)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, purchase)
				if tt.check != nil {
					tt.check(t, purchase)
				}
			}

			mockProd.AssertExpectations(t)
			mockUser.AssertExpectations(t)
			mockPurch.AssertExpectations(t)
		})
	}
}

// memStore is a small in-memory store whose transactions serialize on a
// mutex, standing in for the database row lock.
type memStore struct {
	mu        sync.Mutex
	product   model.Product
	user      model.User
	purchases []model.Purchase
}

func (s *memStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx *repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	product, user, purchases := s.product, s.user, s.purchases
	err := fn(ctx, &repository.Tx{
		Users:     (*memUserRepo)(s),
		Products:  (*memProductRepo)(s),
		Purchases: (*memPurchaseRepo)(s),
	})
	if err != nil {
		// roll back
		s.product, s.user, s.purchases = product, user, purchases
	}
	return err
}

type memProductRepo memStore

func (r *memProductRepo) FindByNameForUpdate(ctx context.Context, name string) (*model.Product, error) {
	if name != r.product.Name {
		return nil, gorm.ErrRecordNotFound
	}
	p := r.product
	return &p, nil
}

func (r *memProductRepo) UpdateQuantity(ctx context.Context, id uint, newQuantity int) error {
	r.product.Quantity = newQuantity
	return nil
}

func (r *memProductRepo) Create(context.Context, *model.Product) error  { panic("unused") }
func (r *memProductRepo) Save(context.Context, *model.Product) error   { panic("unused") }
func (r *memProductRepo) FindByID(context.Context, uint) (*model.Product, error) {
	panic("unused")
}
func (r *memProductRepo) FindByName(context.Context, string) (*model.Product, error) {
	panic("unused")
}
func (r *memProductRepo) List(context.Context) ([]model.Product, error) { panic("unused") }
func (r *memProductRepo) Delete(context.Context, uint) error            { panic("unused") }

type memUserRepo memStore

func (r *memUserRepo) FindByIDForUpdate(ctx context.Context, id uint) (*model.User, error) {
	if id != r.user.ID {
		return nil, gorm.ErrRecordNotFound
	}
	u := r.user
	return &u, nil
}

func (r *memUserRepo) UpdateBalance(ctx context.Context, id uint, newBalance decimal.Decimal) error {
	r.user.Balance = newBalance
	return nil
}

func (r *memUserRepo) Create(context.Context, *model.User) error { panic("unused") }
func (r *memUserRepo) Save(context.Context, *model.User) error   { panic("unused") }
func (r *memUserRepo) FindByID(context.Context, uint) (*model.User, error) {
	panic("unused")
}
func (r *memUserRepo) FindByEmail(context.Context, string) (*model.User, error) {
	panic("unused")
}
func (r *memUserRepo) List(context.Context) ([]model.User, error) { panic("unused") }
func (r *memUserRepo) Delete(context.Context, uint) error         { panic("unused") }

type memPurchaseRepo memStore

func (r *memPurchaseRepo) Create(ctx context.Context, purchase *model.Purchase) error {
	r.purchases = append(r.purchases, *purchase)
	return nil
}

func (r *memPurchaseRepo) FindByID(context.Context, uuid.UUID) (*model.Purchase, error) {
	panic("unused")
}
func (r *memPurchaseRepo) ListAll(context.Context) ([]model.Purchase, error) { panic("unused") }
func (r *memPurchaseRepo) ListByUserID(context.Context, uint) ([]model.Purchase, error) {
	panic("unused")
}

// Concurrent purchases for the same product must never drive stock negative:
// exactly enough succeed to exhaust the stock, the rest fail.
func TestPurchaseService_ConcurrentPurchasesNeverOversell(t *testing.T) {
	store := &memStore{
		product: model.Product{ID: 1, Name: "widget", Price: decimal.RequireFromString("10.00"), Quantity: 5},
		user:    model.User{ID: 7, Email: "buyer@example.com", Balance: decimal.Zero},
	}
	svc := NewPurchaseService(store, (*memPurchaseRepo)(store), nil)

	const attempts = 12
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Purchase(context.Background(), "widget", 1, 7)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, apperrors.ErrInsufficientStock)
		}
	}

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 0, store.product.Quantity)
	assert.Len(t, store.purchases, 5)
	assert.True(t, store.user.Balance.Equal(decimal.RequireFromString("50.00")),
		"balance = %s", store.user.Balance)
}

package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "minimart/internal/errors"
	"minimart/internal/model"
)

func TestProductService_CreateProduct(t *testing.T) {
	tests := []struct {
		name          string
		product       *model.Product
		setupMock     func(*MockProductRepository)
		expectedError error
	}{
		{
			name:    "valid product",
			product: &model.Product{Name: "widget", Price: decimal.RequireFromString("10.00"), Quantity: 5},
			setupMock: func(m *MockProductRepository) {
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.Product")).Return(nil)
			},
		},
		{
			name:          "negative price",
			product:       &model.Product{Name: "widget", Price: decimal.RequireFromString("-1.00")},
			setupMock:     func(*MockProductRepository) {},
			expectedError: apperrors.ErrInvalidPrice,
		},
		{
			name:          "negative stock",
			product:       &model.Product{Name: "widget", Price: decimal.RequireFromString("10.00"), Quantity: -1},
			setupMock:     func(*MockProductRepository) {},
			expectedError: apperrors.ErrInvalidQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProductRepository)
			tt.setupMock(mockRepo)

			svc := NewProductService(mockRepo, nil)
			created, err := svc.CreateProduct(context.Background(), tt.product)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, created)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, created)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestProductService_GetProductByName_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockRepo.On("FindByName", mock.Anything, "vanished").Return(nil, gorm.ErrRecordNotFound)

	svc := NewProductService(mockRepo, nil)
	product, err := svc.GetProductByName(context.Background(), "vanished")

	assert.ErrorIs(t, err, apperrors.ErrProductNotFound)
	assert.Nil(t, product)
}

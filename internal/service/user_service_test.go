package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "minimart/internal/errors"
	"minimart/internal/model"
)

func TestUserService_ChangePassword(t *testing.T) {
	existing := func() *model.User {
		return &model.User{
			ID:           7,
			Email:        "test@example.com",
			PasswordHash: hashOf("old-password"),
		}
	}

	tests := []struct {
		name          string
		current       string
		newPassword   string
		confirmation  string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:         "successful change stores a new hash",
			current:      "old-password",
			newPassword:  "new-password",
			confirmation: "new-password",
			setupMock: func(mRepo *MockUserRepository) {
				mRepo.On("FindByID", mock.Anything, uint(7)).Return(existing(), nil)
				mRepo.On("Save", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name:         "wrong current password",
			current:      "not-the-password",
			newPassword:  "new-password",
			confirmation: "new-password",
			setupMock: func(mRepo *MockUserRepository) {
				mRepo.On("FindByID", mock.Anything, uint(7)).Return(existing(), nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:         "confirmation mismatch",
			current:      "old-password",
			newPassword:  "new-password",
			confirmation: "different",
			setupMock: func(mRepo *MockUserRepository) {
				mRepo.On("FindByID", mock.Anything, uint(7)).Return(existing(), nil)
			},
			expectedError: apperrors.ErrPasswordMismatch,
		},
		{
			name:         "unknown user",
			current:      "old-password",
			newPassword:  "new-password",
			confirmation: "new-password",
			setupMock: func(mRepo *MockUserRepository) {
				mRepo.On("FindByID", mock.Anything, uint(7)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockTokens := new(MockTokenRepository)
			tt.setupMock(mockRepo)

			svc := NewUserService(mockRepo, mockTokens, nil)
			err := svc.ChangePassword(context.Background(), 7, tt.current, tt.newPassword, tt.confirmation)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
				saved := mockRepo.Calls[len(mockRepo.Calls)-1].Arguments.Get(1).(*model.User)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.PasswordHash), []byte(tt.newPassword)))
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_UpdateMaxAmount(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockTokens := new(MockTokenRepository)

	mockRepo.On("FindByID", mock.Anything, uint(7)).Return(&model.User{ID: 7}, nil)
	mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	svc := NewUserService(mockRepo, mockTokens, nil)
	user, err := svc.UpdateMaxAmount(context.Background(), 7, decimal.RequireFromString("150.00"))

	assert.NoError(t, err)
	assert.True(t, user.MaxAmount.Equal(decimal.RequireFromString("150.00")))
	mockRepo.AssertExpectations(t)
}

func TestUserService_DeleteUser_CascadesTokensFirst(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockTokens := new(MockTokenRepository)

	var order []string
	mockRepo.On("FindByID", mock.Anything, uint(7)).Return(&model.User{ID: 7}, nil)
	mockTokens.On("DeleteByUserID", mock.Anything, uint(7)).
		Run(func(mock.Arguments) { order = append(order, "tokens") }).Return(nil)
	mockRepo.On("Delete", mock.Anything, uint(7)).
		Run(func(mock.Arguments) { order = append(order, "user") }).Return(nil)

	svc := NewUserService(mockRepo, mockTokens, nil)
	err := svc.DeleteUser(context.Background(), 7)

	assert.NoError(t, err)
	assert.Equal(t, []string{"tokens", "user"}, order)
	mockRepo.AssertExpectations(t)
	mockTokens.AssertExpectations(t)
}

func TestUserService_DeleteUser_NotFound(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, uint(404)).Return(nil, gorm.ErrRecordNotFound)

	svc := NewUserService(mockRepo, new(MockTokenRepository), nil)
	err := svc.DeleteUser(context.Background(), 404)

	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"minimart/internal/cache"
	apperrors "minimart/internal/errors"
	"minimart/internal/model"
	"minimart/internal/repository"
)

const productCacheTTL = 5 * time.Minute

// ProductService exposes catalog operations.
type ProductService interface {
	CreateProduct(ctx context.Context, product *model.Product) (*model.Product, error)
	UpdateProduct(ctx context.Context, product *model.Product) (*model.Product, error)
	GetProductByName(ctx context.Context, name string) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
}

type productService struct {
	repo  repository.ProductRepository
	cache *cache.Client
}

// NewProductService builds a ProductService with repository and cache.
func NewProductService(repo repository.ProductRepository, cache *cache.Client) ProductService {
	return &productService{repo: repo, cache: cache}
}

func productCacheKey(name string) string {
	return fmt.Sprintf("product:%s", name)
}

func validateProduct(product *model.Product) error {
	if product.Price.IsNegative() {
		return apperrors.ErrInvalidPrice
	}
	if product.Quantity < 0 {
		return apperrors.ErrInvalidQuantity
	}
	return nil
}

func (s *productService) CreateProduct(ctx context.Context, product *model.Product) (*model.Product, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, product *model.Product) (*model.Product, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	existing, err := s.repo.FindByID(ctx, product.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, err
	}
	if err := s.repo.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	// Name may have changed; drop both cache entries.
	_ = s.cache.Delete(ctx, productCacheKey(existing.Name))
	_ = s.cache.Delete(ctx, productCacheKey(product.Name))
	return product, nil
}

func (s *productService) GetProductByName(ctx context.Context, name string) (*model.Product, error) {
	if data, _ := s.cache.Get(ctx, productCacheKey(name)); data != nil {
		var cached model.Product
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	product, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(product); err == nil {
		_ = s.cache.Set(ctx, productCacheKey(name), payload, productCacheTTL)
	}
	return product, nil
}

func (s *productService) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.repo.List(ctx)
}

func (s *productService) DeleteProduct(ctx context.Context, id uint) error {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrProductNotFound
		}
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	_ = s.cache.Delete(ctx, productCacheKey(product.Name))
	return nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	repo   repository.ProductRepository
	logger zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		repo:   repo,
		logger: logger.With().Str("service", "product").Logger(),
	}
}

// GetAll retrieves all products with pagination.
func (s *productService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	products, err := s.repo.GetAll(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}
	return product, nil
}

// Create adds a product to the catalogue.
func (s *productService) Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error) {
	if err := validateProductRequest(req); err != nil {
		return nil, err
	}

	product := newProduct(req)
	if err := s.repo.Create(ctx, product); err != nil {
		s.logger.Error().Err(err).Msg("failed to create product")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().Str("product_id", product.ID.String()).Msg("product created")

	return product, nil
}

// CreateBulk adds multiple products to the catalogue in one call.
func (s *productService) CreateBulk(ctx context.Context, reqs []model.ProductRequest) ([]model.Product, error) {
	if len(reqs) == 0 {
		return nil, model.NewDomainError(model.ErrCodeValidation, "At least one product is required")
	}

	products := make([]model.Product, len(reqs))
	for i := range reqs {
		if err := validateProductRequest(&reqs[i]); err != nil {
			return nil, err
		}
		products[i] = *newProduct(&reqs[i])
	}

	if err := s.repo.CreateBulk(ctx, products); err != nil {
		s.logger.Error().Err(err).Int("count", len(products)).Msg("failed to create products in bulk")
		return nil, fmt.Errorf("failed to create products in bulk: %w", err)
	}

	s.logger.Info().Int("count", len(products)).Msg("bulk products created")

	return products, nil
}

// Update applies a partial update to a product. Nil fields keep their
// current value.
func (s *productService) Update(ctx context.Context, id uuid.UUID, req *model.ProductUpdateRequest) (*model.Product, error) {
	if req == nil {
		return nil, model.NewDomainError(model.ErrCodeValidation, "Request body is required")
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Images != nil {
		product.Images = req.Images
	}
	product.UpdatedAt = time.Now()

	if err := validateProduct(product); err != nil {
		return nil, err
	}

	found, err := s.repo.Update(ctx, product)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to update product")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if !found {
		return nil, model.ErrProductNotFound
	}

	s.logger.Info().Str("product_id", id.String()).Msg("product updated")

	return product, nil
}

// Delete removes a product from the catalogue.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if !found {
		return model.ErrProductNotFound
	}

	s.logger.Info().Str("product_id", id.String()).Msg("product deleted")

	return nil
}

// newProduct builds a Product from a creation request.
func newProduct(req *model.ProductRequest) *model.Product {
	now := time.Now()
	return &model.Product{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
		Images:      req.Images,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// validateProductRequest validates a product creation payload.
func validateProductRequest(req *model.ProductRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeValidation, "Request body is required")
	}
	return validateProduct(&model.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
	})
}

// validateProduct enforces the catalogue field constraints.
func validateProduct(p *model.Product) error {
	if len(p.Name) < 3 {
		return model.NewDomainError(model.ErrCodeValidation, "Name must be at least 3 characters long")
	}
	if len(p.Description) < 10 {
		return model.NewDomainError(model.ErrCodeValidation, "Description must be at least 10 characters long")
	}
	if p.Price <= 0 {
		return model.NewDomainError(model.ErrCodeValidation, "Price must be a positive number")
	}
	if p.Category == "" {
		return model.NewDomainError(model.ErrCodeValidation, "Category is required")
	}
	if p.Stock < 0 {
		return model.NewDomainError(model.ErrCodeValidation, "Stock must be a non-negative integer")
	}
	return nil
}

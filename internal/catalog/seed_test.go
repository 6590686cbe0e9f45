package catalog

import (
	"context"
	"testing"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductService is a mock implementation of service.ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) CreateBulk(ctx context.Context, reqs []model.ProductRequest) ([]model.Product, error) {
	args := m.Called(ctx, reqs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id uuid.UUID, req *model.ProductUpdateRequest) (*model.Product, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestSeed(t *testing.T) {
	ctx := context.Background()

	path := writeFixture(t, fixtureJSON)
	loader := NewFileLoader(zerolog.Nop())

	created := []model.Product{{ID: uuid.New()}, {ID: uuid.New()}}

	mockProducts := new(MockProductService)
	mockProducts.On("CreateBulk", ctx, mock.MatchedBy(func(reqs []model.ProductRequest) bool {
		return len(reqs) == 2 && reqs[0].Name == "Wireless Mouse"
	})).Return(created, nil)

	count, err := Seed(ctx, loader, path, mockProducts, zerolog.Nop())

	require.NoError(t, err)
	assert.Equal(t, 2, count)

	mockProducts.AssertExpectations(t)
}

func TestSeed_EmptyFixture(t *testing.T) {
	ctx := context.Background()

	path := writeFixture(t, `[]`)
	loader := NewFileLoader(zerolog.Nop())

	mockProducts := new(MockProductService)

	count, err := Seed(ctx, loader, path, mockProducts, zerolog.Nop())

	require.NoError(t, err)
	assert.Equal(t, 0, count)

	mockProducts.AssertNotCalled(t, "CreateBulk")
}

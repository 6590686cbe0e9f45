// Package catalog loads product fixture files into the catalogue. Fixtures
// are JSON arrays of product definitions, read from the local file system or
// from S3 with local fallback.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// Loader reads a product fixture file and returns its product definitions.
type Loader interface {
	Load(ctx context.Context, path string) ([]model.ProductRequest, error)
}

// fileLoader implements Loader for local JSON fixture files.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based fixture loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "fixture-loader").Logger(),
	}
}

// Load reads a JSON fixture file containing an array of product definitions.
func (l *fileLoader) Load(ctx context.Context, path string) ([]model.ProductRequest, error) {
	l.logger.Info().Str("file", path).Msg("loading product fixture file")

	data, err := os.ReadFile(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to read fixture file")
		return nil, fmt.Errorf("failed to read fixture file %s: %w", path, err)
	}

	products, err := decodeFixture(data)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to decode fixture file")
		return nil, fmt.Errorf("failed to decode fixture file %s: %w", path, err)
	}

	l.logger.Info().
		Str("file", path).
		Int("products_loaded", len(products)).
		Msg("product fixture file loaded successfully")

	return products, nil
}

// decodeFixture parses a fixture payload.
func decodeFixture(data []byte) ([]model.ProductRequest, error) {
	var products []model.ProductRequest
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Seed loads a fixture via the loader and bulk-inserts its products.
// Returns the number of products created.
func Seed(ctx context.Context, loader Loader, path string, products service.ProductService, logger zerolog.Logger) (int, error) {
	reqs, err := loader.Load(ctx, path)
	if err != nil {
		return 0, err
	}

	if len(reqs) == 0 {
		logger.Warn().Str("file", path).Msg("fixture file contained no products")
		return 0, nil
	}

	created, err := products.CreateBulk(ctx, reqs)
	if err != nil {
		return 0, fmt.Errorf("failed to seed catalogue: %w", err)
	}

	logger.Info().Int("count", len(created)).Msg("catalogue seeded")

	return len(created), nil
}

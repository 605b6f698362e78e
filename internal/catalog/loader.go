package catalog

import (
	"context"
	"fmt"
	"os"

	"shopfront/internal/model"

	"github.com/rs/zerolog"
)

// fileLoader reads feeds from the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a file-based feed loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "catalog-loader").Logger(),
	}
}

func (l *fileLoader) Load(ctx context.Context, path string) ([]model.Product, error) {
	l.logger.Info().Str("file", path).Msg("loading catalog feed")

	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open catalog feed")
		return nil, fmt.Errorf("failed to open catalog feed %s: %w", path, err)
	}
	defer file.Close()

	products, err := parseFeed(ctx, file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to parse catalog feed")
		return nil, fmt.Errorf("catalog feed %s: %w", path, err)
	}

	l.logger.Info().
		Str("file", path).
		Int("products_loaded", len(products)).
		Msg("catalog feed loaded")

	return products, nil
}

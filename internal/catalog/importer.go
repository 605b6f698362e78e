package catalog

import (
	"context"
	"fmt"
	"sync"

	"shopfront/internal/model"

	"github.com/rs/zerolog"
)

// Result summarises an import run.
type Result struct {
	Feeds    int `json:"feeds"`
	Rows     int `json:"rows"`
	Products int `json:"products"`
	Written  int `json:"written"`
}

// Importer loads feeds and writes them to the catalogue.
type Importer struct {
	loader Loader
	writer ProductWriter
	logger zerolog.Logger
}

// NewImporter creates an importer.
func NewImporter(loader Loader, writer ProductWriter, logger zerolog.Logger) *Importer {
	return &Importer{
		loader: loader,
		writer: writer,
		logger: logger.With().Str("component", "catalog-importer").Logger(),
	}
}

// Import loads all feeds concurrently and upserts the merged products. When
// several feeds list the same id, the feed later in paths wins. Nothing is
// written if any feed fails to load.
func (i *Importer) Import(ctx context.Context, paths []string) (Result, error) {
	if len(paths) == 0 {
		return Result{}, fmt.Errorf("no catalog feeds given")
	}

	i.logger.Info().Int("feed_count", len(paths)).Msg("starting catalog import")

	type loadResult struct {
		products []model.Product
		err      error
	}

	results := make([]loadResult, len(paths))
	var wg sync.WaitGroup
	for idx, path := range paths {
		idx, path := idx, path
		wg.Add(1)
		go func() {
			defer wg.Done()
			products, err := i.loader.Load(ctx, path)
			results[idx] = loadResult{products: products, err: err}
		}()
	}
	wg.Wait()

	res := Result{Feeds: len(paths)}
	merged := make(map[string]int)
	var products []model.Product
	for idx, r := range results {
		if r.err != nil {
			i.logger.Error().Err(r.err).Str("feed", paths[idx]).Msg("failed to load catalog feed")
			return Result{}, fmt.Errorf("failed to load catalog feed %s: %w", paths[idx], r.err)
		}
		for _, p := range r.products {
			res.Rows++
			if pos, ok := merged[p.ID]; ok {
				products[pos] = p
				continue
			}
			merged[p.ID] = len(products)
			products = append(products, p)
		}
	}
	res.Products = len(products)

	written, err := i.writer.Upsert(ctx, products)
	if err != nil {
		return Result{}, fmt.Errorf("failed to write catalog: %w", err)
	}
	res.Written = written

	i.logger.Info().
		Int("feeds", res.Feeds).
		Int("rows", res.Rows).
		Int("products", res.Products).
		Int("written", res.Written).
		Msg("catalog import completed")

	return res, nil
}

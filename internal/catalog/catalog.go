// Package catalog imports product feeds into the catalogue.
//
// A feed is a gzipped CSV file with the header
//
//	id,name,category,price,stock,status
//
// read from the local file system or an S3 bucket.
package catalog

import (
	"context"

	"shopfront/internal/model"
)

// Loader reads one feed.
type Loader interface {
	// Load returns the products listed in the feed at path.
	Load(ctx context.Context, path string) ([]model.Product, error)
}

// ProductWriter persists imported products.
type ProductWriter interface {
	Upsert(ctx context.Context, products []model.Product) (int, error)
}

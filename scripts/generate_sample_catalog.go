//go:build ignore

// Generates sample catalog feeds for local development:
//
//	go run scripts/generate_sample_catalog.go
//	shopctl import-catalog data/catalog/base.csv.gz data/catalog/overrides.csv.gz
package main

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// base.csv.gz lists the starting catalogue. overrides.csv.gz reprices one
// product and marks another sold out; imported after base it wins.
func main() {
	dataDir := "data/catalog"

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	feeds := map[string][][]string{
		"base.csv.gz": {
			{"TEA-001", "Cast Iron Teapot", "Kitchen", "39.90", "12", "active"},
			{"MUG-002", "Stoneware Mug", "Kitchen", "8.50", "120", "active"},
			{"KNF-003", "Chef's Knife", "Kitchen", "64.00", "5", "active"},
			{"LMP-004", "Desk Lamp", "Home", "29.99", "1", "active"},
			{"RUG-005", "Wool Rug", "Home", "149.00", "3", "active"},
			{"PEN-006", "Fountain Pen", "Stationery", "22.00", "40", "active"},
			{"NTB-007", "Dot Grid Notebook", "Stationery", "12.75", "0", "sold_out"},
			{"CHR-008", "Reading Chair", "Home", "310.00", "2", "inactive"},
		},
		"overrides.csv.gz": {
			{"MUG-002", "Stoneware Mug", "Kitchen", "7.95", "120", "active"},
			{"RUG-005", "Wool Rug", "Home", "149.00", "0", "sold_out"},
		},
	}

	for filename, rows := range feeds {
		filePath := filepath.Join(dataDir, filename)

		if err := createFeed(filePath, rows); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d products\n", filePath, len(rows))
	}
}

func createFeed(filePath string, rows [][]string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	w := csv.NewWriter(gzipWriter)
	if err := w.Write([]string{"id", "name", "category", "price", "stock", "status"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}

package catalog

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"shopfront/internal/model"

	"github.com/shopspring/decimal"
)

var feedHeader = []string{"id", "name", "category", "price", "stock", "status"}

// cancelCheckInterval is how many rows are parsed between context checks.
const cancelCheckInterval = 10_000

// parseFeed decompresses and parses a feed. Blank status defaults to active.
func parseFeed(ctx context.Context, r io.Reader) ([]model.Product, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	reader := csv.NewReader(gz)
	reader.FieldsPerRecord = len(feedHeader)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("feed is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i, name := range feedHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), name) {
			return nil, fmt.Errorf("unexpected header column %d: got %q, want %q", i+1, header[i], name)
		}
	}

	var products []model.Product
	for line := 2; ; line++ {
		if line%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		p, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		products = append(products, p)
	}

	return products, nil
}

func parseRow(record []string) (model.Product, error) {
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}

	price, err := decimal.NewFromString(record[3])
	if err != nil {
		return model.Product{}, fmt.Errorf("invalid price %q: %w", record[3], err)
	}
	stock, err := strconv.Atoi(record[4])
	if err != nil {
		return model.Product{}, fmt.Errorf("invalid stock %q: %w", record[4], err)
	}

	req := model.CreateProductRequest{
		ID:       record[0],
		Name:     record[1],
		Category: record[2],
		Price:    price,
		Stock:    stock,
		Status:   model.ProductStatus(record[5]),
	}
	if err := req.Validate(); err != nil {
		return model.Product{}, err
	}

	return model.Product{
		ID:       req.ID,
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		Stock:    req.Stock,
		Status:   req.Status,
	}, nil
}

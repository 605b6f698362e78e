package catalog

import (
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shopfront/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipBytes(t *testing.T, content string) []byte {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// createTestFeed writes a gzipped feed into a temp dir and returns its path.
func createTestFeed(t *testing.T, filename string, rows ...string) string {
	path := filepath.Join(t.TempDir(), filename)
	content := "id,name,category,price,stock,status\n" + strings.Join(rows, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, gzipBytes(t, content), 0o600))
	return path
}

func TestParseFeed(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		content     string
		expected    []model.Product
		errContains string
	}{
		{
			name:    "Valid rows",
			content: "id,name,category,price,stock,status\np1,Teapot,Kitchen,19.99,4,active\np2, Mug ,Kitchen,3.50,0,sold_out\n",
			expected: []model.Product{
				{ID: "p1", Name: "Teapot", Category: "Kitchen", Price: decimal.RequireFromString("19.99"), Stock: 4, Status: model.ProductStatusActive},
				{ID: "p2", Name: "Mug", Category: "Kitchen", Price: decimal.RequireFromString("3.50"), Stock: 0, Status: model.ProductStatusSoldOut},
			},
		},
		{
			name:    "Blank status defaults to active",
			content: "id,name,category,price,stock,status\np1,Teapot,,5,1,\n",
			expected: []model.Product{
				{ID: "p1", Name: "Teapot", Price: decimal.RequireFromString("5"), Stock: 1, Status: model.ProductStatusActive},
			},
		},
		{
			name:    "Header only",
			content: "id,name,category,price,stock,status\n",
		},
		{name: "Empty", content: "", errContains: "empty"},
		{name: "Wrong header", content: "sku,name,category,price,stock,status\n", errContains: "unexpected header"},
		{name: "Bad price", content: "id,name,category,price,stock,status\np1,T,C,abc,1,active\n", errContains: "line 2: invalid price"},
		{name: "Bad stock", content: "id,name,category,price,stock,status\np1,T,C,1,x,active\n", errContains: "invalid stock"},
		{name: "Negative stock", content: "id,name,category,price,stock,status\np1,T,C,1,-1,active\n", errContains: "stock must not be negative"},
		{name: "Unknown status", content: "id,name,category,price,stock,status\np1,T,C,1,1,gone\n", errContains: "invalid product status"},
		{name: "Missing column", content: "id,name,category,price,stock,status\np1,T,C,1,1\n", errContains: "line 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := parseFeed(ctx, bytes.NewReader(gzipBytes(t, tt.content)))

			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			require.Len(t, products, len(tt.expected))
			for i := range tt.expected {
				assert.Equal(t, tt.expected[i].ID, products[i].ID)
				assert.Equal(t, tt.expected[i].Name, products[i].Name)
				assert.Equal(t, tt.expected[i].Category, products[i].Category)
				assert.True(t, tt.expected[i].Price.Equal(products[i].Price))
				assert.Equal(t, tt.expected[i].Stock, products[i].Stock)
				assert.Equal(t, tt.expected[i].Status, products[i].Status)
			}
		})
	}
}

func TestParseFeed_NotGzipped(t *testing.T) {
	_, err := parseFeed(context.Background(), strings.NewReader("id,name\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gzip")
}

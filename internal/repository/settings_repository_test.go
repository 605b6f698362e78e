package repository

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsRepository(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewSettingsRepository(pool, zerolog.Nop())
	ctx := context.Background()

	values, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, values)

	require.NoError(t, repo.Upsert(ctx, map[string]string{
		"store_name":      "Shopfront",
		"payment_methods": "card,cod",
	}))
	require.NoError(t, repo.Upsert(ctx, map[string]string{"store_name": "Renamed"}))
	require.NoError(t, repo.Upsert(ctx, nil))

	values, err = repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"store_name":      "Renamed",
		"payment_methods": "card,cod",
	}, values)
}

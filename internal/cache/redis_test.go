package cache

import (
	"context"
	"testing"
	"time"

	"shopfront/internal/config"
	"shopfront/internal/model"
	"shopfront/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var _ service.Cache = (*RedisCache)(nil)

func setupTestRedis(t *testing.T) *RedisCache {
	if testing.Short() {
		t.Skip("skipping redis test in short mode")
	}

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	c, err := NewRedisCache(ctx, config.RedisConfig{Enabled: true, Addr: endpoint}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c
}

func TestRedisCache_RoundTrip(t *testing.T) {
	c := setupTestRedis(t)
	ctx := context.Background()

	var dest model.Settings
	found, err := c.Get(ctx, "missing", &dest)
	require.NoError(t, err)
	assert.False(t, found)

	snapshot := model.NewSettings(map[string]string{model.SettingPaymentMethods: "card,cod"})
	require.NoError(t, c.Set(ctx, "settings", snapshot, time.Minute))

	found, err = c.Get(ctx, "settings", &dest)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"card", "cod"}, dest.PaymentMethods())

	require.NoError(t, c.Delete(ctx, "settings"))
	found, err = c.Get(ctx, "settings", &dest)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_Expiry(t *testing.T) {
	c := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", map[string]int{"n": 1}, 100*time.Millisecond))

	assert.Eventually(t, func() bool {
		var dest map[string]int
		found, err := c.Get(ctx, "short", &dest)
		return err == nil && !found
	}, 3*time.Second, 50*time.Millisecond)
}

func TestRedisCache_UndecodableIsMiss(t *testing.T) {
	c := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.client.Set(ctx, "raw", "not-json", time.Minute).Err())

	var dest map[string]string
	found, err := c.Get(ctx, "raw", &dest)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisCache(ctx, config.RedisConfig{Addr: "127.0.0.1:1"}, zerolog.Nop())
	assert.Error(t, err)
}

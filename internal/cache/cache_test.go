package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-reservation-service/internal/store"
)

func newTestCache(t *testing.T) (*CacheClient, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := NewCacheClient([]string{server.Addr()}, "", 5*time.Minute, "inv:")
	t.Cleanup(func() { _ = client.Close() })
	return client, server
}

func TestSetStock_WritesPrefixedKeyWithTTL(t *testing.T) {
	client, server := newTestCache(t)

	err := client.SetStock(context.Background(), store.StockSnapshot{
		ProductID: "OLJCESPC7Z",
		Name:      "National Park Foundation Explorascope",
		Available: 95,
	})
	require.NoError(t, err)

	raw, err := server.Get("inv:stock:OLJCESPC7Z")
	require.NoError(t, err)

	var snap store.StockSnapshot
	require.NoError(t, json.Unmarshal([]byte(raw), &snap))
	assert.Equal(t, "OLJCESPC7Z", snap.ProductID)
	assert.Equal(t, 95, snap.Available)

	assert.Equal(t, 5*time.Minute, server.TTL("inv:stock:OLJCESPC7Z"))
}

func TestSetSnapshot_WritesEveryProduct(t *testing.T) {
	client, server := newTestCache(t)

	err := client.SetSnapshot(context.Background(), []store.StockSnapshot{
		{ProductID: "OLJCESPC7Z", Name: "National Park Foundation Explorascope", Available: 100},
		{ProductID: "9SIQT8TOJO", Name: "Optical Tube Assembly", Available: 25},
	})
	require.NoError(t, err)

	assert.True(t, server.Exists("inv:stock:OLJCESPC7Z"))
	assert.True(t, server.Exists("inv:stock:9SIQT8TOJO"))
}

func TestNilCacheClient_IsSafe(t *testing.T) {
	var c *CacheClient
	c.UpdateStockAsync(store.StockSnapshot{ProductID: "X", Available: 1})
	assert.NoError(t, c.Close())
}

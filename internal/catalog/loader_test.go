package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `{
	"products": [
		{"id": "p-1", "name": "Widget", "category": "tools", "price": 10.00},
		{"id": "p-2", "name": "Gadget", "category": "tools", "price": 5.5}
	]
}`

func TestLoadFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleDocument))
	}))
	defer srv.Close()

	loader := &Loader{URL: srv.URL}
	products, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.Equal(t, "p-1", products[0].ID)
	require.True(t, products[0].Price.Equal(decimal.RequireFromString("10.00")))
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDocument), 0o600))

	loader := &Loader{Path: path}
	products, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.Equal(t, "Gadget", products[1].Name)
}

func TestLoadNoSource(t *testing.T) {
	loader := &Loader{}
	_, err := loader.Load(context.Background())
	require.ErrorIs(t, err, ErrNoSource)
}

func TestLoadRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	loader := &Loader{URL: srv.URL}
	_, err := loader.Load(context.Background())
	require.Error(t, err)
}

func TestLoadRejectsInvalidRecords(t *testing.T) {
	cases := map[string]string{
		"missing name":   `{"products": [{"id": "p-1", "price": 1}]}`,
		"negative price": `{"products": [{"id": "p-1", "name": "X", "price": -1}]}`,
		"duplicate id":   `{"products": [{"id": "p-1", "name": "X", "price": 1}, {"id": "p-1", "name": "Y", "price": 2}]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "products.json")
			require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
			_, err := (&Loader{Path: path}).Load(context.Background())
			require.Error(t, err)
		})
	}
}

func TestLoadUsesCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()
	cache := NewCache(client, time.Minute)

	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		_, _ = w.Write([]byte(sampleDocument))
	}))
	defer srv.Close()

	loader := &Loader{URL: srv.URL, Cache: cache}
	ctx := context.Background()

	first, err := loader.Load(ctx)
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.Equal(t, 1, hits)

	second, err := loader.Load(ctx)
	require.NoError(t, err)
	require.Len(t, second, 2)
	require.Equal(t, 1, hits, "second load should be served from cache")
	require.True(t, second[1].Price.Equal(decimal.RequireFromString("5.5")))
}

func TestCacheNilSafe(t *testing.T) {
	var cache *Cache
	ok, err := cache.GetProducts(context.Background(), &[]Product{})
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, cache.SetProducts(context.Background(), nil))
}

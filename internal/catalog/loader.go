package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrNoSource is returned when neither a URL nor a file path is configured.
var ErrNoSource = errors.New("catalog: no source configured")

// Loader fetches and validates the product catalog from an HTTP endpoint or a
// local file. A Redis-backed cache is optional; when present the parsed
// product list is cached between restarts.
type Loader struct {
	Client   *http.Client
	URL      string
	Path     string
	Cache    *Cache
	Validate *validator.Validate
}

// Load returns the validated product list. Records that fail validation are
// rejected as a whole: a catalog with a malformed entry is a broken document,
// not a partial one.
func (l *Loader) Load(ctx context.Context) ([]Product, error) {
	if l.Cache != nil {
		var cached []Product
		if ok, err := l.Cache.GetProducts(ctx, &cached); err == nil && ok {
			return cached, nil
		}
	}

	raw, err := l.fetch(ctx)
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("catalog: decode document: %w", err)
	}
	if err := l.validate(doc.Products); err != nil {
		return nil, err
	}

	if l.Cache != nil {
		_ = l.Cache.SetProducts(ctx, doc.Products)
	}
	return doc.Products, nil
}

func (l *Loader) fetch(ctx context.Context) ([]byte, error) {
	switch {
	case strings.TrimSpace(l.URL) != "":
		return l.fetchURL(ctx)
	case strings.TrimSpace(l.Path) != "":
		data, err := os.ReadFile(l.Path)
		if err != nil {
			return nil, fmt.Errorf("catalog: read %s: %w", l.Path, err)
		}
		return data, nil
	default:
		return nil, ErrNoSource
	}
}

func (l *Loader) fetchURL(ctx context.Context) ([]byte, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetch %s: %w", l.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog: fetch %s: unexpected status %d", l.URL, resp.StatusCode)
	}
	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("catalog: read response: %w", err)
	}
	return buf, nil
}

func (l *Loader) validate(products []Product) error {
	v := l.Validate
	if v == nil {
		v = validator.New()
	}
	seen := make(map[string]struct{}, len(products))
	for i, p := range products {
		if err := v.Struct(p); err != nil {
			return fmt.Errorf("catalog: product %d invalid: %w", i, err)
		}
		if p.Price.IsNegative() {
			return fmt.Errorf("catalog: product %q has negative price %s", p.ID, p.Price)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("catalog: duplicate product id %q", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"artwaves-catalog/catalog"
	"artwaves-catalog/models"
)

// Source is the catalog the warmer reads from.
type Source interface {
	Products(ctx context.Context) ([]models.Product, error)
	Categories(ctx context.Context) ([]models.Category, error)
}

// Warmer periodically preloads the category list and every product detail
// document so the first request after a flush is a hit.
type Warmer struct {
	cache    *Cache
	source   Source
	interval time.Duration
	ttl      time.Duration
	logger   *slog.Logger
}

func NewWarmer(c *Cache, source Source, interval, ttl time.Duration, logger *slog.Logger) *Warmer {
	return &Warmer{
		cache:    c,
		source:   source,
		interval: interval,
		ttl:      ttl,
		logger:   logger.With("component", "cache-warmer"),
	}
}

// Start warms the cache once and then on every tick until ctx is cancelled.
func (w *Warmer) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			if err := w.Warm(ctx); err != nil {
				w.logger.Warn("cache warm failed", "error", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Warm runs one pass.
func (w *Warmer) Warm(ctx context.Context) error {
	categories, err := w.source.Categories(ctx)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	if err := w.cache.Set(ctx, CategoriesKey, categories, w.ttl); err != nil {
		return fmt.Errorf("cache categories: %w", err)
	}

	products, err := w.source.Products(ctx)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	for _, p := range products {
		details, _ := catalog.Details(products, p.ID)
		key := fmt.Sprintf(ProductDetailPattern, p.ID)
		if err := w.cache.Set(ctx, key, details, w.ttl); err != nil {
			w.logger.Warn("failed to cache product", "id", p.ID, "error", err)
		}
	}

	w.logger.Debug("cache warmed", "products", len(products), "categories", len(categories))
	return nil
}

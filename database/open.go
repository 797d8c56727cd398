package database

import (
	"context"
	"fmt"
	"log/slog"

	"artwaves-catalog/config"
	"artwaves-catalog/models"
)

// Catalog is what every backend provides.
type Catalog interface {
	Products(ctx context.Context) ([]models.Product, error)
	Categories(ctx context.Context) ([]models.Category, error)
	SaveReview(ctx context.Context, productID int, review models.Review, avg float64, count int) error
	ReplaceCatalog(ctx context.Context, data models.CatalogData) error
	Close() error
}

var (
	_ Catalog = (*FileCatalog)(nil)
	_ Catalog = (*MongoCatalog)(nil)
	_ Catalog = (*SQLiteCatalog)(nil)
)

// Open returns the backend selected by cfg.Backend.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Catalog, error) {
	switch cfg.Backend {
	case config.BackendFile:
		return NewFileCatalog(cfg.CatalogFile, logger), nil
	case config.BackendSQLite:
		store, err := NewSQLiteCatalog(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendMongo:
		client, err := Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		return NewMongoCatalog(client, cfg.MongoDatabase, logger), nil
	default:
		return nil, fmt.Errorf("unknown catalog backend %q", cfg.Backend)
	}
}

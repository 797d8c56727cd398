package handlers

import (
	"context"
	"log/slog"
	"time"

	"artwaves-catalog/models"
	"artwaves-catalog/utils"
)

// CatalogStore supplies the catalog. Every call may reload it.
type CatalogStore interface {
	Products(ctx context.Context) ([]models.Product, error)
	Categories(ctx context.Context) ([]models.Category, error)
	SaveReview(ctx context.Context, productID int, review models.Review, avg float64, count int) error
}

// ResponseCache stores JSON response documents.
type ResponseCache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, data any, expiration time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
	Flush(ctx context.Context) error
}

// Handler serves the catalog API.
type Handler struct {
	Store        CatalogStore
	Cache        ResponseCache // nil disables caching
	CacheTTL     time.Duration
	Logger       *slog.Logger
	ResponseHdlr *ResponseHandler
	ErrorHdlr    *utils.ErrorHandler

	now func() time.Time
}

// NewHandler wires a handler. Pass a nil cache to serve uncached.
func NewHandler(store CatalogStore, cache ResponseCache, ttl time.Duration, logger *slog.Logger) *Handler {
	return &Handler{
		Store:        store,
		Cache:        cache,
		CacheTTL:     ttl,
		Logger:       logger.With("component", "handlers"),
		ResponseHdlr: NewResponseHandler(),
		ErrorHdlr:    utils.NewErrorHandler(),
		now:          time.Now,
	}
}

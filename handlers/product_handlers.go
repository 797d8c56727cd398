package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"artwaves-catalog/cache"
	"artwaves-catalog/catalog"
	"artwaves-catalog/database"
	"artwaves-catalog/models"
	"artwaves-catalog/utils"
)

const maxBodyBytes = 1 << 20

// apiError is a failed lookup on its way to the client.
type apiError struct {
	status  int
	message string
	cause   error
}

func notFound(message string) *apiError {
	return &apiError{status: http.StatusNotFound, message: message}
}

// unavailable reports a catalog that could not be loaded.
func unavailable(message string, err error) *apiError {
	return &apiError{status: http.StatusServiceUnavailable, message: message, cause: err}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, e *apiError) {
	if e.status == http.StatusServiceUnavailable {
		h.Logger.Error("catalog unavailable", "path", r.URL.Path, "error", e.cause)
		h.ErrorHdlr.HandleServiceUnavailable(w, e.message, e.cause)
		return
	}
	h.ErrorHdlr.HandleError(w, e.status, e.message)
}

// serveCached writes the document cached under key, or builds, caches and
// writes it. Cache failures are logged and otherwise ignored.
func (h *Handler) serveCached(w http.ResponseWriter, r *http.Request, key string, build func(ctx context.Context) (any, *apiError)) {
	ctx := r.Context()

	if h.Cache != nil {
		var cached json.RawMessage
		err := h.Cache.Get(ctx, key, &cached)
		if err == nil {
			w.Header().Set("X-Cache", "HIT")
			h.ResponseHdlr.JSON(w, http.StatusOK, cached)
			return
		}
		if !errors.Is(err, cache.ErrMiss) {
			h.Logger.Warn("cache read failed", "key", key, "error", err)
		}
		w.Header().Set("X-Cache", "MISS")
	}

	data, apiErr := build(ctx)
	if apiErr != nil {
		h.writeError(w, r, apiErr)
		return
	}

	if h.Cache != nil {
		if err := h.Cache.Set(ctx, key, data, h.CacheTTL); err != nil {
			h.Logger.Warn("cache write failed", "key", key, "error", err)
		}
	}
	h.ResponseHdlr.JSON(w, http.StatusOK, data)
}

// invalidate drops every cached document that can embed product data.
func (h *Handler) invalidate(ctx context.Context) {
	if h.Cache == nil {
		return
	}
	for _, pattern := range []string{cache.ProductListPattern, cache.ProductDetailsGlob} {
		if err := h.Cache.DeleteByPattern(ctx, pattern); err != nil {
			h.Logger.Warn("cache invalidation failed", "pattern", pattern, "error", err)
		}
	}
}

// FilterProducts handles POST /api/products/filter.
func (h *Handler) FilterProducts(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.ErrorHdlr.HandleBadRequest(w, "Invalid request body")
		return
	}
	req, err := catalog.DecodeFilterRequest(body)
	if err != nil {
		h.ErrorHdlr.HandleBadRequest(w, "Invalid request body")
		return
	}

	key := fmt.Sprintf(cache.ProductFilterPattern, req.Fingerprint())
	h.serveCached(w, r, key, func(ctx context.Context) (any, *apiError) {
		products, err := h.Store.Products(ctx)
		if err != nil {
			return nil, unavailable("Error filtering products", err)
		}
		resp := catalog.Query(products, req)
		h.Logger.Debug("filter",
			"matched", resp.Pagination.TotalItems,
			"page", resp.Pagination.CurrentPage,
			"limit", resp.Pagination.ItemsPerPage,
		)
		return resp, nil
	})
}

// ListProducts handles GET /api/products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	params := catalog.ParseListParams(r.URL.Query())

	key := fmt.Sprintf(cache.ProductPagePattern, fingerprint(params))
	h.serveCached(w, r, key, func(ctx context.Context) (any, *apiError) {
		products, err := h.Store.Products(ctx)
		if err != nil {
			return nil, unavailable("Error loading products", err)
		}
		return catalog.List(products, params), nil
	})
}

// ListCategories handles GET /api/products/categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var categories []models.Category
	hit := false
	if h.Cache != nil {
		err := h.Cache.Get(ctx, cache.CategoriesKey, &categories)
		hit = err == nil
		if err != nil && !errors.Is(err, cache.ErrMiss) {
			h.Logger.Warn("cache read failed", "key", cache.CategoriesKey, "error", err)
		}
	}

	if !hit {
		var err error
		categories, err = h.Store.Categories(ctx)
		if err != nil {
			h.writeError(w, r, unavailable("Error loading categories", err))
			return
		}
		if h.Cache != nil {
			if err := h.Cache.Set(ctx, cache.CategoriesKey, categories, h.CacheTTL); err != nil {
				h.Logger.Warn("cache write failed", "key", cache.CategoriesKey, "error", err)
			}
		}
	}

	if h.Cache != nil {
		w.Header().Set("X-Cache", cacheStatus(hit))
	}
	if categories == nil {
		categories = []models.Category{}
	}
	h.ResponseHdlr.JSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// GetCategoryProducts handles GET /api/products/category/{categoryId}.
func (h *Handler) GetCategoryProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := catalog.ParseInt(mux.Vars(r)["categoryId"])
	if !ok {
		h.ErrorHdlr.HandleNotFound(w, "Category not found")
		return
	}

	key := fmt.Sprintf(cache.CategoryPattern, id)
	h.serveCached(w, r, key, func(ctx context.Context) (any, *apiError) {
		categories, err := h.Store.Categories(ctx)
		if err != nil {
			return nil, unavailable("Error loading category products", err)
		}
		category, ok := catalog.FindCategory(categories, id)
		if !ok {
			return nil, notFound("Category not found")
		}
		products, err := h.Store.Products(ctx)
		if err != nil {
			return nil, unavailable("Error loading category products", err)
		}
		return map[string]any{
			"category": category,
			"products": catalog.InCategory(products, id),
		}, nil
	})
}

// SearchProducts handles GET /api/products/search?q=.
func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(r.URL.Query().Get("q"))

	key := fmt.Sprintf(cache.ProductSearchPattern, fingerprint(query))
	h.serveCached(w, r, key, func(ctx context.Context) (any, *apiError) {
		products, err := h.Store.Products(ctx)
		if err != nil {
			return nil, unavailable("Error searching products", err)
		}
		results := catalog.Search(products, query)
		return map[string]any{
			"query":   query,
			"results": results,
			"total":   len(results),
		}, nil
	})
}

// GetProductDetails handles GET /api/products/{id}.
func (h *Handler) GetProductDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := catalog.ParseInt(mux.Vars(r)["id"])
	if !ok {
		h.ErrorHdlr.HandleNotFound(w, "Product not found")
		return
	}

	key := fmt.Sprintf(cache.ProductDetailPattern, id)
	h.serveCached(w, r, key, func(ctx context.Context) (any, *apiError) {
		products, err := h.Store.Products(ctx)
		if err != nil {
			return nil, unavailable("Error loading product", err)
		}
		details, ok := catalog.Details(products, id)
		if !ok {
			return nil, notFound("Product not found")
		}
		return details, nil
	})
}

// GetProductReviews handles GET /api/products/{id}/reviews. Reviews are
// always read from the store.
func (h *Handler) GetProductReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := catalog.ParseInt(mux.Vars(r)["id"])
	if !ok {
		h.ErrorHdlr.HandleNotFound(w, "Product not found")
		return
	}

	products, err := h.Store.Products(r.Context())
	if err != nil {
		h.writeError(w, r, unavailable("Error loading reviews", err))
		return
	}
	product, ok := catalog.FindProduct(products, id)
	if !ok {
		h.ErrorHdlr.HandleNotFound(w, "Product not found")
		return
	}

	reviews := product.Reviews
	if reviews == nil {
		reviews = []models.Review{}
	}
	h.ResponseHdlr.JSON(w, http.StatusOK, map[string]any{
		"product_id":     id,
		"reviews":        reviews,
		"average_rating": product.AverageRating,
		"review_count":   product.ReviewCount,
	})
}

// AddProductReview handles POST /api/products/{id}/reviews.
func (h *Handler) AddProductReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := catalog.ParseInt(mux.Vars(r)["id"])
	if !ok {
		h.ErrorHdlr.HandleNotFound(w, "Product not found")
		return
	}

	var req models.CreateReviewRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.ErrorHdlr.HandleBadRequest(w, "Invalid request body")
		return
	}
	req.Comment = strings.TrimSpace(req.Comment)
	req.ReviewerName = strings.TrimSpace(req.ReviewerName)

	validationErrors, err := utils.ValidateStruct(req)
	if err != nil {
		h.ErrorHdlr.HandleInternalError(w, "Error validating review")
		return
	}
	if len(validationErrors) > 0 {
		h.ErrorHdlr.HandleValidationError(w, validationErrors)
		return
	}

	products, err := h.Store.Products(ctx)
	if err != nil {
		h.writeError(w, r, unavailable("Error adding review", err))
		return
	}
	product, ok := catalog.FindProduct(products, id)
	if !ok {
		h.ErrorHdlr.HandleNotFound(w, "Product not found")
		return
	}

	review := catalog.AddReview(&product, req, h.now())
	err = h.Store.SaveReview(ctx, id, review, product.AverageRating, product.ReviewCount)
	if errors.Is(err, database.ErrNotFound) {
		h.ErrorHdlr.HandleNotFound(w, "Product not found")
		return
	}
	if err != nil {
		h.Logger.Error("save review failed", "product_id", id, "error", err)
		h.ErrorHdlr.HandleErrorWithDetails(w, http.StatusInternalServerError, "Error adding review", err)
		return
	}

	h.invalidate(ctx)
	h.Logger.Info("review added", "product_id", id, "review_id", review.ID, "average_rating", product.AverageRating)

	h.ResponseHdlr.JSON(w, http.StatusOK, map[string]any{
		"message": "Review added successfully",
		"review":  review,
	})
}

// FlushCache handles POST /api/admin/cache/flush.
func (h *Handler) FlushCache(w http.ResponseWriter, r *http.Request) {
	if h.Cache == nil {
		h.ResponseHdlr.Success(w, "Cache disabled", nil)
		return
	}
	if err := h.Cache.Flush(r.Context()); err != nil {
		h.Logger.Error("cache flush failed", "error", err)
		h.ErrorHdlr.HandleErrorWithDetails(w, http.StatusInternalServerError, "Error flushing cache", err)
		return
	}
	h.Logger.Info("cache flushed")
	h.ResponseHdlr.Success(w, "Cache flushed", nil)
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.ResponseHdlr.JSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// Root handles GET /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Catalog server is running"))
}

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

// fingerprint hashes the JSON form of v into a cache key suffix.
func fingerprint(v any) string {
	b, _ := json.Marshal(v)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

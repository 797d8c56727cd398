package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"artwaves-catalog/cache"
	"artwaves-catalog/catalog"
	"artwaves-catalog/database"
	"artwaves-catalog/logging"
	"artwaves-catalog/models"
)

// memStore is an in-memory CatalogStore.
type memStore struct {
	mu         sync.Mutex
	products   []models.Product
	categories []models.Category
	err        error
	loads      int
}

func (m *memStore) Products(context.Context) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.Product, len(m.products))
	copy(out, m.products)
	return out, nil
}

func (m *memStore) Categories(context.Context) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.categories, nil
}

func (m *memStore) SaveReview(_ context.Context, productID int, review models.Review, avg float64, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].ID == productID {
			p := &m.products[i]
			p.Reviews = append(p.Reviews, review)
			p.AverageRating = avg
			p.ReviewCount = count
			return nil
		}
	}
	return database.ErrNotFound
}

func newStore() *memStore {
	return &memStore{
		categories: []models.Category{
			{ID: 1, Name: "Paintings"},
			{ID: 2, Name: "Digital Art"},
		},
		products: []models.Product{
			{ID: 1, Name: "Abstract Landscape", Description: "Oil", Price: 100, FinalPrice: 100, CategoryID: 1, AverageRating: 4, ReviewCount: 1,
				Reviews: []models.Review{{ID: 1, Rating: 4, Comment: "Good", ReviewerName: "Anna S."}}},
			{ID: 2, Name: "Gothic Garden", Description: "Pencil", Price: 300, FinalPrice: 300, CategoryID: 1},
			{ID: 3, Name: "Serene Seascape", Description: "Watercolor", Price: 200, Discount: 10, FinalPrice: 180, CategoryID: 2, AverageRating: 5},
		},
	}
}

func newTestHandler(t *testing.T, store CatalogStore, withCache bool) (*Handler, *miniredis.Miniredis) {
	t.Helper()
	var c ResponseCache
	var mr *miniredis.Miniredis
	if withCache {
		mr = miniredis.RunT(t)
		rc := cache.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
		t.Cleanup(func() { rc.Close() })
		c = rc
	}
	h := NewHandler(store, c, time.Minute, logging.Discard())
	h.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return h, mr
}

func serve(h http.HandlerFunc, method, target, body string, vars map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func TestFilterProducts(t *testing.T) {
	h, _ := newTestHandler(t, newStore(), false)

	rec := serve(h.FilterProducts, http.MethodPost, "/api/products/filter",
		`{"price":{"min":150},"sortBy":"price","sortOrder":"desc","limit":"1"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Cache") != "" {
		t.Error("X-Cache set without a cache")
	}

	resp := decode[catalog.FilterResponse](t, rec)
	if len(resp.Products) != 1 || resp.Products[0].ID != 2 {
		t.Errorf("products = %+v", resp.Products)
	}
	want := catalog.Pagination{CurrentPage: 1, TotalPages: 2, TotalItems: 2, ItemsPerPage: 1}
	if resp.Pagination != want {
		t.Errorf("pagination = %+v", resp.Pagination)
	}
	if !strings.Contains(rec.Body.String(), `"filters":{"price":{"min":150},"sortBy":"price","sortOrder":"desc"}`) {
		t.Errorf("filters echo: %s", rec.Body.String())
	}
}

func TestFilterProducts_EmptyResultIsArray(t *testing.T) {
	h, _ := newTestHandler(t, newStore(), false)

	rec := serve(h.FilterProducts, http.MethodPost, "/api/products/filter", `{"search":"nonexistent"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"products":[]`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestFilterProducts_BadBodies(t *testing.T) {
	h, _ := newTestHandler(t, newStore(), false)

	for _, body := range []string{`[1]`, `{"page":`, `"x"`} {
		rec := serve(h.FilterProducts, http.MethodPost, "/api/products/filter", body, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d", body, rec.Code)
		}
	}

	rec := serve(h.FilterProducts, http.MethodPost, "/api/products/filter", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("empty body: status = %d", rec.Code)
	}
}

func TestFilterProducts_StoreUnavailable(t *testing.T) {
	store := newStore()
	store.err = errors.New("read catalog data/db.json: no such file or directory")
	h, _ := newTestHandler(t, store, false)

	rec := serve(h.FilterProducts, http.MethodPost, "/api/products/filter", `{}`, nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	if body["message"] != "Error filtering products" || !strings.Contains(body["details"].(string), "no such file") {
		t.Errorf("body = %v", body)
	}
}

func TestFilterProducts_Cache(t *testing.T) {
	store := newStore()
	h, mr := newTestHandler(t, store, true)

	first := serve(h.FilterProducts, http.MethodPost, "/api/products/filter", `{"sortBy":"name"}`, nil)
	if first.Header().Get("X-Cache") != "MISS" {
		t.Errorf("first X-Cache = %q", first.Header().Get("X-Cache"))
	}
	second := serve(h.FilterProducts, http.MethodPost, "/api/products/filter", `{"sortBy":"name","page":1}`, nil)
	if second.Header().Get("X-Cache") != "HIT" {
		t.Errorf("second X-Cache = %q", second.Header().Get("X-Cache"))
	}
	if first.Body.String() != second.Body.String() {
		t.Errorf("cached body differs:\n%s\n%s", first.Body.String(), second.Body.String())
	}
	if store.loads != 1 {
		t.Errorf("store loaded %d times, want 1", store.loads)
	}
	if keys := mr.Keys(); len(keys) != 1 || !strings.HasPrefix(keys[0], "products:filter:") {
		t.Errorf("keys = %v", keys)
	}
}

func TestFilterProducts_CacheDownStillServes(t *testing.T) {
	h, mr := newTestHandler(t, newStore(), true)
	mr.Close()

	rec := serve(h.FilterProducts, http.MethodPost, "/api/products/filter", `{}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp := decode[catalog.FilterResponse](t, rec); len(resp.Products) != 3 {
		t.Errorf("got %d products", len(resp.Products))
	}
}

func TestListProducts(t *testing.T) {
	h, _ := newTestHandler(t, newStore(), true)

	rec := serve(h.ListProducts, http.MethodGet, "/api/products?category=1&sortBy=price&sortOrder=desc", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	res := decode[catalog.ListResult](t, rec)
	if len(res.Products) != 2 || res.Products[0].ID != 2 || res.Products[1].ID != 1 {
		t.Errorf("products = %+v", res.Products)
	}
	if res.Pagination.Total != 2 || res.Filters.CategoryID == nil || *res.Filters.CategoryID != 1 {
		t.Errorf("pagination = %+v, filters = %+v", res.Pagination, res.Filters)
	}

	again := serve(h.ListProducts, http.MethodGet, "/api/products?sortOrder=desc&category=1&sortBy=price", "", nil)
	if again.Header().Get("X-Cache") != "HIT" {
		t.Errorf("reordered query X-Cache = %q", again.Header().Get("X-Cache"))
	}
}

func TestListCategories(t *testing.T) {
	h, mr := newTestHandler(t, newStore(), true)

	rec := serve(h.ListCategories, http.MethodGet, "/api/products/categories", "", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("status = %d, X-Cache = %q", rec.Code, rec.Header().Get("X-Cache"))
	}
	body := decode[struct {
		Categories []models.Category `json:"categories"`
	}](t, rec)
	if len(body.Categories) != 2 {
		t.Errorf("categories = %+v", body.Categories)
	}
	if !mr.Exists(cache.CategoriesKey) {
		t.Error("categories not cached")
	}

	rec = serve(h.ListCategories, http.MethodGet, "/api/products/categories", "", nil)
	if rec.Header().Get("X-Cache") != "HIT" {
		t.Errorf("second X-Cache = %q", rec.Header().Get("X-Cache"))
	}
}

func TestGetCategoryProducts(t *testing.T) {
	h, _ := newTestHandler(t, newStore(), false)

	rec := serve(h.GetCategoryProducts, http.MethodGet, "/api/products/category/1", "", map[string]string{"categoryId": "1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[struct {
		Category models.Category  `json:"category"`
		Products []models.Product `json:"products"`
	}](t, rec)
	if body.Category.Name != "Paintings" || len(body.Products) != 2 {
		t.Errorf("body = %+v", body)
	}

	for _, id := range []string{"9", "paintings"} {
		rec = serve(h.GetCategoryProducts, http.MethodGet, "/api/products/category/"+id, "", map[string]string{"categoryId": id})
		if rec.Code != http.StatusNotFound {
			t.Errorf("category %s: status = %d", id, rec.Code)
		}
	}
}

func TestSearchProducts(t *testing.T) {
	h, _ := newTestHandler(t, newStore(), false)

	rec := serve(h.SearchProducts, http.MethodGet, "/api/products/search?q=GARDEN", "", nil)
	body := decode[struct {
		Query   string           `json:"query"`
		Results []models.Product `json:"results"`
		Total   int              `json:"total"`
	}](t, rec)
	if body.Query != "garden" || body.Total != 1 || body.Results[0].ID != 2 {
		t.Errorf("body = %+v", body)
	}
}

func TestGetProductDetails(t *testing.T) {
	h, _ := newTestHandler(t, newStore(), false)

	rec := serve(h.GetProductDetails, http.MethodGet, "/api/products/1", "", map[string]string{"id": "1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	details := decode[catalog.ProductDetails](t, rec)
	if details.Product.ID != 1 || len(details.RelatedProducts) != 1 || details.RelatedProducts[0].ID != 2 {
		t.Errorf("details = %+v", details)
	}

	for _, id := range []string{"42", "abc"} {
		rec = serve(h.GetProductDetails, http.MethodGet, "/api/products/"+id, "", map[string]string{"id": id})
		if rec.Code != http.StatusNotFound {
			t.Errorf("id %s: status = %d", id, rec.Code)
		}
	}
}

func TestGetProductReviews(t *testing.T) {
	h, _ := newTestHandler(t, newStore(), false)

	rec := serve(h.GetProductReviews, http.MethodGet, "/api/products/3/reviews", "", map[string]string{"id": "3"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"reviews":[]`) || !strings.Contains(rec.Body.String(), `"product_id":3`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestAddProductReview(t *testing.T) {
	store := newStore()
	h, mr := newTestHandler(t, store, true)

	// Warm a few keys that must be invalidated.
	serve(h.GetProductDetails, http.MethodGet, "/api/products/2", "", map[string]string{"id": "2"})
	serve(h.FilterProducts, http.MethodPost, "/api/products/filter", `{}`, nil)
	serve(h.ListCategories, http.MethodGet, "/api/products/categories", "", nil)

	rec := serve(h.AddProductReview, http.MethodPost, "/api/products/1/reviews",
		`{"rating":5,"comment":"  Stunning  ","reviewer_name":"Maria C."}`, map[string]string{"id": "1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decode[struct {
		Message string        `json:"message"`
		Review  models.Review `json:"review"`
	}](t, rec)
	want := models.Review{ID: 2, Rating: 5, Comment: "Stunning", ReviewerName: "Maria C.", Date: "2024-03-01T12:00:00.000Z"}
	if body.Message != "Review added successfully" || body.Review != want {
		t.Errorf("body = %+v", body)
	}

	p := store.products[0]
	if p.AverageRating != 4.5 || p.ReviewCount != 2 || len(p.Reviews) != 2 {
		t.Errorf("stored product = %+v", p)
	}

	if keys := mr.Keys(); len(keys) != 1 || keys[0] != cache.CategoriesKey {
		t.Errorf("keys after review = %v, want only %s", keys, cache.CategoriesKey)
	}
}

func TestAddProductReview_Errors(t *testing.T) {
	tests := []struct {
		name string
		id   string
		body string
		want int
	}{
		{"malformed body", "1", `{"rating":`, http.StatusBadRequest},
		{"missing fields", "1", `{"rating":4}`, http.StatusBadRequest},
		{"rating out of range", "1", `{"rating":7,"comment":"x","reviewer_name":"y"}`, http.StatusBadRequest},
		{"unknown product", "99", `{"rating":4,"comment":"x","reviewer_name":"y"}`, http.StatusNotFound},
		{"non-numeric id", "abc", `{"rating":4,"comment":"x","reviewer_name":"y"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t, newStore(), false)
			rec := serve(h.AddProductReview, http.MethodPost, "/api/products/"+tt.id+"/reviews", tt.body, map[string]string{"id": tt.id})
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestAddProductReview_ValidationDetails(t *testing.T) {
	h, _ := newTestHandler(t, newStore(), false)

	rec := serve(h.AddProductReview, http.MethodPost, "/api/products/1/reviews", `{"rating":4,"comment":" "}`, map[string]string{"id": "1"})
	body := decode[struct {
		Message string `json:"message"`
		Errors  []struct {
			Field string `json:"field"`
		} `json:"errors"`
	}](t, rec)
	if body.Message != "Validation failed" || len(body.Errors) != 2 {
		t.Fatalf("body = %+v", body)
	}
	if body.Errors[0].Field != "comment" || body.Errors[1].Field != "reviewer_name" {
		t.Errorf("fields = %+v", body.Errors)
	}
}

func TestFlushCache(t *testing.T) {
	h, mr := newTestHandler(t, newStore(), true)
	mr.Set("products:filter:abc", "{}")
	mr.Set("product:1", "{}")

	rec := serve(h.FlushCache, http.MethodPost, "/api/admin/cache/flush", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(mr.Keys()) != 0 {
		t.Errorf("keys after flush = %v", mr.Keys())
	}

	uncached, _ := newTestHandler(t, newStore(), false)
	rec = serve(uncached.FlushCache, http.MethodPost, "/api/admin/cache/flush", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Cache disabled") {
		t.Errorf("uncached flush: %d %s", rec.Code, rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler(t, newStore(), false)
	rec := serve(h.Health, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"status":"OK"}` {
		t.Errorf("health = %d %s", rec.Code, rec.Body.String())
	}
}

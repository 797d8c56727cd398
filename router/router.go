package router

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"artwaves-catalog/handlers"
	"artwaves-catalog/middleware"
	"artwaves-catalog/models"
)

// SetupRoutes builds the HTTP handler. jwtSecret verifies the tokens of
// write routes.
func SetupRoutes(h *handlers.Handler, jwtSecret string, logger *slog.Logger) http.Handler {
	router := mux.NewRouter()

	// Public routes (no authentication required)
	router.HandleFunc("/", h.Root).Methods(http.MethodGet)
	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	products := router.PathPrefix("/api/products").Subrouter()
	products.HandleFunc("", h.ListProducts).Methods(http.MethodGet)
	products.HandleFunc("/", h.ListProducts).Methods(http.MethodGet)
	products.HandleFunc("/filter", h.FilterProducts).Methods(http.MethodPost)
	products.HandleFunc("/categories", h.ListCategories).Methods(http.MethodGet)
	products.HandleFunc("/category/{categoryId}", h.GetCategoryProducts).Methods(http.MethodGet)
	products.HandleFunc("/search", h.SearchProducts).Methods(http.MethodGet)
	products.HandleFunc("/{id}", h.GetProductDetails).Methods(http.MethodGet)
	products.HandleFunc("/{id}/reviews", h.GetProductReviews).Methods(http.MethodGet)

	// Protected routes that require authentication
	auth := middleware.AuthMiddleware(jwtSecret)
	products.Handle("/{id}/reviews",
		auth(middleware.RequirePermission(models.PermissionWriteReview)(
			http.HandlerFunc(h.AddProductReview)))).Methods(http.MethodPost)

	admin := router.PathPrefix("/api/admin").Subrouter()
	admin.Use(auth)
	admin.Handle("/cache/flush",
		middleware.RequirePermission(models.PermissionFlushCache)(
			http.HandlerFunc(h.FlushCache))).Methods(http.MethodPost)

	// Wrapped outside the router so 404, 405 and preflight responses are
	// tagged and logged too.
	var handler http.Handler = router
	handler = middleware.CORS(middleware.CORSConfig{
		ExposeHeaders: []string{"X-Request-ID", "X-Cache"},
	})(handler)
	handler = middleware.Recover(logger)(handler)
	handler = middleware.Logging(logger)(handler)
	return middleware.RequestID(handler)
}

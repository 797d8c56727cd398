// Package catalog implements the product catalog query engine: filtering,
// sorting and pagination over an in-memory product snapshot.
//
// Every function in this package is pure. Inputs are never modified and no
// state is kept between calls, so concurrent queries over the same snapshot
// are safe.
package catalog

import (
	"strings"

	"artwaves-catalog/models"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 50
)

// Pagination describes the page returned by Query.
type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// AppliedFilters echoes only the filters that were honored.
type AppliedFilters struct {
	Categories []int     `json:"categories,omitempty"`
	Price      *Range    `json:"price,omitempty"`
	Discount   *Range    `json:"discount,omitempty"`
	Rating     float64   `json:"rating,omitempty"`
	Search     string    `json:"search,omitempty"`
	SortBy     SortKey   `json:"sortBy,omitempty"`
	SortOrder  SortOrder `json:"sortOrder,omitempty"`
}

// FilterResponse is the result of Query.
type FilterResponse struct {
	Products   []models.Product `json:"products"`
	Pagination Pagination       `json:"pagination"`
	Filters    AppliedFilters   `json:"filters"`
}

// predicate is one filtering stage.
type predicate func(p *models.Product) bool

// Query filters, sorts and paginates products according to req.
func Query(products []models.Product, req FilterRequest) FilterResponse {
	stages := req.stages()

	filtered := make([]models.Product, 0, len(products))
	for i := range products {
		if matchAll(stages, &products[i]) {
			filtered = append(filtered, products[i])
		}
	}

	sortBy := req.SortBy
	if sortBy == "" {
		sortBy = SortID
	}
	sortProducts(filtered, sortBy, effectiveOrder(req.SortOrder))

	page, perPage := normalizePage(req.Page, req.Limit, maxPageSize)
	items, pg := paginate(filtered, page, perPage)

	return FilterResponse{
		Products:   items,
		Pagination: pg,
		Filters:    req.applied(),
	}
}

// stages returns the active filters in pipeline order:
// category, price, discount, rating, search.
func (r FilterRequest) stages() []predicate {
	var stages []predicate

	if len(r.Categories) > 0 {
		allowed := make(map[int]struct{}, len(r.Categories))
		for _, id := range r.Categories {
			allowed[id] = struct{}{}
		}
		stages = append(stages, func(p *models.Product) bool {
			_, ok := allowed[p.CategoryID]
			return ok
		})
	}

	if r.Price.Active() {
		price := r.Price
		stages = append(stages, func(p *models.Product) bool {
			return price.contains(p.FinalPrice)
		})
	}

	if r.Discount.Active() {
		discount := r.Discount
		stages = append(stages, func(p *models.Product) bool {
			return discount.contains(float64(p.Discount))
		})
	}

	if r.Rating > 0 {
		rating := r.Rating
		stages = append(stages, func(p *models.Product) bool {
			return p.AverageRating >= rating
		})
	}

	if term := strings.ToLower(strings.TrimSpace(r.Search)); term != "" {
		stages = append(stages, func(p *models.Product) bool {
			return matchesTerm(p, term)
		})
	}

	return stages
}

func (r FilterRequest) applied() AppliedFilters {
	var f AppliedFilters
	if len(r.Categories) > 0 {
		f.Categories = append([]int(nil), r.Categories...)
	}
	if r.Price.Active() {
		price := r.Price
		f.Price = &price
	}
	if r.Discount.Active() {
		discount := r.Discount
		f.Discount = &discount
	}
	if r.Rating > 0 {
		f.Rating = r.Rating
	}
	f.Search = strings.TrimSpace(r.Search)
	if r.SortBy != "" {
		f.SortBy = r.SortBy
		f.SortOrder = effectiveOrder(r.SortOrder)
	}
	return f
}

func matchAll(stages []predicate, p *models.Product) bool {
	for _, keep := range stages {
		if !keep(p) {
			return false
		}
	}
	return true
}

// matchesTerm reports whether the lower-cased term occurs in the product's
// name or description, ignoring case.
func matchesTerm(p *models.Product, term string) bool {
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Description), term)
}

func effectiveOrder(o SortOrder) SortOrder {
	if o == SortDesc {
		return SortDesc
	}
	return SortAsc
}

// normalizePage applies the defaults to unset (zero) values and clamps the
// page to >= 1 and the page size to [1, maxSize]. maxSize <= 0 disables the
// upper bound.
func normalizePage(page, limit, maxSize int) (int, int) {
	if page == 0 {
		page = defaultPage
	}
	if page < 1 {
		page = 1
	}
	if limit == 0 {
		limit = defaultPageSize
	}
	if limit < 1 {
		limit = 1
	}
	if maxSize > 0 && limit > maxSize {
		limit = maxSize
	}
	return page, limit
}

// paginate slices items for the given page. Pages past the end are empty.
func paginate(items []models.Product, page, perPage int) ([]models.Product, Pagination) {
	total := len(items)
	pg := Pagination{
		CurrentPage:  page,
		TotalPages:   (total + perPage - 1) / perPage, // Ceiling division
		TotalItems:   total,
		ItemsPerPage: perPage,
	}

	if page > pg.TotalPages {
		return []models.Product{}, pg
	}
	start := (page - 1) * perPage
	end := min(start+perPage, total)
	return items[start:end], pg
}

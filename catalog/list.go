package catalog

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"artwaves-catalog/models"
)

// relatedLimit caps the related products shown next to a product.
const relatedLimit = 4

// ListParams are the query parameters of the plain product listing.
type ListParams struct {
	Page       int
	Limit      int
	CategoryID *int
	MinPrice   *float64
	MaxPrice   *float64
	SortBy     string
	SortOrder  string
}

// ListPagination is the pagination block of the plain listing.
type ListPagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// ListFilters echoes every listing parameter, null when unset.
type ListFilters struct {
	CategoryID *int     `json:"categoryId"`
	MinPrice   *float64 `json:"minPrice"`
	MaxPrice   *float64 `json:"maxPrice"`
	SortBy     string   `json:"sortBy"`
	SortOrder  string   `json:"sortOrder"`
}

// ListResult is the result of List.
type ListResult struct {
	Products   []models.Product `json:"products"`
	Pagination ListPagination   `json:"pagination"`
	Filters    ListFilters      `json:"filters"`
}

// ParseListParams reads listing parameters from a query string.
// Unparsable numbers are treated as unset.
func ParseListParams(q url.Values) ListParams {
	p := ListParams{
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}
	if p.SortBy == "" {
		p.SortBy = string(SortID)
	}
	if p.SortOrder == "" {
		p.SortOrder = string(SortAsc)
	}
	if n, ok := parseLeadingInt(q.Get("page")); ok {
		p.Page = n
	}
	if n, ok := parseLeadingInt(q.Get("limit")); ok {
		p.Limit = n
	}
	if n, ok := parseLeadingInt(q.Get("category")); ok {
		p.CategoryID = &n
	}
	p.MinPrice = parseFloatParam(q.Get("minPrice"))
	p.MaxPrice = parseFloatParam(q.Get("maxPrice"))
	return p
}

// parseFloatParam reads the leading decimal number of s, so "12abc" is 12.
// Values with no leading number, or that are not finite, are unset.
func parseFloatParam(s string) *float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := 0
	for end < len(s) && isDigit(s[end], 10) {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && isDigit(s[end], 10) {
			end++
			digits++
		}
	}
	if digits == 0 {
		return nil
	}
	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '+' || s[exp] == '-') {
			exp++
		}
		if exp < len(s) && isDigit(s[exp], 10) {
			for exp < len(s) && isDigit(s[exp], 10) {
				exp++
			}
			end = exp
		}
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}
	return &f
}

// List is the plain product listing: a single category, a price window on
// the final price and sorting by id, price or name. Unlike Query it has no
// upper bound on the page size.
func List(products []models.Product, params ListParams) ListResult {
	var stages []predicate
	if params.CategoryID != nil && *params.CategoryID != 0 {
		id := *params.CategoryID
		stages = append(stages, func(p *models.Product) bool { return p.CategoryID == id })
	}
	if params.MinPrice != nil || params.MaxPrice != nil {
		window := Range{Min: params.MinPrice, Max: params.MaxPrice}
		stages = append(stages, func(p *models.Product) bool { return window.contains(p.FinalPrice) })
	}

	filtered := make([]models.Product, 0, len(products))
	for i := range products {
		if matchAll(stages, &products[i]) {
			filtered = append(filtered, products[i])
		}
	}

	key := SortID
	switch SortKey(params.SortBy) {
	case SortPrice, SortName:
		key = SortKey(params.SortBy)
	}
	sortProducts(filtered, key, effectiveOrder(SortOrder(params.SortOrder)))

	page, limit := normalizePage(params.Page, params.Limit, 0)
	items, pg := paginate(filtered, page, limit)

	return ListResult{
		Products: items,
		Pagination: ListPagination{
			Total:      pg.TotalItems,
			Page:       pg.CurrentPage,
			Limit:      pg.ItemsPerPage,
			TotalPages: pg.TotalPages,
		},
		Filters: ListFilters{
			CategoryID: params.CategoryID,
			MinPrice:   params.MinPrice,
			MaxPrice:   params.MaxPrice,
			SortBy:     params.SortBy,
			SortOrder:  params.SortOrder,
		},
	}
}

// Search returns the products whose name or description contains q,
// ignoring case. An empty q matches everything.
func Search(products []models.Product, q string) []models.Product {
	term := strings.ToLower(q)
	results := make([]models.Product, 0)
	for i := range products {
		if matchesTerm(&products[i], term) {
			results = append(results, products[i])
		}
	}
	return results
}

// FindProduct returns the product with the given id.
func FindProduct(products []models.Product, id int) (models.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

// FindCategory returns the category with the given id.
func FindCategory(categories []models.Category, id int) (models.Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return models.Category{}, false
}

// InCategory returns the products of one category in catalog order.
func InCategory(products []models.Product, categoryID int) []models.Product {
	results := make([]models.Product, 0)
	for _, p := range products {
		if p.CategoryID == categoryID {
			results = append(results, p)
		}
	}
	return results
}

// Related returns up to n other products from the same category as p.
func Related(products []models.Product, p models.Product, n int) []models.Product {
	related := make([]models.Product, 0, n)
	for _, other := range products {
		if len(related) == n {
			break
		}
		if other.CategoryID == p.CategoryID && other.ID != p.ID {
			related = append(related, other)
		}
	}
	return related
}

// ProductDetails is a product together with its related products.
type ProductDetails struct {
	Product         models.Product   `json:"product"`
	RelatedProducts []models.Product `json:"relatedProducts"`
}

// Details looks up a product and its related products.
func Details(products []models.Product, id int) (ProductDetails, bool) {
	p, ok := FindProduct(products, id)
	if !ok {
		return ProductDetails{}, false
	}
	return ProductDetails{
		Product:         p,
		RelatedProducts: Related(products, p, relatedLimit),
	}, true
}

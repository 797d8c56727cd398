package catalog

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"artwaves-catalog/models"
)

// sortProducts sorts items in place. The sort is stable, so ties keep their
// input order in both directions.
func sortProducts(items []models.Product, key SortKey, order SortOrder) {
	base := baseComparator(key)
	if order == SortDesc {
		slices.SortStableFunc(items, func(a, b models.Product) int { return -base(a, b) })
		return
	}
	slices.SortStableFunc(items, base)
}

// baseComparator returns the ordering of a key before the sort order is
// applied.
//
// Rating and discount have a descending base, so "asc" lists the highest
// rated (or most discounted) products first and "desc" the lowest.
func baseComparator(key SortKey) func(a, b models.Product) int {
	switch key {
	case SortPrice:
		return func(a, b models.Product) int { return cmp.Compare(a.FinalPrice, b.FinalPrice) }
	case SortName:
		// Collators are not safe for concurrent use; build one per sort.
		c := collate.New(language.English)
		return func(a, b models.Product) int { return c.CompareString(a.Name, b.Name) }
	case SortRating:
		return func(a, b models.Product) int { return cmp.Compare(b.AverageRating, a.AverageRating) }
	case SortDiscount:
		return func(a, b models.Product) int { return cmp.Compare(b.Discount, a.Discount) }
	default:
		return func(a, b models.Product) int { return cmp.Compare(a.ID, b.ID) }
	}
}

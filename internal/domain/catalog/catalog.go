// Package catalog is the read-only product surface: filtered listing with a
// handful of presentation sorts, and single-product lookup. The catalog is
// never mutated here.
package catalog

import (
	"context"
	"sort"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/savesage/spices-api/internal/store"
)

// ErrNotFound is returned when a product id does not resolve.
var ErrNotFound = errors.New("product not found")

// Product is a catalog row.
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Weight        string          `json:"weight"`
	Rating        float64         `json:"rating"`
	ReviewCount   int             `json:"review_count"`
	ImageSrc      string          `json:"image_src"`
	Category      string          `json:"category"`
	IsBestseller  bool            `json:"is_bestseller"`
	IsNew         bool            `json:"is_new"`
	StockQuantity int             `json:"stock_quantity"`
}

// Sort orders for List.
const (
	SortFeatured  = "featured"
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
)

// Query filters and orders a listing. Category "all" or empty means no
// category filter; Search matches name or description case-insensitively.
type Query struct {
	Category string
	Search   string
	Sort     string
}

// Service implements the catalog reads.
type Service struct {
	store store.Store
}

// NewService creates a catalog Service.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// List returns products matching the query. Sorting happens in-process over
// the filtered result; listing sizes here never warrant pushing it down.
func (s *Service) List(ctx context.Context, q Query) ([]Product, error) {
	filters := store.Filters{}
	if q.Category != "" && q.Category != "all" {
		filters["category"] = store.Eq(q.Category)
	}
	if q.Search != "" {
		filters["or"] = store.AnyIlike(q.Search, "name", "description")
	}

	products := make([]Product, 0)
	err := s.store.Select(ctx, "products", &products, store.SelectOpts{
		Filters: filters,
	})
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	sortProducts(products, q.Sort)
	return products, nil
}

// Get returns one product by id.
func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	var p Product
	err := s.store.Select(ctx, "products", &p, store.SelectOpts{
		Filters: store.Filters{"id": store.Eq(id)},
		Single:  true,
	})
	if errors.Is(err, store.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, errors.Wrap(err, "get product")
	}
	return p, nil
}

func sortProducts(products []Product, order string) {
	switch order {
	case SortNewest:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].IsNew && !products[j].IsNew
		})
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price.LessThan(products[j].Price)
		})
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[j].Price.LessThan(products[i].Price)
		})
	case SortRating:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Rating > products[j].Rating
		})
	default:
		// Featured: bestsellers first, then by name.
		sort.SliceStable(products, func(i, j int) bool {
			if products[i].IsBestseller != products[j].IsBestseller {
				return products[i].IsBestseller
			}
			return products[i].Name < products[j].Name
		})
	}
}

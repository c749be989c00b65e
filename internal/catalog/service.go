// Package catalog translates listing state (page, search, category, sort)
// into product queries and normalizes the results into fixed-size pages.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/mekaroindia/mekaro/internal/backend"
)

// PageSize is the backend's page size for product listings.
const PageSize = 18

type Ordering int

const (
	OrderingDefault Ordering = iota
	OrderingPriceAsc
	OrderingPriceDesc
)

func (o Ordering) queryValue() string {
	switch o {
	case OrderingPriceAsc:
		return "price"
	case OrderingPriceDesc:
		return "-price"
	default:
		return ""
	}
}

// Query is one listing request. Zero values mean "no filter".
type Query struct {
	Page       int
	Search     string
	CategoryID int64
	Ordering   Ordering
}

func (q Query) params() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	if q.CategoryID != 0 {
		v.Set("category", strconv.FormatInt(q.CategoryID, 10))
	}
	if ordering := q.Ordering.queryValue(); ordering != "" {
		v.Set("ordering", ordering)
	}
	return v
}

func (q Query) key() string {
	return fmt.Sprintf("%d|%s|%d|%d", q.Page, q.Search, q.CategoryID, q.Ordering)
}

// Page is one page of results. It replaces, never extends, the previous
// page.
type Page struct {
	Products   []backend.Product
	TotalPages int
}

type ProductLister interface {
	Products(ctx context.Context, query url.Values) ([]backend.Product, int, error)
	Categories(ctx context.Context) ([]backend.Category, error)
}

type Service struct {
	api ProductLister
	log *slog.Logger
	sfg singleflight.Group // collapses identical in-flight queries
}

func NewService(api ProductLister, log *slog.Logger) *Service {
	return &Service{api: api, log: log}
}

// Fetch returns one page of products. Failures never reach the caller as
// errors: they yield an empty page with a single total page, ready for the
// next user action.
func (s *Service) Fetch(ctx context.Context, q Query) Page {
	if q.Page < 1 {
		q.Page = 1
	}

	v, err, _ := s.sfg.Do(q.key(), func() (interface{}, error) {
		products, count, err := s.api.Products(ctx, q.params())
		if err != nil {
			return nil, err
		}

		totalPages := (count + PageSize - 1) / PageSize
		if totalPages < 1 {
			totalPages = 1
		}
		return Page{Products: products, TotalPages: totalPages}, nil
	})
	if err != nil {
		s.log.Warn("product query failed", "page", q.Page, "error", err)
		return Page{TotalPages: 1}
	}
	return v.(Page)
}

func (s *Service) Categories(ctx context.Context) ([]backend.Category, error) {
	return s.api.Categories(ctx)
}

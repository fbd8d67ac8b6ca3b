package entity

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

const (
	DefaultCountry  = "US"
	DefaultPageSize = 50
)

var (
	ErrInvalidDiscount = errors.New("minimum discount must be within [0, 100]")
	ErrInvalidPageSize = errors.New("page size must be one of 25, 50, 100, 200")
	ErrInvalidPrice    = errors.New("invalid price range")
)

//nolint:gochecknoglobals,mnd
var pageSizes = []int{25, 50, 100, 200}

// Filter is the user-selected query. It is a value: every With* method
// returns a modified copy and leaves the receiver untouched.
type Filter struct {
	Query       string `json:"query"`
	Stores      []int  `json:"stores,omitempty"`
	MinDiscount int    `json:"minDiscount"`
	Sort        Sort   `json:"sort"`
	Country     string `json:"country"`
	PageSize    int    `json:"pageSize"`
	// Client-side bounds; zero means unbounded.
	PriceMin float64 `json:"priceMin,omitempty"`
	PriceMax float64 `json:"priceMax,omitempty"`
}

func NewFilter(country string, pageSize int) Filter {
	if country == "" {
		country = DefaultCountry
	}

	if !slices.Contains(pageSizes, pageSize) {
		pageSize = DefaultPageSize
	}

	return Filter{
		Sort:     DefaultSort(),
		Country:  strings.ToUpper(country),
		PageSize: pageSize,
	}
}

func ValidPageSize(n int) bool {
	return slices.Contains(pageSizes, n)
}

func (f Filter) WithQuery(q string) Filter {
	f.Query = strings.TrimSpace(q)
	return f
}

// ToggleStore adds the store to the subset or removes it when present.
func (f Filter) ToggleStore(id int) Filter {
	if f.HasStore(id) {
		f.Stores = lo.Without(f.Stores, id)
	} else {
		f.Stores = append(slices.Clone(f.Stores), id)
	}

	f.Stores = normalizeStores(f.Stores)

	return f
}

func (f Filter) WithStores(ids ...int) Filter {
	f.Stores = normalizeStores(ids)
	return f
}

func (f Filter) HasStore(id int) bool {
	return slices.Contains(f.Stores, id)
}

func (f Filter) WithMinDiscount(pct int) (Filter, error) {
	if pct < 0 || pct > 100 {
		return f, fmt.Errorf("%w: %d", ErrInvalidDiscount, pct)
	}

	f.MinDiscount = pct

	return f, nil
}

func (f Filter) WithSort(s Sort) Filter {
	f.Sort = s
	return f
}

func (f Filter) WithPageSize(n int) (Filter, error) {
	if !ValidPageSize(n) {
		return f, fmt.Errorf("%w: %d", ErrInvalidPageSize, n)
	}

	f.PageSize = n

	return f, nil
}

func (f Filter) WithPriceRange(low, high float64) (Filter, error) {
	if low < 0 || high < 0 || (high > 0 && low > high) {
		return f, fmt.Errorf("%w: %g..%g", ErrInvalidPrice, low, high)
	}

	f.PriceMin, f.PriceMax = low, high

	return f, nil
}

// IsSearch reports whether the filter targets the title search instead of
// the deals listing.
func (f Filter) IsSearch() bool {
	return normalizeQuery(f.Query) != ""
}

// Accepts applies the constraints the upstream cannot evaluate.
func (f Filter) Accepts(d Deal) bool {
	if d.Cut < f.MinDiscount {
		return false
	}

	if f.PriceMin > 0 && d.Price.Amount < f.PriceMin {
		return false
	}

	if f.PriceMax > 0 && d.Price.Amount > f.PriceMax {
		return false
	}

	return true
}

// Key is the canonical encoding of the filter. Two filters are equal when
// their keys are: query case and spacing, and store order, do not matter.
func (f Filter) Key() string {
	v := url.Values{}
	v.Set("q", normalizeQuery(f.Query))
	v.Set("stores", strings.Join(lo.Map(normalizeStores(f.Stores), func(id int, _ int) string {
		return strconv.Itoa(id)
	}), ","))
	v.Set("min", strconv.Itoa(f.MinDiscount))
	v.Set("sort", f.Sort.Param())
	v.Set("cc", strings.ToUpper(f.Country))
	v.Set("size", strconv.Itoa(f.PageSize))
	v.Set("price", strconv.FormatFloat(f.PriceMin, 'f', 2, 64)+"-"+strconv.FormatFloat(f.PriceMax, 'f', 2, 64))

	return v.Encode()
}

func (f Filter) Equal(other Filter) bool {
	return f.Key() == other.Key()
}

func normalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

func normalizeStores(ids []int) []int {
	if len(ids) == 0 {
		return nil
	}

	out := lo.Uniq(ids)
	slices.Sort(out)

	return out
}

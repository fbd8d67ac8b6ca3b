package entity

import (
	"cmp"
	"errors"
	"fmt"
	"strings"
)

type SortField string

const (
	SortPrice       SortField = "price"
	SortCut         SortField = "cut"
	SortHot         SortField = "hot"
	SortReleaseDate SortField = "release-date"
	SortExpiry      SortField = "expiry"
	SortRank        SortField = "rank"
	SortTitle       SortField = "title"
)

var ErrUnknownSort = errors.New("unknown sort criteria")

// Sort is an upstream sort criteria; the wire form is the field name with
// a leading "-" for descending order.
type Sort struct {
	Field      SortField `json:"field"`
	Descending bool      `json:"descending"`
}

func DefaultSort() Sort {
	return Sort{Field: SortPrice}
}

// SortOptions are the presets offered to the user.
func SortOptions() []Sort {
	return []Sort{
		{Field: SortPrice},
		{Field: SortPrice, Descending: true},
		{Field: SortCut, Descending: true},
		{Field: SortTitle},
		{Field: SortHot, Descending: true},
		{Field: SortReleaseDate, Descending: true},
		{Field: SortExpiry},
		{Field: SortRank},
	}
}

// ParseSort accepts the wire form ("-cut") and "discount" as an alias for
// descending cut.
func ParseSort(s string) (Sort, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "discount" {
		return Sort{Field: SortCut, Descending: true}, nil
	}

	desc := strings.HasPrefix(s, "-")
	field := SortField(strings.TrimPrefix(s, "-"))

	switch field {
	case SortPrice, SortCut, SortHot, SortReleaseDate, SortExpiry, SortRank, SortTitle:
		return Sort{Field: field, Descending: desc}, nil
	default:
		return Sort{}, fmt.Errorf("%w: %q", ErrUnknownSort, s)
	}
}

func (s Sort) Param() string {
	field := s.Field
	if field == "" {
		field = SortPrice
	}

	if s.Descending {
		return "-" + string(field)
	}

	return string(field)
}

// Upstream is the criteria sent to the deals listing. Title is not one the
// upstream knows, so it falls back to the default and is applied locally.
func (s Sort) Upstream() string {
	if s.Field == SortTitle {
		return DefaultSort().Param()
	}

	return s.Param()
}

// Local reports whether the deal fields carry enough to order by s.
func (s Sort) Local() bool {
	switch s.Field {
	case SortPrice, SortCut, SortTitle, "":
		return true
	default:
		return false
	}
}

// Compare orders two deals for slices.SortStableFunc. Criteria that only
// the upstream can rank compare equal.
func (s Sort) Compare(a, b Deal) int {
	var c int

	switch s.Field {
	case SortPrice, "":
		c = cmp.Compare(a.Price.Cents(), b.Price.Cents())
	case SortCut:
		c = cmp.Compare(a.Cut, b.Cut)
	case SortTitle:
		c = cmp.Compare(strings.ToLower(a.Game.Title), strings.ToLower(b.Game.Title))
	default:
		return 0
	}

	if s.Descending {
		return -c
	}

	return c
}

func (s Sort) String() string {
	dir := "asc"
	if s.Descending {
		dir = "desc"
	}

	return fmt.Sprintf("%s %s", strings.TrimPrefix(s.Param(), "-"), dir)
}

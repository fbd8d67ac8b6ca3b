package query

import (
	"fmt"
	"strconv"

	"dealve/internal/domain"
	"dealve/internal/domain/entity"
	"dealve/pkg/errcodes"
)

// Intent is a user action sent to the Coordinator.
type Intent interface {
	Name() string
	validate() error
}

type SetSearchText struct {
	Text string
}

type ToggleStore struct {
	StoreID int
}

type SetMinDiscount struct {
	Percent int
}

type SetSort struct {
	Sort entity.Sort
}

type NextPage struct{}

type Refresh struct{}

func (SetSearchText) Name() string  { return "set-search-text" }
func (ToggleStore) Name() string    { return "toggle-store" }
func (SetMinDiscount) Name() string { return "set-min-discount" }
func (SetSort) Name() string        { return "set-sort" }
func (NextPage) Name() string       { return "next-page" }
func (Refresh) Name() string        { return "refresh" }

// Validate reports whether the intent can be dispatched.
func Validate(i Intent) error {
	if i == nil {
		return domain.NewError(errcodes.InvalidIntent, "nil intent")
	}

	return i.validate()
}

func (SetSearchText) validate() error { return nil }
func (NextPage) validate() error      { return nil }
func (Refresh) validate() error       { return nil }

func (i ToggleStore) validate() error {
	if _, ok := entity.StoreByID(i.StoreID); !ok {
		return domain.NewError(errcodes.InvalidStore, "unknown store "+strconv.Itoa(i.StoreID))
	}

	return nil
}

func (i SetMinDiscount) validate() error {
	if i.Percent < 0 || i.Percent > 100 {
		return domain.WrapError(entity.ErrInvalidDiscount, errcodes.InvalidDiscount,
			fmt.Sprintf("minimum discount %d", i.Percent))
	}

	return nil
}

func (i SetSort) validate() error {
	if _, err := entity.ParseSort(i.Sort.Param()); err != nil {
		return domain.WrapError(err, errcodes.InvalidSort, "sort "+i.Sort.String())
	}

	return nil
}

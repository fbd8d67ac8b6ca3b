package entity

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"dealve/internal/domain/value"
)

//nolint:gochecknoglobals
var validate = validator.New(validator.WithRequiredStructEnabled())

var ErrPriceAboveRegular = errors.New("current price exceeds regular price")

type Deal struct {
	Game       Game         `json:"game"`
	Store      Store        `json:"store"`
	Price      value.Price  `json:"price"`
	Regular    *value.Price `json:"regular,omitempty"`
	Cut        int          `json:"cut" validate:"gte=0,lte=100"`
	URL        string       `json:"url,omitempty" validate:"omitempty,url"`
	HistoryLow *float64     `json:"historyLow,omitempty" validate:"omitempty,gte=0"`
	Expiry     *time.Time   `json:"expiry,omitempty"`
}

// Validate checks the deal invariants. A nil regular price means the
// upstream did not report one; a reported zero still bounds the price.
func (d Deal) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("deal %q: %w", d.Game.ID, err)
	}

	if d.Regular != nil && d.Price.Cents() > d.Regular.Cents() {
		return fmt.Errorf("deal %q: %w (%s > %s)", d.Game.ID, ErrPriceAboveRegular, d.Price, *d.Regular)
	}

	return nil
}

// Key identifies a deal within a listing: one game at one store.
func (d Deal) Key() string {
	return d.Game.ID + "@" + strconv.Itoa(d.Store.ID)
}

// Savings is how much cheaper the current price is than the regular one.
func (d Deal) Savings() float64 {
	if d.Regular == nil || d.Regular.Amount <= d.Price.Amount {
		return 0
	}

	return d.Regular.Amount - d.Price.Amount
}

// IsHistoricalLow reports whether the current price matches the lowest
// recorded one.
func (d Deal) IsHistoricalLow() bool {
	if d.HistoryLow == nil {
		return false
	}

	return d.Price.Cents() <= value.NewPrice(*d.HistoryLow, d.Price.Currency).Cents()
}

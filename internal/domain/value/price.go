package value

import (
	"fmt"
	"math"
)

const DefaultCurrency = "USD"

type Price struct {
	Amount   float64 `json:"amount" validate:"gte=0"`
	Currency string  `json:"currency"`
}

func NewPrice(amount float64, currency string) Price {
	if currency == "" {
		currency = DefaultCurrency
	}

	return Price{Amount: amount, Currency: currency}
}

// Cents returns the amount rounded to minor units, which is what price
// comparisons use.
func (p Price) Cents() int64 {
	return int64(math.Round(p.Amount * 100)) //nolint:mnd
}

func (p Price) String() string {
	return fmt.Sprintf("%.2f %s", p.Amount, p.Currency)
}

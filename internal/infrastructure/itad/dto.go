package itad

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"dealve/internal/domain"
	"dealve/internal/domain/entity"
	"dealve/internal/domain/value"
)

//nolint:gochecknoglobals
var validate = validator.New(validator.WithRequiredStructEnabled())

// Wire types use pointers so that absent required fields can be told
// apart from zero values.

type dealsResponse struct {
	List    []dealItem `json:"list" validate:"required,dive"`
	HasMore *bool      `json:"hasMore"`
}

type dealItem struct {
	ID    *string   `json:"id" validate:"required"`
	Title *string   `json:"title" validate:"required"`
	Deal  *dealInfo `json:"deal" validate:"required"`
}

type dealInfo struct {
	Shop       *shopInfo  `json:"shop" validate:"required"`
	Price      *priceInfo `json:"price" validate:"required"`
	Regular    *priceInfo `json:"regular"`
	Cut        *int       `json:"cut" validate:"required"`
	URL        string     `json:"url"`
	HistoryLow *priceInfo `json:"historyLow"`
	Expiry     *string    `json:"expiry"`
}

type shopInfo struct {
	ID   *int   `json:"id" validate:"required"`
	Name string `json:"name"`
}

type priceInfo struct {
	Amount   *float64 `json:"amount" validate:"required"`
	Currency string   `json:"currency"`
}

type searchResponse struct {
	Items []searchItem `validate:"dive"`
}

type searchItem struct {
	ID    *string `json:"id" validate:"required"`
	Title *string `json:"title" validate:"required"`
}

type pricesResponse struct {
	Items []priceItem `validate:"dive"`
}

type priceItem struct {
	ID         *string `json:"id" validate:"required"`
	HistoryLow *struct {
		All *priceInfo `json:"all"`
	} `json:"historyLow"`
	Deals []dealInfo `json:"deals" validate:"dive"`
}

type named struct {
	Name string `json:"name"`
}

type gameInfoResponse struct {
	ID          *string  `json:"id" validate:"required"`
	Slug        string   `json:"slug"`
	Title       *string  `json:"title" validate:"required"`
	Type        string   `json:"type"`
	Mature      bool     `json:"mature"`
	EarlyAccess bool     `json:"earlyAccess"`
	ReleaseDate string   `json:"releaseDate"`
	Developers  []named  `json:"developers"`
	Publishers  []named  `json:"publishers"`
	Tags        []string `json:"tags"`
	Reviews     []struct {
		Score  *int   `json:"score"`
		Source string `json:"source"`
		Count  int    `json:"count"`
		URL    string `json:"url"`
	} `json:"reviews"`
}

type historyResponse struct {
	Items []historyItem `validate:"dive"`
}

type historyItem struct {
	Timestamp *string   `json:"timestamp" validate:"required"`
	Shop      *shopInfo `json:"shop" validate:"required"`
	Deal      *struct {
		Price   *priceInfo `json:"price" validate:"required"`
		Regular *priceInfo `json:"regular"`
		Cut     int        `json:"cut"`
	} `json:"deal"`
}

func checkPayload(endpoint string, v any) error {
	if err := validate.Struct(v); err != nil {
		return domain.NewMalformedResponse(fmt.Errorf("validate %s: %w", endpoint, err))
	}

	return nil
}

func (p priceInfo) price() value.Price {
	return value.NewPrice(*p.Amount, p.Currency)
}

func (s shopInfo) store() entity.Store {
	if s.Name != "" {
		return entity.Store{ID: *s.ID, Name: s.Name}
	}

	if known, ok := entity.StoreByID(*s.ID); ok {
		return known
	}

	return entity.Store{ID: *s.ID, Name: "Store #" + strconv.Itoa(*s.ID)}
}

// toDeal converts and validates one upstream deal. historyLow overrides the
// deal's own low when set.
func (d dealInfo) toDeal(game entity.Game, historyLow *float64) (entity.Deal, error) {
	deal := entity.Deal{
		Game:       game,
		Store:      d.Shop.store(),
		Price:      d.Price.price(),
		Cut:        *d.Cut,
		URL:        d.URL,
		HistoryLow: historyLow,
	}

	if d.Regular != nil && d.Regular.Amount != nil {
		regular := d.Regular.price()
		deal.Regular = &regular
	}

	if deal.HistoryLow == nil && d.HistoryLow != nil && d.HistoryLow.Amount != nil {
		low := *d.HistoryLow.Amount
		deal.HistoryLow = &low
	}

	if d.Expiry != nil && *d.Expiry != "" {
		t, err := time.Parse(time.RFC3339, *d.Expiry)
		if err != nil {
			return entity.Deal{}, domain.NewMalformedResponse(fmt.Errorf("deal %q expiry: %w", game.ID, err))
		}
		deal.Expiry = &t
	}

	if err := deal.Validate(); err != nil {
		return entity.Deal{}, domain.NewMalformedResponse(err)
	}

	return deal, nil
}

func (r gameInfoResponse) toGameInfo() entity.GameInfo {
	info := entity.GameInfo{
		Game:        entity.Game{ID: *r.ID, Title: *r.Title},
		Slug:        r.Slug,
		Type:        r.Type,
		ReleaseDate: r.ReleaseDate,
		EarlyAccess: r.EarlyAccess,
		Mature:      r.Mature,
		Tags:        r.Tags,
	}

	for _, d := range r.Developers {
		info.Developers = append(info.Developers, d.Name)
	}

	for _, p := range r.Publishers {
		info.Publishers = append(info.Publishers, p.Name)
	}

	for _, rv := range r.Reviews {
		if rv.Score == nil {
			continue
		}

		info.Reviews = append(info.Reviews, entity.Review{
			Source: rv.Source,
			Score:  *rv.Score,
			Count:  rv.Count,
			URL:    rv.URL,
		})
	}

	return info
}

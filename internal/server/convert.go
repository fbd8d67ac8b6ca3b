package server

import (
	"strings"
	"time"

	"github.com/samber/lo"

	"dealve/internal/domain"
	"dealve/internal/domain/entity"
	"dealve/internal/domain/service/browse"
	"dealve/internal/domain/service/details"
	"dealve/internal/domain/service/query"
	"dealve/internal/domain/value"
	"dealve/internal/infrastructure/cache"
	"dealve/pkg/errcodes"
	"dealve/pkg/rest"
)

func newRESTPrice(p value.Price) rest.Price {
	return rest.Price{Amount: p.Amount, Currency: p.Currency}
}

func newRESTDeal(d entity.Deal) rest.Deal {
	deal := rest.Deal{
		GameID:     d.Game.ID,
		Title:      d.Game.Title,
		Store:      d.Store.Name,
		Price:      newRESTPrice(d.Price),
		Cut:        d.Cut,
		URL:        d.URL,
		HistoryLow: d.HistoryLow,
	}

	if d.Regular != nil {
		deal.Regular = lo.ToPtr(newRESTPrice(*d.Regular))
	}

	if d.Expiry != nil {
		deal.Expiry = lo.ToPtr(d.Expiry.Format(time.RFC3339))
	}

	return deal
}

func newRESTFilter(f entity.Filter) rest.Filter {
	return rest.Filter{
		Query:       f.Query,
		Stores:      lo.Ternary(f.Stores == nil, []int{}, f.Stores),
		MinDiscount: f.MinDiscount,
		Sort:        f.Sort.Param(),
		Country:     f.Country,
		PageSize:    f.PageSize,
		PriceMin:    f.PriceMin,
		PriceMax:    f.PriceMax,
	}
}

func newRESTError(err *domain.AppError) *rest.Error {
	if err == nil {
		return nil
	}

	return &rest.Error{
		Code:       rest.ErrorCode(err.Code),
		Message:    err.Message,
		RetryAfter: err.RetryAfter.Seconds(),
	}
}

func newRESTState(s browse.State) rest.State {
	return rest.State{
		Phase:      string(s.Phase),
		Generation: s.Generation,
		Filter:     newRESTFilter(s.Filter),
		Deals:      lo.Map(s.Deals, func(d entity.Deal, _ int) rest.Deal { return newRESTDeal(d) }),
		HasMore:    s.HasMore,
		Appending:  s.Appending,
		Error:      newRESTError(s.Err),
	}
}

func newRESTCacheStats(s cache.Stats) rest.CacheStats {
	return rest.CacheStats{
		Entries:   s.Entries,
		Capacity:  s.Capacity,
		Hits:      s.Hits,
		Misses:    s.Misses,
		Evictions: s.Evictions,
	}
}

func newRESTPricePoint(p entity.PricePoint) rest.PricePoint {
	return rest.PricePoint{
		Timestamp: p.Timestamp.Format(time.RFC3339),
		Store:     p.Store.Name,
		Price:     newRESTPrice(p.Price),
		Regular:   newRESTPrice(p.Regular),
		Cut:       p.Cut,
	}
}

func newRESTHistory(points []entity.PricePoint) rest.History {
	history := rest.History{
		Points: lo.Map(points, func(p entity.PricePoint, _ int) rest.PricePoint { return newRESTPricePoint(p) }),
	}

	if low, ok := details.Lowest(points); ok {
		history.Lowest = lo.ToPtr(newRESTPricePoint(low))
	}

	return history
}

func newDomainIntent(intent rest.Intent) (query.Intent, error) {
	switch intent.Type {
	case rest.IntentSetSearchText:
		return query.SetSearchText{Text: intent.Text}, nil
	case rest.IntentToggleStore:
		return query.ToggleStore{StoreID: intent.StoreID}, nil
	case rest.IntentSetMinDiscount:
		return query.SetMinDiscount{Percent: lo.FromPtr(intent.Percent)}, nil
	case rest.IntentSetSort:
		sort, err := entity.ParseSort(strings.TrimSpace(intent.Sort))
		if err != nil {
			return nil, domain.WrapError(err, errcodes.InvalidSort, "sort "+intent.Sort)
		}

		return query.SetSort{Sort: sort}, nil
	case rest.IntentNextPage:
		return query.NextPage{}, nil
	case rest.IntentRefresh:
		return query.Refresh{}, nil
	default:
		return nil, domain.NewError(errcodes.InvalidIntent, "unknown intent "+string(intent.Type))
	}
}

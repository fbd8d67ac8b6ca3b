// Package details serves game info and price history for a displayed deal.
package details

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/patrickmn/go-cache"

	"dealve/internal/domain/entity"
	"dealve/pkg/contextx"
	"dealve/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const (
	infoPrefix    = "info:"
	historyPrefix = "history:"
)

type GameSource interface {
	GameInfo(ctx context.Context, id string) (entity.GameInfo, error)
	PriceHistory(ctx context.Context, id, country string) ([]entity.PricePoint, error)
}

// Details is the combined view shown for one deal.
type Details struct {
	Info    entity.GameInfo     `json:"info"`
	History []entity.PricePoint `json:"history"`
}

type Service struct {
	source  GameSource
	country string
	delay   time.Duration
	cache   *cache.Cache
}

func NewService(source GameSource, country string, ttl time.Duration) *Service {
	return &Service{
		source:  source,
		country: country,
		cache:   cache.New(ttl, 2*ttl), //nolint:mnd
	}
}

// WithDelay pauses before each uncached info lookup, so that quickly
// stepping through deals does not spend request budget on every one.
func (s *Service) WithDelay(d time.Duration) *Service {
	s.delay = d
	return s
}

func (s *Service) Info(ctx context.Context, id string) (entity.GameInfo, error) {
	if v, ok := s.cache.Get(infoPrefix + id); ok {
		return v.(entity.GameInfo), nil //nolint:forcetypeassert
	}

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return entity.GameInfo{}, ctx.Err()
		}
	}

	info, err := s.source.GameInfo(ctx, id)
	if err != nil {
		return entity.GameInfo{}, err
	}

	s.cache.SetDefault(infoPrefix+id, info)
	logger(ctx).Debug("game info cached", slog.String(logx.FieldGameID, id))

	return info, nil
}

func (s *Service) History(ctx context.Context, id string) ([]entity.PricePoint, error) {
	key := historyPrefix + s.country + ":" + id
	if v, ok := s.cache.Get(key); ok {
		return slices.Clone(v.([]entity.PricePoint)), nil //nolint:forcetypeassert
	}

	points, err := s.source.PriceHistory(ctx, id, s.country)
	if err != nil {
		return nil, err
	}

	s.cache.SetDefault(key, slices.Clone(points))

	return points, nil
}

// Lookup fetches both parts for a deal. A history failure is logged and
// leaves History empty; the info error is returned.
func (s *Service) Lookup(ctx context.Context, deal entity.Deal) (Details, error) {
	info, err := s.Info(ctx, deal.Game.ID)
	if err != nil {
		return Details{}, err
	}

	history, err := s.History(ctx, deal.Game.ID)
	if err != nil {
		logger(ctx).Warn("price history unavailable", slog.String(logx.FieldGameID, deal.Game.ID), logx.Error(err))
	}

	return Details{Info: info, History: history}, nil
}

// Lowest is the cheapest point of the history.
func Lowest(points []entity.PricePoint) (entity.PricePoint, bool) {
	if len(points) == 0 {
		return entity.PricePoint{}, false
	}

	low := points[0]
	for _, p := range points[1:] {
		if p.Price.Cents() < low.Price.Cents() {
			low = p
		}
	}

	return low, true
}

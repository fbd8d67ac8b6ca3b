package application

import (
	"fmt"
	"strings"

	"dealve/internal/config"
	"dealve/internal/domain"
	"dealve/internal/domain/entity"
	"dealve/pkg/errcodes"
)

// InitialFilter is the filter the session starts with.
func InitialFilter(cfg config.Config) (entity.Filter, error) {
	f := entity.NewFilter(cfg.ITAD.Country, cfg.ITAD.PageSize)

	if name := strings.TrimSpace(cfg.Query.DefaultStore); name != "" && !strings.EqualFold(name, "all") {
		store, ok := entity.LookupStore(name)
		if !ok {
			return f, domain.NewError(errcodes.ConfigError, fmt.Sprintf("unknown default store %q", name))
		}

		f = f.WithStores(store.ID)
	}

	if cfg.Query.DefaultSort != "" {
		sort, err := entity.ParseSort(cfg.Query.DefaultSort)
		if err != nil {
			return f, domain.WrapError(err, errcodes.ConfigError, "default sort")
		}

		f = f.WithSort(sort)
	}

	f, err := f.WithPriceRange(cfg.Query.PriceMin, cfg.Query.PriceMax)
	if err != nil {
		return f, domain.WrapError(err, errcodes.ConfigError, "price range")
	}

	return f, nil
}

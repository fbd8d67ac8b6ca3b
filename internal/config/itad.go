package config

import (
	"strings"
	"time"
)

const (
	envCountry      = "ITAD_COUNTRY"
	envPageSize     = "ITAD_PAGE_SIZE"
	envDefaultStore = "QUERY_DEFAULT_STORE"
	envDefaultSort  = "QUERY_DEFAULT_SORT"
	envInfoDelay    = "DETAILS_INFO_DELAY"
)

type ITAD struct {
	APIKey        string        `env:"ITAD_API_KEY" json:"-"`
	BaseURL       string        `env:"ITAD_BASE_URL" envDefault:"https://api.isthereanydeal.com" validate:"url"`
	Country       string        `env:"ITAD_COUNTRY" envDefault:"US" validate:"len=2"`
	PageSize      int           `env:"ITAD_PAGE_SIZE" envDefault:"50" validate:"oneof=25 50 100 200"`
	SearchResults int           `env:"ITAD_SEARCH_RESULTS" envDefault:"50" validate:"gte=1,lte=100"`
	Timeout       time.Duration `env:"ITAD_TIMEOUT" envDefault:"10s" validate:"gt=0"`
	UserAgent     string        `env:"ITAD_USER_AGENT" envDefault:"dealve/1.0"`
	// Where the setup wizard stores the key; empty means the OS config dir.
	ConfigFile string `env:"DEALVE_CONFIG_FILE"`
}

type RateLimit struct {
	Requests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"5" validate:"gte=1"`
	Window   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1s" validate:"gt=0"`
}

type Query struct {
	Debounce time.Duration `env:"QUERY_DEBOUNCE" envDefault:"300ms" validate:"gt=0"`
	// "wait" delays on an exhausted budget, "fail" reports RateLimited.
	RateLimitPolicy string  `env:"QUERY_RATE_LIMIT_POLICY" envDefault:"wait" validate:"oneof=wait fail"`
	DefaultStore    string  `env:"QUERY_DEFAULT_STORE"`
	DefaultSort     string  `env:"QUERY_DEFAULT_SORT" envDefault:"price"`
	PriceMin        float64 `env:"QUERY_PRICE_MIN" validate:"gte=0"`
	PriceMax        float64 `env:"QUERY_PRICE_MAX" validate:"gte=0"`
}

func (q Query) AllowWait() bool {
	return q.RateLimitPolicy != "fail"
}

type Cache struct {
	Freshness     time.Duration `env:"CACHE_FRESHNESS" envDefault:"2m" validate:"gt=0"`
	Capacity      int           `env:"CACHE_CAPACITY" envDefault:"128" validate:"gte=1"`
	SweepInterval time.Duration `env:"CACHE_SWEEP_INTERVAL" envDefault:"1m" validate:"gt=0"`
}

type Details struct {
	CacheTTL  time.Duration `env:"DETAILS_CACHE_TTL" envDefault:"10m" validate:"gt=0"`
	InfoDelay time.Duration `env:"DETAILS_INFO_DELAY" envDefault:"200ms"`
}

// userFileSort converts the wizard's "Price"/"Descending" pair to the
// wire form ("-price").
func userFileSort(criteria, direction string) string {
	s := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(criteria), " ", "-"))
	if strings.EqualFold(strings.TrimSpace(direction), "descending") {
		return "-" + s
	}

	return s
}

func msToDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

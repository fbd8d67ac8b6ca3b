// Package rest holds the JSON bodies of the status API.
package rest

type Price struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type Deal struct {
	GameID     string   `json:"gameId"`
	Title      string   `json:"title"`
	Store      string   `json:"store"`
	Price      Price    `json:"price"`
	Regular    *Price   `json:"regular,omitempty"`
	Cut        int      `json:"cut"`
	URL        string   `json:"url,omitempty"`
	HistoryLow *float64 `json:"historyLow,omitempty"`
	Expiry     *string  `json:"expiry,omitempty"`
}

type Filter struct {
	Query       string  `json:"query"`
	Stores      []int   `json:"stores"`
	MinDiscount int     `json:"minDiscount"`
	Sort        string  `json:"sort"`
	Country     string  `json:"country"`
	PageSize    int     `json:"pageSize"`
	PriceMin    float64 `json:"priceMin,omitempty"`
	PriceMax    float64 `json:"priceMax,omitempty"`
}

// State is a snapshot of the browsing session.
type State struct {
	Phase      string `json:"phase"`
	Generation uint64 `json:"generation"`
	Filter     Filter `json:"filter"`
	Deals      []Deal `json:"deals"`
	HasMore    bool   `json:"hasMore"`
	Appending  bool   `json:"appending"`
	Error      *Error `json:"error,omitempty"`
}

type CacheStats struct {
	Entries   int    `json:"entries"`
	Capacity  int    `json:"capacity"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

type Store struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// IntentType names the user actions accepted by POST /v1/intents.
type IntentType string

const (
	IntentSetSearchText  IntentType = "set-search-text"
	IntentToggleStore    IntentType = "toggle-store"
	IntentSetMinDiscount IntentType = "set-min-discount"
	IntentSetSort        IntentType = "set-sort"
	IntentNextPage       IntentType = "next-page"
	IntentRefresh        IntentType = "refresh"
)

type Intent struct {
	Type    IntentType `json:"type" validate:"required,oneof=set-search-text toggle-store set-min-discount set-sort next-page refresh"`
	Text    string     `json:"text,omitempty"`
	StoreID int        `json:"storeId,omitempty" validate:"required_if=Type toggle-store"`
	Percent *int       `json:"percent,omitempty" validate:"required_if=Type set-min-discount"`
	Sort    string     `json:"sort,omitempty" validate:"required_if=Type set-sort"`
}

// Error is the body of every non-2xx answer.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	RetryAfter float64   `json:"retryAfterSeconds,omitempty"`
}

type ErrorCode string

type PricePoint struct {
	Timestamp string `json:"timestamp"`
	Store     string `json:"store"`
	Price     Price  `json:"price"`
	Regular   Price  `json:"regular"`
	Cut       int    `json:"cut"`
}

type History struct {
	Points []PricePoint `json:"points"`
	Lowest *PricePoint  `json:"lowest,omitempty"`
}

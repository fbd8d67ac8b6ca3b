package entity

import (
	"time"

	"dealve/internal/domain/value"
)

type Game struct {
	ID    string `json:"id" validate:"required"`
	Title string `json:"title" validate:"required"`
}

type Review struct {
	Source string `json:"source"`
	Score  int    `json:"score"`
	Count  int    `json:"count"`
	URL    string `json:"url,omitempty"`
}

// GameInfo is the detail view of a single game.
type GameInfo struct {
	Game
	Slug        string   `json:"slug,omitempty"`
	Type        string   `json:"type,omitempty"`
	ReleaseDate string   `json:"releaseDate,omitempty"`
	EarlyAccess bool     `json:"earlyAccess"`
	Mature      bool     `json:"mature"`
	Developers  []string `json:"developers,omitempty"`
	Publishers  []string `json:"publishers,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Reviews     []Review `json:"reviews,omitempty"`
}

// PricePoint is one entry of a game's price history.
type PricePoint struct {
	Timestamp time.Time   `json:"timestamp"`
	Store     Store       `json:"store"`
	Price     value.Price `json:"price"`
	Regular   value.Price `json:"regular"`
	Cut       int         `json:"cut"`
}

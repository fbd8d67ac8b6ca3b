package entity

import (
	"strconv"
	"strings"

	"github.com/samber/lo"
)

type Store struct {
	ID   int    `json:"id" validate:"gt=0"`
	Name string `json:"name" validate:"required"`
}

// Slug is the lowercase name without spaces, used for command lookups.
func (s Store) Slug() string {
	return strings.ToLower(strings.Join(strings.Fields(s.Name), ""))
}

//nolint:gochecknoglobals,mnd
var stores = []Store{
	{ID: 2, Name: "AllYouPlay"},
	{ID: 4, Name: "Blizzard"},
	{ID: 13, Name: "DLGamer"},
	{ID: 15, Name: "Dreamgame"},
	{ID: 52, Name: "EA Store"},
	{ID: 16, Name: "Epic Game Store"},
	{ID: 6, Name: "Fanatical"},
	{ID: 17, Name: "FireFlower"},
	{ID: 20, Name: "GameBillet"},
	{ID: 24, Name: "GamersGate"},
	{ID: 25, Name: "Gamesload"},
	{ID: 27, Name: "GamesPlanet DE"},
	{ID: 28, Name: "GamesPlanet FR"},
	{ID: 26, Name: "GamesPlanet UK"},
	{ID: 29, Name: "GamesPlanet US"},
	{ID: 35, Name: "GOG"},
	{ID: 36, Name: "GreenManGaming"},
	{ID: 37, Name: "Humble Store"},
	{ID: 42, Name: "IndieGala Store"},
	{ID: 65, Name: "JoyBuggy"},
	{ID: 47, Name: "MacGameStore"},
	{ID: 48, Name: "Microsoft Store"},
	{ID: 49, Name: "Newegg"},
	{ID: 50, Name: "Nuuvem"},
	{ID: 73, Name: "PlanetPlay"},
	{ID: 74, Name: "PlayerLand"},
	{ID: 70, Name: "Playsum"},
	{ID: 61, Name: "Steam"},
	{ID: 62, Name: "Ubisoft Store"},
	{ID: 64, Name: "WinGameStore"},
	{ID: 72, Name: "ZOOM Platform"},
}

//nolint:gochecknoglobals
var storesByID = lo.KeyBy(stores, func(s Store) int { return s.ID })

// Stores returns the known storefronts in display order.
func Stores() []Store {
	out := make([]Store, len(stores))
	copy(out, stores)
	return out
}

func StoreByID(id int) (Store, bool) {
	s, ok := storesByID[id]
	return s, ok
}

// LookupStore resolves a store by numeric ID, exact name or slug prefix.
// An ambiguous prefix resolves to nothing.
func LookupStore(term string) (Store, bool) {
	term = strings.TrimSpace(term)
	if term == "" {
		return Store{}, false
	}

	if id, err := strconv.Atoi(term); err == nil {
		return StoreByID(id)
	}

	if s, ok := lo.Find(stores, func(s Store) bool { return strings.EqualFold(s.Name, term) }); ok {
		return s, true
	}

	slug := strings.ToLower(strings.Join(strings.Fields(term), ""))
	if s, ok := lo.Find(stores, func(s Store) bool { return s.Slug() == slug }); ok {
		return s, true
	}

	matches := lo.Filter(stores, func(s Store, _ int) bool { return strings.HasPrefix(s.Slug(), slug) })
	if len(matches) == 1 {
		return matches[0], true
	}

	return Store{}, false
}

package entity_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"dealve/internal/domain/entity"
)

func TestLookupStore(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		term   string
		wantID int
		ok     bool
	}{
		{term: "61", wantID: 61, ok: true},
		{term: "steam", wantID: 61, ok: true},
		{term: "GOG", wantID: 35, ok: true},
		{term: "Epic Game Store", wantID: 16, ok: true},
		{term: "epic", wantID: 16, ok: true},
		{term: "humblestore", wantID: 37, ok: true},
		{term: "gamesplanet", ok: false},
		{term: "999", ok: false},
		{term: "", ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.term, func(*testing.T) {
			s, ok := entity.LookupStore(tc.term)
			rq.Equal(tc.ok, ok)

			if tc.ok {
				rq.Equal(tc.wantID, s.ID)
			}
		})
	}

	rq.Len(entity.Stores(), 31)
}

func TestParseSort(t *testing.T) {
	rq := require.New(t)

	s, err := entity.ParseSort("-cut")
	rq.NoError(err)
	rq.Equal(entity.Sort{Field: entity.SortCut, Descending: true}, s)
	rq.Equal("-cut", s.Param())

	s, err = entity.ParseSort("discount")
	rq.NoError(err)
	rq.Equal("-cut", s.Param())

	s, err = entity.ParseSort("title")
	rq.NoError(err)
	rq.Equal("title asc", s.String())

	rq.Equal("price", entity.Sort{}.Param())

	_, err = entity.ParseSort("popularity")
	rq.ErrorIs(err, entity.ErrUnknownSort)
}

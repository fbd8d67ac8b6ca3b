package handler_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"dealve/internal/domain"
	"dealve/internal/domain/entity"
	"dealve/internal/domain/service/browse"
	"dealve/internal/domain/service/query"
	"dealve/internal/domain/value"
	"dealve/internal/transport/bot/handler"
	"dealve/pkg/errcodes"
)

type fakeCoordinator struct {
	dispatched []query.Intent
	state      browse.State
}

func (f *fakeCoordinator) Dispatch(_ context.Context, i query.Intent) error {
	f.dispatched = append(f.dispatched, i)
	return nil
}

func (f *fakeCoordinator) State() browse.State { return f.state }

type fakeDetails struct{}

func (fakeDetails) Info(_ context.Context, id string) (entity.GameInfo, error) {
	return entity.GameInfo{Game: entity.Game{ID: id, Title: "Portal"}, Developers: []string{"Valve"}}, nil
}

func (fakeDetails) History(context.Context, string) ([]entity.PricePoint, error) {
	return nil, domain.NewUnreachable(context.DeadlineExceeded)
}

func newHandler() (*handler.Handler, *fakeCoordinator) {
	f := entity.NewFilter("US", 50)
	co := &fakeCoordinator{state: browse.Idle(f).Loaded(f, []entity.Deal{{
		Game:  entity.Game{ID: "p1", Title: "Portal"},
		Store: entity.Store{ID: 61, Name: "Steam"},
		Price: value.NewPrice(1.99, "USD"),
	}}, false, 1)}

	return handler.New(co, fakeDetails{}), co
}

func TestReplyDispatchesIntents(t *testing.T) {
	rq := require.New(t)

	h, co := newHandler()

	reply, err := h.Reply(context.Background(), "portal")
	rq.NoError(err)
	rq.Empty(reply)

	reply, err = h.Reply(context.Background(), "/store gog")
	rq.NoError(err)
	rq.Empty(reply)

	rq.Equal([]query.Intent{query.SetSearchText{Text: "portal"}, query.ToggleStore{StoreID: 35}}, co.dispatched)
}

func TestReplyQueries(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{line: "/info 1", want: "<b>Developers:</b> Valve"},
		{line: "/info 2", want: "No row 2"},
		{line: "/stores", want: "<code>61</code> Steam"},
		{line: "/sorts", want: "<code>/sort -cut</code>"},
		{line: "/state", want: "1. Portal · Steam"},
		{line: "/help", want: "/discount N"},
		{line: "/quit", want: "keeps running"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			rq := require.New(t)

			h, _ := newHandler()

			reply, err := h.Reply(context.Background(), tt.line)
			rq.NoError(err)
			rq.Contains(reply, tt.want)
		})
	}
}

func TestReplyErrors(t *testing.T) {
	rq := require.New(t)

	h, co := newHandler()

	_, err := h.Reply(context.Background(), "/discount 101")
	code, _ := domain.GetCode(err)
	rq.Equal(errcodes.InvalidDiscount, code)

	_, err = h.Reply(context.Background(), "/history 1")
	code, _ = domain.GetCode(err)
	rq.Equal(errcodes.Unreachable, code)

	rq.Empty(co.dispatched)
}

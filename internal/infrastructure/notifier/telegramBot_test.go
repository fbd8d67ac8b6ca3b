package notifier_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/require"

	"dealve/internal/domain"
	"dealve/internal/domain/entity"
	"dealve/internal/domain/service/browse"
	"dealve/internal/domain/value"
	"dealve/internal/infrastructure/notifier"
)

type recorder struct {
	mu   sync.Mutex
	sent []*telego.SendMessageParams
	err  error
}

func (r *recorder) SendMessage(_ context.Context, p *telego.SendMessageParams) (*telego.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sent = append(r.sent, p)

	return &telego.Message{}, r.err
}

func deal(id string) entity.Deal {
	return entity.Deal{
		Game:  entity.Game{ID: id, Title: "Game " + id},
		Store: entity.Store{ID: 61, Name: "Steam"},
		Price: value.NewPrice(4.99, "USD"),
		Cut:   50,
	}
}

func TestRunSendsSettledStatesOnce(t *testing.T) {
	rq := require.New(t)

	f := entity.NewFilter("US", 50)
	s := browse.Idle(f)

	states := make(chan browse.State, 8)
	states <- s
	states <- s.Loading(f, 1, false)
	states <- s.Loaded(f, []entity.Deal{deal("a")}, true, 1)
	states <- s.Loaded(f, []entity.Deal{deal("a")}, true, 1)
	states <- s.Loaded(f, []entity.Deal{deal("a"), deal("b")}, false, 1)
	states <- s.Failed(f, domain.NewUnreachable(errors.New("dial tcp")), 2)
	close(states)

	rec := &recorder{}
	bot := notifier.NewTelegramBot(rec, 42)

	rq.NoError(bot.Run(context.Background(), states))
	rq.Len(rec.sent, 3)

	rq.Equal(telego.ModeHTML, rec.sent[0].ParseMode)
	rq.Equal(int64(42), rec.sent[0].ChatID.ID)
	rq.Contains(rec.sent[0].Text, "1. Game a")
	rq.Contains(rec.sent[1].Text, "2. Game b")
	rq.Contains(rec.sent[2].Text, "Unreachable")
}

func TestRunKeepsGoingAfterSendFailure(t *testing.T) {
	rq := require.New(t)

	f := entity.NewFilter("US", 50)

	states := make(chan browse.State, 2)
	states <- browse.Idle(f).Loaded(f, nil, false, 1)
	states <- browse.Idle(f).Loaded(f, nil, false, 2)
	close(states)

	rec := &recorder{err: errors.New("forbidden")}

	rq.NoError(notifier.NewTelegramBot(rec, 1).Run(context.Background(), states))
	rq.Len(rec.sent, 2)
}

func TestRunStopsOnCancel(t *testing.T) {
	rq := require.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := notifier.NewTelegramBot(&recorder{}, 1).Run(ctx, make(chan browse.State))
	rq.ErrorIs(err, context.Canceled)
}

func TestSendTextIsPaced(t *testing.T) {
	rq := require.New(t)

	rec := &recorder{}
	bot := notifier.NewTelegramBot(rec, 1).WithInterval(40*time.Millisecond, 1)

	start := time.Now()
	for range 3 {
		rq.NoError(bot.SendText(context.Background(), "hi"))
	}
	rq.GreaterOrEqual(time.Since(start), 70*time.Millisecond)
	rq.Len(rec.sent, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rq.Error(bot.SendText(ctx, "late"))
	rq.Len(rec.sent, 3)
}

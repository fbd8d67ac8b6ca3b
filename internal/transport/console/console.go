// Package console is the line-oriented terminal front end.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"dealve/internal/domain"
	"dealve/internal/domain/entity"
	"dealve/internal/domain/service/browse"
	"dealve/internal/domain/service/query"
	"dealve/internal/transport/command"
	"dealve/pkg/contextx"
	"dealve/pkg/errcodes"
	"dealve/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// ErrQuit is returned by Run when the user leaves.
var ErrQuit = errors.New("console: quit")

type Coordinator interface {
	Dispatch(ctx context.Context, intent query.Intent) error
	Subscribe() (<-chan browse.State, func())
	State() browse.State
}

type Details interface {
	Info(ctx context.Context, id string) (entity.GameInfo, error)
	History(ctx context.Context, id string) ([]entity.PricePoint, error)
}

// lookup is the outcome of a background info or history request.
type lookup struct {
	kind   command.Kind
	deal   entity.Deal
	info   entity.GameInfo
	points []entity.PricePoint
	err    error
}

type Console struct {
	coordinator Coordinator
	details     Details
	in          io.Reader
	view        *view
	lookups     chan lookup

	// Rows already printed for the current list.
	shownKey   string
	shownCount int
}

func New(coordinator Coordinator, details Details, in io.Reader, out io.Writer, colored bool) *Console {
	return &Console{
		coordinator: coordinator,
		details:     details,
		in:          in,
		view:        newView(out, colored),
		lookups:     make(chan lookup),
	}
}

// Run reads commands until the input ends, the user quits or ctx is
// cancelled. States from the coordinator and finished detail lookups are
// printed as they arrive.
func (c *Console) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	states, unsubscribe := c.coordinator.Subscribe()
	defer unsubscribe()

	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		sc := bufio.NewScanner(c.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	c.view.printf("dealve · type /help for commands\n")

	if err := c.coordinator.Dispatch(ctx, query.Refresh{}); err != nil {
		return fmt.Errorf("initial load: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s, ok := <-states:
			if !ok {
				return nil
			}
			c.render(s)
		case l := <-c.lookups:
			c.showLookup(ctx, l)
		case line := <-lines:
			if err := c.handle(ctx, line); err != nil {
				return err
			}
		case err := <-readErr:
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			return ErrQuit
		}
	}
}

func (c *Console) render(s browse.State) {
	from := 0

	if s.Phase == browse.PhaseLoaded {
		key := s.Filter.Key()
		if key == c.shownKey && c.shownCount > 0 && len(s.Deals) > c.shownCount {
			from = c.shownCount
		}

		c.shownKey = key
		c.shownCount = len(s.Deals)
	}

	c.view.state(s, from)
}

func (c *Console) handle(ctx context.Context, line string) error {
	cmd, err := command.Parse(line)
	if err != nil {
		c.view.failure(err)
		return nil
	}

	switch cmd.Kind {
	case command.KindNone:
	case command.KindIntent:
		if cmd.Intent.Name() != (query.NextPage{}).Name() {
			c.shownKey = ""
		}

		if err := c.coordinator.Dispatch(ctx, cmd.Intent); err != nil {
			c.view.failure(err)
		}
	case command.KindStores:
		c.view.stores(c.coordinator.State().Filter)
	case command.KindSorts:
		c.view.sorts(c.coordinator.State().Filter.Sort)
	case command.KindInfo, command.KindHistory:
		c.showDetails(ctx, cmd)
	case command.KindState:
		c.shownKey = ""
		c.render(c.coordinator.State())
	case command.KindHelp:
		c.view.printf("%s\n", command.Help)
	case command.KindQuit:
		return ErrQuit
	}

	return nil
}

// showDetails starts the lookup for a displayed row; the result comes back
// through c.lookups.
func (c *Console) showDetails(ctx context.Context, cmd command.Command) {
	deals := c.coordinator.State().Deals
	if cmd.Index > len(deals) {
		c.view.failure(domain.NewError(errcodes.NotFound, fmt.Sprintf("no row %d", cmd.Index)))
		return
	}

	deal := deals[cmd.Index-1]

	go func() {
		l := lookup{kind: cmd.Kind, deal: deal}
		if cmd.Kind == command.KindInfo {
			l.info, l.err = c.details.Info(ctx, deal.Game.ID)
		} else {
			l.points, l.err = c.details.History(ctx, deal.Game.ID)
		}

		select {
		case c.lookups <- l:
		case <-ctx.Done():
		}
	}()
}

func (c *Console) showLookup(ctx context.Context, l lookup) {
	if l.err != nil {
		logger(ctx).Debug("detail lookup failed", slog.String(logx.FieldGameID, l.deal.Game.ID), logx.Error(l.err))
		c.view.failure(l.err)

		return
	}

	if l.kind == command.KindInfo {
		c.view.info(l.info)
		return
	}

	c.view.history(l.deal.Game.Title, l.points)
}

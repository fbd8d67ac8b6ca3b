package console

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"dealve/internal/domain"
	"dealve/internal/domain/entity"
	"dealve/internal/domain/service/browse"
	"dealve/pkg/errcodes"
)

const (
	titleWidth = 40
	storeWidth = 18
	barWidth   = 30
)

type view struct {
	out io.Writer
	now func() time.Time

	head  *color.Color
	price *color.Color
	cut   *color.Color
	low   *color.Color
	dim   *color.Color
	fail  *color.Color
}

func newView(out io.Writer, colored bool) *view {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}

		return c
	}

	return &view{
		out:   out,
		now:   time.Now,
		head:  mk(color.Bold),
		price: mk(color.FgGreen, color.Bold),
		cut:   mk(color.FgYellow),
		low:   mk(color.FgMagenta),
		dim:   mk(color.Faint),
		fail:  mk(color.FgRed, color.Bold),
	}
}

func (v *view) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(v.out, format, args...)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	r := []rune(s)

	return string(r[:n-1]) + "…"
}

func pad(s string, n int) string {
	s = truncate(s, n)
	return s + strings.Repeat(" ", n-utf8.RuneCountInString(s))
}

func describe(f entity.Filter) string {
	parts := make([]string, 0, 4) //nolint:mnd
	if f.Query != "" {
		parts = append(parts, fmt.Sprintf("%q", f.Query))
	} else {
		parts = append(parts, "all deals")
	}

	if len(f.Stores) > 0 {
		names := make([]string, 0, len(f.Stores))
		for _, id := range f.Stores {
			if s, ok := entity.StoreByID(id); ok {
				names = append(names, s.Name)
			}
		}
		parts = append(parts, "in "+strings.Join(names, ", "))
	}

	if f.MinDiscount > 0 {
		parts = append(parts, fmt.Sprintf("≥%d%% off", f.MinDiscount))
	}

	parts = append(parts, "by "+f.Sort.String())

	return strings.Join(parts, " · ")
}

func (v *view) state(s browse.State, from int) {
	switch s.Phase {
	case browse.PhaseIdle:
		v.printf("%s\n", v.dim.Sprint("ready"))
	case browse.PhaseLoading:
		if s.Appending {
			v.printf("%s\n", v.dim.Sprint("loading more…"))
		} else {
			v.printf("%s %s\n", v.dim.Sprint("loading"), describe(s.Filter))
		}
	case browse.PhaseLoaded:
		v.deals(s, from)
	case browse.PhaseError:
		v.failure(s.Err)
	}
}

func (v *view) deals(s browse.State, from int) {
	if from == 0 {
		v.printf("%s\n", v.head.Sprint(describe(s.Filter)))
	}

	if len(s.Deals) == 0 {
		v.printf("%s\n", v.dim.Sprint("no deals found"))
		return
	}

	for i := from; i < len(s.Deals); i++ {
		v.row(i+1, s.Deals[i])
	}

	footer := fmt.Sprintf("%d deals", len(s.Deals))
	if s.HasMore {
		footer += " · /next for more"
	}
	v.printf("%s\n", v.dim.Sprint(footer))
}

func (v *view) row(n int, d entity.Deal) {
	marker := " "
	if d.IsHistoricalLow() {
		marker = v.low.Sprint("▼")
	}

	regular := ""
	if d.Regular != nil {
		regular = v.dim.Sprintf("%9s", fmt.Sprintf("%.2f", d.Regular.Amount))
	}

	v.printf("%3d. %s %s %s %s %s %s\n",
		n,
		pad(d.Game.Title, titleWidth),
		pad(d.Store.Name, storeWidth),
		v.price.Sprintf("%9s", d.Price.String()),
		regular,
		v.cut.Sprintf("-%d%%", d.Cut),
		marker,
	)
}

func (v *view) failure(err error) {
	appErr := domain.AsAppError(err)

	v.printf("%s %s\n", v.fail.Sprint("error:"), appErr.Error())

	switch {
	case appErr.Code == errcodes.RateLimited && appErr.RetryAfter > 0:
		v.printf("%s\n", v.dim.Sprintf("rate limited, retry in %s with /refresh", appErr.RetryAfter.Round(time.Second)))
	case appErr.Code == errcodes.ConfigError:
		v.printf("%s\n", v.dim.Sprint("set ITAD_API_KEY or run the key check to store one"))
	case appErr.Retryable():
		v.printf("%s\n", v.dim.Sprint("type /refresh to try again"))
	}
}

func (v *view) info(info entity.GameInfo) {
	v.printf("%s\n", v.head.Sprint(info.Title))

	line := func(label, value string) {
		if value != "" {
			v.printf("  %s %s\n", v.dim.Sprintf("%-12s", label), value)
		}
	}

	line("released", info.ReleaseDate)
	line("type", info.Type)
	line("developers", strings.Join(info.Developers, ", "))
	line("publishers", strings.Join(info.Publishers, ", "))
	line("tags", strings.Join(info.Tags, ", "))

	if info.EarlyAccess {
		line("status", "early access")
	}

	for _, r := range info.Reviews {
		line(r.Source, fmt.Sprintf("%d%% (%s reviews)", r.Score, humanize.Comma(int64(r.Count))))
	}
}

// history prints one line per point with a bar scaled to the highest price.
func (v *view) history(title string, points []entity.PricePoint) {
	v.printf("%s\n", v.head.Sprintf("%s: price history", title))

	if len(points) == 0 {
		v.printf("%s\n", v.dim.Sprint("no price changes in the last year"))
		return
	}

	highest := 0.0
	lowest := points[0]

	for _, p := range points {
		highest = math.Max(highest, p.Price.Amount)
		if p.Price.Cents() < lowest.Price.Cents() {
			lowest = p
		}
	}

	for _, p := range points {
		width := 0
		if highest > 0 {
			width = int(math.Round(p.Price.Amount / highest * barWidth))
		}

		v.printf("  %s %s %s %s %s\n",
			p.Timestamp.Format(time.DateOnly),
			pad(p.Store.Name, storeWidth),
			v.price.Sprintf("%9s", p.Price.String()),
			v.cut.Sprint(strings.Repeat("█", width)),
			v.dim.Sprint(humanize.RelTime(p.Timestamp, v.now(), "ago", "from now")),
		)
	}

	v.printf("  %s %s at %s, %s\n",
		v.low.Sprint("lowest:"),
		lowest.Price.String(),
		lowest.Store.Name,
		lowest.Timestamp.Format(time.DateOnly),
	)
}

func (v *view) stores(active entity.Filter) {
	for _, s := range entity.Stores() {
		mark := " "
		if active.HasStore(s.ID) {
			mark = v.price.Sprint("*")
		}

		v.printf("%s %3d  %s %s\n", mark, s.ID, pad(s.Name, storeWidth), v.dim.Sprint(s.Slug()))
	}
}

func (v *view) sorts(active entity.Sort) {
	for _, s := range entity.SortOptions() {
		mark := " "
		if s == active {
			mark = v.price.Sprint("*")
		}

		v.printf("%s %-14s %s\n", mark, s.Param(), v.dim.Sprint(s.String()))
	}
}

// Package view renders bot messages as Telegram HTML.
package view

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"dealve/internal/domain"
	"dealve/internal/domain/entity"
	"dealve/internal/domain/service/browse"
	"dealve/internal/transport/command"
)

// MaxRows keeps list messages under the Telegram length limit.
const MaxRows = 20

const (
	StartMessage  = "🎮 <b>dealve</b>\n\nSend a title to search deals, or /help for commands."
	QuitMessage   = "The bot keeps running with the host process."
	NoRowTemplate = "❌ No row %d in the current list."
)

func Help() string {
	return "<pre>" + html.EscapeString(command.Help) + "</pre>"
}

func Error(err error) string {
	appErr := domain.AsAppError(err)

	text := fmt.Sprintf("❌ <b>%s</b>: %s", appErr.Code, html.EscapeString(appErr.Message))
	if appErr.RetryAfter > 0 {
		text += fmt.Sprintf("\nRetry in %s.", appErr.RetryAfter.Round(time.Second))
	} else if appErr.Retryable() {
		text += "\nSend /refresh to try again."
	}

	return text
}

func Filter(f entity.Filter) string {
	var sb strings.Builder

	if f.Query != "" {
		fmt.Fprintf(&sb, "🔍 <b>%s</b>", html.EscapeString(f.Query))
	} else {
		sb.WriteString("🔥 <b>All deals</b>")
	}

	for _, id := range f.Stores {
		if s, ok := entity.StoreByID(id); ok {
			fmt.Fprintf(&sb, " · %s", html.EscapeString(s.Name))
		}
	}

	if f.MinDiscount > 0 {
		fmt.Fprintf(&sb, " · ≥%d%%", f.MinDiscount)
	}

	fmt.Fprintf(&sb, " · %s", f.Sort)

	return sb.String()
}

// State renders Loaded and Error states; other phases yield "".
func State(s browse.State) string {
	switch s.Phase {
	case browse.PhaseLoaded:
		return Deals(s)
	case browse.PhaseError:
		return Filter(s.Filter) + "\n\n" + Error(s.Err)
	default:
		return ""
	}
}

func Deals(s browse.State) string {
	var sb strings.Builder

	sb.WriteString(Filter(s.Filter))
	sb.WriteString("\n\n")

	if len(s.Deals) == 0 {
		sb.WriteString("No deals found.")
		return sb.String()
	}

	for i, d := range s.Deals {
		if i == MaxRows {
			fmt.Fprintf(&sb, "…and %d more\n", len(s.Deals)-MaxRows)
			break
		}

		fmt.Fprintf(&sb, "%d. %s\n", i+1, Deal(d))
	}

	if s.HasMore {
		sb.WriteString("\n/next for more")
	}

	return sb.String()
}

func Deal(d entity.Deal) string {
	title := html.EscapeString(d.Game.Title)
	if d.URL != "" {
		title = fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(d.URL), title)
	}

	text := fmt.Sprintf("%s · %s · <b>%s</b> -%d%%", title, html.EscapeString(d.Store.Name), d.Price, d.Cut)
	if d.IsHistoricalLow() {
		text += " 📉"
	}

	return text
}

func Info(info entity.GameInfo) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "🎮 <b>%s</b>\n", html.EscapeString(info.Title))

	field := func(label string, value string) {
		if value != "" {
			fmt.Fprintf(&sb, "<b>%s:</b> %s\n", label, html.EscapeString(value))
		}
	}

	field("Released", info.ReleaseDate)
	field("Developers", strings.Join(info.Developers, ", "))
	field("Publishers", strings.Join(info.Publishers, ", "))
	field("Tags", strings.Join(info.Tags, ", "))

	for _, r := range info.Reviews {
		field(r.Source, fmt.Sprintf("%d%% of %s", r.Score, humanize.Comma(int64(r.Count))))
	}

	return sb.String()
}

func History(title string, points []entity.PricePoint) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "📈 <b>%s</b>\n\n", html.EscapeString(title))

	if len(points) == 0 {
		sb.WriteString("No price changes in the last year.")
		return sb.String()
	}

	// Newest first, bounded like the deal list.
	for i := len(points) - 1; i >= 0 && len(points)-i <= MaxRows; i-- {
		p := points[i]
		fmt.Fprintf(&sb, "%s · %s · <b>%s</b>\n",
			p.Timestamp.Format(time.DateOnly), html.EscapeString(p.Store.Name), p.Price)
	}

	return sb.String()
}

func Stores(active entity.Filter) string {
	var sb strings.Builder

	sb.WriteString("<b>Stores</b>\n")

	for _, s := range entity.Stores() {
		mark := ""
		if active.HasStore(s.ID) {
			mark = " ✅"
		}

		fmt.Fprintf(&sb, "<code>%d</code> %s%s\n", s.ID, html.EscapeString(s.Name), mark)
	}

	return sb.String()
}

func Sorts(active entity.Sort) string {
	var sb strings.Builder

	sb.WriteString("<b>Sort</b>\n")

	for _, s := range entity.SortOptions() {
		mark := ""
		if s == active {
			mark = " ✅"
		}

		fmt.Fprintf(&sb, "<code>/sort %s</code>%s\n", s.Param(), mark)
	}

	return sb.String()
}

// Package command parses the line commands shared by the front ends.
package command

import (
	"fmt"
	"strconv"
	"strings"

	"dealve/internal/domain"
	"dealve/internal/domain/entity"
	"dealve/internal/domain/service/query"
	"dealve/pkg/errcodes"
)

type Kind int

const (
	KindNone Kind = iota
	KindIntent
	KindStores
	KindSorts
	KindInfo
	KindHistory
	KindState
	KindHelp
	KindQuit
)

// Command is a parsed line. Intent is set for KindIntent, Index (1-based
// row number) for KindInfo and KindHistory.
type Command struct {
	Kind   Kind
	Intent query.Intent
	Index  int
}

const Help = `Type a title to search, or a command:
  /store NAME     toggle a store filter (name, slug or id)
  /stores         list stores
  /discount N     minimum discount, 0-100
  /sort CRIT      price, -price, cut, -cut, title, hot, release-date, expiry, rank
  /sorts          list sort presets
  /next           load the next page
  /refresh        fetch the current list again
  /clear          clear the search text
  /info N         details of row N
  /history N      price history of row N
  /state          current state
  /help           this help
  /quit           exit`

func invalid(code errcodes.ErrorCode, format string, args ...any) error {
	return domain.NewError(code, fmt.Sprintf(format, args...))
}

// Parse reads one input line. Text without a leading slash is a search.
func Parse(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{Kind: KindNone}, nil
	}

	if !strings.HasPrefix(line, "/") {
		return intent(query.SetSearchText{Text: line}), nil
	}

	name, arg, _ := strings.Cut(line[1:], " ")
	arg = strings.TrimSpace(arg)

	// Telegram appends the bot name to commands sent in groups.
	name, _, _ = strings.Cut(strings.ToLower(name), "@")

	switch name {
	case "store", "shop":
		if arg == "" {
			return Command{}, invalid(errcodes.InvalidStore, "usage: /store NAME")
		}

		store, ok := entity.LookupStore(arg)
		if !ok {
			return Command{}, invalid(errcodes.InvalidStore, "unknown store %q", arg)
		}

		return intent(query.ToggleStore{StoreID: store.ID}), nil
	case "stores", "shops":
		return Command{Kind: KindStores}, nil
	case "discount", "min":
		pct, err := strconv.Atoi(strings.TrimSuffix(arg, "%"))
		if err != nil || pct < 0 || pct > 100 {
			return Command{}, invalid(errcodes.InvalidDiscount, "discount must be a number from 0 to 100")
		}

		return intent(query.SetMinDiscount{Percent: pct}), nil
	case "sort":
		s, err := entity.ParseSort(arg)
		if err != nil {
			return Command{}, domain.WrapError(err, errcodes.InvalidSort, "usage: /sort CRIT")
		}

		return intent(query.SetSort{Sort: s}), nil
	case "sorts":
		return Command{Kind: KindSorts}, nil
	case "next", "more":
		return intent(query.NextPage{}), nil
	case "refresh", "reload":
		return intent(query.Refresh{}), nil
	case "clear":
		return intent(query.SetSearchText{}), nil
	case "search":
		return intent(query.SetSearchText{Text: arg}), nil
	case "info", "history":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return Command{}, invalid(errcodes.ValidationError, "usage: /%s N", name)
		}

		kind := KindInfo
		if name == "history" {
			kind = KindHistory
		}

		return Command{Kind: kind, Index: n}, nil
	case "state", "status":
		return Command{Kind: KindState}, nil
	case "help", "start":
		return Command{Kind: KindHelp}, nil
	case "quit", "exit", "q":
		return Command{Kind: KindQuit}, nil
	default:
		return Command{}, invalid(errcodes.InvalidIntent, "unknown command /%s", name)
	}
}

func intent(i query.Intent) Command {
	return Command{Kind: KindIntent, Intent: i}
}

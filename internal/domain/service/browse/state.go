// Package browse holds the view state of the deals list.
package browse

import (
	"fmt"

	"dealve/internal/domain"
	"dealve/internal/domain/entity"
)

type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseLoaded  Phase = "loaded"
	PhaseError   Phase = "error"
)

// State is an immutable snapshot of what the list shows. Deals are the
// displayed rows; they survive a Loading or Error caused by an appended
// page so the user keeps what was already on screen.
type State struct {
	Phase      Phase            `json:"phase"`
	Filter     entity.Filter    `json:"filter"`
	Deals      []entity.Deal    `json:"deals"`
	HasMore    bool             `json:"hasMore"`
	Appending  bool             `json:"appending,omitempty"`
	Err        *domain.AppError `json:"-"`
	Generation uint64           `json:"generation"`
}

func Idle(f entity.Filter) State {
	return State{Phase: PhaseIdle, Filter: f}
}

// Loading starts a fetch for f. An appending load keeps the current rows.
func (s State) Loading(f entity.Filter, generation uint64, appending bool) State {
	next := State{
		Phase:      PhaseLoading,
		Filter:     f,
		Appending:  appending,
		Generation: generation,
	}

	if appending {
		next.Deals = s.Deals
		next.HasMore = s.HasMore
	}

	return next
}

func (s State) Loaded(f entity.Filter, deals []entity.Deal, hasMore bool, generation uint64) State {
	return State{
		Phase:      PhaseLoaded,
		Filter:     f,
		Deals:      deals,
		HasMore:    hasMore,
		Generation: generation,
	}
}

// Failed ends a fetch with err. After a failed append the rows loaded so
// far stay visible.
func (s State) Failed(f entity.Filter, err *domain.AppError, generation uint64) State {
	next := State{
		Phase:      PhaseError,
		Filter:     f,
		Err:        err,
		Generation: generation,
	}

	if s.Phase == PhaseLoading && s.Appending {
		next.Deals = s.Deals
		next.HasMore = s.HasMore
	}

	return next
}

// ErrorCode is the failure kind, empty unless Phase is PhaseError.
func (s State) ErrorCode() string {
	if s.Err == nil {
		return ""
	}

	return s.Err.Code.String()
}

func (s State) String() string {
	switch s.Phase {
	case PhaseLoading:
		return fmt.Sprintf("loading (gen %d)", s.Generation)
	case PhaseLoaded:
		return fmt.Sprintf("loaded %d deals (gen %d, more=%t)", len(s.Deals), s.Generation, s.HasMore)
	case PhaseError:
		return fmt.Sprintf("error %s (gen %d)", s.ErrorCode(), s.Generation)
	default:
		return string(s.Phase)
	}
}

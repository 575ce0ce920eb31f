package leaderboard

import (
	"github.com/robalyx/havenhelper/internal/database/types"
	"github.com/robalyx/havenhelper/internal/gratitude"
)

// State is the lifecycle state of a leaderboard session.
// An expired session is one the store no longer returns.
type State int

const (
	// StateIdle awaits the next activation.
	StateIdle State = iota
	// StateRendering is held while a page is being queried and drawn.
	StateRendering
)

// ActivationKind identifies a control interaction.
type ActivationKind int

const (
	ActivationScope ActivationKind = iota
	ActivationPrev
	ActivationNext
)

// Activation is a single control interaction on a leaderboard message.
type Activation struct {
	Kind  ActivationKind
	Scope gratitude.Scope
}

// ScopeChanged selects a new scope.
func ScopeChanged(scope gratitude.Scope) Activation {
	return Activation{Kind: ActivationScope, Scope: scope}
}

// PrevPage moves one page back.
func PrevPage() Activation {
	return Activation{Kind: ActivationPrev}
}

// NextPage moves one page forward.
func NextPage() Activation {
	return Activation{Kind: ActivationNext}
}

// RenderRequest is the page a transition asks to be drawn.
type RenderRequest struct {
	Scope gratitude.Scope
	Page  int
}

// Session is the state behind one interactive leaderboard message.
type Session struct {
	Scope        gratitude.Scope `json:"scope"`
	Page         int             `json:"page"`
	GuildID      uint64          `json:"guildId,string"`
	PrevDisabled bool            `json:"prevDisabled"`
	NextDisabled bool            `json:"nextDisabled"`
	State        State           `json:"state"`
}

// NewSession creates a session on the first page of scope.
func NewSession(guildID uint64, scope gratitude.Scope) *Session {
	return &Session{
		Scope:        scope,
		GuildID:      guildID,
		PrevDisabled: true,
		State:        StateIdle,
	}
}

// Apply performs a transition and returns the page to render.
// It returns false for Prev on the first page, which changes nothing.
// Next is never checked against the total; an overshoot renders no rows.
func (s *Session) Apply(a Activation) (RenderRequest, bool) {
	switch a.Kind {
	case ActivationScope:
		s.Scope = a.Scope
		s.Page = 0
	case ActivationPrev:
		if s.Page == 0 {
			return RenderRequest{}, false
		}

		s.Page--
	case ActivationNext:
		s.Page++
	}

	s.State = StateRendering

	return RenderRequest{Scope: s.Scope, Page: s.Page}, true
}

// Settle enters Idle and recomputes the control states from the rendered page.
func (s *Session) Settle(page *types.LeaderboardPage) {
	s.PrevDisabled = s.Page == 0
	s.NextDisabled = page.Offset+len(page.Rows) >= page.Total
	s.State = StateIdle
}

// Controls returns the control states to display.
func (s *Session) Controls() ControlState {
	return ControlState{
		Interactive:  true,
		Scope:        s.Scope,
		PrevDisabled: s.PrevDisabled,
		NextDisabled: s.NextDisabled,
	}
}

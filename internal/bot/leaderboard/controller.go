package leaderboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/robalyx/havenhelper/internal/bot/session"
	"github.com/robalyx/havenhelper/internal/database/types"
	"github.com/robalyx/havenhelper/internal/gratitude"
	"go.uber.org/zap"
)

var (
	// ErrNoThanks indicates the first page of a new leaderboard is empty.
	ErrNoThanks = errors.New("no thanks recorded")
	// ErrNoChange indicates an activation that leaves the session as it was.
	ErrNoChange = errors.New("activation did not change the session")
	// ErrMessageGone is returned by a PresentFunc when the leaderboard message
	// no longer exists. The session is dropped.
	ErrMessageGone = errors.New("leaderboard message no longer exists")
)

// PresentFunc displays the outcome of an activation. It runs inside the
// session's lane, so displays happen in the same order as the activations.
type PresentFunc func(view *View, err error) error

// Renderer draws a page of rows.
type Renderer interface {
	Render(
		ctx context.Context, guildID uint64, scope, title string, rows []*types.LeaderboardRow, startRank int,
	) ([]byte, error)
}

// Store persists sessions keyed by the leaderboard message ID.
type Store interface {
	Load(ctx context.Context, id uint64) (*Session, error)
	Save(ctx context.Context, id uint64, sess *Session) error
	Close(ctx context.Context, id uint64)
}

// ControlState is the enabled state of the controls attached to a view.
type ControlState struct {
	Interactive  bool
	Scope        gratitude.Scope
	PrevDisabled bool
	NextDisabled bool
}

// View is a rendered leaderboard ready to be displayed.
type View struct {
	Title     string
	Image     []byte
	Rows      int
	StartRank int
	Controls  ControlState
}

// Controller drives leaderboard sessions.
type Controller struct {
	aggregator *gratitude.Aggregator
	renderer   Renderer
	store      Store
	lanes      *session.Lanes
	logger     *zap.Logger
}

// NewController creates a leaderboard controller.
func NewController(
	aggregator *gratitude.Aggregator, renderer Renderer, store Store, logger *zap.Logger,
) *Controller {
	return &Controller{
		aggregator: aggregator,
		renderer:   renderer,
		store:      store,
		lanes:      session.NewLanes(),
		logger:     logger.Named("leaderboard"),
	}
}

// Open renders the first page of a new leaderboard. Interactive scopes also
// return the session to Bind once the message exists; calendar months return
// a nil session and have no controls.
func (c *Controller) Open(ctx context.Context, guildID uint64, scope gratitude.Scope) (*View, *Session, error) {
	result, err := c.aggregator.Page(ctx, scope, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}

	if len(result.Rows) == 0 {
		return nil, nil, ErrNoThanks
	}

	image, err := c.renderer.Render(ctx, guildID, scope.Key(), scope.Title(), result.Rows, 1)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to render leaderboard: %w", err)
	}

	view := &View{
		Title:     scope.Title(),
		Image:     image,
		Rows:      len(result.Rows),
		StartRank: 1,
	}

	if !scope.Interactive() {
		return view, nil, nil
	}

	sess := NewSession(guildID, scope)
	sess.Settle(result)
	view.Controls = sess.Controls()

	return view, sess, nil
}

// Bind stores a session under the ID of the message displaying it.
func (c *Controller) Bind(ctx context.Context, messageID uint64, sess *Session) error {
	if err := c.store.Save(ctx, messageID, sess); err != nil {
		return fmt.Errorf("failed to bind leaderboard session: %w", err)
	}

	return nil
}

// Close drops the session of a message, after any queued activations have run.
func (c *Controller) Close(ctx context.Context, sessionID uint64) {
	_ = c.lanes.Do(sessionID, func() {
		c.store.Close(ctx, sessionID)
	})

	c.logger.Debug("Leaderboard session closed", zap.Uint64("session_id", sessionID))
}

// Submit queues an activation behind every earlier submission for the same
// session and returns without waiting. The activation and its presentation
// run as one step of the lane. The returned channel receives nil, or the
// recovered panic, once both have run.
func (c *Controller) Submit(ctx context.Context, sessionID uint64, a Activation, present PresentFunc) <-chan error {
	return c.lanes.Submit(sessionID, func() {
		view, err := c.activate(ctx, sessionID, a)

		if err := present(view, err); err != nil {
			if errors.Is(err, ErrMessageGone) {
				c.store.Close(ctx, sessionID)
				c.logger.Debug("Leaderboard message gone, session closed", zap.Uint64("session_id", sessionID))
				return
			}

			c.logger.Warn("Failed to present leaderboard",
				zap.Uint64("session_id", sessionID),
				zap.Error(err))
		}
	})
}

// Activate applies an activation to the session of a message and renders the result.
// Activations of the same session run one at a time in arrival order.
// A missing or idle session yields session.ErrSessionExpired. On any error
// the stored session is left unchanged.
func (c *Controller) Activate(ctx context.Context, sessionID uint64, a Activation) (*View, error) {
	var (
		view *View
		err  error
	)

	if panicErr := c.lanes.Do(sessionID, func() {
		view, err = c.activate(ctx, sessionID, a)
	}); panicErr != nil {
		return nil, panicErr
	}

	return view, err
}

func (c *Controller) activate(ctx context.Context, sessionID uint64, a Activation) (*View, error) {
	sess, err := c.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	req, ok := sess.Apply(a)
	if !ok {
		return nil, ErrNoChange
	}

	result, err := c.aggregator.Page(ctx, req.Scope, req.Page)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}

	startRank := result.Offset + 1

	image, err := c.renderer.Render(ctx, sess.GuildID, req.Scope.Key(), req.Scope.Title(), result.Rows, startRank)
	if err != nil {
		return nil, fmt.Errorf("failed to render leaderboard: %w", err)
	}

	sess.Settle(result)

	if err := c.store.Save(ctx, sessionID, sess); err != nil {
		return nil, fmt.Errorf("failed to save leaderboard session: %w", err)
	}

	c.logger.Debug("Leaderboard activated",
		zap.Uint64("session_id", sessionID),
		zap.String("scope", req.Scope.Key()),
		zap.Int("page", req.Page),
		zap.Int("rows", len(result.Rows)),
		zap.Int("total", result.Total))

	return &View{
		Title:     req.Scope.Title(),
		Image:     image,
		Rows:      len(result.Rows),
		StartRank: startRank,
		Controls:  sess.Controls(),
	}, nil
}

package gratitude

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robalyx/havenhelper/internal/database/types"
	"go.uber.org/zap"
)

var (
	// ErrSelfThanks indicates a user tried to thank themselves.
	ErrSelfThanks = errors.New("users cannot thank themselves")
	// ErrGameTooLong indicates the game name exceeds MaxGameLength.
	ErrGameTooLong = errors.New("game name is too long")
	// ErrNoteTooLong indicates the note exceeds MaxNoteLength.
	ErrNoteTooLong = errors.New("message is too long")
	// ErrInvalidRequest indicates a request that failed validation for another reason.
	ErrInvalidRequest = errors.New("invalid thanks request")
)

// Field limits, counted in characters.
const (
	MaxGameLength = 100
	MaxNoteLength = 500
)

// ThanksRequest is a single give-thanks action.
type ThanksRequest struct {
	ThankedID    uint64 `validate:"required"`
	ThankedName  string `validate:"required"`
	ThankingID   uint64 `validate:"required"`
	ThankingName string `validate:"required"`
	Game         string `validate:"max=100"`
	Note         string `validate:"max=500"`
}

// ThanksResult describes a recorded thanks.
type ThanksResult struct {
	Fact      *types.ThanksFact
	Counts    types.MilestoneCounts
	Milestone *Milestone
}

// Service records thanks and evaluates milestones for them.
type Service struct {
	ledger   Ledger
	validate *validator.Validate
	logger   *zap.Logger
	clock    clock
}

// NewService creates a gratitude service over the ledger.
func NewService(ledger Ledger, logger *zap.Logger, opts ...Option) *Service {
	return &Service{
		ledger:   ledger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.Named("gratitude"),
		clock:    newClock(opts),
	}
}

// GiveThanks validates and appends a thanks fact. The milestone, if any, is
// evaluated against the counts bracketing this specific append.
func (s *Service) GiveThanks(ctx context.Context, req ThanksRequest) (*ThanksResult, error) {
	req.Game = strings.TrimSpace(req.Game)
	req.Note = strings.TrimSpace(req.Note)

	if err := s.check(&req); err != nil {
		return nil, err
	}

	fact := &types.ThanksFact{
		ThankedID:    req.ThankedID,
		ThankedName:  req.ThankedName,
		ThankingID:   req.ThankingID,
		ThankingName: req.ThankingName,
		Game:         req.Game,
		Note:         req.Note,
		CreatedAt:    s.clock.now(),
	}

	counts, err := s.ledger.RecordThanks(ctx, fact)
	if err != nil {
		return nil, fmt.Errorf("failed to record thanks: %w", err)
	}

	result := &ThanksResult{Fact: fact, Counts: counts}
	if m, ok := CrossedMilestone(counts.Before, counts.After); ok {
		result.Milestone = &m

		s.logger.Info("Milestone reached",
			zap.Uint64("user_id", req.ThankedID),
			zap.Int64("threshold", m.Threshold),
			zap.Int64("total", counts.After))
	}

	return result, nil
}

// check rejects a request before anything is written.
func (s *Service) check(req *ThanksRequest) error {
	if req.ThankedID == req.ThankingID {
		return ErrSelfThanks
	}

	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	for _, fieldErr := range validationErrs {
		switch fieldErr.Field() {
		case "Game":
			return ErrGameTooLong
		case "Note":
			return ErrNoteTooLong
		}
	}

	return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
}

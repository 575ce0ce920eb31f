package render

import (
	"context"
	"time"

	"github.com/robalyx/havenhelper/internal/database/types"
	"github.com/robalyx/havenhelper/internal/metrics"
	"go.uber.org/zap"
)

// DefaultConcurrency is the number of avatars downloaded at once per render.
const DefaultConcurrency = 5

// Renderer turns leaderboard rows into a PNG image.
type Renderer struct {
	dir         Directory
	fonts       *Fonts
	concurrency int
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewRenderer creates a renderer backed by the given directory.
func NewRenderer(dir Directory, concurrency int, m *metrics.Metrics, logger *zap.Logger) (*Renderer, error) {
	fonts, err := LoadFonts()
	if err != nil {
		return nil, err
	}

	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	return &Renderer{
		dir:         dir,
		fonts:       fonts,
		concurrency: concurrency,
		metrics:     m,
		logger:      logger.Named("render"),
	}, nil
}

// Render prefetches the members of rows and draws them.
// scope is only used to label metrics.
func (r *Renderer) Render(
	ctx context.Context, guildID uint64, scope, title string, rows []*types.LeaderboardRow, startRank int,
) ([]byte, error) {
	start := time.Now()

	entries := Prefetch(ctx, r.dir, guildID, rows, r.concurrency, r.logger, func(uint64, error) {
		r.metrics.AvatarFetchFailed()
	})

	img, err := Draw(r.fonts, title, entries, startRank)
	if err != nil {
		return nil, err
	}

	data, err := Encode(img)
	if err != nil {
		return nil, err
	}

	duration := time.Since(start)
	r.metrics.LeaderboardRendered(scope, duration.Seconds())

	r.logger.Debug("Rendered leaderboard",
		zap.String("scope", scope),
		zap.Int("rows", len(entries)),
		zap.Int("start_rank", startRank),
		zap.Duration("duration", duration))

	return data, nil
}

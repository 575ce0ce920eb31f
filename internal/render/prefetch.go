package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // avatar decoders
	_ "image/jpeg" // avatar decoders
	_ "image/png"  // avatar decoders

	"github.com/robalyx/havenhelper/internal/database/types"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp" // avatar decoders
)

// ErrMemberNotFound indicates the user is no longer a member of the guild.
var ErrMemberNotFound = errors.New("member not found")

// Member is the directory view of a guild member.
type Member struct {
	DisplayName string
	AvatarURL   string
}

// Directory resolves guild members and downloads their avatars.
type Directory interface {
	ResolveMember(ctx context.Context, guildID, userID uint64) (*Member, error)
	FetchAvatar(ctx context.Context, url string) ([]byte, error)
}

// Entry is a leaderboard row ready to be drawn.
// Avatar is nil when it could not be resolved, downloaded or decoded.
type Entry struct {
	UserID uint64
	Label  string
	Count  int64
	Avatar image.Image
}

// FailureFunc is called once for every avatar that is left out.
type FailureFunc func(userID uint64, err error)

// Prefetch resolves members and downloads avatars for up to MaxRows rows.
// The result is aligned by index with rows and never fails as a whole.
func Prefetch(
	ctx context.Context, dir Directory, guildID uint64, rows []*types.LeaderboardRow,
	concurrency int, logger *zap.Logger, onFailure FailureFunc,
) []Entry {
	rows = rows[:min(len(rows), MaxRows)]
	entries := make([]Entry, len(rows))

	p := pool.New().WithMaxGoroutines(max(concurrency, 1))

	for i, row := range rows {
		entries[i] = Entry{
			UserID: row.UserID,
			Label:  fallbackLabel(row),
			Count:  row.ThankCount,
		}

		p.Go(func() {
			member, err := dir.ResolveMember(ctx, guildID, row.UserID)
			if err != nil {
				if !errors.Is(err, ErrMemberNotFound) {
					logger.Warn("Failed to resolve member",
						zap.Uint64("user_id", row.UserID),
						zap.Error(err))
				}

				if onFailure != nil {
					onFailure(row.UserID, err)
				}

				return
			}

			if member.DisplayName != "" {
				entries[i].Label = member.DisplayName
			}

			avatar, err := fetchAvatar(ctx, dir, member.AvatarURL)
			if err != nil {
				logger.Debug("Omitting avatar",
					zap.Uint64("user_id", row.UserID),
					zap.Error(err))

				if onFailure != nil {
					onFailure(row.UserID, err)
				}

				return
			}

			entries[i].Avatar = avatar
		})
	}

	p.Wait()

	return entries
}

// fetchAvatar downloads and decodes a single avatar.
func fetchAvatar(ctx context.Context, dir Directory, url string) (image.Image, error) {
	if url == "" {
		return nil, errors.New("member has no avatar url")
	}

	data, err := dir.FetchAvatar(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to download avatar: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode avatar: %w", err)
	}

	return img, nil
}

// fallbackLabel returns the stored snapshot or a synthesized label.
func fallbackLabel(row *types.LeaderboardRow) string {
	if row.DisplayName != "" {
		return row.DisplayName
	}

	return fmt.Sprintf("User %d", row.UserID)
}

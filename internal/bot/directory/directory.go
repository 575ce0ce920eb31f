package directory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/robalyx/havenhelper/internal/render"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// AvatarSize is the requested edge length of avatar images.
const AvatarSize = 64

// maxAvatarBytes caps the size of a downloaded avatar.
const maxAvatarBytes = 2 << 20

// sharedDownloadTimeout bounds a shared download, including its retries.
const sharedDownloadTimeout = 15 * time.Second

var (
	// ErrAvatarStatus indicates the CDN answered with a non-success status.
	ErrAvatarStatus = errors.New("unexpected avatar response status")
	// ErrAvatarTooLarge indicates the avatar exceeded maxAvatarBytes.
	ErrAvatarTooLarge = errors.New("avatar is too large")
)

// MemberCache looks up members already known to the gateway.
type MemberCache interface {
	Member(guildID snowflake.ID, userID snowflake.ID) (discord.Member, bool)
}

// MemberFetcher retrieves members over the REST API.
type MemberFetcher interface {
	GetMember(guildID snowflake.ID, userID snowflake.ID, opts ...rest.RequestOpt) (*discord.Member, error)
}

// Directory resolves guild members from the gateway cache, falling back to
// REST, and downloads avatars from the CDN.
type Directory struct {
	cache   MemberCache
	fetcher MemberFetcher
	client  *http.Client
	group   singleflight.Group
	logger  *zap.Logger

	sharedTimeout time.Duration
	newBackOff    func() backoff.BackOff
}

// New creates a directory. A nil client uses http.DefaultClient.
func New(cache MemberCache, fetcher MemberFetcher, client *http.Client, logger *zap.Logger) *Directory {
	if client == nil {
		client = http.DefaultClient
	}

	return &Directory{
		cache:   cache,
		fetcher: fetcher,
		client:  client,
		logger:  logger.Named("directory"),

		sharedTimeout: sharedDownloadTimeout,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxInterval = 2 * time.Second
			b.MaxElapsedTime = 5 * time.Second

			return backoff.WithMaxRetries(b, 2)
		},
	}
}

// ResolveMember returns the display name and avatar URL of a guild member.
// Members who left the guild yield render.ErrMemberNotFound.
func (d *Directory) ResolveMember(ctx context.Context, guildID, userID uint64) (*render.Member, error) {
	member, ok := d.cache.Member(snowflake.ID(guildID), snowflake.ID(userID))
	if !ok {
		fetched, err := d.fetcher.GetMember(snowflake.ID(guildID), snowflake.ID(userID), rest.WithCtx(ctx))
		if err != nil {
			var restErr *rest.Error
			if errors.As(err, &restErr) && restErr.Code == rest.JSONErrorCode(10007) {
				return nil, render.ErrMemberNotFound
			}

			return nil, fmt.Errorf("failed to fetch member %d: %w", userID, err)
		}

		member = *fetched
	}

	return &render.Member{
		DisplayName: member.EffectiveName(),
		AvatarURL:   member.EffectiveAvatarURL(discord.WithSize(AvatarSize), discord.WithFormat(discord.FileFormatPNG)),
	}, nil
}

// FetchAvatar downloads an avatar. Concurrent requests for the same URL share
// one download, which is detached from any single caller's context; each
// caller still stops waiting when its own context ends.
func (d *Directory) FetchAvatar(ctx context.Context, url string) ([]byte, error) {
	ch := d.group.DoChan(url, func() (any, error) {
		sharedCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.sharedTimeout)
		defer cancel()

		return backoff.RetryWithData(func() ([]byte, error) {
			return d.download(sharedCtx, url)
		}, backoff.WithContext(d.newBackOff(), sharedCtx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}

		if res.Shared {
			d.logger.Debug("Shared avatar download", zap.String("url", url))
		}

		return res.Val.([]byte), nil
	}
}

// download performs a single attempt. Client errors are not retried.
func (d *Directory) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: %d", ErrAvatarStatus, resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, backoff.Permanent(err)
		}

		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAvatarBytes+1))
	if err != nil {
		return nil, err
	}

	if len(data) > maxAvatarBytes {
		return nil, backoff.Permanent(ErrAvatarTooLarge)
	}

	return data, nil
}

// Package cache holds the Redis-backed cache for the public sponsor lookup.
// Cache failures degrade to a database read; they are logged, never surfaced.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"downline/internal/member/service"
	id "downline/pkg/domain"
)

const keyPrefix = "sponsor:code:"

// SponsorCache caches sponsor previews keyed by referral code.
type SponsorCache struct {
	client *goredis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewSponsorCache builds the cache. TTL must be positive.
func NewSponsorCache(client *goredis.Client, ttl time.Duration, logger *slog.Logger) *SponsorCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &SponsorCache{client: client, ttl: ttl, logger: logger}
}

func (c *SponsorCache) Get(ctx context.Context, code id.ReferralCode) (*service.SponsorPreview, bool) {
	raw, err := c.client.Get(ctx, keyPrefix+code.String()).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.logger.WarnContext(ctx, "sponsor cache read failed", "error", err)
		}
		return nil, false
	}
	var preview service.SponsorPreview
	if err := json.Unmarshal(raw, &preview); err != nil {
		c.logger.WarnContext(ctx, "sponsor cache entry corrupt, dropping", "error", err)
		_ = c.client.Del(ctx, keyPrefix+code.String()).Err()
		return nil, false
	}
	return &preview, true
}

func (c *SponsorCache) Set(ctx context.Context, code id.ReferralCode, preview *service.SponsorPreview) {
	raw, err := json.Marshal(preview)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, keyPrefix+code.String(), raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "sponsor cache write failed", "error", err)
	}
}

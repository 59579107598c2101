package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"libllm/internal/contextutil"
	"libllm/internal/settings"
)

// DefaultModelCacheTTL is how long a successful model listing is reused.
const DefaultModelCacheTTL = 10 * time.Minute

// ModelCatalog lists models for the settings surfaces. Listing is best
// effort: any failure yields the configured model alone.
type ModelCatalog struct {
	lister ModelLister
	cache  *ttlcache.Cache[string, []string]
}

// NewModelCatalog creates a ModelCatalog caching successful listings for ttl.
// Close stops the expiration loop.
func NewModelCatalog(lister ModelLister, ttl time.Duration) *ModelCatalog {
	c := ttlcache.New[string, []string](
		ttlcache.WithTTL[string, []string](ttl),
		ttlcache.WithDisableTouchOnHit[string, []string](),
	)
	go c.Start()
	return &ModelCatalog{lister: lister, cache: c}
}

// Close stops the cache expiration loop.
func (c *ModelCatalog) Close() {
	c.cache.Stop()
}

// Models returns the sorted model ids available to s, or a single entry
// holding s.Model when the backend cannot be listed.
func (c *ModelCatalog) Models(ctx context.Context, s settings.Settings) []string {
	key := cacheKey(s)
	if item := c.cache.Get(key); item != nil {
		return append([]string(nil), item.Value()...)
	}

	models, err := c.lister.ListModels(ctx, s.Credentials())
	if err != nil || len(models) == 0 {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "model listing unavailable, using configured model",
			"model", s.Model,
			"error", err,
		)
		return []string{s.Normalize(nil).Model}
	}

	models = append([]string(nil), models...)
	sort.Strings(models)
	c.cache.Set(key, models, ttlcache.DefaultTTL)
	return append([]string(nil), models...)
}

// Known returns the model ids used to validate a model choice, or nil when
// the backend cannot be listed.
func (c *ModelCatalog) Known(ctx context.Context, s settings.Settings) []string {
	key := cacheKey(s)
	if item := c.cache.Get(key); item != nil {
		return append([]string(nil), item.Value()...)
	}
	models := c.Models(ctx, s)
	if c.cache.Get(key) == nil {
		return nil
	}
	return models
}

// cacheKey identifies a credential pair without keeping the key in memory.
func cacheKey(s settings.Settings) string {
	sum := sha256.Sum256([]byte(s.APIKey + "\x00" + s.OrganizationID))
	return hex.EncodeToString(sum[:])
}

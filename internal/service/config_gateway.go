package service

import (
	"context"
	"errors"
	"strings"

	"hikesoc/access-api/config"

	"github.com/jellydator/ttlcache/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	keyInviteURL = "whatsapp:invite_url"
	keyQREnabled = "whatsapp:qr_redirect_enabled"
	cacheInvite  = "invite_url"
	cacheQRFlag  = "qr_enabled"
)

var (
	ErrInviteURLInvalid = errors.New("invite URL must point at " + config.InviteURLPrefix)
	ErrNoConfigStore    = errors.New("no configuration store available for writes")
)

// ConfigGateway fronts the external configuration store holding the
// gated resource: the live WhatsApp invite URL and the global QR
// switch. Reads go through a time-boxed cache, stale values inside
// that window are an accepted tradeoff. When the store is down or
// not configured the gateway falls back to the value baked into the
// local config file.
type ConfigGateway struct {
	rdb   *redis.Client
	cache *ttlcache.Cache
}

func NewConfigGateway() *ConfigGateway {
	var rdb *redis.Client

	if addr := viper.GetString("redis.addr"); addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: viper.GetString("redis.password"),
		})
	}

	cache := ttlcache.NewCache()
	cache.SetTTL(viper.GetDuration("whatsapp.config_cache_ttl"))
	cache.SkipTTLExtensionOnHit(true)

	return &ConfigGateway{rdb: rdb, cache: cache}
}

// Redis returns the underlying client for components that share the
// connection, like the rate limiter. Nil when redis isn't configured.
func (g *ConfigGateway) Redis() *redis.Client {
	return g.rdb
}

// InviteURL returns the current invite link. Never errors: a dead
// config store degrades to the fallback URL so redemptions keep
// working.
func (g *ConfigGateway) InviteURL(ctx context.Context) string {
	if cached, err := g.cache.Get(cacheInvite); err == nil {
		return cached.(string)
	}

	if g.rdb != nil {
		url, err := g.rdb.Get(ctx, keyInviteURL).Result()
		if err == nil && url != "" {
			g.cache.Set(cacheInvite, url)
			return url
		}

		if err != nil && !errors.Is(err, redis.Nil) {
			zap.L().Warn("Config store unreachable, using fallback invite URL", zap.Error(err))
		}
	}

	return viper.GetString("whatsapp.fallback_invite_url")
}

// QRRedirectEnabled returns the global QR switch. Defaults to on
// when the flag was never written.
func (g *ConfigGateway) QRRedirectEnabled(ctx context.Context) bool {
	if cached, err := g.cache.Get(cacheQRFlag); err == nil {
		return cached.(bool)
	}

	if g.rdb != nil {
		val, err := g.rdb.Get(ctx, keyQREnabled).Result()
		if err == nil {
			enabled := val == "1"
			g.cache.Set(cacheQRFlag, enabled)
			return enabled
		}

		if !errors.Is(err, redis.Nil) {
			zap.L().Warn("Config store unreachable, assuming QR redirect enabled", zap.Error(err))
		}
	}

	return true
}

// SetInviteURL validates and writes the new link. Only URLs on the
// allow-listed domain are accepted.
func (g *ConfigGateway) SetInviteURL(ctx context.Context, url string) error {
	if !strings.HasPrefix(url, config.InviteURLPrefix) {
		return ErrInviteURLInvalid
	}

	if g.rdb == nil {
		return ErrNoConfigStore
	}

	if err := g.rdb.Set(ctx, keyInviteURL, url, 0).Err(); err != nil {
		return err
	}

	g.cache.Remove(cacheInvite)
	return nil
}

func (g *ConfigGateway) SetQRRedirectEnabled(ctx context.Context, enabled bool) error {
	if g.rdb == nil {
		return ErrNoConfigStore
	}

	val := "0"
	if enabled {
		val = "1"
	}

	if err := g.rdb.Set(ctx, keyQREnabled, val, 0).Err(); err != nil {
		return err
	}

	g.cache.Remove(cacheQRFlag)
	return nil
}

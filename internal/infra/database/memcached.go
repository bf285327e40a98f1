package database

import (
	"log/slog"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// NewMemcached returns the listing cache client. An unreachable server is only
// logged: the cache is optional and every read falls back to Postgres.
func NewMemcached(server string) *memcache.Client {
	mc := memcache.New(server)
	mc.MaxIdleConns = 8
	mc.Timeout = 200 * time.Millisecond

	if err := mc.Ping(); err != nil {
		slog.Warn(
			"memcached unreachable, upcoming listing will not be cached",
			slog.String("server", server),
			slog.String("error", err.Error()),
			slog.String("module", "database"),
		)
	}
	return mc
}

// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/carterperez-dev/templates/movie-catalog/internal/core"
	"github.com/carterperez-dev/templates/movie-catalog/internal/middleware"
)

const probeTimeout = 2 * time.Second

// SessionPurger removes login records that expired long enough ago.
type SessionPurger interface {
	PurgeExpiredLogins(ctx context.Context) (int64, error)
}

type PingFunc func(ctx context.Context) error

// HandlerConfig fields are optional. A nil source leaves its section out of
// the response, or answers 404 for endpoints that need it.
type HandlerConfig struct {
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
	DBPing     PingFunc
	RedisPing  PingFunc
	Counts     StatsRepository
	Purger     SessionPurger
}

type Handler struct {
	cfg HandlerConfig
	now func() time.Time
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{cfg: cfg, now: time.Now}
}

// RegisterRoutes mounts full /admin/... paths on a group so the user
// package can own /admin/users alongside.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator, adminOnly)

		r.Get("/admin/stats", h.GetSystemStats)
		r.Get("/admin/stats/db", h.GetDatabaseStats)
		r.Get("/admin/stats/redis", h.GetRedisStats)
		r.Get("/admin/stats/runtime", h.GetRuntimeStats)
		r.Get("/admin/stats/entities", h.GetEntityCounts)
		r.Post("/admin/sessions/purge", h.PurgeSessions)
	})
}

func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var dbProbe, redisProbe Probe
	var g errgroup.Group
	g.Go(func() error {
		dbProbe = h.probe(ctx, h.cfg.DBPing)
		return nil
	})
	g.Go(func() error {
		redisProbe = h.probe(ctx, h.cfg.RedisPing)
		return nil
	})
	_ = g.Wait() //nolint:errcheck // probes never fail the group

	resp := SystemStatsResponse{
		Database: DatabaseStatus{Probe: dbProbe, Stats: h.dbPoolStats()},
		Redis:    RedisStatus{Probe: redisProbe, Stats: h.redisPoolStats()},
		Runtime:  readRuntimeStats(),
	}

	if dbProbe.Healthy && h.cfg.Counts != nil {
		counts, err := h.cfg.Counts.Counts(ctx)
		if err != nil {
			slog.WarnContext(ctx, "entity counts unavailable", "error", err)
		} else {
			resp.Entities = counts
		}
	}

	core.OK(w, resp)
}

// probe treats a missing ping as healthy.
func (h *Handler) probe(ctx context.Context, ping PingFunc) Probe {
	if ping == nil {
		return Probe{Healthy: true}
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	start := h.now()
	err := ping(ctx)
	elapsed := h.now().Sub(start)

	return Probe{
		Healthy:   err == nil,
		LatencyMS: float64(elapsed.Microseconds()) / 1000,
	}
}

func (h *Handler) GetDatabaseStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.dbPoolStats())
}

func (h *Handler) GetRedisStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.redisPoolStats())
}

func (h *Handler) GetRuntimeStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, readRuntimeStats())
}

func (h *Handler) GetEntityCounts(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Counts == nil {
		core.NotFound(w, "entity stats")
		return
	}

	counts, err := h.cfg.Counts.Counts(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, counts)
}

func (h *Handler) PurgeSessions(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Purger == nil {
		core.NotFound(w, "session purge")
		return
	}

	deleted, err := h.cfg.Purger.PurgeExpiredLogins(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	slog.InfoContext(r.Context(), "expired sessions purged",
		"admin_id", middleware.GetUserID(r.Context()),
		"deleted", deleted,
	)
	core.OK(w, PurgeResponse{Deleted: deleted})
}

func (h *Handler) dbPoolStats() *DBPoolStats {
	if h.cfg.DBStats == nil {
		return nil
	}
	return newDBPoolStats(h.cfg.DBStats())
}

func (h *Handler) redisPoolStats() *RedisPoolStats {
	if h.cfg.RedisStats == nil {
		return nil
	}
	return newRedisPoolStats(h.cfg.RedisStats())
}

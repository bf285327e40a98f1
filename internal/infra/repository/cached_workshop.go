package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/gaushala-net/gaushala"
	"github.com/gaushala-net/gaushala/internal/domain"
)

const (
	upcomingCacheKey      = "gaushala:workshops:upcoming"
	upcomingGenerationKey = "gaushala:workshops:upcoming:generation"
)

// MemcacheClient is the subset of *memcache.Client used here.
type MemcacheClient interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
	Add(item *memcache.Item) error
	Increment(key string, delta uint64) (newValue uint64, err error)
}

type upcomingEntry struct {
	From      time.Time         `json:"from"`
	Workshops []domain.Workshop `json:"workshops"`
}

// CachedWorkshopRepository keeps the upcoming listing in memcached.
//
// Listings are stored under the generation that was current before the
// database was read, and every write bumps the generation. A reader that
// races a write can only refill a generation nobody reads any more.
type CachedWorkshopRepository struct {
	*WorkshopRepository
	mc  MemcacheClient
	ttl time.Duration
}

func NewCachedWorkshopRepository(repo *WorkshopRepository, mc MemcacheClient, ttl time.Duration) *CachedWorkshopRepository {
	return &CachedWorkshopRepository{WorkshopRepository: repo, mc: mc, ttl: ttl}
}

func upcomingKey(generation uint64) string {
	return upcomingCacheKey + ":" + strconv.FormatUint(generation, 10)
}

func (r *CachedWorkshopRepository) ListUpcoming(ctx context.Context, from time.Time) ([]domain.Workshop, error) {
	generation, ok := r.generation(ctx)
	if ok {
		if list, hit := r.load(ctx, generation, from); hit {
			upcomingCache.WithLabelValues("hit").Inc()
			return list, nil
		}
	}
	upcomingCache.WithLabelValues("miss").Inc()

	list, err := r.WorkshopRepository.ListUpcoming(ctx, from)
	if err != nil {
		return nil, err
	}
	if ok {
		r.store(ctx, generation, from, list)
	}
	return list, nil
}

func (r *CachedWorkshopRepository) Create(ctx context.Context, workshop domain.Workshop) error {
	err := r.WorkshopRepository.Create(ctx, workshop)
	if err == nil {
		r.bump(ctx)
	}
	return err
}

func (r *CachedWorkshopRepository) Register(ctx context.Context, workshopID, userID string, collection gaushala.Collection) (domain.Registration, error) {
	reg, err := r.WorkshopRepository.Register(ctx, workshopID, userID, collection)
	if err == nil {
		r.bump(ctx)
	}
	return reg, err
}

func (r *CachedWorkshopRepository) Delete(ctx context.Context, id string) error {
	err := r.WorkshopRepository.Delete(ctx, id)
	if err == nil {
		r.bump(ctx)
	}
	return err
}

// generation returns the current listing generation, seeding it when absent.
// ok is false when memcached cannot be used and the cache must be bypassed.
func (r *CachedWorkshopRepository) generation(ctx context.Context) (uint64, bool) {
	item, err := r.mc.Get(upcomingGenerationKey)
	if err == memcache.ErrCacheMiss {
		seed := &memcache.Item{Key: upcomingGenerationKey, Value: []byte(strconv.FormatInt(time.Now().UnixNano(), 10))}
		if err = r.mc.Add(seed); err == nil {
			item = seed
		} else if err == memcache.ErrNotStored {
			item, err = r.mc.Get(upcomingGenerationKey)
		}
	}
	if err != nil {
		r.warn(ctx, "upcoming cache generation read failed", err)
		return 0, false
	}

	generation, err := strconv.ParseUint(string(item.Value), 10, 64)
	if err != nil {
		r.warn(ctx, "upcoming cache generation is malformed", err)
		return 0, false
	}
	return generation, true
}

func (r *CachedWorkshopRepository) load(ctx context.Context, generation uint64, from time.Time) ([]domain.Workshop, bool) {
	item, err := r.mc.Get(upcomingKey(generation))
	if err != nil {
		if err != memcache.ErrCacheMiss {
			r.warn(ctx, "upcoming cache read failed", err)
		}
		return nil, false
	}
	var entry upcomingEntry
	if err := json.Unmarshal(item.Value, &entry); err != nil || !entry.From.Equal(from) {
		return nil, false
	}
	return entry.Workshops, true
}

func (r *CachedWorkshopRepository) store(ctx context.Context, generation uint64, from time.Time, list []domain.Workshop) {
	value, err := json.Marshal(upcomingEntry{From: from, Workshops: list})
	if err == nil {
		err = r.mc.Set(&memcache.Item{
			Key:        upcomingKey(generation),
			Value:      value,
			Expiration: int32(r.ttl.Seconds()),
		})
	}
	if err != nil {
		r.warn(ctx, "upcoming cache write failed", err)
	}
}

// bump moves readers to a fresh generation. A missing counter is reseeded
// from the clock so an evicted counter never revives an old listing.
func (r *CachedWorkshopRepository) bump(ctx context.Context) {
	_, err := r.mc.Increment(upcomingGenerationKey, 1)
	if err == memcache.ErrCacheMiss {
		err = r.mc.Add(&memcache.Item{Key: upcomingGenerationKey, Value: []byte(strconv.FormatInt(time.Now().UnixNano(), 10))})
		if err == memcache.ErrNotStored {
			_, err = r.mc.Increment(upcomingGenerationKey, 1)
		}
	}
	if err != nil {
		r.warn(ctx, "upcoming cache invalidation failed", err)
	}
}

func (r *CachedWorkshopRepository) warn(ctx context.Context, msg string, err error) {
	slog.WarnContext(
		ctx, msg,
		slog.String("error", err.Error()),
		slog.String("module", "repository"),
	)
}

package repository

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaushala-net/gaushala"
)

type fakeMemcache struct {
	items map[string]*memcache.Item
	gets  int
}

func newFakeMemcache() *fakeMemcache {
	return &fakeMemcache{items: map[string]*memcache.Item{}}
}

func (f *fakeMemcache) Get(key string) (*memcache.Item, error) {
	f.gets++
	item, ok := f.items[key]
	if !ok {
		return nil, memcache.ErrCacheMiss
	}
	return item, nil
}

func (f *fakeMemcache) Set(item *memcache.Item) error {
	f.items[item.Key] = item
	return nil
}

func (f *fakeMemcache) Add(item *memcache.Item) error {
	if _, ok := f.items[item.Key]; ok {
		return memcache.ErrNotStored
	}
	f.items[item.Key] = item
	return nil
}

func (f *fakeMemcache) Increment(key string, delta uint64) (uint64, error) {
	item, ok := f.items[key]
	if !ok {
		return 0, memcache.ErrCacheMiss
	}
	value, err := strconv.ParseUint(string(item.Value), 10, 64)
	if err != nil {
		return 0, err
	}
	value += delta
	f.items[key] = &memcache.Item{Key: key, Value: []byte(strconv.FormatUint(value, 10))}
	return value, nil
}

func (f *fakeMemcache) generation(t *testing.T) uint64 {
	t.Helper()
	item, ok := f.items[upcomingGenerationKey]
	require.True(t, ok)
	value, err := strconv.ParseUint(string(item.Value), 10, 64)
	require.NoError(t, err)
	return value
}

func TestCachedUpcomingInvalidatedOnWrite(t *testing.T) {
	db := testDB(t)
	seedProfiles(t, db)
	mc := newFakeMemcache()
	repo := NewCachedWorkshopRepository(NewWorkshopRepository(db), mc, time.Minute)
	ctx := context.Background()
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, newWorkshop("w1", doctorProfile.ID, today, today)))

	first, err := repo.ListUpcoming(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, []string{"w1"}, workshopIDs(first))
	generation := mc.generation(t)
	require.Contains(t, mc.items, upcomingKey(generation))

	cached, err := repo.ListUpcoming(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, []string{"w1"}, workshopIDs(cached))

	// a different day bypasses the cached listing
	next, err := repo.ListUpcoming(ctx, today.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, next)

	require.NoError(t, repo.Create(ctx, newWorkshop("w2", doctorProfile.ID, today.AddDate(0, 0, 2), today)))
	assert.Equal(t, generation+1, mc.generation(t))

	_, err = repo.Register(ctx, "w1", farmerProfile.ID, gaushala.CollectionFarmers)
	require.NoError(t, err)
	assert.Equal(t, generation+2, mc.generation(t))

	fresh, err := repo.ListUpcoming(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, []string{"w1", "w2"}, workshopIDs(fresh))
	assert.Len(t, fresh[0].Registrations, 1)
}

func TestCachedUpcomingIgnoresRefillFromBeforeWrite(t *testing.T) {
	db := testDB(t)
	seedProfiles(t, db)
	mc := newFakeMemcache()
	repo := NewCachedWorkshopRepository(NewWorkshopRepository(db), mc, time.Minute)
	ctx := context.Background()
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, newWorkshop("w1", doctorProfile.ID, today, today)))

	// a slow reader takes the generation and reads the database
	generation, ok := repo.generation(ctx)
	require.True(t, ok)
	stale, err := repo.WorkshopRepository.ListUpcoming(ctx, today)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	require.Empty(t, stale[0].Registrations)

	// a registration commits before the reader fills the cache
	_, err = repo.Register(ctx, "w1", farmerProfile.ID, gaushala.CollectionFarmers)
	require.NoError(t, err)
	repo.store(ctx, generation, today, stale)

	fresh, err := repo.ListUpcoming(ctx, today)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Len(t, fresh[0].Registrations, 1)

	cached, err := repo.ListUpcoming(ctx, today)
	require.NoError(t, err)
	assert.Len(t, cached[0].Registrations, 1)
}

func TestCachedUpcomingReseedsEvictedGeneration(t *testing.T) {
	db := testDB(t)
	seedProfiles(t, db)
	mc := newFakeMemcache()
	repo := NewCachedWorkshopRepository(NewWorkshopRepository(db), mc, time.Minute)
	ctx := context.Background()
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, newWorkshop("w1", doctorProfile.ID, today, today)))
	assert.Contains(t, mc.items, upcomingGenerationKey)

	delete(mc.items, upcomingGenerationKey)
	require.NoError(t, repo.Delete(ctx, "w1"))
	assert.Contains(t, mc.items, upcomingGenerationKey)

	list, err := repo.ListUpcoming(ctx, today)
	require.NoError(t, err)
	assert.Empty(t, list)
}

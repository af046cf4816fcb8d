package cache

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLHitAndExpiry(t *testing.T) {
	c := NewTTL[string, int]()
	c.Insert("u1", 42)

	got, ok := c.GetWithTTL("u1", time.Minute)
	require.True(t, ok)
	assert.Equal(t, 42, got)

	// Zero TTL makes every entry stale immediately.
	_, ok = c.GetWithTTL("u1", 0)
	assert.False(t, ok)

	// The expired entry must have been removed.
	assert.Equal(t, 0, c.Len())
}

func TestTTLInsertOverwrites(t *testing.T) {
	c := NewTTL[string, string]()
	c.Insert("k", "old")
	c.Insert("k", "new")

	got, ok := c.GetWithTTL("k", time.Minute)
	require.True(t, ok)
	assert.Equal(t, "new", got)
}

func TestUserCachesInvalidateAll(t *testing.T) {
	saga := NewTTL[string, int]()
	contracts := NewTTL[string, string]()

	uc := NewUserCaches()
	uc.Register(saga)
	uc.Register(contracts)

	saga.Insert("u1", 1)
	saga.Insert("u2", 2)
	contracts.Insert("u1", "drafted")

	uc.InvalidateUser("u1")

	_, ok := saga.GetWithTTL("u1", time.Minute)
	assert.False(t, ok)
	_, ok = contracts.GetWithTTL("u1", time.Minute)
	assert.False(t, ok)

	// Other users are untouched.
	got, ok := saga.GetWithTTL("u2", time.Minute)
	require.True(t, ok)
	assert.Equal(t, 2, got)
}

func TestDailyFillsOncePerDay(t *testing.T) {
	d := NewDaily[[]int]()
	calls := 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := d.GetOrFill("2026-08-29", func() ([]int, error) {
				calls++
				return []int{1, 2, 3}, nil
			})
			assert.NoError(t, err)
			assert.Equal(t, []int{1, 2, 3}, v)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, calls)

	// Day rollover triggers a fresh fill.
	_, err := d.GetOrFill("2026-08-30", func() ([]int, error) {
		calls++
		return []int{4}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDailyCountsOneMissPerFill(t *testing.T) {
	d := NewDaily[int]()
	_, missesBefore := Stats()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := d.GetOrFill("2026-08-29", func() (int, error) { return 9, nil })
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// However many callers raced the rollover, only the generation that ran
	// fill counts as a miss.
	_, missesAfter := Stats()
	assert.Equal(t, missesBefore+1, missesAfter)

	hitsBefore, _ := Stats()
	_, err := d.GetOrFill("2026-08-29", func() (int, error) { return 0, nil })
	require.NoError(t, err)
	hitsAfter, missesFinal := Stats()
	assert.Equal(t, hitsBefore+1, hitsAfter)
	assert.Equal(t, missesAfter, missesFinal)
}

func TestDailyFillErrorNotCached(t *testing.T) {
	d := NewDaily[int]()
	wantErr := errors.New("pool query failed")

	_, err := d.GetOrFill("day", func() (int, error) { return 0, wantErr })
	require.ErrorIs(t, err, wantErr)

	got, err := d.GetOrFill("day", func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

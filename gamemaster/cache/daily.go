package cache

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Daily is a single-entry cache keyed by a UTC day key. The whole process
// shares one value per day; concurrent fills on day rollover collapse into
// one generation through singleflight.
type Daily[V any] struct {
	mu    sync.RWMutex
	day   string
	value V
	ok    bool

	group singleflight.Group
}

func NewDaily[V any]() *Daily[V] {
	return &Daily[V]{}
}

// GetOrFill returns the value for dayKey, generating it at most once per
// process per day.
func (d *Daily[V]) GetOrFill(dayKey string, fill func() (V, error)) (V, error) {
	d.mu.RLock()
	if d.ok && d.day == dayKey {
		v := d.value
		d.mu.RUnlock()
		globalHits.Add(1)
		return v, nil
	}
	d.mu.RUnlock()

	v, err, _ := d.group.Do(dayKey, func() (interface{}, error) {
		// Another caller may have filled while we queued; that still counts
		// as a hit. A miss is recorded only when fill actually runs.
		d.mu.RLock()
		if d.ok && d.day == dayKey {
			v := d.value
			d.mu.RUnlock()
			globalHits.Add(1)
			return v, nil
		}
		d.mu.RUnlock()

		globalMisses.Add(1)
		value, err := fill()
		if err != nil {
			return nil, err
		}
		d.mu.Lock()
		d.day = dayKey
		d.value = value
		d.ok = true
		d.mu.Unlock()
		return value, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// Package store provides the click-dedup store remembering which stations
// have been click-reported to the directory.
package store

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ClickStore is a thread-safe set of station UUIDs backed by a Bloom filter
// fast path and an LRU bound. The directory asks clients to register at most
// one click per station per session; this store enforces that.
type ClickStore struct {
	uuids             map[string]struct{}
	bloom             *bloom.BloomFilter
	lru               *lru.Cache[string, struct{}]
	mutex             sync.RWMutex
	maxStations       int
	falsePositiveRate float64
}

// NewClickStore creates a click store bounded to maxStations entries with
// the given Bloom filter false positive rate.
func NewClickStore(maxStations int, falsePositiveRate float64) *ClickStore {
	if maxStations < 0 {
		panic("maxStations must not be negative")
	}

	cs := &ClickStore{
		uuids:             make(map[string]struct{}),
		bloom:             bloom.NewWithEstimates(uint(maxStations), falsePositiveRate),
		maxStations:       maxStations,
		falsePositiveRate: falsePositiveRate,
	}

	// Eviction callback runs under the store mutex inside Add, keeping the
	// exact set in sync with the LRU bound.
	cs.lru, _ = lru.NewWithEvict[string, struct{}](maxStations, func(key string, _ struct{}) {
		delete(cs.uuids, key)
	})

	return cs
}

// Has checks whether a station UUID has already been click-reported.
func (cs *ClickStore) Has(stationUUID string) bool {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	if !cs.bloom.TestString(stationUUID) {
		return false
	}

	_, exists := cs.uuids[stationUUID]
	return exists
}

// Add records a station UUID as click-reported. The oldest entry is evicted
// once the bound is reached.
func (cs *ClickStore) Add(stationUUID string) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	if _, exists := cs.uuids[stationUUID]; exists {
		return
	}

	cs.uuids[stationUUID] = struct{}{}
	cs.bloom.AddString(stationUUID)
	cs.lru.Add(stationUUID, struct{}{})
	// The bloom filter cannot forget evicted entries; a false positive only
	// suppresses a redundant click report, which is acceptable.
}

// Size returns the number of stations recorded.
func (cs *ClickStore) Size() int {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()
	return len(cs.uuids)
}

// Clear drops all recorded stations.
func (cs *ClickStore) Clear() {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	cs.uuids = make(map[string]struct{})
	cs.bloom = bloom.NewWithEstimates(uint(cs.maxStations), cs.falsePositiveRate)
	cs.lru.Purge()
}

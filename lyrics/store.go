package lyrics

import (
	"sync"
	"time"

	"lyrics-resolver-go/logcolors"

	log "github.com/sirupsen/logrus"
)

// Store is the process-wide lyrics result cache plus the in-flight
// resolution table that coalesces concurrent lookups sharing a track
// key. Nothing is persisted: a restart clears both maps.
type Store struct {
	entries     sync.Map // trackKey -> cacheEntry
	inflight    sync.Map // trackKey -> *inFlight
	positiveTTL time.Duration
	negativeTTL time.Duration
}

type cacheEntry struct {
	payload   Payload
	expiresAt time.Time
}

// inFlight is shared by all concurrent callers for one track key. The
// owner resolves and publishes the payload; everyone else waits.
type inFlight struct {
	wg      sync.WaitGroup
	payload Payload
}

func NewStore(positiveTTL, negativeTTL time.Duration) *Store {
	return &Store{
		positiveTTL: positiveTTL,
		negativeTTL: negativeTTL,
	}
}

// Get returns the cached payload for key when present and not yet
// expired. Expired entries are deleted on read; there is no background
// sweep.
func (s *Store) Get(key string) (Payload, bool) {
	v, ok := s.entries.Load(key)
	if !ok {
		return Payload{}, false
	}

	entry := v.(cacheEntry)
	if !entry.expiresAt.After(time.Now()) {
		s.entries.Delete(key)
		log.Debugf("%s Expired entry dropped for key %s", logcolors.LogCache, key)
		return Payload{}, false
	}
	return entry.payload, true
}

// Put caches a resolution outcome. Confirmed matches get the long TTL;
// everything else counts as a negative result and expires sooner so a
// later upstream addition gets picked up.
func (s *Store) Put(key string, p Payload) {
	ttl := s.negativeTTL
	if p.Status == StatusOK {
		ttl = s.positiveTTL
	}
	s.entries.Store(key, cacheEntry{payload: p, expiresAt: time.Now().Add(ttl)})
}

// join registers interest in key and reports whether this caller owns
// the resolution. Registration is a single LoadOrStore, so it happens
// atomically before any upstream I/O: two near-simultaneous callers can
// never both become owner.
func (s *Store) join(key string) (*inFlight, bool) {
	candidate := &inFlight{}
	candidate.wg.Add(1)
	actual, loaded := s.inflight.LoadOrStore(key, candidate)
	return actual.(*inFlight), !loaded
}

// complete caches the payload, hands it to every coalesced waiter and
// unregisters the in-flight entry. The cache write happens before the
// unregister so there is no window where neither table knows the key.
func (s *Store) complete(key string, req *inFlight, p Payload) {
	s.Put(key, p)
	req.payload = p
	s.inflight.Delete(key)
	req.wg.Done()
}

// Range iterates over all live cache entries.
func (s *Store) Range(fn func(key string, p Payload, expiresAt time.Time) bool) {
	s.entries.Range(func(k, v interface{}) bool {
		entry := v.(cacheEntry)
		return fn(k.(string), entry.payload, entry.expiresAt)
	})
}

// Len returns the number of entries currently held, expired or not.
func (s *Store) Len() int {
	n := 0
	s.entries.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

// Clear drops every cached entry. In-flight resolutions are left to
// finish on their own.
func (s *Store) Clear() {
	s.entries.Range(func(k, _ interface{}) bool {
		s.entries.Delete(k)
		return true
	})
	log.Infof("%s Cache cleared", logcolors.LogCache)
}

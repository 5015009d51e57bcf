package stats

import (
	"sync/atomic"
	"time"
)

// Stats holds engine and server statistics with atomic counters
type Stats struct {
	StartTime time.Time

	// Request counters
	TotalRequests      atomic.Int64
	NowPlayingRequests atomic.Int64
	PrefetchRequests   atomic.Int64
	OtherRequests      atomic.Int64

	// Cache performance
	CacheHits         atomic.Int64
	CacheMisses       atomic.Int64
	NegativeCacheHits atomic.Int64
	CoalescedWaiters  atomic.Int64

	// Resolution outcomes
	Resolutions        atomic.Int64
	ResolutionMatches  atomic.Int64
	ResolutionMisses   atomic.Int64
	GetCachedRaceWins  atomic.Int64
	GetRaceWins        atomic.Int64
	SearchRaceWins     atomic.Int64

	// Publishing
	Publishes           atomic.Int64
	SuppressedPublishes atomic.Int64
	Prefetches          atomic.Int64
}

// Global stats instance
var global = &Stats{
	StartTime: time.Now(),
}

// Get returns the global stats instance
func Get() *Stats {
	return global
}

// RecordRequest records a request to a specific endpoint
func (s *Stats) RecordRequest(endpoint string) {
	s.TotalRequests.Add(1)
	switch endpoint {
	case "/nowplaying":
		s.NowPlayingRequests.Add(1)
	case "/prefetch":
		s.PrefetchRequests.Add(1)
	default:
		s.OtherRequests.Add(1)
	}
}

func (s *Stats) RecordCacheHit()         { s.CacheHits.Add(1) }
func (s *Stats) RecordCacheMiss()        { s.CacheMisses.Add(1) }
func (s *Stats) RecordNegativeCacheHit() { s.NegativeCacheHits.Add(1) }
func (s *Stats) RecordCoalescedWaiter()  { s.CoalescedWaiters.Add(1) }
func (s *Stats) RecordPublish()          { s.Publishes.Add(1) }
func (s *Stats) RecordSuppressed()       { s.SuppressedPublishes.Add(1) }
func (s *Stats) RecordPrefetch()         { s.Prefetches.Add(1) }

// RecordResolution records a completed upstream resolution and whether
// it produced a match.
func (s *Stats) RecordResolution(matched bool) {
	s.Resolutions.Add(1)
	if matched {
		s.ResolutionMatches.Add(1)
	} else {
		s.ResolutionMisses.Add(1)
	}
}

// RecordRaceWin records which upstream strategy won the race.
func (s *Stats) RecordRaceWin(strategy string) {
	switch strategy {
	case "get-cached":
		s.GetCachedRaceWins.Add(1)
	case "get":
		s.GetRaceWins.Add(1)
	case "search":
		s.SearchRaceWins.Add(1)
	}
}

// Uptime returns the server uptime
func (s *Stats) Uptime() time.Duration {
	return time.Since(s.StartTime)
}

// CacheHitRate returns the cache hit rate as a percentage
func (s *Stats) CacheHitRate() float64 {
	hits := s.CacheHits.Load()
	misses := s.CacheMisses.Load()
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// Snapshot returns a point-in-time snapshot of all stats
func (s *Stats) Snapshot() map[string]interface{} {
	uptime := s.Uptime()

	return map[string]interface{}{
		"server": map[string]interface{}{
			"start_time":     s.StartTime.Format(time.RFC3339),
			"uptime":         uptime.String(),
			"uptime_seconds": int64(uptime.Seconds()),
		},
		"requests": map[string]interface{}{
			"total":      s.TotalRequests.Load(),
			"nowplaying": s.NowPlayingRequests.Load(),
			"prefetch":   s.PrefetchRequests.Load(),
			"other":      s.OtherRequests.Load(),
		},
		"cache": map[string]interface{}{
			"hits":          s.CacheHits.Load(),
			"misses":        s.CacheMisses.Load(),
			"negative_hits": s.NegativeCacheHits.Load(),
			"coalesced":     s.CoalescedWaiters.Load(),
			"hit_rate":      s.CacheHitRate(),
		},
		"resolutions": map[string]interface{}{
			"total":           s.Resolutions.Load(),
			"matches":         s.ResolutionMatches.Load(),
			"misses":          s.ResolutionMisses.Load(),
			"get_cached_wins": s.GetCachedRaceWins.Load(),
			"get_wins":        s.GetRaceWins.Load(),
			"search_wins":     s.SearchRaceWins.Load(),
		},
		"publishing": map[string]interface{}{
			"published":  s.Publishes.Load(),
			"suppressed": s.SuppressedPublishes.Load(),
			"prefetches": s.Prefetches.Load(),
		},
	}
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"lyrics-resolver-go/circuitbreaker"
	"lyrics-resolver-go/logcolors"
	"lyrics-resolver-go/lyrics"
	"lyrics-resolver-go/stats"

	log "github.com/sirupsen/logrus"
)

// nowPlayingHandler ingests a device metadata poll and runs the full
// resolution pipeline. The response carries the resulting lyrics state;
// subscribers on /events only see it when it actually changed.
func nowPlayingHandler(w http.ResponseWriter, r *http.Request) {
	var req nowPlayingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	payload := engine.Update(r.Context(), device, req.Metadata, req.metadataTime(), req.stateTime())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

// prefetchHandler warms the cache for an upcoming track. The work runs
// detached from the request; progress goes out on the prefetch event
// channel.
func prefetchHandler(w http.ResponseWriter, r *http.Request) {
	var req nowPlayingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	go engine.Prefetch(context.Background(), req.Metadata)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"accepted": true,
	})
}

// getLyrics returns the last published lyrics state for the device.
func getLyrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	p := device.Lyrics()
	if p == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	json.NewEncoder(w).Encode(p)
}

// eventStream streams hub events to the client over SSE until the
// client disconnects.
func eventStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)
	log.Infof("%s Subscriber connected (%d total)", logcolors.LogEvents, hub.SubscriberCount())

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Infof("%s Subscriber disconnected", logcolors.LogEvents)
			return

		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()

		case ev, open := <-ch:
			if !open {
				return
			}
			data, err := json.Marshal(ev.Payload)
			if err != nil {
				log.Errorf("%s Failed to encode %q event: %v", logcolors.LogEvents, ev.Name, err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, data)
			flusher.Flush()
		}
	}
}

func getCacheDump(w http.ResponseWriter, r *http.Request) {
	if !authorized(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	dump := map[string]cacheDumpEntry{}
	store.Range(func(key string, p lyrics.Payload, expiresAt time.Time) bool {
		dump[key] = cacheDumpEntry{
			Status:    p.Status,
			TrackName: p.TrackName,
			ExpiresAt: expiresAt.Format(time.RFC3339),
		}
		return true
	})

	s := stats.Get()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"numberOfKeys": len(dump),
		"performance": map[string]interface{}{
			"hits":         s.CacheHits.Load(),
			"misses":       s.CacheMisses.Load(),
			"negativeHits": s.NegativeCacheHits.Load(),
			"hitRate":      s.CacheHitRate(),
		},
		"cache": dump,
	})
}

func clearCache(w http.ResponseWriter, r *http.Request) {
	if !authorized(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	cleared := store.Len()
	store.Clear()
	log.Infof("%s Cleared %d entries via API", logcolors.LogCache, cleared)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Cache cleared",
		"cleared": cleared,
	})
}

func getHealthStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	cbState, cbFailures, _ := breaker.Stats()

	health := map[string]interface{}{
		"status":          "ok",
		"version":         conf.Configuration.ServerVersion,
		"lyrics_enabled":  conf.Configuration.LyricsEnabled,
		"circuit_breaker": cbState.String(),
		"cache_entries":   store.Len(),
		"subscribers":     hub.SubscriberCount(),
	}

	if cbState == circuitbreaker.StateOpen {
		health["status"] = "degraded"
		health["circuit_breaker_failures"] = cbFailures
		health["circuit_breaker_retry_in"] = breaker.TimeUntilRetry().String()
	}

	json.NewEncoder(w).Encode(health)
}

func getStats(w http.ResponseWriter, r *http.Request) {
	if !authorized(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	snapshot := stats.Get().Snapshot()

	cbState, failures, lastFailure := breaker.Stats()
	cb := map[string]interface{}{
		"state":              cbState.String(),
		"failures":           failures,
		"cooldown_remaining": breaker.TimeUntilRetry().String(),
	}
	if !lastFailure.IsZero() {
		cb["last_failure"] = lastFailure.Format(time.RFC3339)
	}
	snapshot["circuit_breaker"] = cb
	snapshot["cache_storage"] = map[string]interface{}{
		"keys": store.Len(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshot)
}

func getCircuitBreakerStatus(w http.ResponseWriter, r *http.Request) {
	cbState, failures, lastFailure := breaker.Stats()

	status := map[string]interface{}{
		"state":              cbState.String(),
		"failures":           failures,
		"cooldown_remaining": breaker.TimeUntilRetry().String(),
	}
	if !lastFailure.IsZero() {
		status["last_failure"] = lastFailure.Format(time.RFC3339)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

func resetCircuitBreaker(w http.ResponseWriter, r *http.Request) {
	if !authorized(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	breaker.Reset()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Circuit breaker reset",
	})
}

func helpHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"help": "POST device metadata to /nowplaying to resolve lyrics for the current track, POST to /prefetch to warm the cache for an upcoming one. GET /lyrics for the current state, GET /events for the SSE stream.",
	})
}

// authorized gates management endpoints behind the configured access
// token. An empty configured token locks them entirely.
func authorized(r *http.Request) bool {
	token := conf.Configuration.CacheAccessToken
	return token != "" && r.Header.Get("Authorization") == token
}

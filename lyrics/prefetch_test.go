package lyrics

import (
	"context"
	"testing"
	"time"

	"lyrics-resolver-go/track"
)

func prefetchEvents(emitter *captureEmitter) []PrefetchEvent {
	var out []PrefetchEvent
	for _, ev := range emitter.byName(EventLyricsPrefetch) {
		out = append(out, ev.payload.(PrefetchEvent))
	}
	return out
}

func TestPrefetchResolvesAndAnnounces(t *testing.T) {
	engine, emitter, calls := newTestEngine(t, serveMatch)

	engine.Prefetch(context.Background(), testMetadata())

	events := prefetchEvents(emitter)
	if len(events) != 2 {
		t.Fatalf("Expected start and done events, got %d: %+v", len(events), events)
	}
	if events[0].Status != PrefetchStart {
		t.Errorf("First event = %q, want start", events[0].Status)
	}
	if events[1].Status != PrefetchDone {
		t.Errorf("Second event = %q, want done", events[1].Status)
	}
	if events[0].TrackKey == "" || events[0].TrackKey != events[1].TrackKey {
		t.Errorf("Events should share a track key: %+v", events)
	}
	if calls.Load() == 0 {
		t.Error("Expected upstream calls for a cold prefetch")
	}

	// The cache is now warm for the now-playing path.
	sig, _ := track.BuildSignature(*testMetadata())
	if _, hit := engine.store.Get(sig.Key()); !hit {
		t.Error("Prefetch should have populated the cache")
	}
}

func TestPrefetchCachedShortCircuits(t *testing.T) {
	engine, emitter, calls := newTestEngine(t, serveMatch)

	engine.Prefetch(context.Background(), testMetadata())
	before := calls.Load()

	engine.Prefetch(context.Background(), testMetadata())

	events := prefetchEvents(emitter)
	last := events[len(events)-1]
	if last.Status != PrefetchCached {
		t.Errorf("Last event = %q, want cached", last.Status)
	}
	if calls.Load() != before {
		t.Errorf("Warm prefetch should not call upstream (calls %d -> %d)", before, calls.Load())
	}
}

func TestPrefetchSkips(t *testing.T) {
	tests := []struct {
		name string
		meta func() *track.Metadata
	}{
		{name: "nil metadata", meta: func() *track.Metadata { return nil }},
		{
			name: "unsupported source",
			meta: func() *track.Metadata {
				m := testMetadata()
				m.Source = "spotify"
				return m
			},
		},
		{
			name: "incomplete metadata",
			meta: func() *track.Metadata {
				m := testMetadata()
				m.Artist = ""
				return m
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, emitter, calls := newTestEngine(t, serveMatch)

			engine.Prefetch(context.Background(), tt.meta())

			events := prefetchEvents(emitter)
			if len(events) != 1 || events[0].Status != PrefetchSkipped {
				t.Fatalf("Expected a single skipped event, got %+v", events)
			}
			if events[0].Reason == "" {
				t.Error("Skipped event should carry a reason")
			}
			if calls.Load() != 0 {
				t.Errorf("Skip must not hit upstream, got %d calls", calls.Load())
			}
		})
	}
}

func TestPrefetchNeverTouchesDeviceState(t *testing.T) {
	engine, emitter, _ := newTestEngine(t, serveMatch)

	engine.Prefetch(context.Background(), testMetadata())

	if events := emitter.byName(EventLyrics); len(events) != 0 {
		t.Errorf("Prefetch must not publish lyrics events, got %d", len(events))
	}
}

func TestPrefetchLeavesCacheEntryClean(t *testing.T) {
	engine, _, _ := newTestEngine(t, serveMatch)

	engine.Prefetch(context.Background(), testMetadata())

	sig, _ := track.BuildSignature(*testMetadata())
	p, ok := engine.store.Get(sig.Key())
	if !ok {
		t.Fatal("Expected cached payload after prefetch")
	}
	if p.Prefetch != nil {
		t.Errorf("Cached payload must not carry a prefetch marker, got %+v", p.Prefetch)
	}
}

func TestPrefetchThenUpdatePublishesCleanPayload(t *testing.T) {
	engine, emitter, _ := newTestEngine(t, serveMatch)
	dev := &DeviceState{}

	engine.Prefetch(context.Background(), testMetadata())
	p := engine.Update(context.Background(), dev, testMetadata(), time.Now(), time.Now())

	if p.Status != StatusOK {
		t.Fatalf("Status = %q, want ok", p.Status)
	}
	if p.Prefetch != nil {
		t.Errorf("Now-playing payload must not carry a prefetch marker, got %+v", p.Prefetch)
	}

	events := emitter.byName(EventLyrics)
	if len(events) != 1 {
		t.Fatalf("Expected 1 lyrics event, got %d", len(events))
	}
	published := events[0].payload.(Payload)
	if published.Prefetch != nil {
		t.Errorf("Published lyrics event carries prefetch marker: %+v", published.Prefetch)
	}
}

func TestResolveMarksPrefetchCallerOnly(t *testing.T) {
	engine, _, _ := newTestEngine(t, serveMatch)

	sig, _ := track.BuildSignature(*testMetadata())
	key := sig.Key()

	p := engine.Resolve(context.Background(), sig, key, newTestDiag(), ResolveOptions{Prefetch: true})
	if p.Prefetch == nil {
		t.Fatal("Expected prefetch marker on the prefetch caller's copy")
	}
	if p.Prefetch.CacheHit {
		t.Error("Cold prefetch should not be marked as a cache hit")
	}
	if p.Prefetch.CheckedAt <= 0 {
		t.Error("Prefetch marker missing timestamp")
	}

	warm := engine.Resolve(context.Background(), sig, key, newTestDiag(), ResolveOptions{Prefetch: true})
	if warm.Prefetch == nil || !warm.Prefetch.CacheHit {
		t.Errorf("Warm prefetch copy should be marked as a cache hit, got %+v", warm.Prefetch)
	}

	// A plain now-playing caller sees no marker at all.
	plain := engine.Resolve(context.Background(), sig, key, newTestDiag(), ResolveOptions{})
	if plain.Prefetch != nil {
		t.Errorf("Now-playing copy must not carry a prefetch marker, got %+v", plain.Prefetch)
	}
}

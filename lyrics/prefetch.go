package lyrics

import (
	"context"
	"time"

	"lyrics-resolver-go/logcolors"
	"lyrics-resolver-go/resolver"
	"lyrics-resolver-go/stats"
	"lyrics-resolver-go/track"

	log "github.com/sirupsen/logrus"
)

// Prefetch lifecycle statuses emitted on the prefetch event channel.
const (
	PrefetchSkipped = "skipped"
	PrefetchCached  = "cached"
	PrefetchStart   = "start"
	PrefetchDone    = "done"
	PrefetchError   = "error"
)

// PrefetchEvent reports prefetch progress. These events never carry the
// now-playing lyrics state; subscribers interested only in the active
// track can ignore the channel entirely.
type PrefetchEvent struct {
	Status    string           `json:"status"`
	TrackKey  string           `json:"trackKey,omitempty"`
	Signature *track.Signature `json:"signature,omitempty"`
	Reason    string           `json:"reason,omitempty"`
	StartedAt int64            `json:"startedAt,omitempty"` // unix ms
	TotalMs   int64            `json:"totalMs,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// Prefetch warms the cache for an upcoming track. It never touches the
// device state and never returns an error: ineligible or incomplete
// metadata is reported as a skip event and the call ends there.
func (e *Engine) Prefetch(ctx context.Context, meta *track.Metadata) {
	stats.Get().RecordPrefetch()

	if !e.conf.Configuration.LyricsEnabled {
		e.emitPrefetch(PrefetchEvent{Status: PrefetchSkipped, Reason: "lyrics disabled"})
		return
	}
	if meta == nil {
		e.emitPrefetch(PrefetchEvent{Status: PrefetchSkipped, Reason: "no metadata"})
		return
	}
	if !e.sourceEligible(meta.Source) {
		e.emitPrefetch(PrefetchEvent{Status: PrefetchSkipped, Reason: "source not supported"})
		return
	}

	sig, ok := track.BuildSignature(*meta)
	if !ok {
		e.emitPrefetch(PrefetchEvent{Status: PrefetchSkipped, Reason: "incomplete metadata"})
		return
	}

	key := sig.Key()
	if _, cached := e.store.Get(key); cached {
		stats.Get().RecordCacheHit()
		log.Debugf("%s Key %s already cached, nothing to do", logcolors.LogPrefetch, key)
		e.emitPrefetch(PrefetchEvent{Status: PrefetchCached, TrackKey: key, Signature: &sig})
		return
	}

	start := time.Now()
	e.emitPrefetch(PrefetchEvent{
		Status:    PrefetchStart,
		TrackKey:  key,
		Signature: &sig,
		StartedAt: start.UnixMilli(),
	})
	log.Infof("%s Warming cache for %q - %q", logcolors.LogPrefetch, sig.TrackName, sig.ArtistName)

	diag := resolver.NewDiagnostics(time.Time{}, time.Time{}, e.conf.Configuration.MetadataPollIntervalMs)
	payload := e.Resolve(ctx, sig, key, diag, ResolveOptions{Prefetch: true})

	ev := PrefetchEvent{
		TrackKey:  key,
		Signature: &sig,
		StartedAt: start.UnixMilli(),
		TotalMs:   time.Since(start).Milliseconds(),
	}
	if payload.Status == StatusError {
		ev.Status = PrefetchError
		ev.Error = payload.Error
	} else {
		ev.Status = PrefetchDone
	}
	e.emitPrefetch(ev)
}

func (e *Engine) emitPrefetch(ev PrefetchEvent) {
	e.emitter.Emit(EventLyricsPrefetch, ev)
}

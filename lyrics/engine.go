package lyrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lyrics-resolver-go/config"
	"lyrics-resolver-go/logcolors"
	"lyrics-resolver-go/publish"
	"lyrics-resolver-go/resolver"
	"lyrics-resolver-go/stats"
	"lyrics-resolver-go/track"

	log "github.com/sirupsen/logrus"
)

// Engine drives lyrics resolution for the currently playing track and
// for speculative prefetches. Both paths share one result cache and one
// in-flight table but publish on separate event channels.
type Engine struct {
	store    *Store
	resolver *resolver.Resolver
	emitter  publish.Emitter
	conf     config.Config
	sources  map[string]bool
}

func NewEngine(store *Store, res *resolver.Resolver, emitter publish.Emitter, conf config.Config) *Engine {
	sources := make(map[string]bool)
	for _, s := range conf.EligibleSources() {
		sources[s] = true
	}

	return &Engine{
		store:    store,
		resolver: res,
		emitter:  emitter,
		conf:     conf,
		sources:  sources,
	}
}

// ResolveOptions tags a resolution with its provenance.
type ResolveOptions struct {
	Prefetch bool
}

// Resolve returns the lyrics payload for a track key: from cache when a
// live entry exists, from a shared in-flight resolution when one is
// already running, and otherwise from a fresh upstream race whose
// outcome is cached with the status-appropriate TTL.
func (e *Engine) Resolve(ctx context.Context, sig track.Signature, key string, diag *resolver.Diagnostics, opts ResolveOptions) Payload {
	if p, ok := e.store.Get(key); ok {
		diag.SetCache("hit")
		if p.Status == StatusOK {
			stats.Get().RecordCacheHit()
			log.Infof("%s Serving cached lyrics for key %s", logcolors.LogCacheLyrics, key)
		} else {
			stats.Get().RecordNegativeCacheHit()
			log.Infof("%s Serving cached %q for key %s", logcolors.LogCacheNegative, p.Status, key)
		}
		if opts.Prefetch {
			p.Prefetch = &PrefetchMarker{CacheHit: true, CheckedAt: time.Now().UnixMilli()}
		}
		return p
	}

	req, owner := e.store.join(key)
	if !owner {
		diag.SetCache("coalesced")
		stats.Get().RecordCoalescedWaiter()
		log.Infof("%s Waiting on in-flight resolution for key %s", logcolors.LogInFlight, key)
		req.wg.Wait()
		p := req.payload
		if opts.Prefetch {
			p.Prefetch = &PrefetchMarker{CheckedAt: time.Now().UnixMilli()}
		}
		return p
	}

	diag.SetCache("miss")
	stats.Get().RecordCacheMiss()

	payload := e.resolveUpstream(ctx, sig, key, diag)
	e.store.complete(key, req, payload)

	// The marker describes this caller, not the track: annotate only
	// the returned copy, never the cached entry or the waiters' copy.
	if opts.Prefetch {
		payload.Prefetch = &PrefetchMarker{CheckedAt: time.Now().UnixMilli()}
	}
	return payload
}

// resolveUpstream runs the three-strategy race and converts its outcome
// into a cacheable payload. A failure anywhere in the orchestration is
// logged and degraded to an error payload; it never escapes to crash
// the caller.
func (e *Engine) resolveUpstream(ctx context.Context, sig track.Signature, key string, diag *resolver.Diagnostics) (payload Payload) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("%s Resolution for key %s panicked: %v", logcolors.LogResolver, key, r)
			payload = statusPayload(StatusError, key, &sig)
			payload.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	cand, err := e.resolver.ResolveBySignature(ctx, sig, diag)
	if err != nil {
		log.Errorf("%s Resolution for key %s failed: %v", logcolors.LogResolver, key, err)
		stats.Get().RecordResolution(false)
		payload = statusPayload(StatusError, key, &sig)
		payload.Error = err.Error()
		return payload
	}

	if cand == nil {
		stats.Get().RecordResolution(false)
		log.Infof("%s No lyrics found for key %s, caching negative result", logcolors.LogCacheNegative, key)
		return statusPayload(StatusNotFound, key, &sig)
	}

	stats.Get().RecordResolution(true)
	return matchPayload(key, sig, cand)
}

// Update runs the now-playing pipeline for freshly polled device
// metadata: skip checks, resolution, diagnostics snapshot, idempotent
// publish. It returns the payload that now represents the device state,
// whether or not a broadcast went out.
func (e *Engine) Update(ctx context.Context, dev *DeviceState, meta *track.Metadata, metadataTimeStamp, stateTimeStamp time.Time) Payload {
	if !e.conf.Configuration.LyricsEnabled {
		return e.publishState(dev, statusPayload(StatusDisabled, "", nil))
	}
	if meta == nil {
		return e.publishState(dev, statusPayload(StatusNoMetadata, "", nil))
	}
	if !e.sourceEligible(meta.Source) {
		log.Debugf("%s Source %q not eligible for lyrics", logcolors.LogLyrics, meta.Source)
		return e.publishState(dev, statusPayload(StatusNotSupportedSource, "", nil))
	}

	sig, ok := track.BuildSignature(*meta)
	if !ok {
		log.Debugf("%s Incomplete metadata for %q, skipping resolution", logcolors.LogSignature, meta.Title)
		return e.publishState(dev, statusPayload(StatusMissingSignature, "", nil))
	}

	key := sig.Key()
	diag := resolver.NewDiagnostics(metadataTimeStamp, stateTimeStamp, e.conf.Configuration.MetadataPollIntervalMs)

	payload := e.Resolve(ctx, sig, key, diag, ResolveOptions{})
	payload.Diagnostics = diag.Finish()
	return e.publishState(dev, payload)
}

// publishState broadcasts a now-playing lyrics change unless the device
// already shows the same track key with the same status. The stored
// state is a private copy so later annotation of the returned payload
// cannot mutate it.
func (e *Engine) publishState(dev *DeviceState, p Payload) Payload {
	dev.mu.Lock()
	if cur := dev.lyrics; cur != nil && cur.TrackKey == p.TrackKey && cur.Status == p.Status {
		dev.mu.Unlock()
		stats.Get().RecordSuppressed()
		log.Debugf("%s Suppressing duplicate %q publish for key %s", logcolors.LogPublish, p.Status, p.TrackKey)
		return p
	}
	cp := p
	dev.lyrics = &cp
	dev.mu.Unlock()

	stats.Get().RecordPublish()
	log.Infof("%s Publishing %q for key %s", logcolors.LogPublish, p.Status, p.TrackKey)
	e.emitter.Emit(EventLyrics, p)
	return p
}

func (e *Engine) sourceEligible(source string) bool {
	return e.sources[strings.ToLower(source)]
}

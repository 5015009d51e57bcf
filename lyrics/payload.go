package lyrics

import (
	"sync"

	"lyrics-resolver-go/resolver"
	"lyrics-resolver-go/services/lrclib"
	"lyrics-resolver-go/track"
)

// Provider is the only upstream lyrics source this engine supports.
const Provider = "lrclib"

// Event names consumed by the real-time transport.
const (
	EventLyrics         = "lyrics"
	EventLyricsPrefetch = "lyrics-prefetch"
)

// Status values published with the lyrics event. The first four are
// skip conditions, not errors: they are re-evaluated on the next
// metadata update and never retried on their own.
const (
	StatusOK                 = "ok"
	StatusNotFound           = "not-found"
	StatusError              = "error"
	StatusDisabled           = "disabled"
	StatusNoMetadata         = "no-metadata"
	StatusNotSupportedSource = "not-supported-source"
	StatusMissingSignature   = "missing-signature"
)

// Payload is the cached resolution outcome and the broadcast "now
// playing" lyrics state for one track.
type Payload struct {
	Status       string           `json:"status"`
	Provider     string           `json:"provider"`
	TrackKey     string           `json:"trackKey,omitempty"`
	Signature    *track.Signature `json:"signature,omitempty"`
	ID           int              `json:"id,omitempty"`
	TrackName    string           `json:"trackName,omitempty"`
	ArtistName   string           `json:"artistName,omitempty"`
	AlbumName    string           `json:"albumName,omitempty"`
	Duration     float64          `json:"duration,omitempty"`
	Instrumental bool             `json:"instrumental,omitempty"`
	SyncedLyrics string           `json:"syncedLyrics,omitempty"`
	Error        string           `json:"error,omitempty"`

	// Diagnostics is attached at publish time only; cached payloads do
	// not carry it.
	Diagnostics *resolver.DiagnosticsSnapshot `json:"diagnostics,omitempty"`

	// Prefetch is set only on the copy handed to a prefetch caller;
	// cached entries and now-playing broadcasts never carry it.
	Prefetch *PrefetchMarker `json:"prefetch,omitempty"`
}

// PrefetchMarker annotates a payload returned through the prefetch
// path.
type PrefetchMarker struct {
	CacheHit  bool  `json:"cacheHit"`
	CheckedAt int64 `json:"checkedAt"` // unix ms
}

// matchPayload builds the "ok" payload for a resolved candidate.
func matchPayload(key string, sig track.Signature, cand *lrclib.Candidate) Payload {
	return Payload{
		Status:       StatusOK,
		Provider:     Provider,
		TrackKey:     key,
		Signature:    &sig,
		ID:           cand.ID,
		TrackName:    cand.TrackName,
		ArtistName:   cand.ArtistName,
		AlbumName:    cand.AlbumName,
		Duration:     cand.Duration,
		Instrumental: cand.Instrumental,
		SyncedLyrics: cand.SyncedLyrics,
	}
}

// statusPayload builds a terminal payload with no lyrics content.
func statusPayload(status, key string, sig *track.Signature) Payload {
	return Payload{
		Status:    status,
		Provider:  Provider,
		TrackKey:  key,
		Signature: sig,
	}
}

// DeviceState tracks the last lyrics state published for the active
// device. It is overwritten only through the publisher's idempotence
// check.
type DeviceState struct {
	mu     sync.Mutex
	lyrics *Payload
}

// Lyrics returns a copy of the current lyrics state, or nil when
// nothing has been published yet.
func (d *DeviceState) Lyrics() *Payload {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lyrics == nil {
		return nil
	}
	cp := *d.lyrics
	return &cp
}

package resolver

import (
	"sync"
	"time"
)

// RequestRecord captures the settlement of one upstream strategy.
type RequestRecord struct {
	Endpoint   string `json:"endpoint"`
	DurationMs int64  `json:"durationMs"`
	Result     string `json:"result"` // ok | miss | error
	Error      string `json:"error,omitempty"`
}

// DiagnosticsSnapshot is the immutable, publishable copy of a
// Diagnostics record.
type DiagnosticsSnapshot struct {
	RequestedAt            time.Time       `json:"requestedAt"`
	MetadataTimeStamp      time.Time       `json:"metadataTimeStamp"`
	MetadataAgeMs          int64           `json:"metadataAgeMs"`
	StateTimeStamp         time.Time       `json:"stateTimeStamp"`
	StateAgeMs             int64           `json:"stateAgeMs"`
	MetadataPollIntervalMs int             `json:"metadataPollIntervalMs"`
	Requests               []RequestRecord `json:"requests"`
	PendingRequests        []string        `json:"pendingRequests"`
	Cache                  string          `json:"cache,omitempty"`
	TotalMs                int64           `json:"totalMs"`
}

// Diagnostics collects timing observations for a single resolution
// attempt. Strategies settle from separate goroutines, so every write
// goes through the mutex. The live record is owned by one attempt;
// anything published is a Snapshot copy, so later mutation cannot leak
// into already-broadcast state.
type Diagnostics struct {
	mu                     sync.Mutex
	requestedAt            time.Time
	metadataTimeStamp      time.Time
	metadataAgeMs          int64
	stateTimeStamp         time.Time
	stateAgeMs             int64
	metadataPollIntervalMs int
	requests               []RequestRecord
	pendingRequests        []string
	cache                  string
	totalMs                int64
}

// NewDiagnostics starts a diagnostics record for one resolution
// attempt. Zero timestamps mean the corresponding age is unknown.
func NewDiagnostics(metadataTimeStamp, stateTimeStamp time.Time, pollIntervalMs int) *Diagnostics {
	now := time.Now()
	d := &Diagnostics{
		requestedAt:            now,
		metadataTimeStamp:      metadataTimeStamp,
		stateTimeStamp:         stateTimeStamp,
		metadataPollIntervalMs: pollIntervalMs,
	}
	if !metadataTimeStamp.IsZero() {
		d.metadataAgeMs = now.Sub(metadataTimeStamp).Milliseconds()
	}
	if !stateTimeStamp.IsZero() {
		d.stateAgeMs = now.Sub(stateTimeStamp).Milliseconds()
	}
	return d
}

// RecordRequest appends one strategy settlement.
func (d *Diagnostics) RecordRequest(endpoint string, duration time.Duration, result string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	rec := RequestRecord{
		Endpoint:   endpoint,
		DurationMs: duration.Milliseconds(),
		Result:     result,
	}
	if err != nil {
		rec.Error = err.Error()
	}
	d.requests = append(d.requests, rec)
}

// SetPending records the strategy labels still pending when the race
// returned.
func (d *Diagnostics) SetPending(labels []string) {
	d.mu.Lock()
	d.pendingRequests = labels
	d.mu.Unlock()
}

// SetCache records the cache disposition of the attempt (hit, miss,
// coalesced).
func (d *Diagnostics) SetCache(disposition string) {
	d.mu.Lock()
	d.cache = disposition
	d.mu.Unlock()
}

// Finish stamps the total elapsed time and returns a snapshot for
// publication.
func (d *Diagnostics) Finish() *DiagnosticsSnapshot {
	d.mu.Lock()
	d.totalMs = time.Since(d.requestedAt).Milliseconds()
	d.mu.Unlock()
	return d.Snapshot()
}

// Snapshot deep-copies the record so the caller can publish it while
// the live record keeps changing.
func (d *Diagnostics) Snapshot() *DiagnosticsSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	snap := &DiagnosticsSnapshot{
		RequestedAt:            d.requestedAt,
		MetadataTimeStamp:      d.metadataTimeStamp,
		MetadataAgeMs:          d.metadataAgeMs,
		StateTimeStamp:         d.stateTimeStamp,
		StateAgeMs:             d.stateAgeMs,
		MetadataPollIntervalMs: d.metadataPollIntervalMs,
		Requests:               make([]RequestRecord, len(d.requests)),
		PendingRequests:        make([]string, len(d.pendingRequests)),
		Cache:                  d.cache,
		TotalMs:                d.totalMs,
	}
	copy(snap.Requests, d.requests)
	copy(snap.PendingRequests, d.pendingRequests)
	return snap
}

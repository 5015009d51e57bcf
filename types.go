package main

import (
	"time"

	"lyrics-resolver-go/track"
)

// nowPlayingRequest is the body accepted by /nowplaying and /prefetch.
// Metadata is nil when the device reports nothing playing; the
// timestamps let diagnostics report how stale the poll data was.
type nowPlayingRequest struct {
	Metadata          *track.Metadata `json:"metadata"`
	MetadataTimeStamp int64           `json:"metadataTimeStamp,omitempty"` // unix ms
	StateTimeStamp    int64           `json:"stateTimeStamp,omitempty"`    // unix ms
}

func (r nowPlayingRequest) metadataTime() time.Time {
	return msTime(r.MetadataTimeStamp)
}

func (r nowPlayingRequest) stateTime() time.Time {
	return msTime(r.StateTimeStamp)
}

func msTime(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

// cacheDumpEntry is one row of the /cache dump.
type cacheDumpEntry struct {
	Status    string `json:"status"`
	TrackName string `json:"trackName,omitempty"`
	ExpiresAt string `json:"expiresAt"`
}

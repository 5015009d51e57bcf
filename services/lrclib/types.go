package lrclib

// Candidate is a raw lyrics result returned by the LRCLIB API. It is
// transient: candidates are filtered and scored, never stored.
type Candidate struct {
	ID           int     `json:"id"`
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	AlbumName    string  `json:"albumName"`
	Duration     float64 `json:"duration"`
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  string  `json:"plainLyrics"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

// DurationSeconds returns the candidate duration rounded to whole
// seconds, or 0 when the upstream did not report one.
func (c *Candidate) DurationSeconds() int {
	if c.Duration <= 0 {
		return 0
	}
	return int(c.Duration + 0.5)
}

// HasSyncedLyrics reports whether the candidate can actually be
// displayed: synced lyrics present and not an instrumental track.
func (c *Candidate) HasSyncedLyrics() bool {
	return c != nil && !c.Instrumental && c.SyncedLyrics != ""
}

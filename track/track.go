package track

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Metadata is the already-parsed track metadata handed over by the
// device polling layer.
type Metadata struct {
	Title    string   `json:"title"`
	Artist   string   `json:"artist"`
	Album    string   `json:"album"`
	Duration Duration `json:"duration"`
	Source   string   `json:"source"`
}

// Duration is a track duration that may arrive as integer seconds or as
// a "MM:SS" / "H:MM:SS" clock string, depending on the device.
type Duration struct {
	Seconds int
	Known   bool
}

// UnmarshalJSON accepts a positive number of seconds or a clock string.
// Anything else leaves the duration unknown rather than failing the
// whole metadata decode.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		if n > 0 {
			d.Seconds, d.Known = n, true
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	if secs, ok := ParseDurationSeconds(s); ok && secs > 0 {
		d.Seconds, d.Known = secs, true
	}
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	if !d.Known {
		return []byte("null"), nil
	}
	return json.Marshal(d.Seconds)
}

// ParseDurationSeconds converts a "MM:SS" or "H:MM:SS" clock string to
// total seconds. Any non-numeric segment, negative segment, or a
// segment count other than 2 or 3 fails the parse.
func ParseDurationSeconds(value string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, false
	}

	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return 0, false
		}
		total = total*60 + n
	}
	return total, true
}

// Signature is the normalized-comparable identity of a song: built only
// when title, artist, album and a positive duration are all present.
// Immutable once built.
type Signature struct {
	TrackName       string `json:"trackName"`
	ArtistName      string `json:"artistName"`
	AlbumName       string `json:"albumName"`
	DurationSeconds int    `json:"durationSeconds"`
}

// BuildSignature extracts a Signature from raw metadata. Returns false
// when any of the four fields is missing; resolution is then skipped
// for this track.
func BuildSignature(meta Metadata) (Signature, bool) {
	if meta.Title == "" || meta.Artist == "" || meta.Album == "" {
		return Signature{}, false
	}
	if !meta.Duration.Known || meta.Duration.Seconds <= 0 {
		return Signature{}, false
	}

	return Signature{
		TrackName:       meta.Title,
		ArtistName:      meta.Artist,
		AlbumName:       meta.Album,
		DurationSeconds: meta.Duration.Seconds,
	}, true
}

// Key derives the cache and in-flight identity string for the
// signature. Signatures that normalize identically (casing, bracketed
// suffixes, edition noise) share a key.
func (s Signature) Key() string {
	return strings.Join([]string{
		NormalizeText(s.TrackName),
		NormalizeText(s.ArtistName),
		NormalizeAlbum(s.AlbumName),
		strconv.Itoa(s.DurationSeconds),
	}, "|")
}

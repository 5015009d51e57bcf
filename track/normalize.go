package track

import (
	"regexp"
	"strings"
)

var (
	bracketedSegments = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)
	featMarkers       = regexp.MustCompile(`\b(feat|ft)\.?\s+`)
	nonAlphanumeric   = regexp.MustCompile(`[^a-z0-9 ]+`)
	whitespaceRuns    = regexp.MustCompile(`\s+`)
)

// editionWords are album edition/release descriptors stripped by
// NormalizeAlbum. Upstream metadata providers tag albums with these
// inconsistently, so they only hurt matching.
var editionWords = map[string]struct{}{
	"deluxe":      {},
	"edition":     {},
	"remaster":    {},
	"remastered":  {},
	"expanded":    {},
	"bonus":       {},
	"anniversary": {},
	"live":        {},
	"acoustic":    {},
	"mono":        {},
	"stereo":      {},
	"version":     {},
}

// NormalizeText canonicalizes a free-text metadata field for comparison
// and cache-key building: lowercases, drops parenthetical and bracketed
// segments (edition noise like "(Remastered 2011)"), expands "&",
// strips feat./ft. markers, converts dashes to spaces, removes the
// remaining non-alphanumeric characters and collapses whitespace.
// Deterministic and idempotent; empty input normalizes to "".
func NormalizeText(value string) string {
	s := strings.ToLower(value)
	s = bracketedSegments.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "&", " and ")
	s = featMarkers.ReplaceAllString(s, " ")
	s = strings.NewReplacer("-", " ", "–", " ", "—", " ").Replace(s)
	s = nonAlphanumeric.ReplaceAllString(s, "")
	s = whitespaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeAlbum applies NormalizeText and additionally removes edition
// descriptors as whole words.
func NormalizeAlbum(value string) string {
	fields := strings.Fields(NormalizeText(value))
	kept := fields[:0]
	for _, w := range fields {
		if _, noise := editionWords[w]; !noise {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

package resolver

import (
	"strings"

	"lyrics-resolver-go/services/lrclib"
	"lyrics-resolver-go/track"
)

// AcceptThreshold is the minimum score a search candidate needs to be
// considered a match.
const AcceptThreshold = 70

// Per-field score weights. Track and artist are compared with plain
// normalization, albums with edition descriptors stripped.
const (
	trackExact    = 50
	trackPartial  = 25
	artistExact   = 40
	artistPartial = 20
	albumExact    = 25
	albumPartial  = 12
)

// maxDurationDelta is the largest duration difference (seconds) a
// search candidate may have from the target before being filtered out.
const maxDurationDelta = 10

// Score assigns a confidence score to a candidate against the target
// signature. The duration deltas and weights are a tuned heuristic;
// changing them shifts which fuzzy matches win.
func Score(c lrclib.Candidate, sig track.Signature) int {
	score := fieldScore(track.NormalizeText(c.TrackName), track.NormalizeText(sig.TrackName), trackExact, trackPartial)
	score += fieldScore(track.NormalizeText(c.ArtistName), track.NormalizeText(sig.ArtistName), artistExact, artistPartial)
	score += fieldScore(track.NormalizeAlbum(c.AlbumName), track.NormalizeAlbum(sig.AlbumName), albumExact, albumPartial)

	// No adjustment at all when either duration is unknown.
	if cd := c.DurationSeconds(); cd > 0 && sig.DurationSeconds > 0 {
		switch diff := abs(cd - sig.DurationSeconds); {
		case diff <= 2:
			score += 30
		case diff <= 5:
			score += 20
		case diff <= 10:
			score += 10
		default:
			score -= 20
		}
	}

	return score
}

// fieldScore compares two normalized fields: exact match scores full
// weight, a substring match in either direction scores the partial
// weight.
func fieldScore(got, want string, exact, partial int) int {
	if got == "" || want == "" {
		return 0
	}
	if got == want {
		return exact
	}
	if strings.Contains(got, want) || strings.Contains(want, got) {
		return partial
	}
	return 0
}

// BestMatch filters and scores search candidates, returning the
// highest-scoring acceptable one. Ties keep upstream order: the first
// listed candidate wins.
func BestMatch(cands []lrclib.Candidate, sig track.Signature) *lrclib.Candidate {
	var best *lrclib.Candidate
	bestScore := 0

	for i := range cands {
		c := &cands[i]
		if !c.HasSyncedLyrics() {
			continue
		}
		if cd := c.DurationSeconds(); cd > 0 && sig.DurationSeconds > 0 && abs(cd-sig.DurationSeconds) > maxDurationDelta {
			continue
		}

		score := Score(*c, sig)
		if score < AcceptThreshold {
			continue
		}
		if best == nil || score > bestScore {
			best, bestScore = c, score
		}
	}

	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

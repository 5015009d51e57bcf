package resolver

import (
	"context"
	"time"

	"lyrics-resolver-go/logcolors"
	"lyrics-resolver-go/services/lrclib"
	"lyrics-resolver-go/stats"
	"lyrics-resolver-go/track"

	log "github.com/sirupsen/logrus"
)

// Strategy labels; these double as the diagnostics endpoint names.
const (
	StrategyGetCached = "get-cached"
	StrategyGet       = "get"
	StrategySearch    = "search"
)

// Resolver races the upstream query strategies against each other.
type Resolver struct {
	client *lrclib.Client
}

func New(client *lrclib.Client) *Resolver {
	return &Resolver{client: client}
}

// settlement is the outcome of one strategy.
type settlement struct {
	label     string
	candidate *lrclib.Candidate
	err       error
	elapsed   time.Duration
}

// ResolveBySignature issues the cached lookup, the direct lookup and
// the fuzzy search concurrently and returns the first candidate that
// carries synced lyrics and is not instrumental. Later settlements are
// discarded and strategy failures are swallowed into diagnostics; only
// when every strategy settles without a valid result does the caller
// get (nil, nil).
func (r *Resolver) ResolveBySignature(ctx context.Context, sig track.Signature, diag *Diagnostics) (*lrclib.Candidate, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan settlement, 3)
	launch := func(label string, fn func(context.Context) (*lrclib.Candidate, error)) {
		go func() {
			start := time.Now()
			cand, err := fn(ctx)
			results <- settlement{label: label, candidate: cand, err: err, elapsed: time.Since(start)}
		}()
	}

	launch(StrategyGetCached, func(ctx context.Context) (*lrclib.Candidate, error) {
		return r.client.GetCached(ctx, sig)
	})
	launch(StrategyGet, func(ctx context.Context) (*lrclib.Candidate, error) {
		return r.client.Get(ctx, sig)
	})
	launch(StrategySearch, func(ctx context.Context) (*lrclib.Candidate, error) {
		return r.search(ctx, sig)
	})

	pending := map[string]bool{
		StrategyGetCached: true,
		StrategyGet:       true,
		StrategySearch:    true,
	}

	for len(pending) > 0 {
		s := <-results
		delete(pending, s.label)

		switch {
		case s.err != nil:
			diag.RecordRequest(s.label, s.elapsed, "error", s.err)
			log.Debugf("%s %s failed after %v: %v", logcolors.LogResolver, s.label, s.elapsed, s.err)

		case s.candidate.HasSyncedLyrics():
			diag.RecordRequest(s.label, s.elapsed, "ok", nil)
			diag.SetPending(pendingLabels(pending))
			stats.Get().RecordRaceWin(s.label)
			log.Infof("%s %s won for %q - %q (%d pending discarded)",
				logcolors.LogResolver, s.label, sig.TrackName, sig.ArtistName, len(pending))
			return s.candidate, nil

		default:
			diag.RecordRequest(s.label, s.elapsed, "miss", nil)
		}
	}

	diag.SetPending(nil)
	log.Infof("%s No valid result for %q - %q", logcolors.LogResolver, sig.TrackName, sig.ArtistName)
	return nil, nil
}

// search runs the fuzzy search strategy: fetch the candidate list, then
// filter and score it locally.
func (r *Resolver) search(ctx context.Context, sig track.Signature) (*lrclib.Candidate, error) {
	cands, err := r.client.Search(ctx, sig)
	if err != nil {
		return nil, err
	}

	best := BestMatch(cands, sig)
	if best != nil {
		log.Debugf("%s %q by %q scored %d from %d candidates",
			logcolors.LogBestMatch, best.TrackName, best.ArtistName, Score(*best, sig), len(cands))
	}
	return best, nil
}

func pendingLabels(pending map[string]bool) []string {
	labels := make([]string, 0, len(pending))
	for _, label := range []string{StrategyGetCached, StrategyGet, StrategySearch} {
		if pending[label] {
			labels = append(labels, label)
		}
	}
	return labels
}

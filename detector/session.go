// Package detector decides, continuously and without user action, when the
// page's identified content has changed and triggers re-resolution while
// suppressing redundant or premature triggers.
//
// Change detection is two-tiered: a fine-grained fingerprint decides content
// equality, while a coarser per-content cooldown key rate-limits repeats.
// The widget must never be shown twice for an unchanged episode, but must
// appear promptly for a new one even while the previous episode's cooldown
// is still running.
package detector

import (
	"context"
	"errors"
	"time"

	"github.com/kinotag-cli/kinotag/extractor"
	"github.com/kinotag-cli/kinotag/key"
	"github.com/kinotag-cli/kinotag/log"
	"github.com/kinotag-cli/kinotag/lookup"
	"github.com/kinotag-cli/kinotag/page"
	"github.com/kinotag-cli/kinotag/resolver"
	"github.com/spf13/viper"
)

// SignalKind enumerates the observable page events. Any of them may fire
// independently; all funnel into the same evaluation.
type SignalKind int

const (
	// SignalMutation is a page content change; debounced, because streaming
	// players mutate their pages continuously during normal playback.
	SignalMutation SignalKind = iota
	// SignalURLChange is a navigation, observed by polling since SPA
	// navigation fires no standard events.
	SignalURLChange
	// SignalFullscreen is a fullscreen enter or exit.
	SignalFullscreen
	// SignalProgress fires when playback crosses the completion threshold.
	SignalProgress
	// SignalNextEpisode is an explicit next-episode control activation.
	SignalNextEpisode
)

// Signal couples an event with the page snapshot taken when it fired.
type Signal struct {
	Kind     SignalKind
	Snapshot *page.Snapshot
}

// Source is a generic provider of page-changed signals. The detection
// algorithm is transport-agnostic; how signals are obtained is the source's
// concern.
type Source interface {
	Signals() <-chan Signal
	Close() error
}

// DecisionKind classifies the outcome of evaluating a snapshot.
type DecisionKind int

const (
	// DecisionMiss means no content could be extracted. Never escalated.
	DecisionMiss DecisionKind = iota
	// DecisionSuppressUnchanged means the fingerprint equals the one last displayed.
	DecisionSuppressUnchanged
	// DecisionSuppressCooldown means the same content re-triggered within its window.
	DecisionSuppressCooldown
	// DecisionTrigger means resolution must run.
	DecisionTrigger
)

// Decision is the evaluation outcome; Info is set only for DecisionTrigger.
type Decision struct {
	Kind DecisionKind
	Info page.ContentInfo
}

// Session owns the mutable detection state for one page-watching lifetime:
// the last-displayed fingerprint, the cooldown timestamps and the current
// resolved content. No other component writes them.
type Session struct {
	resolver *resolver.Resolver
	service  lookup.Service

	debounce time.Duration
	cooldown time.Duration
	now      func() time.Time

	lastFingerprint string
	cooldowns       map[string]time.Time
	current         *resolver.Resolved
	progressMarked  map[string]bool

	// OnUpdate receives every committed resolution.
	OnUpdate func(*resolver.Resolved)
	// OnMiss receives terminal resolution failures (not found, lookup failure).
	OnMiss func(page.ContentInfo, error)
}

// NewSession builds a session with debounce and cooldown taken from
// configuration.
func NewSession(r *resolver.Resolver, service lookup.Service) *Session {
	return &Session{
		resolver:       r,
		service:        service,
		debounce:       time.Duration(viper.GetInt(key.DetectorDebounce)) * time.Second,
		cooldown:       time.Duration(viper.GetInt(key.DetectorCooldown)) * time.Minute,
		now:            time.Now,
		cooldowns:      make(map[string]time.Time),
		progressMarked: make(map[string]bool),
	}
}

// Current returns the last committed resolution, if any.
func (s *Session) Current() *resolver.Resolved {
	return s.current
}

// Evaluate recomputes the content info for a snapshot and decides whether
// resolution must run. On a trigger it updates the last fingerprint and
// resets the content's cooldown stamp; on a suppression nothing changes and
// no external calls are made.
func (s *Session) Evaluate(snap *page.Snapshot) Decision {
	info, ok := extractor.Extract(snap).Get()
	if !ok {
		return Decision{Kind: DecisionMiss}
	}

	fingerprint := info.Fingerprint()
	if fingerprint == s.lastFingerprint {
		return Decision{Kind: DecisionSuppressUnchanged}
	}

	// The cooldown key is coarser than the fingerprint: a genuine episode
	// change lands on a fresh key and bypasses the previous episode's window.
	cooldownKey := info.CooldownKey()
	if stamp, ok := s.cooldowns[cooldownKey]; ok && s.now().Sub(stamp) < s.cooldown {
		return Decision{Kind: DecisionSuppressCooldown}
	}

	s.lastFingerprint = fingerprint
	s.cooldowns[cooldownKey] = s.now()
	return Decision{Kind: DecisionTrigger, Info: info}
}

// Commit installs a resolution result unless the page has moved on since the
// attempt started. This verify-before-commit re-check substitutes for true
// cancellation of in-flight attempts.
func (s *Session) Commit(res *resolver.Resolved) bool {
	if res.Info.Fingerprint() != s.lastFingerprint {
		log.Infof("discarding stale resolution for %q", res.Info.Title)
		return false
	}

	s.current = res
	// Marks for content the page left behind are no longer needed; the
	// catalog record itself guards already-watched episodes on a return.
	for fp := range s.progressMarked {
		if fp != s.lastFingerprint {
			delete(s.progressMarked, fp)
		}
	}

	if s.OnUpdate != nil {
		s.OnUpdate(res)
	}
	return true
}

// outcome carries an asynchronous resolution result back into the loop.
type outcome struct {
	resolved *resolver.Resolved
	info     page.ContentInfo
	err      error
}

// Run consumes signals until the context ends or the source closes.
// Resolution attempts run asynchronously and never block the loop; new
// signals may queue further attempts while one is in flight.
func (s *Session) Run(ctx context.Context, src Source) error {
	results := make(chan outcome)

	var pending *page.Snapshot
	var quiet <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case sig, ok := <-src.Signals():
			if !ok {
				return nil
			}

			switch sig.Kind {
			case SignalMutation:
				// Restart the quiescence window on every mutation.
				pending = sig.Snapshot
				quiet = time.After(s.debounce)
			case SignalProgress:
				s.handleProgress(ctx, sig.Snapshot, results)
				s.dispatch(ctx, sig.Snapshot, results)
			default:
				s.dispatch(ctx, sig.Snapshot, results)
			}

		case <-quiet:
			quiet = nil
			if pending != nil {
				s.dispatch(ctx, pending, results)
				pending = nil
			}

		case out := <-results:
			s.finish(out)
		}
	}
}

// dispatch evaluates a snapshot and, on a trigger, starts an asynchronous
// resolution attempt.
func (s *Session) dispatch(ctx context.Context, snap *page.Snapshot, results chan<- outcome) {
	decision := s.Evaluate(snap)
	if decision.Kind != DecisionTrigger {
		return
	}

	go func(info page.ContentInfo) {
		res, err := s.resolver.Resolve(info)
		deliver(ctx, results, outcome{resolved: res, info: info, err: err})
	}(decision.Info)
}

// deliver hands an attempt's outcome back to the loop, abandoning it when the
// loop has already exited. The results channel is unbuffered; without the
// context guard a late attempt would pin its goroutine forever.
func deliver(ctx context.Context, results chan<- outcome, out outcome) {
	select {
	case results <- out:
	case <-ctx.Done():
	}
}

// finish routes a completed attempt: commit, surface a terminal failure, or
// silently abort when the session lost the service.
func (s *Session) finish(out outcome) {
	switch {
	case out.err == nil:
		s.Commit(out.resolved)
	case errors.Is(out.err, lookup.ErrUnavailable):
		// No further communication with the service is possible; abort the
		// attempt silently.
		log.Warn("catalog service unavailable, dropping attempt")
	default:
		if s.OnMiss != nil {
			s.OnMiss(out.info, out.err)
		}
	}
}

// handleProgress marks the current episode watched when playback crosses the
// configured threshold, once per episode, then refreshes the resolution so
// the widget reflects the new state.
func (s *Session) handleProgress(ctx context.Context, snap *page.Snapshot, results chan<- outcome) {
	if s.current == nil || snap.PlaybackDuration == 0 {
		return
	}

	percent := int(snap.PlaybackPosition * 100 / snap.PlaybackDuration)
	if percent < viper.GetInt(key.DetectorProgressMark) {
		return
	}

	fingerprint := s.current.Info.Fingerprint()
	if s.progressMarked[fingerprint] || s.current.CurrentEpisodeWatched {
		return
	}
	s.progressMarked[fingerprint] = true

	current := s.current
	go func() {
		hints := lookup.Hints{Season: current.Info.Season, Episode: current.Info.Episode}
		if err := s.service.SetWatched(current.CanonicalID, hints, true); err != nil {
			log.Error(err)
			return
		}

		res, err := s.resolver.Resolve(current.Info)
		deliver(ctx, results, outcome{resolved: res, info: current.Info, err: err})
	}()
}


// Package detector decides when the page's identified content has changed.
package detector

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/kinotag-cli/kinotag/key"
	"github.com/kinotag-cli/kinotag/log"
	"github.com/kinotag-cli/kinotag/page"
	"github.com/spf13/viper"
)

// PollSource produces page-changed signals by periodically re-fetching a URL
// and hashing the document body. A changed final URL is reported as a
// navigation; a changed body as a mutation.
type PollSource struct {
	url      string
	interval time.Duration
	signals  chan Signal
	done     chan struct{}

	lastURL  string
	lastHash string
}

// NewPollSource starts polling the given URL at the configured interval.
func NewPollSource(rawURL string) *PollSource {
	p := &PollSource{
		url:      rawURL,
		interval: time.Duration(viper.GetInt(key.DetectorPollInterval)) * time.Second,
		signals:  make(chan Signal),
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

// Signals returns the signal stream.
func (p *PollSource) Signals() <-chan Signal {
	return p.signals
}

// Close stops polling and closes the signal stream.
func (p *PollSource) Close() error {
	close(p.done)
	return nil
}

func (p *PollSource) run() {
	defer close(p.signals)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Emit an initial snapshot immediately so identification does not wait
	// for the first tick.
	p.poll()

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			p.poll()
		}
	}
}

func (p *PollSource) poll() {
	snap, err := page.Fetch(p.url)
	if err != nil {
		log.Warnf("poll %s: %v", p.url, err)
		return
	}

	sum := sha256.Sum256([]byte(snap.Doc.Text()))
	hash := hex.EncodeToString(sum[:])

	finalURL := snap.URL.String()
	kind := SignalMutation
	if p.lastURL != "" && finalURL != p.lastURL {
		kind = SignalURLChange
	} else if hash == p.lastHash {
		return
	}

	p.lastURL = finalURL
	p.lastHash = hash

	select {
	case p.signals <- Signal{Kind: kind, Snapshot: snap}:
	case <-p.done:
	}
}

// Package page defines the page snapshot model and the content information extracted from it.
package page

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/kinotag-cli/kinotag/key"
	"github.com/kinotag-cli/kinotag/network"
	"github.com/spf13/viper"
)

// Snapshot is a read-only capture of a streaming page at a single point in time.
// Extraction rules treat it as immutable; a changed page yields a fresh snapshot.
type Snapshot struct {
	URL *url.URL
	Doc *goquery.Document

	// Player state, when known. Zero values mean "not observed".
	Fullscreen       bool
	PlaybackPosition time.Duration
	PlaybackDuration time.Duration
}

// Hostname returns the snapshot's hostname with any "www." prefix stripped.
func (s *Snapshot) Hostname() string {
	return strings.TrimPrefix(strings.ToLower(s.URL.Hostname()), "www.")
}

// FromHTML builds a snapshot from a raw HTML document and its source URL.
func FromHTML(rawURL, html string) (*Snapshot, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return &Snapshot{URL: u, Doc: doc}, nil
}

// Fetch retrieves a page over HTTP and parses it into a snapshot.
// When network.browser_tls is enabled the request carries a Chrome TLS
// fingerprint, since several supported sites reject plain Go clients.
func Fetch(rawURL string) (*Snapshot, error) {
	if viper.GetBool(key.NetworkBrowserTLS) {
		body, status, err := network.BrowserGet(rawURL, nil)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("fetch %s: status %d", rawURL, status)
		}
		return FromHTML(rawURL, body)
	}

	resp, err := network.Client.Get(rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	// Redirects may land on a different URL than requested.
	return &Snapshot{URL: resp.Request.URL, Doc: doc}, nil
}

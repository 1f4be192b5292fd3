// Package lookup defines the boundary to the canonical movie catalog service.
package lookup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kinotag-cli/kinotag/auth"
	"github.com/kinotag-cli/kinotag/key"
	"github.com/kinotag-cli/kinotag/log"
	"github.com/kinotag-cli/kinotag/network"
	"github.com/kinotag-cli/kinotag/title"
	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"
)

// Client is the HTTP implementation of Service.
type Client struct {
	httpClient *http.Client
}

// NewClient returns a Service backed by the configured catalog endpoint.
func NewClient() *Client {
	return &Client{httpClient: network.Client}
}

func baseURL() string {
	return viper.GetString(key.LookupBaseURL)
}

// Candidate is one keyword search result.
type Candidate struct {
	CanonicalID string  `json:"canonicalId"`
	Record      *Record `json:"record"`
}

// searchResponse is the wire shape of keyword search results.
type searchResponse struct {
	Results []Candidate `json:"results"`
}

// ByID fetches the canonical record for an identifier, passing the local
// season/episode context so episode-level progress fields can be answered.
func (c *Client) ByID(id string, hints Hints) (*Record, error) {
	endpoint := fmt.Sprintf("%s/records/%s", baseURL(), url.PathEscape(id))

	q := url.Values{}
	if season, ok := hints.Season.Get(); ok {
		q.Set("season", fmt.Sprint(season))
	}
	if episode, ok := hints.Episode.Get(); ok {
		q.Set("episode", fmt.Sprint(episode))
	}
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	var record Record
	if err := c.getJSON(endpoint, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Search resolves a keyword to the best canonical match. When the service
// returns several candidates, the one closest to the keyword by edit
// distance is chosen; the strict title check still happens at the caller.
func (c *Client) Search(keyword string, year mo.Option[string], kind Kind) (string, *Record, error) {
	if failed := failCacher.Get(keyword, year); failed.IsPresent() {
		return "", nil, ErrNotFound
	}

	q := url.Values{}
	q.Set("query", keyword)
	q.Set("kind", kind.String())
	if y, ok := year.Get(); ok {
		q.Set("year", y)
	}

	log.Infof("searching catalog for %q", keyword)

	var response searchResponse
	if err := c.getJSON(baseURL()+"/search?"+q.Encode(), &response); err != nil {
		return "", nil, err
	}

	if len(response.Results) == 0 {
		_ = failCacher.Set(keyword, year, true)
		return "", nil, ErrNotFound
	}

	normalized := title.Normalize(keyword)
	closest := lo.MinBy(response.Results, func(a, b Candidate) bool {
		return levenshtein.Distance(normalized, title.Normalize(a.Record.Title)) <
			levenshtein.Distance(normalized, title.Normalize(b.Record.Title))
	})

	log.Infof("catalog returned %d results, closest: %s", len(response.Results), closest.Record.Title)
	return closest.CanonicalID, closest.Record, nil
}

// SearchAll returns every candidate the catalog offers for a keyword, sorted
// by edit distance to the keyword. Used by the interactive search picker,
// where the user makes the choice the strict matcher normally would.
func (c *Client) SearchAll(keyword string, kind mo.Option[Kind]) ([]Candidate, error) {
	q := url.Values{}
	q.Set("query", keyword)
	if k, ok := kind.Get(); ok {
		q.Set("kind", k.String())
	}

	var response searchResponse
	if err := c.getJSON(baseURL()+"/search?"+q.Encode(), &response); err != nil {
		return nil, err
	}

	normalized := title.Normalize(keyword)
	slices.SortFunc(response.Results, func(a, b Candidate) int {
		return levenshtein.Distance(normalized, title.Normalize(a.Record.Title)) -
			levenshtein.Distance(normalized, title.Normalize(b.Record.Title))
	})

	return response.Results, nil
}

// SetWatched marks the hinted episode (or the whole work) watched or unwatched.
func (c *Client) SetWatched(id string, hints Hints, watched bool) error {
	body := map[string]any{"watched": watched}
	if season, ok := hints.Season.Get(); ok {
		body["season"] = season
	}
	if episode, ok := hints.Episode.Get(); ok {
		body["episode"] = episode
	}
	return c.postJSON(fmt.Sprintf("%s/records/%s/watched", baseURL(), url.PathEscape(id)), body)
}

// SetRating stores a 1-10 user rating.
func (c *Client) SetRating(id string, rating int) error {
	if rating < 1 || rating > 10 {
		return fmt.Errorf("rating %d out of range", rating)
	}
	return c.postJSON(fmt.Sprintf("%s/records/%s/rating", baseURL(), url.PathEscape(id)), map[string]any{
		"rating": rating,
	})
}

func (c *Client) getJSON(endpoint string, target any) error {
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	if err := c.do(req, target); err != nil {
		return err
	}
	return nil
}

func (c *Client) postJSON(endpoint string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, nil)
}

// do executes a request, maps status codes onto the error taxonomy and
// decodes a JSON body when a target is supplied.
func (c *Client) do(req *http.Request, target any) error {
	if token, err := auth.GetToken(); err == nil && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error(err)
		return fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnavailable
	case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent:
		log.Errorf("catalog returned status %d for %s", resp.StatusCode, req.URL.Path)
		return fmt.Errorf("catalog status %d", resp.StatusCode)
	}

	if target == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode catalog response: %w", err)
	}
	return nil
}

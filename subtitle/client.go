package subtitle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/reel-cli/reel/auth"
	"github.com/reel-cli/reel/catalog"
	"github.com/reel-cli/reel/internal/cache"
	"github.com/reel-cli/reel/key"
	"github.com/reel-cli/reel/log"
	"github.com/reel-cli/reel/network"
	"github.com/reel-cli/reel/util"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

var (
	// ErrUpstream marks a non-success status or malformed payload from the subtitle service.
	ErrUpstream = errors.New("subtitle service error")

	// ErrNoSubtitles is returned when a search succeeds with zero hits.
	ErrNoSubtitles = errors.New("no subtitles found")
)

// maxDownload caps a subtitle file. Real files are well under a megabyte.
const maxDownload = 8 << 20

// Client talks to the subtitle search and download service.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	// APIKey is sent as the Api-Key header when it returns a non-empty key.
	APIKey func() (string, error)

	cache *searchCache

	// keepFiles stores downloads on disk and serves repeated ones from there.
	keepFiles bool
}

// NewClient builds a client from the subtitles.* configuration.
func NewClient() *Client {
	c := &Client{
		BaseURL: viper.GetString(key.SubtitlesBaseURL),
		HTTP:    network.Client(),
		APIKey:  auth.GetSubtitleKey,
	}
	if viper.GetBool(key.SubtitlesSearchCache) {
		c.cache = defaultSearchCache
		c.keepFiles = true
	}
	return c
}

// Query describes a subtitle search.
type Query struct {
	Title    catalog.Request
	Language string
}

// searchHit mirrors one result of the service. Movies fill movie_name, series title.
type searchHit struct {
	ID         string `json:"id"`
	Attributes struct {
		Language  string `json:"language"`
		MovieName string `json:"movie_name"`
		Title     string `json:"title"`
		Release   string `json:"release"`
		Files     []struct {
			FileID json.Number `json:"file_id"`
		} `json:"files"`
	} `json:"attributes"`
}

type searchPayload struct {
	Data []searchHit `json:"data"`
}

// Endpoint returns the search URL for a valid query.
func (c *Client) Endpoint(q Query) string {
	base := strings.TrimRight(c.BaseURL, "/")
	params := url.Values{}
	params.Set("tmdb_id", strings.TrimSpace(q.Title.ID))

	if q.Title.Kind == catalog.TV {
		params.Set("season_id", strings.TrimSpace(q.Title.Season))
		params.Set("episode_id", strings.TrimSpace(q.Title.Episode))
		if q.Language != "" {
			params.Set("language", q.Language)
		}
		return base + "/tvsubtitles/search?" + params.Encode()
	}

	params.Set("type", string(catalog.Movie))
	if q.Language != "" {
		params.Set("language", q.Language)
	}
	return base + "/subtitles/search?" + params.Encode()
}

// Search lists subtitle candidates for a title. Candidates without a file are dropped.
func (c *Client) Search(ctx context.Context, q Query) ([]Candidate, error) {
	if err := q.Title.Validate(); err != nil {
		return nil, err
	}

	endpoint := c.Endpoint(q)

	if c.cache != nil {
		if cached, ok := c.cache.Get(endpoint).Get(); ok {
			log.Debugf("subtitle search cache hit for %s", endpoint)
			return cached, nil
		}
	}

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var p searchPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: malformed payload: %v", ErrUpstream, err)
	}

	candidates := lo.FilterMap(p.Data, func(d searchHit, _ int) (Candidate, bool) {
		a := d.Attributes
		if len(a.Files) == 0 || a.Files[0].FileID == "" {
			return Candidate{}, false
		}
		title := a.MovieName
		if title == "" {
			title = a.Title
		}
		return Candidate{
			ID:       d.ID,
			Language: a.Language,
			Title:    title,
			Release:  a.Release,
			FileID:   a.Files[0].FileID,
		}, true
	})

	if len(candidates) == 0 {
		return nil, ErrNoSubtitles
	}

	if c.cache != nil {
		if err := c.cache.Set(endpoint, candidates); err != nil {
			log.Warnf("caching subtitle search: %v", err)
		}
	}

	return candidates, nil
}

// Download fetches the raw SubRip text of a file.
func (c *Client) Download(ctx context.Context, fileID string) (string, error) {
	fileID = strings.TrimSpace(fileID)
	if fileID == "" {
		return "", fmt.Errorf("%w: please select a subtitle", catalog.ErrValidation)
	}

	cacheKey := cache.GenerateKey(fileID, c.BaseURL)
	if c.keepFiles {
		var srt string
		if cache.Read(cacheKey, &srt) {
			log.Debugf("subtitle file %s served from cache", fileID)
			return srt, nil
		}
	}

	endpoint := fmt.Sprintf("%s/subtitles/download/%s", strings.TrimRight(c.BaseURL, "/"), url.PathEscape(fileID))
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return "", err
	}

	if c.keepFiles {
		if err := cache.Write(cacheKey, string(body)); err != nil {
			log.Warnf("caching subtitle file: %v", err)
		}
	}
	return string(body), nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	if c.APIKey != nil {
		if apiKey, err := c.APIKey(); err == nil && apiKey != "" {
			req.Header.Set("Api-Key", apiKey)
		}
	}

	log.Infof("GET %s", endpoint)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer util.Ignore(resp.Body.Close)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDownload))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	return body, nil
}

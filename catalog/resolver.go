package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/reel-cli/reel/key"
	"github.com/reel-cli/reel/log"
	"github.com/reel-cli/reel/network"
	"github.com/reel-cli/reel/util"
	"github.com/spf13/viper"
)

// Stream is a resolved playable source.
type Stream struct {
	URL   string `json:"stream" jsonschema:"title=Stream URL,description=HLS manifest URL"`
	Title string `json:"title" jsonschema:"title=Title"`
}

// Resolver talks to the lookup service.
type Resolver struct {
	BaseURL string
	Client  *http.Client
	Timeout time.Duration
}

// NewResolver builds a resolver from the catalog.* configuration.
func NewResolver() *Resolver {
	return &Resolver{
		BaseURL: viper.GetString(key.CatalogBaseURL),
		Client:  network.Client(),
		Timeout: time.Duration(viper.GetInt(key.CatalogTimeout)) * time.Second,
	}
}

// payload is the lookup service answer. Movies carry movieName, series tvName.
type payload struct {
	Stream    string `json:"stream"`
	MovieName string `json:"movieName"`
	TVName    string `json:"tvName"`
	Error     string `json:"error"`
	Message   string `json:"message"`
}

// Endpoint returns the lookup URL for a valid request.
func (r *Resolver) Endpoint(req Request) string {
	base := strings.TrimRight(r.BaseURL, "/")
	id := url.PathEscape(strings.TrimSpace(req.ID))
	if req.Kind == TV {
		return fmt.Sprintf("%s/playtv/%s/%s/%s", base, id,
			url.PathEscape(strings.TrimSpace(req.Season)),
			url.PathEscape(strings.TrimSpace(req.Episode)))
	}
	return fmt.Sprintf("%s/play/%s", base, id)
}

// Resolve validates req and asks the lookup service for its stream.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Stream, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	endpoint := r.Endpoint(req)
	log.Infof("resolving %s via %s", req, endpoint)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := r.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer util.Ignore(resp.Body.Close)

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}

	var p payload
	decodeErr := json.Unmarshal(body, &p)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		base := ErrUpstream
		if resp.StatusCode == http.StatusNotFound {
			base = ErrNotFound
		}
		msg := fmt.Sprintf("status %d", resp.StatusCode)
		if decodeErr == nil {
			if m := firstNonEmpty(p.Error, p.Message); m != "" {
				msg = m
			}
		}
		log.Warnf("lookup for %s failed: %s", req, msg)
		return nil, fmt.Errorf("%w: %s", base, msg)
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("%w: malformed payload: %v", ErrUpstream, decodeErr)
	}

	if p.Stream == "" {
		return nil, fmt.Errorf("%w: no stream URL returned", ErrUpstream)
	}

	title := p.MovieName
	if req.Kind == TV {
		title = firstNonEmpty(p.TVName, p.MovieName)
	}

	return &Stream{URL: p.Stream, Title: title}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Package catalog resolves content identifiers to playable stream URLs
// through the remote lookup service.
package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind selects between a feature film and an episodic series.
type Kind string

const (
	Movie Kind = "movie"
	TV    Kind = "tv"
)

// ParseKind accepts "movie" or "tv" in any case.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Movie, TV:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown content type %q", ErrValidation, s)
	}
}

// Request identifies a title. Season and Episode are only read for TV.
type Request struct {
	ID      string `json:"id"`
	Kind    Kind   `json:"kind"`
	Season  string `json:"season,omitempty"`
	Episode string `json:"episode,omitempty"`
}

// Validate rejects requests that cannot be resolved. It never touches the network.
func (r Request) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: please enter an ID", ErrValidation)
	}

	switch r.Kind {
	case Movie:
		return nil
	case TV:
	default:
		return fmt.Errorf("%w: unknown content type %q", ErrValidation, r.Kind)
	}

	if strings.TrimSpace(r.Season) == "" || strings.TrimSpace(r.Episode) == "" {
		return fmt.Errorf("%w: please enter ID, season and episode", ErrValidation)
	}

	for name, v := range map[string]string{"season": r.Season, "episode": r.Episode} {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 1 {
			return fmt.Errorf("%w: %s must be a positive number, got %q", ErrValidation, name, v)
		}
	}

	return nil
}

// String renders the request the way it is shown in history and logs.
func (r Request) String() string {
	if r.Kind == TV {
		return fmt.Sprintf("%s S%sE%s", r.ID, r.Season, r.Episode)
	}
	return r.ID
}

var (
	// ErrValidation marks input rejected before any request was sent.
	ErrValidation = errors.New("invalid request")

	// ErrUpstream marks a non-success status or malformed payload from the lookup service.
	ErrUpstream = errors.New("upstream error")

	// ErrNotFound is an ErrUpstream for a 404 answer.
	ErrNotFound = fmt.Errorf("%w: not found", ErrUpstream)
)

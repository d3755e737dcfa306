package session

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"

	"github.com/grafov/m3u8"
	"github.com/reel-cli/reel/util"
)

const maxManifest = 4 << 20

// fetchPlaylist downloads and decodes an HLS playlist.
func fetchPlaylist(ctx context.Context, client *http.Client, rawURL string) (m3u8.Playlist, m3u8.ListType, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrManifest, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrManifest, err)
	}
	defer util.Ignore(resp.Body.Close)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, 0, fmt.Errorf("%w: %s returned status %d", ErrManifest, rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxManifest))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: read: %v", ErrManifest, err)
	}

	body = bytes.TrimLeft(body, "\ufeff \r\n\t")
	if !bytes.HasPrefix(body, []byte("#EXTM3U")) {
		return nil, 0, fmt.Errorf("%w: %s is not an HLS playlist", ErrManifest, rawURL)
	}

	pl, kind, err := m3u8.DecodeFrom(bufio.NewReader(bytes.NewReader(body)), false)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: parse: %v", ErrManifest, err)
	}
	return pl, kind, nil
}

// pickVariant chooses the highest bandwidth variant not above limit.
// A zero limit means unlimited. When every variant exceeds the limit the
// lowest one is returned.
func pickVariant(variants []*m3u8.Variant, limit uint32) (*m3u8.Variant, bool) {
	candidates := make([]*m3u8.Variant, 0, len(variants))
	for _, v := range variants {
		if v == nil || v.URI == "" || v.Iframe {
			continue
		}
		candidates = append(candidates, v)
	}
	if len(candidates) == 0 {
		return nil, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Bandwidth > candidates[j].Bandwidth
	})

	if limit == 0 {
		return candidates[0], true
	}
	for _, v := range candidates {
		if v.Bandwidth <= limit {
			return v, true
		}
	}
	return candidates[len(candidates)-1], true
}

// resolveRef resolves a playlist reference against the playlist URL.
func resolveRef(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(r).String(), nil
}

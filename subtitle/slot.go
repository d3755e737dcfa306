package subtitle

import (
	"fmt"
	"sync"

	"github.com/reel-cli/reel/constant"
	"github.com/reel-cli/reel/player"
	"github.com/samber/mo"
)

// Publisher turns content into a URL the sink can fetch.
type Publisher interface {
	Create(content []byte, mime string) (string, error)
	Revoke(url string) error
}

// Asset is a published subtitle document.
type Asset struct {
	URL    string
	Lang   string
	Label  string
	Origin string
}

// Track describes the asset as the single default text track.
func (a Asset) Track() player.Track {
	return player.Track{Lang: a.Lang, Label: a.Label, URL: a.URL, Default: true}
}

// Slot holds at most one live object URL. Replacing the content revokes the
// previous URL before the next one is created.
type Slot struct {
	pub     Publisher
	lang    string
	label   string
	mu      sync.Mutex
	current mo.Option[Asset]
}

// NewSlot publishes through pub and tags tracks with lang and label.
func NewSlot(pub Publisher, lang, label string) *Slot {
	return &Slot{pub: pub, lang: lang, label: label}
}

// Replace publishes vtt and returns the new asset.
func (s *Slot) Replace(vtt, origin string) (Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.releaseLocked(); err != nil {
		return Asset{}, err
	}

	url, err := s.pub.Create([]byte(vtt), constant.MimeVTT)
	if err != nil {
		return Asset{}, fmt.Errorf("publish subtitle: %w", err)
	}

	asset := Asset{URL: url, Lang: s.lang, Label: s.label, Origin: origin}
	s.current = mo.Some(asset)
	return asset, nil
}

// Current returns the live asset, if any.
func (s *Slot) Current() mo.Option[Asset] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Release revokes the live URL. Releasing an empty slot is a no-op.
func (s *Slot) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.releaseLocked()
}

func (s *Slot) releaseLocked() error {
	asset, ok := s.current.Get()
	if !ok {
		return nil
	}
	s.current = mo.None[Asset]()
	return s.pub.Revoke(asset.URL)
}

// Package history remembers which titles were loaded, so the last one can be reopened.
package history

import (
	"sort"
	"time"

	"github.com/metafates/gache"
	"github.com/reel-cli/reel/catalog"
	"github.com/reel-cli/reel/filesystem"
	"github.com/reel-cli/reel/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Entry is one remembered title.
type Entry struct {
	Request  catalog.Request `json:"request"`
	Title    string          `json:"title"`
	LoadedAt time.Time       `json:"loaded_at"`
}

func (e *Entry) encode() string {
	return string(e.Request.Kind) + ":" + e.Request.String()
}

func (e *Entry) String() string {
	if e.Title == "" {
		return e.Request.String()
	}
	if e.Request.Kind == catalog.TV {
		return e.Title + " S" + e.Request.Season + "E" + e.Request.Episode
	}
	return e.Title
}

// cacher provides an abstracted, disk-backed registry of loaded titles.
var cacher = gache.New[map[string]*Entry](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns every remembered title keyed by request.
func Get() (map[string]*Entry, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*Entry), nil
	}
	return cached, nil
}

// Recent returns remembered titles, newest first.
func Recent() ([]*Entry, error) {
	saved, err := Get()
	if err != nil {
		return nil, err
	}

	entries := lo.Values(saved)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LoadedAt.After(entries[j].LoadedAt)
	})
	return entries, nil
}

// Latest returns the most recently loaded title, if any.
func Latest() mo.Option[*Entry] {
	entries, err := Recent()
	if err != nil || len(entries) == 0 {
		return mo.None[*Entry]()
	}
	return mo.Some(entries[0])
}

// Save records req as loaded now under title.
func Save(req catalog.Request, title string) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	entry := &Entry{Request: req, Title: title, LoadedAt: time.Now()}
	saved[entry.encode()] = entry

	return cacher.Set(saved)
}

// Remove forgets a single title.
func Remove(entry *Entry) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, entry.encode())
	return cacher.Set(saved)
}

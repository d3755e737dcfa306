package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/reel-cli/reel/constant"
	"github.com/reel-cli/reel/key"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

// ErrInvalidValue is returned by Validate for a value the key cannot hold.
var ErrInvalidValue = errors.New("invalid value")

// Section titles keyed by the part of a key before the first dot.
var Sections = map[string]string{
	"catalog":   "Stream resolution",
	"subtitles": "Subtitles",
	"session":   "Streaming session",
	"player":    "Playback",
	"network":   "Networking",
	"history":   "History",
	"icons":     "Icons",
	"logs":      "Logging",
	"cli":       "Command line",
	"tui":       "Terminal interface",
}

// Section returns the title of the group k belongs to.
func Section(k string) string {
	prefix, _, _ := strings.Cut(k, ".")
	if title, ok := Sections[prefix]; ok {
		return title
	}
	return prefix
}

// mpv flags the player wires itself; overriding them breaks the event channel.
var reservedMpvArgs = []string{
	"--input-ipc-server",
	"--idle",
	"--keep-open",
	"--force-window",
	"--no-terminal",
}

var rules = map[string]func(v any) error{
	key.CatalogBaseURL:           httpURL,
	key.SubtitlesBaseURL:         httpURL,
	key.CatalogTimeout:           intAtLeast(1),
	key.SessionMaxBandwidth:      intAtLeast(0),
	key.PlayerControlsHideDelay:  intAtLeast(0),
	key.PlayerControlsLeaveDelay: intAtLeast(0),
	key.PlayerSkipSeconds:        intAtLeast(1),
	key.PlayerDefaultVolume:      intBetween(0, 100),
	key.TUIItemSpacing:           intBetween(0, 5),
	key.PlayerMpvArgs:            mpvArgs,
	key.SubtitlesLanguage: func(v any) error {
		s, _ := v.(string)
		if _, err := language.Parse(s); err != nil {
			return fmt.Errorf("%q is not a language code", s)
		}
		return nil
	},
	key.LogsLevel: func(v any) error {
		s, _ := v.(string)
		_, err := logrus.ParseLevel(s)
		return err
	},
	key.IconsVariant: oneOf("emoji", "kaomoji", "plain", "squares", "nerd"),
}

// Validate reports whether v is acceptable for k. Keys without a rule accept
// any value of the right type.
func Validate(k string, v any) error {
	rule, ok := rules[k]
	if !ok {
		return nil
	}
	if err := rule(v); err != nil {
		return fmt.Errorf("%w for %s: %w", ErrInvalidValue, k, err)
	}
	return nil
}

func httpURL(v any) error {
	s, _ := v.(string)
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%q is not an http(s) URL", s)
	}
	return nil
}

func intAtLeast(lower int) func(any) error {
	return func(v any) error {
		n, _ := v.(int)
		if n < lower {
			return fmt.Errorf("%d is below %d", n, lower)
		}
		return nil
	}
}

func intBetween(lower, upper int) func(any) error {
	return func(v any) error {
		n, _ := v.(int)
		if n < lower || n > upper {
			return fmt.Errorf("%d is outside %d-%d", n, lower, upper)
		}
		return nil
	}
}

func oneOf(choices ...string) func(any) error {
	return func(v any) error {
		s, _ := v.(string)
		if !lo.Contains(choices, s) {
			return fmt.Errorf("%q is not one of %s", s, strings.Join(choices, ", "))
		}
		return nil
	}
}

func mpvArgs(v any) error {
	args, _ := v.([]string)
	for _, arg := range args {
		if !strings.HasPrefix(arg, "--") {
			return fmt.Errorf("%q is not an mpv option", arg)
		}
		name, _, _ := strings.Cut(arg, "=")
		if lo.Contains(reservedMpvArgs, name) {
			return fmt.Errorf("%s is managed by %s", name, constant.Reel)
		}
	}
	return nil
}

// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/reel-cli/reel/color"
	"github.com/reel-cli/reel/constant"
	"github.com/reel-cli/reel/key"
	"github.com/reel-cli/reel/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Reel + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

// typeName returns the string representation of the field's underlying value type.
func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []int:
		return "[]int"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	// register validates and adds a new configuration field to the global registry.
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		f := Field{Key: k, Value: v, Description: desc}
		Default[k] = f
		EnvExposed = append(EnvExposed, k)
	}

	register(key.CatalogBaseURL, "http://aws.pikai.me", "Base URL of the title lookup service.\nMovies resolve via /play/{id}, series via /playtv/{id}/{season}/{episode}")
	register(key.CatalogTimeout, 30, "Timeout in seconds for lookup service requests")
	register(key.SubtitlesBaseURL, "http://aws.pikai.me", "Base URL of the subtitle search and download service")
	register(key.SubtitlesLanguage, "en", "Preferred subtitle language used for searches and the track tag")
	register(key.SubtitlesSearchCache, true, "Cache subtitle search results for an hour and downloaded files for a week")
	register(key.SessionManaged, true, "Parse HLS manifests and pick a variant before handing it to the player.\nWhen disabled the manifest URL is passed to the player as is")
	register(key.SessionMaxBandwidth, 0, "Upper bound in bits per second for variant selection. 0 means unlimited")
	register(key.PlayerControlsHideDelay, 1000, "Milliseconds of inactivity before the transport controls hide during playback")
	register(key.PlayerControlsLeaveDelay, 50, "Milliseconds before the controls hide after the pointer leaves the player")
	register(key.PlayerDefaultVolume, 80, "Initial volume in percent (0-100)")
	register(key.PlayerSkipSeconds, 10, "Seconds to jump on rewind and forward")
	register(key.PlayerMpvArgs, []string{}, "Extra arguments passed to mpv")
	register(key.NetworkTLSFingerprint, false, "Use a browser TLS fingerprint for lookup service requests")
	register(key.HistorySave, true, "Remember loaded titles so they can be resumed with --continue")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Enable automatic version check")
	register(key.TUIItemSpacing, 1, "Spacing between items in the TUI")
	register(key.TUIMouse, true, "Capture mouse input in the player view (hover, drag to seek)")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))

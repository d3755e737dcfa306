// Package where implements a cross-platform resolver for application-specific filesystem paths.
package where

import (
	"os"
	"path/filepath"

	"github.com/reel-cli/reel/constant"
	"github.com/reel-cli/reel/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath is the environment variable identifier used to override the default configuration directory.
const EnvConfigPath = "REEL_CONFIG_PATH"

// ensureDir guarantees the existence of a directory at the specified path, creating it if necessary.
func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the absolute path to the primary application configuration directory.
// The path can be overridden with the REEL_CONFIG_PATH environment variable.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.Reel))
}

// Cache resolves the absolute path to the application's persistent cache directory.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.Reel))
}

// Logs resolves the absolute path to the directory used for application diagnostic logs.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// History resolves the path to the recently loaded titles file.
func History() string {
	return filepath.Join(Config(), "history.json")
}

// SubtitleSearches resolves the path to the subtitle search result cache.
func SubtitleSearches() string {
	return filepath.Join(Cache(), "subtitle_searches.json")
}

// Downloads resolves the directory holding cached subtitle files.
func Downloads() string {
	return ensureDir(filepath.Join(Cache(), "subtitles"))
}

// Temp resolves a volatile directory for transient artifacts. It is wiped on startup.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.Reel))
}

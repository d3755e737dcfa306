// Package cache keeps downloaded subtitle files on disk for a limited time.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/reel-cli/reel/filesystem"
	"github.com/reel-cli/reel/log"
	"github.com/reel-cli/reel/where"
)

const TTL = 7 * 24 * time.Hour

// GenerateKey derives a file name from a file id and the service it came from.
func GenerateKey(fileID, service string) string {
	sanitized := strings.ToLower(strings.TrimSpace(fileID)) + "@" + strings.TrimRight(service, "/")
	hash := sha256.Sum256([]byte(sanitized))
	return hex.EncodeToString(hash[:])
}

// Read decodes a cached entry into target if it exists and is younger than TTL.
func Read(key string, target any) bool {
	path := filepath.Join(where.Downloads(), key)

	info, err := filesystem.API().Stat(path)
	if err != nil || time.Since(info.ModTime()) > TTL {
		return false
	}

	raw, err := filesystem.API().ReadFile(path)
	if err != nil {
		return false
	}

	return json.Unmarshal(raw, target) == nil
}

// Write stores data under key. The entry is written to a temporary file first
// so a reader never sees a partial one.
func Write(key string, data any) error {
	var (
		path    = filepath.Join(where.Downloads(), key)
		tmpPath = path + ".tmp"
	)

	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if err := filesystem.API().WriteFile(tmpPath, raw, 0o644); err != nil {
		return err
	}

	return filesystem.API().Rename(tmpPath, path)
}

// CollectGarbage removes entries older than TTL.
func CollectGarbage() {
	var removed int

	_ = filesystem.API().Walk(where.Downloads(), func(path string, info fs.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if time.Since(info.ModTime()) > TTL {
			if filesystem.API().Remove(path) == nil {
				removed++
			}
		}
		return nil
	})

	if removed > 0 {
		log.Infof("removed %d expired subtitle downloads", removed)
	}
}

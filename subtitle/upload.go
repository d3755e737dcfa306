package subtitle

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/reel-cli/reel/constant"
	"github.com/reel-cli/reel/filesystem"
)

var (
	// ErrInvalidFile rejects uploads that are not SubRip files. Nothing is read.
	ErrInvalidFile = errors.New("please upload a valid .srt file")

	// ErrConversion marks SubRip content that yields no usable cues.
	ErrConversion = errors.New("subtitle conversion failed")
)

// maxUpload caps a local subtitle file.
const maxUpload = 8 << 20

// CheckExtension accepts only names ending in .srt, in any case.
func CheckExtension(name string) error {
	if !strings.EqualFold(filepath.Ext(name), constant.SubtitleExt) {
		return fmt.Errorf("%w: %s", ErrInvalidFile, filepath.Base(name))
	}
	return nil
}

// LoadFile reads and converts a local SubRip file.
func LoadFile(path string) (string, error) {
	if err := CheckExtension(path); err != nil {
		return "", err
	}

	stat, err := filesystem.API().Stat(path)
	if err != nil {
		return "", err
	}
	if stat.Size() > maxUpload {
		return "", fmt.Errorf("%w: file is larger than %d bytes", ErrConversion, maxUpload)
	}

	raw, err := filesystem.API().ReadFile(path)
	if err != nil {
		return "", err
	}

	return ConvertChecked(raw)
}

// ConvertChecked converts raw SubRip bytes and fails when they are not text
// or contain no cue at all.
func ConvertChecked(raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: file is not UTF-8 text", ErrConversion)
	}

	vtt := Convert(string(raw))
	if CueCount(vtt) == 0 {
		return "", fmt.Errorf("%w: no cues found", ErrConversion)
	}
	return vtt, nil
}

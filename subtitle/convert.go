// Package subtitle finds, fetches, converts and publishes subtitle tracks.
package subtitle

import (
	"regexp"
	"strings"
)

var (
	blockSeparator = regexp.MustCompile(`\r?\n\r?\n`)
	lineSeparator  = regexp.MustCompile(`\r?\n`)
	srtTimestamp   = regexp.MustCompile(`(\d{2}:\d{2}:\d{2}),(\d{3})`)
)

// Header starts every WebVTT document.
const Header = "WEBVTT"

// Convert turns SubRip text into WebVTT. Cue index, timing line and text
// lines are kept verbatim apart from the sub-second separator. Blocks with
// fewer than two lines are dropped.
func Convert(srt string) string {
	srt = strings.TrimPrefix(srt, "\ufeff")

	var b strings.Builder
	b.WriteString(Header)
	b.WriteString("\n\n")

	for _, block := range blockSeparator.Split(srt, -1) {
		if strings.TrimSpace(block) == "" {
			continue
		}

		lines := lineSeparator.Split(strings.Trim(block, "\r\n"), -1)
		if len(lines) < 2 {
			continue
		}

		b.WriteString(lines[0])
		b.WriteByte('\n')
		b.WriteString(srtTimestamp.ReplaceAllString(strings.TrimSpace(lines[1]), "$1.$2"))
		b.WriteByte('\n')
		for _, text := range lines[2:] {
			b.WriteString(text)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	return strings.TrimSpace(b.String())
}

// CueCount reports how many cues a converted document holds.
func CueCount(vtt string) int {
	blocks := blockSeparator.Split(vtt, -1)
	count := 0
	for _, block := range blocks[1:] {
		if strings.TrimSpace(block) != "" {
			count++
		}
	}
	return count
}

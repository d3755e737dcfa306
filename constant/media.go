package constant

// Media types understood by the sink and the subtitle pipeline.
const (
	MimeHLS = "application/vnd.apple.mpegurl"
	MimeVTT = "text/vtt"
	MimeSRT = "application/x-subrip"
)

// SubtitleExt is the only extension accepted for manual subtitle uploads.
const SubtitleExt = ".srt"

// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// DefinedFieldsCount represents the total cardinality of the application configuration schema.
const DefinedFieldsCount = 22

// Stream Resolution - these keys configure the title lookup service.
const (
	CatalogBaseURL = "catalog.base_url"
	CatalogTimeout = "catalog.timeout"
)

// Subtitles - these keys configure the subtitle search service and its cache.
const (
	SubtitlesBaseURL     = "subtitles.base_url"
	SubtitlesLanguage    = "subtitles.language"
	SubtitlesSearchCache = "subtitles.search_cache"
)

// Streaming Session - these keys govern how manifests are attached to the sink.
const (
	SessionManaged      = "session.managed"
	SessionMaxBandwidth = "session.max_bandwidth"
)

// Media Playback - these keys tune the transport controls and the mpv sink.
const (
	PlayerControlsHideDelay  = "player.controls_hide_delay"
	PlayerControlsLeaveDelay = "player.controls_leave_delay"
	PlayerDefaultVolume      = "player.default_volume"
	PlayerSkipSeconds        = "player.skip_seconds"
	PlayerMpvArgs            = "player.mpv_args"
)

// Networking - these keys configure the shared HTTP client.
const (
	NetworkTLSFingerprint = "network.tls_fingerprint"
)

// History Tracking - these keys configure the persistence of recently loaded titles.
const (
	HistorySave = "history.save"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)

// Terminal User Interface (TUI) - these keys define the interactive environment's styling and input.
const (
	TUIItemSpacing = "tui.item_spacing"
	TUIMouse       = "tui.mouse"
)

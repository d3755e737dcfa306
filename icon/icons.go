package icon

// Icon identifies a symbol in the registry.
type Icon int

const (
	Fail Icon = iota + 1
	Success
	Progress
	Search
	Play
	Pause
	Rewind
	Forward
	Mute
	VolumeLow
	VolumeHigh
	Fullscreen
	Subtitle
	Movie
	TV
)

var icons = map[Icon]*iconDef{
	Fail: {
		emoji:   "🥀",
		nerd:    "",
		plain:   "x",
		kaomoji: "(×_×)",
		squares: "🟥",
	},
	Success: {
		emoji:   "🎉",
		nerd:    "",
		plain:   "v",
		kaomoji: "(ᵔ◡ᵔ)",
		squares: "🟩",
	},
	Progress: {
		emoji:   "👾",
		nerd:    "",
		plain:   "~",
		kaomoji: "(・_・;)",
		squares: "🟦",
	},
	Search: {
		emoji:   "🔍",
		nerd:    "",
		plain:   "?",
		kaomoji: "(⊙_⊙)",
		squares: "🟪",
	},
	Play: {
		emoji:   "▶️",
		nerd:    "",
		plain:   ">",
		kaomoji: "(•̀ᴗ•́)و",
		squares: "▶",
	},
	Pause: {
		emoji:   "⏸️",
		nerd:    "",
		plain:   "||",
		kaomoji: "(－_－)",
		squares: "⏸",
	},
	Rewind: {
		emoji:   "⏪",
		nerd:    "",
		plain:   "<<",
		kaomoji: "(<_<)",
		squares: "⏪",
	},
	Forward: {
		emoji:   "⏩",
		nerd:    "",
		plain:   ">>",
		kaomoji: "(>_>)",
		squares: "⏩",
	},
	Mute: {
		emoji:   "🔇",
		nerd:    "",
		plain:   "m",
		kaomoji: "(︶︹︶)",
		squares: "⬛",
	},
	VolumeLow: {
		emoji:   "🔉",
		nerd:    "",
		plain:   "v-",
		kaomoji: "(・ω・)",
		squares: "▫",
	},
	VolumeHigh: {
		emoji:   "🔊",
		nerd:    "",
		plain:   "v+",
		kaomoji: "(≧▽≦)",
		squares: "◻",
	},
	Fullscreen: {
		emoji:   "🖥️",
		nerd:    "",
		plain:   "[]",
		kaomoji: "[◕‿◕]",
		squares: "⬜",
	},
	Subtitle: {
		emoji:   "💬",
		nerd:    "",
		plain:   "cc",
		kaomoji: "(´・ω・`)",
		squares: "🟨",
	},
	Movie: {
		emoji:   "🎬",
		nerd:    "",
		plain:   "M",
		kaomoji: "(⌐■_■)",
		squares: "🟫",
	},
	TV: {
		emoji:   "📺",
		nerd:    "",
		plain:   "T",
		kaomoji: "(☞ﾟヮﾟ)☞",
		squares: "🟧",
	},
}

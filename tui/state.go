package tui

type state int

const (
	formState state = iota
	loadingState
	historyState
	playerState
	subtitlesState
	uploadState
)

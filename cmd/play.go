// Package cmd implements the command-line interface for reel.
package cmd

import (
	"github.com/reel-cli/reel/subtitle"
	"github.com/reel-cli/reel/tui"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(playCmd)

	addRequestFlags(playCmd)
	playCmd.Flags().String("sub", "", "Attach a local SubRip (.srt) file once the stream is loaded")
	playCmd.Flags().Bool("search-sub", false, "Open the subtitle search results once the stream is loaded")
	playCmd.MarkFlagsMutuallyExclusive("sub", "search-sub")

	_ = playCmd.MarkFlagFilename("sub", "srt")
}

// playCmd skips the form and loads a title straight away.
var playCmd = &cobra.Command{
	Use:   "play <id>",
	Short: "Load a title by catalog ID and open the player",
	Example: `  reel play 550
  reel play 1399 --tv -s 1 -e 1 --search-sub
  reel play 550 --sub ~/Downloads/fight.club.srt`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		req, err := requestFrom(cmd, args[0])
		handleErr(err)

		subtitleFile := lo.Must(cmd.Flags().GetString("sub"))
		if subtitleFile != "" {
			handleErr(subtitle.CheckExtension(subtitleFile))
		}

		CheckDependencies()

		handleErr(tui.Run(&tui.Options{
			Request:         mo.Some(req),
			SubtitleFile:    subtitleFile,
			SearchSubtitles: lo.Must(cmd.Flags().GetBool("search-sub")),
		}))
	},
}

// Package cmd implements the command-line interface for reel.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/reel-cli/reel/color"
	"github.com/reel-cli/reel/constant"
	"github.com/reel-cli/reel/filesystem"
	"github.com/reel-cli/reel/icon"
	"github.com/reel-cli/reel/key"
	"github.com/reel-cli/reel/style"
	"github.com/reel-cli/reel/subtitle"
	"github.com/reel-cli/reel/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(subsCmd)
}

// subsCmd groups the subtitle helpers that work without the player.
var subsCmd = &cobra.Command{
	Use:     "subs",
	Aliases: []string{"subtitles"},
	Short:   "Search, download and convert subtitles",
}

// writeSubtitle prints content or stores it at path when one is given.
func writeSubtitle(path, content string) error {
	if path == "" {
		_, err := fmt.Fprint(os.Stdout, content)
		return err
	}

	if err := filesystem.API().WriteFile(path, []byte(content), 0o644); err != nil {
		return err
	}

	fmt.Printf("%s wrote %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), path)
	return nil
}

// fetchSubtitle downloads a file and converts it to WebVTT unless raw is set.
func fetchSubtitle(client *subtitle.Client, fileID string, raw bool) (string, error) {
	srt, err := client.Download(context.Background(), fileID)
	if err != nil {
		return "", err
	}

	if raw {
		return srt, nil
	}
	return subtitle.ConvertChecked([]byte(srt))
}

func init() {
	subsCmd.AddCommand(subsSearchCmd)

	addRequestFlags(subsSearchCmd)
	subsSearchCmd.Flags().StringP("lang", "l", "", "Subtitle language, defaults to the configured one")
	subsSearchCmd.Flags().StringP("filter", "f", "", "Keep only results that fuzzily match this text")
	subsSearchCmd.Flags().BoolP("json", "j", false, "Format the results as a JSON array")
	subsSearchCmd.Flags().BoolP("pick", "p", false, "Choose a result interactively and download it")
	subsSearchCmd.Flags().StringP("output", "o", "", "Where to write the picked subtitle, named after it by default")
	subsSearchCmd.Flags().Bool("srt", false, "Keep the picked subtitle as SubRip instead of WebVTT")
	subsSearchCmd.MarkFlagsMutuallyExclusive("json", "pick")
}

// subsSearchCmd lists subtitles for a title.
var subsSearchCmd = &cobra.Command{
	Use:   "search <id>",
	Short: "Search subtitles for a title",
	Example: `  reel subs search 550 --lang de
  reel subs search 1399 --tv -s 1 -e 1 --filter 720p --pick -o winter.vtt`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		req, err := requestFrom(cmd, args[0])
		handleErr(err)

		language := lo.Must(cmd.Flags().GetString("lang"))
		if language == "" {
			language = viper.GetString(key.SubtitlesLanguage)
		}

		client := subtitle.NewClient()
		candidates, err := client.Search(context.Background(), subtitle.Query{Title: req, Language: language})
		handleErr(err)

		candidates = subtitle.Filter(candidates, lo.Must(cmd.Flags().GetString("filter")))
		if len(candidates) == 0 {
			handleErr(subtitle.ErrNoSubtitles)
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(os.Stdout).Encode(candidates))
			return
		}

		if !lo.Must(cmd.Flags().GetBool("pick")) {
			for _, c := range candidates {
				fmt.Printf("%s %s\n", style.Fg(color.Yellow)(c.FileID.String()), c)
			}
			fmt.Println(style.Faint(util.Quantify(len(candidates), "subtitle", "subtitles") + " found"))
			return
		}

		var index int
		prompt := &survey.Select{
			Message: fmt.Sprintf("Subtitles for %s", req),
			Options: lo.Map(candidates, func(c subtitle.Candidate, _ int) string { return c.String() }),
		}
		handleErr(survey.AskOne(prompt, &index))

		var (
			picked = candidates[index]
			raw    = lo.Must(cmd.Flags().GetBool("srt"))
			output = lo.Must(cmd.Flags().GetString("output"))
		)

		if output == "" {
			ext := ".vtt"
			if raw {
				ext = constant.SubtitleExt
			}
			output = util.SanitizeFilename(picked.Title+" "+picked.Language) + ext
		}

		erase := util.PrintErasable(fmt.Sprintf("%s Downloading %s...", icon.Get(icon.Progress), picked))
		content, err := fetchSubtitle(client, picked.FileID.String(), raw)
		erase()
		handleErr(err)

		handleErr(writeSubtitle(output, content))
	},
}

func init() {
	subsCmd.AddCommand(subsDownloadCmd)

	subsDownloadCmd.Flags().StringP("output", "o", "", "Write the subtitle to a file instead of stdout")
	subsDownloadCmd.Flags().Bool("srt", false, "Keep the subtitle as SubRip instead of WebVTT")
}

// subsDownloadCmd fetches a subtitle file by the id shown in search results.
var subsDownloadCmd = &cobra.Command{
	Use:   "download <file-id>",
	Short: "Download a subtitle file by ID",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		content, err := fetchSubtitle(subtitle.NewClient(), args[0], lo.Must(cmd.Flags().GetBool("srt")))
		handleErr(err)
		handleErr(writeSubtitle(lo.Must(cmd.Flags().GetString("output")), content))
	},
}

func init() {
	subsCmd.AddCommand(subsConvertCmd)

	subsConvertCmd.Flags().StringP("output", "o", "", "Write the WebVTT text to a file instead of stdout")
	subsConvertCmd.Flags().BoolP("write", "w", false, "Write the WebVTT text next to the input file")
	subsConvertCmd.MarkFlagsMutuallyExclusive("output", "write")
}

// subsConvertCmd converts a local SubRip file to WebVTT.
var subsConvertCmd = &cobra.Command{
	Use:   "convert <file.srt>",
	Short: "Convert a SubRip file to WebVTT",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		vtt, err := subtitle.LoadFile(args[0])
		handleErr(err)

		output := lo.Must(cmd.Flags().GetString("output"))
		if lo.Must(cmd.Flags().GetBool("write")) {
			output = filepath.Join(filepath.Dir(args[0]), util.FileStem(args[0])+".vtt")
		}
		handleErr(writeSubtitle(output, vtt))
	},
}

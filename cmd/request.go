// Package cmd implements the command-line interface for reel.
package cmd

import (
	"github.com/reel-cli/reel/catalog"
	"github.com/reel-cli/reel/history"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// addRequestFlags registers the flags that turn a catalog ID into a series episode.
func addRequestFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("tv", "t", false, "Treat the ID as a series and load a single episode")
	cmd.Flags().StringP("season", "s", "", "Season number, requires --tv")
	cmd.Flags().StringP("episode", "e", "", "Episode number, requires --tv")
	cmd.MarkFlagsRequiredTogether("season", "episode")
	cmd.ValidArgsFunction = completeIDs
}

// requestFrom builds and validates the request described by id and the request flags.
func requestFrom(cmd *cobra.Command, id string) (catalog.Request, error) {
	req := catalog.Request{ID: id, Kind: catalog.Movie}

	if lo.Must(cmd.Flags().GetBool("tv")) {
		req.Kind = catalog.TV
		req.Season = lo.Must(cmd.Flags().GetString("season"))
		req.Episode = lo.Must(cmd.Flags().GetString("episode"))
	}

	return req, req.Validate()
}

// completeIDs suggests IDs of recently loaded titles, newest first.
func completeIDs(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	recent, err := history.Recent()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	ids := lo.Uniq(lo.Map(recent, func(e *history.Entry, _ int) string {
		return e.Request.ID + "\t" + e.String()
	}))
	return ids, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveKeepOrder
}

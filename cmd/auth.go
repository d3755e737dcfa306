// Package cmd implements the command-line interface for reel.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/reel-cli/reel/auth"
	"github.com/reel-cli/reel/color"
	"github.com/reel-cli/reel/icon"
	"github.com/reel-cli/reel/style"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(authCmd)
}

// authCmd manages credentials kept in the system keyring.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the subtitle service API key",
	Long: fmt.Sprintf(`Manage the subtitle service API key.

The key is stored in the system keyring. Setting %s overrides it.`, auth.EnvSubtitleKey),
}

func init() {
	authCmd.AddCommand(authSetCmd)
}

var authSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store the subtitle service API key",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		var apiKey string
		prompt := &survey.Password{Message: "Subtitle service API key"}
		handleErr(survey.AskOne(prompt, &apiKey, survey.WithValidator(survey.Required)))

		apiKey = strings.TrimSpace(apiKey)
		if apiKey == "" {
			handleErr(errors.New("the API key must not be empty"))
		}

		handleErr(auth.SetSubtitleKey(apiKey))
		fmt.Printf("%s saved API key\n", style.Fg(color.Green)(icon.Get(icon.Success)))

		if os.Getenv(auth.EnvSubtitleKey) != "" {
			fmt.Printf("%s %s is set and takes precedence\n", style.Fg(color.Yellow)(icon.Get(icon.Fail)), auth.EnvSubtitleKey)
		}
	},
}

func init() {
	authCmd.AddCommand(authClearCmd)
}

var authClearCmd = &cobra.Command{
	Use:     "clear",
	Short:   "Remove the stored subtitle service API key",
	Aliases: []string{"logout"},
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(auth.DeleteSubtitleKey())
		fmt.Printf("%s removed API key\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

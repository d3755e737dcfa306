// Package cmd implements the command-line interface for reel.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"reflect"
	"strings"

	"github.com/reel-cli/reel/catalog"
	"github.com/reel-cli/reel/color"
	"github.com/reel-cli/reel/filesystem"
	"github.com/reel-cli/reel/icon"
	"github.com/reel-cli/reel/open"
	"github.com/reel-cli/reel/style"
	"github.com/reel-cli/reel/subtitle"
	"github.com/reel-cli/reel/util"

	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// resolveOutput is what `resolve --json` prints.
type resolveOutput struct {
	Request catalog.Request `json:"request" jsonschema:"title=Request"`
	Stream  *catalog.Stream `json:"stream" jsonschema:"title=Stream"`
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	addRequestFlags(resolveCmd)
	resolveCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON object")
	resolveCmd.Flags().StringP("output", "o", "", "Write the output to a file instead of stdout")
	resolveCmd.Flags().Bool("open", false, "Hand the stream to the system default handler")
	resolveCmd.Flags().String("with", "", "Hand the stream to this application instead, implies --open")
	resolveCmd.MarkFlagsMutuallyExclusive("json", "open")
}

// resolveCmd asks the lookup service for a stream without opening the player.
var resolveCmd = &cobra.Command{
	Use:   "resolve <id>",
	Short: "Look up the stream URL of a title without playing it",
	Example: `  reel resolve 550
  reel resolve 1399 --tv -s 1 -e 1 --json`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		req, err := requestFrom(cmd, args[0])
		handleErr(err)

		asJson := lo.Must(cmd.Flags().GetBool("json"))

		erase := func() {}
		if !asJson {
			erase = util.PrintErasable(fmt.Sprintf("%s Resolving %s...", icon.Get(icon.Progress), req))
		}
		stream, err := catalog.NewResolver().Resolve(context.Background(), req)
		erase()
		handleErr(err)

		if app := lo.Must(cmd.Flags().GetString("with")); app != "" || lo.Must(cmd.Flags().GetBool("open")) {
			handleErr(open.Start(stream.URL, app))
			fmt.Printf("%s opened %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), style.Fg(color.Purple)(stream.Title))
			return
		}

		var out io.Writer = os.Stdout
		if path := lo.Must(cmd.Flags().GetString("output")); path != "" {
			file, err := filesystem.API().Create(path)
			handleErr(err)
			defer util.Ignore(file.Close)
			out = file
		}

		if asJson {
			handleErr(json.NewEncoder(out).Encode(resolveOutput{Request: req, Stream: stream}))
			return
		}

		_, err = fmt.Fprintf(out, "%s\n%s\n", style.Fg(color.Purple)(stream.Title), stream.URL)
		handleErr(err)
	},
}

func init() {
	resolveCmd.AddCommand(resolveSchemaCmd)

	resolveSchemaCmd.Flags().BoolP("subtitles", "S", false, "Generate the JSON Schema for subtitle search results instead")
}

// resolveSchemaCmd describes the JSON printed by resolve and subs search.
var resolveSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate JSON schemas for the structured outputs",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.Namer = func(t reflect.Type) string {
			name := t.Name()
			switch strings.ToLower(name) {
			case "request", "stream", "candidate":
				return path.Base(t.PkgPath()) + "." + name
			}

			return name
		}

		var schema *jsonschema.Schema

		switch {
		case lo.Must(cmd.Flags().GetBool("subtitles")):
			schema = reflector.Reflect([]subtitle.Candidate{})
		default:
			schema = reflector.Reflect(&resolveOutput{})
		}

		handleErr(json.NewEncoder(os.Stdout).Encode(schema))
	},
}

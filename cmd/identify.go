package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/kinotag-cli/kinotag/color"
	"github.com/kinotag-cli/kinotag/extractor"
	"github.com/kinotag-cli/kinotag/icon"
	"github.com/kinotag-cli/kinotag/lookup"
	"github.com/kinotag-cli/kinotag/page"
	"github.com/kinotag-cli/kinotag/resolver"
	"github.com/kinotag-cli/kinotag/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(identifyCmd)

	identifyCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
	identifyCmd.Flags().Bool("schema", false, "Print the JSON schema of the output and exit")
	identifyCmd.Flags().BoolP("extract-only", "e", false, "Extract page information without querying the catalog")
	identifyCmd.Flags().StringP("file", "f", "", "Read the page HTML from a file ('-' for stdin) instead of fetching the URL")

	identifyCmd.SetOut(os.Stdout)
}

// identifyCmd performs a single identification attempt for one page.
var identifyCmd = &cobra.Command{
	Use:     "identify [url]",
	Short:   "Identify the content shown on a single streaming page",
	Example: "  kinotag identify https://hd.kinopoisk.ru/film/46c5df252dc1a790b82d1a00fcf44812",
	Args:    cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var (
			asJson      = lo.Must(cmd.Flags().GetBool("json"))
			schema      = lo.Must(cmd.Flags().GetBool("schema"))
			extractOnly = lo.Must(cmd.Flags().GetBool("extract-only"))
			file        = lo.Must(cmd.Flags().GetString("file"))
		)

		if schema {
			target := any(&resolver.Resolved{})
			if extractOnly {
				target = &page.ContentInfo{}
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(jsonschema.Reflect(target)))
			return
		}

		if len(args) == 0 {
			handleErr(errors.New("url is required"))
		}
		rawURL := args[0]

		snap, err := fetchSnapshot(rawURL, file)
		handleErr(err)

		info, ok := extractor.Extract(snap).Get()
		if !ok {
			handleErr(fmt.Errorf("no content recognized at %s", rawURL))
		}

		if extractOnly {
			printIdentify(cmd, asJson, info, nil)
			return
		}

		res, err := resolver.New(lookup.NewClient()).Resolve(info)
		if errors.Is(err, resolver.ErrNotFound) {
			handleErr(fmt.Errorf("%q was not found in the catalog", info.Title))
		}
		handleErr(err)

		printIdentify(cmd, asJson, info, res)
	},
}

func fetchSnapshot(rawURL, file string) (*page.Snapshot, error) {
	if file == "" {
		return page.Fetch(rawURL)
	}

	var (
		html []byte
		err  error
	)
	if file == "-" {
		html, err = io.ReadAll(os.Stdin)
	} else {
		html, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, err
	}

	return page.FromHTML(rawURL, string(html))
}

func printIdentify(cmd *cobra.Command, asJson bool, info page.ContentInfo, res *resolver.Resolved) {
	if asJson {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		if res != nil {
			handleErr(encoder.Encode(res))
		} else {
			handleErr(encoder.Encode(info))
		}
		return
	}

	kindIcon := icon.Get(icon.Film)
	if info.IsSeries {
		kindIcon = icon.Get(icon.Series)
	}
	cmd.Printf("%s %s\n", kindIcon, style.Bold(info.String()))

	if info.NoEpisodeDetected {
		cmd.Println(style.Faint("Episode number could not be detected"))
	}

	if res == nil {
		return
	}

	cmd.Printf("%s Catalog id %s\n", icon.Get(icon.Success), style.Fg(color.Purple)(res.CanonicalID))

	if res.CurrentEpisodeWatched || (!res.IsSeries && res.Watched) {
		cmd.Printf("%s Watched\n", icon.Get(icon.Watched))
	}

	if season, ok := res.NextUnwatchedSeason.Get(); ok {
		if episode, eok := res.NextUnwatchedEpisode.Get(); eok {
			cmd.Println(style.Faint(fmt.Sprintf("Next unwatched: S%dE%d", season, episode)))
		}
	}

	if res.Degraded {
		cmd.Println(style.Fg(color.Yellow)("Catalog state could not be verified"))
	}
}

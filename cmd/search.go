package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/kinotag-cli/kinotag/extractor"
	"github.com/kinotag-cli/kinotag/history"
	"github.com/kinotag-cli/kinotag/icon"
	"github.com/kinotag-cli/kinotag/key"
	"github.com/kinotag-cli/kinotag/lookup"
	"github.com/kinotag-cli/kinotag/page"
	"github.com/kinotag-cli/kinotag/query"
	"github.com/kinotag-cli/kinotag/style"
	"github.com/kinotag-cli/kinotag/util"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().BoolP("series", "s", false, "Search series only")
	searchCmd.Flags().BoolP("film", "f", false, "Search films only")
	searchCmd.Flags().BoolP("json", "j", false, "Print all candidates as JSON instead of picking one")
	searchCmd.Flags().StringP("bind", "b", "", "Bind the picked result to a page URL in the resolution cache")
	searchCmd.MarkFlagsMutuallyExclusive("series", "film")

	searchCmd.SetOut(os.Stdout)
}

// searchCmd searches the catalog by keyword and lets the user pick the match
// the automatic identification could not make on its own.
var searchCmd = &cobra.Command{
	Use:     "search [query]",
	Short:   "Search the catalog manually and optionally bind the result to a page",
	Example: "  kinotag search проект х --bind https://www.ivi.ru/watch/231991",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			seriesOnly = lo.Must(cmd.Flags().GetBool("series"))
			filmOnly   = lo.Must(cmd.Flags().GetBool("film"))
			asJson     = lo.Must(cmd.Flags().GetBool("json"))
			bind       = lo.Must(cmd.Flags().GetString("bind"))
		)

		keyword := strings.TrimSpace(strings.Join(args, " "))
		if keyword == "" {
			handleErr(survey.AskOne(&survey.Input{
				Message: "Search the catalog:",
				Suggest: query.SuggestMany,
			}, &keyword, survey.WithValidator(survey.Required)))
		}

		kind := mo.None[lookup.Kind]()
		if seriesOnly {
			kind = mo.Some(lookup.KindSeries)
		}
		if filmOnly {
			kind = mo.Some(lookup.KindFilm)
		}

		erase := util.PrintErasable(fmt.Sprintf("%s Searching catalog..", icon.Get(icon.Search)))
		candidates, err := lookup.NewClient().SearchAll(keyword, kind)
		erase()
		handleErr(err)

		if len(candidates) == 0 {
			handleErr(fmt.Errorf("nothing found for %q", keyword))
		}
		handleErr(query.Remember(keyword, 1))

		if limit := viper.GetInt(key.SearchResultLimit); limit > 0 && len(candidates) > limit {
			candidates = candidates[:limit]
		}

		if asJson {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(candidates))
			return
		}

		picked := pickCandidate(keyword, candidates)
		cmd.Printf(
			"%s %s %s\n",
			icon.Get(icon.Success),
			style.Bold(picked.Record.Title),
			style.Faint("("+picked.CanonicalID+")"),
		)

		if bind != "" {
			handleErr(bindCandidate(bind, picked))
			cmd.Printf("%s bound to %s\n", icon.Get(icon.Success), bind)
		}
	},
}

func pickCandidate(keyword string, candidates []lookup.Candidate) lookup.Candidate {
	options := lo.Map(candidates, func(c lookup.Candidate, _ int) string {
		label := c.Record.Title
		if c.Record.TitleOriginal != "" && c.Record.TitleOriginal != c.Record.Title {
			label += " / " + c.Record.TitleOriginal
		}
		if c.Record.IsSeries {
			label += " " + icon.Get(icon.Series)
		}
		return label
	})

	var index int
	handleErr(survey.AskOne(&survey.Select{
		Message: fmt.Sprintf("%s for %q:", util.Quantify(len(candidates), "result", "results"), keyword),
		Options: options,
	}, &index))

	return candidates[index]
}

// bindCandidate records a user-confirmed page-to-catalog association, so the
// next automatic attempt on that page starts from a cache hit.
func bindCandidate(rawURL string, picked lookup.Candidate) error {
	snap, err := page.Fetch(rawURL)
	if err != nil {
		return err
	}

	info, ok := extractor.Extract(snap).Get()
	if !ok {
		return errors.New("the bound page has no recognizable content")
	}

	return history.Save(info, picked.CanonicalID)
}

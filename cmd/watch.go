package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/kinotag-cli/kinotag/detector"
	"github.com/kinotag-cli/kinotag/lookup"
	"github.com/kinotag-cli/kinotag/resolver"
	"github.com/kinotag-cli/kinotag/widget"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

// watchCmd runs the continuous detection loop against one page and presents
// results in the interactive widget.
var watchCmd = &cobra.Command{
	Use:     "watch [url]",
	Short:   "Watch a streaming page and identify whatever starts playing on it",
	Example: "  kinotag watch https://www.ivi.ru/watch/231991",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		service := lookup.NewClient()
		session := detector.NewSession(resolver.New(service), service)

		handleErr(widget.Run(ctx, &widget.Options{
			Resolver: resolver.New(service),
			Service:  service,
			Session:  session,
			Source:   detector.NewPollSource(args[0]),
		}))
	},
}

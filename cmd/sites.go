package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/kinotag-cli/kinotag/color"
	"github.com/kinotag-cli/kinotag/constant"
	"github.com/kinotag-cli/kinotag/filesystem"
	"github.com/kinotag-cli/kinotag/icon"
	"github.com/kinotag-cli/kinotag/sites"
	"github.com/kinotag-cli/kinotag/sites/custom"
	"github.com/kinotag-cli/kinotag/style"
	"github.com/kinotag-cli/kinotag/util"
	"github.com/kinotag-cli/kinotag/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sitesCmd)
	sitesCmd.SetOut(os.Stdout)
}

// sitesCmd is the parent command for inspecting and managing site rules.
var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "Manage the table of supported streaming sites",
	Run: func(cmd *cobra.Command, args []string) {
		sitesListCmd.Run(sitesListCmd, args)
	},
}

func init() {
	sitesCmd.AddCommand(sitesListCmd)
	sitesListCmd.SetOut(os.Stdout)
}

// sitesListCmd prints every registered rule and the hostnames it claims.
var sitesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the registered site rules in match order",
	Run: func(cmd *cobra.Command, args []string) {
		for _, rule := range sites.All() {
			name := style.Bold(rule.Name)
			if rule.Custom {
				name += " " + style.Fg(color.Orange)("(custom)")
			}

			cmd.Printf("%s %s\n", icon.Get(icon.Film), name)
			cmd.Println(style.Faint("  " + strings.Join(rule.Domains, ", ")))
		}
	},
}

func init() {
	sitesCmd.AddCommand(sitesNewCmd)
	sitesNewCmd.Flags().StringP("name", "n", "", "Name of the new rule")
	sitesNewCmd.Flags().StringP("author", "a", "", "Author of the new rule")
	lo.Must0(sitesNewCmd.MarkFlagRequired("name"))
}

// sitesNewCmd scaffolds a Lua rule script in the rules directory.
var sitesNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new custom Lua site rule from a template",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			name   = lo.Must(cmd.Flags().GetString("name"))
			author = lo.Must(cmd.Flags().GetString("author"))
		)

		if author == "" {
			author = os.Getenv("USER")
		}

		funcs := template.FuncMap{
			"repeat": strings.Repeat,
			"plus":   func(a, b int) int { return a + b },
			"max":    util.Max[int],
		}

		tmpl := lo.Must(template.New("rule").Funcs(funcs).Parse(constant.RuleTemplate))

		path := filepath.Join(where.Rules(), util.SanitizeFilename(name)+".lua")
		file, err := filesystem.API().Create(path)
		handleErr(err)
		defer util.Ignore(file.Close)

		handleErr(tmpl.Execute(file, struct {
			Name, Author                                  string
			DomainsFn, TitleFn, IsValidPageFn, SeasonEpisodeFn string
		}{
			Name:            name,
			Author:          author,
			DomainsFn:       constant.RuleDomainsFn,
			TitleFn:         constant.RuleTitleFn,
			IsValidPageFn:   constant.RuleIsValidPageFn,
			SeasonEpisodeFn: constant.RuleSeasonEpisodeFn,
		}))

		cmd.Printf("%s created %s\n", icon.Get(icon.Success), path)
	},
}

func init() {
	sitesCmd.AddCommand(sitesCheckCmd)
}

// sitesCheckCmd loads a Lua rule file and reports whether it is usable.
var sitesCheckCmd = &cobra.Command{
	Use:     "check [file]",
	Short:   "Validate a custom Lua site rule file",
	Args:    cobra.ExactArgs(1),
	Example: "  kinotag sites check ./myrule.lua",
	Run: func(cmd *cobra.Command, args []string) {
		rule, err := custom.Load(args[0])
		handleErr(err)

		fmt.Printf(
			"%s %s is valid, claims %s\n",
			icon.Get(icon.Success),
			style.Bold(rule.Name),
			style.Faint(strings.Join(rule.Domains, ", ")),
		)
	},
}

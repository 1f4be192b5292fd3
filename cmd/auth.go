package cmd

import (
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/kinotag-cli/kinotag/auth"
	"github.com/kinotag-cli/kinotag/icon"
	"github.com/kinotag-cli/kinotag/style"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(authCmd)
}

// authCmd manages the catalog service access token in the system keyring.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the catalog service access token",
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authLoginCmd.Flags().StringP("token", "t", "", "The access token (prompted when omitted)")
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the catalog access token in the system keyring",
	Run: func(cmd *cobra.Command, args []string) {
		token, _ := cmd.Flags().GetString("token")

		if token == "" {
			handleErr(survey.AskOne(&survey.Password{
				Message: "Catalog access token:",
			}, &token, survey.WithValidator(survey.Required)))
		}

		handleErr(auth.SetToken(token))
		cmd.Printf("%s token stored\n", icon.Get(icon.Success))
	},
}

func init() {
	authCmd.AddCommand(authStatusCmd)
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a catalog access token is stored",
	Run: func(cmd *cobra.Command, args []string) {
		token, err := auth.GetToken()
		if err != nil || token == "" {
			handleErr(errors.New("no token stored, run 'kinotag auth login'"))
		}

		cmd.Printf("%s token present %s\n", icon.Get(icon.Success), style.Faint("(hidden)"))
	},
}

func init() {
	authCmd.AddCommand(authLogoutCmd)
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the catalog access token from the system keyring",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(auth.DeleteToken())
		cmd.Printf("%s token removed\n", icon.Get(icon.Success))
	},
}

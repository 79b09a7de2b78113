package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var signinCmd = &cobra.Command{
	Use:   "signin <name>",
	Short: "Sign in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := current.Sessions.SignIn(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s\n", s.User)
		return nil
	},
}

var signoutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Sign out",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !current.Sessions.SignedIn() {
			return fmt.Errorf("not signed in")
		}
		if err := current.Sessions.SignOut(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, ok, err := current.Sessions.Current()
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "not signed in")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (since %s)\n", s.User, s.SignedInAt.Format("2006-01-02 15:04"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(signinCmd, signoutCmd, whoamiCmd)
}

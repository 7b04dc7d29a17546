package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// EnvPassword supplies the login password when --password is omitted.
const EnvPassword = "TICKETCTL_PASSWORD"

func newLoginCommand(opts *options) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a bearer token",
		Long: `Authenticate with email and password and print the token, suitable for
export TICKETCTL_TOKEN=$(ticketctl login --email ...).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(EnvPassword)
			}
			if email == "" || password == "" {
				return errors.New("email and password are required")
			}
			ctx, cancel := opts.context(cmd)
			defer cancel()

			session, err := opts.client().Login(ctx, email, password)
			if err != nil {
				return err
			}
			if opts.output == outputJSON {
				return printJSON(opts.out, session)
			}
			_, err = fmt.Fprintln(opts.out, session.Token)
			return err
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (env "+EnvPassword+")")
	return cmd
}

// Package cli implements the ticketctl command tree.
package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/minijira/issue-tracker/internal/client"
)

// Environment variables read when the matching flag is not given.
const (
	EnvAPI   = "TICKETCTL_API"
	EnvToken = "TICKETCTL_TOKEN"
)

const defaultAPI = "http://localhost:4000/api"

type options struct {
	apiURL  string
	token   string
	timeout time.Duration
	output  string
	out     io.Writer
}

// NewRootCommand builds the ticketctl command tree writing to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	opts := &options{out: out}

	cmd := &cobra.Command{
		Use:           "ticketctl",
		Short:         "Issue tracker client",
		Long:          `ticketctl lists, creates and edits tickets against the issue tracker API, and opens an interactive board.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.resolve(cmd)
			if opts.output != outputTable && opts.output != outputJSON {
				return errors.New("--output must be table or json")
			}
			return nil
		},
	}
	cmd.SetOut(out)

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.apiURL, "api", defaultAPI, "API base URL (env "+EnvAPI+")")
	flags.StringVar(&opts.token, "token", "", "bearer token (env "+EnvToken+")")
	flags.DurationVar(&opts.timeout, "timeout", 15*time.Second, "request timeout")
	flags.StringVarP(&opts.output, "output", "o", outputTable, "output format: table or json")

	cmd.AddCommand(
		newLoginCommand(opts),
		newTicketsCommand(opts),
		newUsersCommand(opts),
		newProjectsCommand(opts),
		newBoardCommand(opts),
		newWatchCommand(opts),
	)
	return cmd
}

// resolve fills flags left at their defaults from the environment.
func (o *options) resolve(cmd *cobra.Command) {
	flags := cmd.Flags()
	if !flags.Changed("api") {
		if v := os.Getenv(EnvAPI); v != "" {
			o.apiURL = v
		}
	}
	if !flags.Changed("token") {
		if v := os.Getenv(EnvToken); v != "" {
			o.token = v
		}
	}
}

func (o *options) client() *client.Client {
	return client.New(o.apiURL, client.WithToken(o.token), client.WithTimeout(o.timeout))
}

func (o *options) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), o.timeout)
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/minijira/issue-tracker/internal/store"
	"github.com/minijira/issue-tracker/internal/tui"
)

func newBoardCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "tui",
		Aliases: []string{"board"},
		Short:   "Open the interactive ticket board",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(cmd.Context(), store.New(opts.client()))
		},
	}
}

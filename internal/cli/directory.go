package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

func newUsersCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List users, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			users, err := opts.client().ListUsers(ctx)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(users))
			for _, u := range users {
				rows = append(rows, []string{strconv.FormatInt(u.ID, 10), u.Name, u.Email, string(u.Role)})
			}
			return opts.print(users, []string{"ID", "Name", "Email", "Role"}, rows)
		},
	}
}

func newProjectsCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			projects, err := opts.client().ListProjects(ctx)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(projects))
			for _, p := range projects {
				rows = append(rows, []string{strconv.FormatInt(p.ID, 10), p.Key, p.Name})
			}
			return opts.print(projects, []string{"ID", "Key", "Name"}, rows)
		},
	}
	cmd.AddCommand(newProjectsCreateCommand(opts))
	return cmd
}

func newProjectsCreateCommand(opts *options) *cobra.Command {
	var name, key string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			project, err := opts.client().CreateProject(ctx, name, key)
			if err != nil {
				return err
			}
			return opts.print(project, []string{"ID", "Key", "Name"}, [][]string{
				{strconv.FormatInt(project.ID, 10), project.Key, project.Name},
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "project name")
	cmd.Flags().StringVar(&key, "key", "", "short project key, e.g. WEB")
	return cmd
}

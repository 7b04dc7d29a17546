package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minijira/issue-tracker/internal/api/dto"
	"github.com/minijira/issue-tracker/internal/client"
	"github.com/minijira/issue-tracker/internal/store"
)

var ticketHeaders = []string{"ID", "Project", "Title", "Assignee", "Priority", "Status", "Updated"}

func newTicketsCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tickets",
		Aliases: []string{"ticket", "t"},
		Short:   "List and edit tickets",
	}
	cmd.AddCommand(
		newTicketsListCommand(opts),
		newTicketsGetCommand(opts),
		newTicketsCreateCommand(opts),
		newTicketsUpdateCommand(opts),
		newTicketsDeleteCommand(opts),
	)
	return cmd
}

func newTicketsListCommand(opts *options) *cobra.Command {
	var filters client.TicketFilters
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tickets, most recently updated first",
		Long: `List tickets matching every given filter. --assignee takes a user id or
"unassigned"; --search matches title or description.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			s := store.New(opts.client(), store.WithFilters(filters))
			if err := s.LoadLookups(ctx); err != nil {
				return err
			}
			if err := s.Refresh(ctx); err != nil {
				return err
			}
			tickets := s.Tickets()
			rows := make([][]string, 0, len(tickets))
			for _, t := range tickets {
				rows = append(rows, ticketRow(s, t))
			}
			return opts.print(tickets, ticketHeaders, rows)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&filters.Search, "search", "", "substring of title or description")
	flags.StringVar(&filters.Status, "status", "", "Open, In Progress, Resolved or Closed")
	flags.StringVar(&filters.Priority, "priority", "", "Low, Medium or High")
	flags.StringVar(&filters.AssigneeID, "assignee", "", `user id or "unassigned"`)
	flags.StringVar(&filters.ProjectID, "project", "", "project id")
	return cmd
}

func newTicketsGetCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := opts.context(cmd)
			defer cancel()

			detail, err := opts.client().GetTicket(ctx, id)
			if err != nil {
				return err
			}
			if opts.output == outputJSON {
				return printJSON(opts.out, detail)
			}
			project := strconv.FormatInt(detail.ProjectID, 10)
			if detail.Project != nil {
				project = detail.Project.Key + " " + detail.Project.Name
			}
			assignee := "Unassigned"
			if detail.Assignee != nil {
				assignee = detail.Assignee.Name
			}
			return renderTable(opts.out, []string{"Field", "Value"}, [][]string{
				{"ID", strconv.FormatInt(detail.ID, 10)},
				{"Title", detail.Title},
				{"Description", detail.Description},
				{"Project", project},
				{"Assignee", assignee},
				{"Priority", string(detail.Priority)},
				{"Status", string(detail.Status)},
				{"Created", formatTime(detail.CreatedAt)},
				{"Updated", formatTime(detail.UpdatedAt)},
			})
		},
	}
}

func newTicketsCreateCommand(opts *options) *cobra.Command {
	var (
		in       client.NewTicket
		assignee string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a ticket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if assignee != "" {
				id, err := parseID(assignee)
				if err != nil {
					return fmt.Errorf("--assignee: %w", err)
				}
				in.AssigneeID = &id
			}
			ctx, cancel := opts.context(cmd)
			defer cancel()

			created, err := opts.client().CreateTicket(ctx, in)
			if err != nil {
				return err
			}
			return opts.printTicket(created)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&in.Title, "title", "", "ticket title")
	flags.StringVar(&in.Description, "description", "", "ticket description")
	flags.Int64Var(&in.ProjectID, "project", 0, "project id")
	flags.StringVar(&assignee, "assignee", "", "assignee user id")
	flags.StringVar(&in.Priority, "priority", "", "Low, Medium or High (default Medium)")
	return cmd
}

func newTicketsUpdateCommand(opts *options) *cobra.Command {
	var title, description, priority, status, assignee string
	var projectID int64
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update some fields of a ticket",
		Long:  `Only the given flags are sent. --assignee none (or "") unassigns the ticket.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			var patch client.TicketPatch
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("priority") {
				patch.Priority = &priority
			}
			if flags.Changed("status") {
				patch.Status = &status
			}
			if flags.Changed("project") {
				patch.ProjectID = &projectID
			}
			if flags.Changed("assignee") {
				patch.Assignee, err = parseAssignee(assignee)
				if err != nil {
					return err
				}
			}
			if patch == (client.TicketPatch{}) {
				return fmt.Errorf("nothing to update")
			}

			ctx, cancel := opts.context(cmd)
			defer cancel()
			updated, err := opts.client().UpdateTicket(ctx, id, patch)
			if err != nil {
				return err
			}
			return opts.printTicket(updated)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&title, "title", "", "new title")
	flags.StringVar(&description, "description", "", "new description")
	flags.StringVar(&priority, "priority", "", "Low, Medium or High")
	flags.StringVar(&status, "status", "", "Open, In Progress, Resolved or Closed")
	flags.StringVar(&assignee, "assignee", "", `user id, or "none" to unassign`)
	flags.Int64Var(&projectID, "project", 0, "project id")
	return cmd
}

func newTicketsDeleteCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := opts.context(cmd)
			defer cancel()

			deleted, err := opts.client().DeleteTicket(ctx, id)
			if err != nil {
				return err
			}
			if opts.output == outputJSON {
				return printJSON(opts.out, deleted)
			}
			_, err = fmt.Fprintf(opts.out, "deleted ticket %d %q\n", deleted.ID, deleted.Title)
			return err
		},
	}
}

func (o *options) printTicket(t *dto.TicketResponse) error {
	assignee := "Unassigned"
	if t.AssigneeID != nil {
		assignee = strconv.FormatInt(*t.AssigneeID, 10)
	}
	return o.print(t, ticketHeaders, [][]string{{
		strconv.FormatInt(t.ID, 10),
		strconv.FormatInt(t.ProjectID, 10),
		t.Title,
		assignee,
		string(t.Priority),
		string(t.Status),
		formatTime(t.UpdatedAt),
	}})
}

func ticketRow(s *store.Store, t dto.TicketResponse) []string {
	return []string{
		strconv.FormatInt(t.ID, 10),
		s.ProjectKey(t.ProjectID),
		t.Title,
		s.UserName(t.AssigneeID),
		string(t.Priority),
		string(t.Status),
		formatTime(t.UpdatedAt),
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func parseAssignee(raw string) (dto.OptionalID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "none") {
		return dto.ClearedID(), nil
	}
	id, err := parseID(raw)
	if err != nil {
		return dto.OptionalID{}, fmt.Errorf("--assignee: %w", err)
	}
	return dto.NewOptionalID(id), nil
}

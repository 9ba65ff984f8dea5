package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/aretw0/conduit/pkg/domain"
	"github.com/spf13/cobra"
)

func newProjectsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List the projects visible to you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, closeFn, err := opts.openClient(ctx, cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			current, _ := client.Session().Restore(ctx)
			projects, err := client.Entities().LoadProjects(ctx)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, p := range projects {
				marker := " "
				if current != nil && current.ID == p.ID {
					marker = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", marker, p.ID, p.Name, p.Description)
			}
			return tw.Flush()
		},
	}
}

func newUseCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "use PROJECT_ID",
		Short: "Select the active project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, closeFn, err := opts.openClient(ctx, cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			projects, err := client.Entities().LoadProjects(ctx)
			if err != nil {
				return err
			}
			i := slices.IndexFunc(projects, func(p domain.Project) bool { return p.ID == args[0] })
			if i < 0 {
				return fmt.Errorf("project %q not found", args[0])
			}
			if err := client.Session().SelectProject(ctx, projects[i]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Using project %s (%s)\n", projects[i].ID, projects[i].Name)
			return nil
		},
	}
}

func newItemsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Work with the questions, risks, actions and decisions registers",
	}

	list := &cobra.Command{
		Use:       "list KIND",
		Short:     "List a register of the active project",
		Args:      cobra.ExactArgs(1),
		ValidArgs: kindNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseItemKind(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			client, closeFn, err := opts.openClient(ctx, cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			client.Session().Restore(ctx)
			items, err := client.Entities().LoadItems(ctx, kind)
			if err != nil {
				return err
			}
			return printItems(cmd.OutOrStdout(), items)
		},
	}

	var item domain.Item
	add := &cobra.Command{
		Use:   "add KIND",
		Short: "Create an item in the active project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseItemKind(args[0])
			if err != nil {
				return err
			}
			item.Kind = kind

			ctx := cmd.Context()
			client, closeFn, err := opts.openClient(ctx, cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			client.Session().Restore(ctx)
			created, err := client.Entities().CreateItem(ctx, item)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), created.ID)
			return nil
		},
	}
	af := add.Flags()
	af.StringVar(&item.Title, "title", "", "Item title")
	af.StringVar(&item.Description, "description", "", "Item description")
	af.StringVar(&item.Status, "status", "open", "Item status")
	af.StringVar(&item.Owner, "owner", "", "Owner")
	af.StringVar(&item.Priority, "priority", "", "Priority")
	af.StringVar(&item.DueDate, "due", "", "Due date (YYYY-MM-DD)")

	rm := &cobra.Command{
		Use:   "rm KIND ID",
		Short: "Delete an item from the active project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseItemKind(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			client, closeFn, err := opts.openClient(ctx, cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			client.Session().Restore(ctx)
			return client.Entities().DeleteItem(ctx, kind, args[1])
		},
	}

	cmd.AddCommand(list, add, rm)
	return cmd
}

func kindNames() []string {
	names := make([]string, 0, len(domain.ItemKinds))
	for _, k := range domain.ItemKinds {
		names = append(names, string(k))
	}
	return names
}

func printItems(w io.Writer, items []domain.Item) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tOWNER")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.ID, it.Title, strings.ToUpper(it.Status), it.Owner)
	}
	return tw.Flush()
}

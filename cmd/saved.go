package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSavedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saved",
		Short: "Manage saved queries",
	}

	var (
		page, pageSize int
		search         string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List saved queries by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			saved, err := a.services.GetLibraryService().ListSaved(cmd.Context(), page, pageSize, search)
			if err != nil {
				return err
			}
			return printSaved(cmd.OutOrStdout(), saved)
		},
	}
	list.Flags().IntVar(&page, "page", 1, "page number")
	list.Flags().IntVar(&pageSize, "page-size", 20, "entries per page")
	list.Flags().StringVar(&search, "search", "", "only names containing this text")

	var (
		session string
		pages   int
	)
	run := &cobra.Command{
		Use:   "run <name>",
		Short: "Run a saved query against a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			qs, err := a.services.OpenQuery(ctx, session)
			if err != nil {
				return err
			}
			first, err := qs.ReplaySaved(ctx, args[0])
			if err != nil {
				return err
			}
			return printMore(ctx, qs, first, pages, cmd.OutOrStdout())
		},
	}
	run.Flags().StringVarP(&session, "session", "s", "", "session id")
	run.Flags().IntVarP(&pages, "pages", "p", 1, "number of pages to fetch")
	_ = run.MarkFlagRequired("session")

	show := &cobra.Command{
		Use:   "show <name>",
		Short: "Print a saved query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			saved, err := a.services.GetLibraryService().GetSaved(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:        %s\n", saved.Name)
			fmt.Fprintf(out, "Description: %s\n", saved.Description)
			fmt.Fprintf(out, "Query:       %s\n", describeParams(&saved.QueryParameters))
			return nil
		},
	}

	rename := &cobra.Command{
		Use:   "rename <name> <new-name>",
		Short: "Rename a saved query",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			return a.services.GetLibraryService().RenameSaved(cmd.Context(), args[0], args[1])
		},
	}

	describe := &cobra.Command{
		Use:   "describe <name> <description>",
		Short: "Change the description of a saved query",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			return a.services.GetLibraryService().DescribeSaved(cmd.Context(), args[0], args[1])
		},
	}

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			return a.services.GetLibraryService().DeleteSaved(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(list, run, show, rename, describe, del)
	return cmd
}

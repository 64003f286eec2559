package cmd

import (
	"fmt"

	"dynoquery/results"
	"dynoquery/worker"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse and replay executed queries",
	}

	var page, pageSize int
	list := &cobra.Command{
		Use:   "list",
		Short: "List executed queries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			entries, err := a.services.GetLibraryService().ListHistory(cmd.Context(), page, pageSize)
			if err != nil {
				return err
			}
			return printHistory(cmd.OutOrStdout(), entries)
		},
	}
	list.Flags().IntVar(&page, "page", 1, "page number")
	list.Flags().IntVar(&pageSize, "page-size", 20, "entries per page")

	var (
		session string
		last    bool
		pages   int
	)
	replay := &cobra.Command{
		Use:   "replay [key]",
		Short: "Run a history entry again against a session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !last && len(args) == 0 {
				return fmt.Errorf("a history key or --last is required")
			}
			a, err := currentApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			qs, err := a.services.OpenQuery(ctx, session)
			if err != nil {
				return err
			}
			var first *results.Page
			if last {
				first, err = qs.ReplayLast(ctx)
			} else {
				first, err = qs.ReplayHistory(ctx, args[0])
			}
			if err != nil {
				return err
			}
			return printMore(ctx, qs, first, pages, cmd.OutOrStdout())
		},
	}
	replay.Flags().StringVarP(&session, "session", "s", "", "session id")
	replay.Flags().BoolVar(&last, "last", false, "replay the most recent entry")
	replay.Flags().IntVarP(&pages, "pages", "p", 1, "number of pages to fetch")
	_ = replay.MarkFlagRequired("session")

	del := &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete a history entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			return a.services.GetLibraryService().DeleteHistory(cmd.Context(), args[0])
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every history entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			n, err := a.services.GetLibraryService().ClearHistory(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries\n", n)
			return nil
		},
	}

	prune := &cobra.Command{
		Use:   "prune",
		Short: "Apply the history retention limit now",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			w, err := worker.NewWorker(a.config, a.repos.GetHistoryRepository(), a.logger)
			if err != nil {
				return err
			}
			defer w.Stop()
			result, err := w.RunNow(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries in %s\n", result.Removed, result.Duration)
			return nil
		},
	}

	cmd.AddCommand(list, replay, del, clearCmd, prune)
	return cmd
}

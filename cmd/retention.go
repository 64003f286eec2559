package cmd

import (
	"os/signal"
	"syscall"

	"dynoquery/worker"

	"github.com/spf13/cobra"
)

func newRetentionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retention",
		Short: "Run the history retention job on its schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := currentApp()
			if err != nil {
				return err
			}
			w, err := worker.NewWorker(a.config, a.repos.GetHistoryRepository(), a.logger)
			if err != nil {
				return err
			}
			if err := w.Start(); err != nil {
				return err
			}
			defer w.Stop()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()
			return nil
		},
	}
}

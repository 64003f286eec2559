package cmd

import (
	"context"
	"fmt"
	"io"

	"dynoquery/models"
	"dynoquery/query"
	"dynoquery/results"
	"dynoquery/services"

	"github.com/spf13/cobra"
)

// runFlags are shared by query and scan
type runFlags struct {
	session     string
	index       string
	filters     []string
	pages       int
	save        string
	description string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.session, "session", "s", "", "session id")
	cmd.Flags().StringVarP(&f.index, "index", "i", models.TableIndex, "secondary index name")
	cmd.Flags().StringArrayVarP(&f.filters, "filter", "f", nil, "filter attr:op[:type[:value[:value2]]], repeatable")
	cmd.Flags().IntVarP(&f.pages, "pages", "p", 1, "number of pages to fetch")
	cmd.Flags().StringVar(&f.save, "save", "", "save the query under this name")
	cmd.Flags().StringVar(&f.description, "description", "", "description of the saved query")
	_ = cmd.MarkFlagRequired("session")
}

func (f *runFlags) filterConditions() ([]models.FilterCondition, error) {
	out := make([]models.FilterCondition, 0, len(f.filters))
	for _, raw := range f.filters {
		fc, err := parseFilter(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, fc)
	}
	return out, nil
}

func newQueryCmd() *cobra.Command {
	var (
		flags runFlags
		key   keyFlags
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query a table or index by partition key",
		RunE: func(cmd *cobra.Command, args []string) error {
			kc, err := key.keyCondition()
			if err != nil {
				return err
			}
			return runParams(cmd, &flags, false, query.WithKeyCondition(kc))
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&key.partitionValue, "pk", "", "partition key value")
	cmd.Flags().StringVar(&key.partitionType, "pk-type", string(models.StringType), "partition key type")
	cmd.Flags().StringVar(&key.sortOp, "sort-op", "", "sort key operator")
	cmd.Flags().StringVar(&key.sortType, "sort-type", string(models.StringType), "sort key type")
	cmd.Flags().StringVar(&key.sortValue, "sort-value", "", "sort key value")
	cmd.Flags().StringVar(&key.sortValue2, "sort-value2", "", "upper bound for between")
	_ = cmd.MarkFlagRequired("pk")
	return cmd
}

func newScanCmd() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a table or index",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParams(cmd, &flags, true)
		},
	}
	flags.register(cmd)
	return cmd
}

func runParams(cmd *cobra.Command, flags *runFlags, scanMode bool, opts ...query.Option) error {
	a, err := currentApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	filters, err := flags.filterConditions()
	if err != nil {
		return err
	}
	opts = append(opts, query.WithFilters(filters...))

	qs, err := a.services.OpenQuery(ctx, flags.session)
	if err != nil {
		return err
	}
	params, err := qs.NewParams(scanMode, flags.index, opts...)
	if err != nil {
		return err
	}

	if flags.save != "" {
		saved, err := qs.SaveQuery(ctx, flags.save, flags.description, params)
		if err != nil {
			return err
		}
		a.logger.Infof("Saved query %q", saved.Name)
	}

	return streamPages(ctx, a, qs, params, flags.pages, cmd.OutOrStdout())
}

// streamPages fetches pages in the background and prints each as it arrives
func streamPages(ctx context.Context, a *app, qs services.QueryServiceInterface, params *models.QueryParameters, pages int, out io.Writer) error {
	qs.Submit(ctx, params)
	for i := 0; i < pages; i++ {
		if i > 0 {
			if qs.Accumulator().Exhausted() {
				break
			}
			qs.RequestNextPage(ctx)
		}
		page, err := awaitPage(ctx, a)
		if err != nil {
			return err
		}
		if err := printPage(out, page, qs.Accumulator().PageIndex()); err != nil {
			return err
		}
	}
	return nil
}

func awaitPage(ctx context.Context, a *app) (*results.Page, error) {
	select {
	case res, ok := <-a.services.Results():
		if !ok {
			return nil, fmt.Errorf("query runner closed")
		}
		if res.Err != nil {
			return nil, res.Err
		}
		page, ok := res.Value.(*results.Page)
		if !ok {
			return nil, fmt.Errorf("unexpected result %T", res.Value)
		}
		return page, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// printMore prints the first page and follows with further pages fetched synchronously
func printMore(ctx context.Context, qs services.QueryServiceInterface, first *results.Page, pages int, out io.Writer) error {
	if err := printPage(out, first, qs.Accumulator().PageIndex()); err != nil {
		return err
	}
	for i := 1; i < pages && !qs.Accumulator().Exhausted(); i++ {
		page, err := qs.NextPage(ctx)
		if err != nil {
			return err
		}
		if err := printPage(out, page, qs.Accumulator().PageIndex()); err != nil {
			return err
		}
	}
	return nil
}

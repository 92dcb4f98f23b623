package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/malusev998/currency"
)

func handleCurrencySync(ctx context.Context, syncers []currency.Syncer, out io.Writer) error {
	for _, syncer := range syncers {
		result, err := syncer.Sync(ctx)

		if err != nil {
			return err
		}

		fmt.Fprintf(out, "fetched %d rates: %d created, %d updated, %d skipped\n",
			result.Fetched, result.Created, result.Updated, result.Skipped)
	}

	return nil
}

func fetch(a *app) *cobra.Command {
	var standalone bool
	var after time.Duration
	var merge string

	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch rates from the configured feeds and merge them into storage",
		Args:  cobra.NoArgs,
	}

	fetchCmd.RunE = a.run(func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("merge") {
			merge = a.viper.GetString("fetchers.merge")
		}

		policy, err := currency.ConvertToMergePolicyFromString(merge)

		if err != nil {
			return err
		}

		var rates currency.RateManager

		if policy == currency.MergeUpsert {
			service, err := a.getService()

			if err != nil {
				return err
			}

			rates = service
		}

		syncers, err := a.config.NewSyncers(a.viper, rates, policy, a.logger)

		if err != nil {
			return err
		}

		ctx := cmd.Context()

		if err := handleCurrencySync(ctx, syncers, cmd.OutOrStdout()); err != nil {
			a.logger.Error("fetch failed", "error", err)

			if !standalone {
				return err
			}
		}

		if !standalone {
			return nil
		}

		for {
			select {
			case <-time.After(after):
				if err := handleCurrencySync(ctx, syncers, cmd.OutOrStdout()); err != nil {
					a.logger.Error("fetch failed", "error", err)
				}
			case <-ctx.Done():
				return nil
			}
		}
	})

	fetchCmd.Flags().BoolVar(&standalone, "standalone", false, "Start up a long running fetching service")
	fetchCmd.Flags().DurationVar(&after, "after", time.Hour, "Fetching interval for standalone process")
	fetchCmd.Flags().StringVar(&merge, "merge", "none", "How fetched rates are merged into storage: none or upsert")

	return fetchCmd
}

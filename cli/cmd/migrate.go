package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func migrate(a *app) *cobra.Command {
	var drop bool

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the rate table or collection",
		Args:  cobra.NoArgs,
	}

	migrateCmd.RunE = a.run(func(cmd *cobra.Command, args []string) error {
		st, err := a.getStorage()

		if err != nil {
			return err
		}

		if drop {
			if err := st.Drop(cmd.Context()); err != nil {
				return err
			}
		}

		if err := st.Migrate(cmd.Context()); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s storage migrated\n", st.GetStorageProviderName())

		return nil
	})

	migrateCmd.Flags().BoolVar(&drop, "drop", false, "Drop existing rates before migrating")

	return migrateCmd
}

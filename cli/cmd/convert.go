package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func convert(a *app) *cobra.Command {
	convertCmd := &cobra.Command{
		Use:     "convert FROM TO AMOUNT",
		Short:   "Convert an amount between two currencies using the loaded rates",
		Example: "currency-converter convert USD PHP 1000",
		Args:    cobra.ExactArgs(3),
	}

	// Negative amounts are positional arguments, not shorthand flags.
	convertCmd.Flags().SetInterspersed(false)

	convertCmd.RunE = a.run(func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(args[2])

		if err != nil {
			return fmt.Errorf("amount %q is not a decimal number: %w", args[2], err)
		}

		service, err := a.getService()

		if err != nil {
			return err
		}

		converted, err := service.Convert(args[0], args[1], amount)

		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s %s\n", amount, args[0], converted, args[1])

		return nil
	})

	return convertCmd
}

func demo(a *app) *cobra.Command {
	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "Read the PHP rate and convert between USD and PHP",
		Args:  cobra.NoArgs,
	}

	demoCmd.RunE = a.run(func(cmd *cobra.Command, args []string) error {
		service, err := a.getService()

		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()

		rate, err := service.ReadRate(cmd.Context(), "PHP")

		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Current exchange rate for PHP is: %v\n", rate)

		toPHP, err := service.Convert("USD", "PHP", decimal.NewFromInt(1000))

		if err != nil {
			return err
		}

		fmt.Fprintf(out, "1000 USD to PHP is: %s\n", toPHP)

		toUSD, err := service.Convert("PHP", "USD", decimal.NewFromInt(10000))

		if err != nil {
			return err
		}

		fmt.Fprintf(out, "10000 PHP to USD is: %s\n", toUSD)

		return nil
	})

	return demoCmd
}

package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
)

func parseRate(str string) (float64, error) {
	value, err := strconv.ParseFloat(str, 64)

	if err != nil {
		return 0, fmt.Errorf("rate %q is not a number: %w", str, err)
	}

	return value, nil
}

func rate(a *app) *cobra.Command {
	rateCmd := &cobra.Command{
		Use:   "rate",
		Short: "Inspect and manage stored exchange rates",
	}

	get := &cobra.Command{
		Use:   "get CODE",
		Short: "Print the rate loaded into memory for CODE",
		Args:  cobra.ExactArgs(1),
	}
	get.RunE = a.run(func(cmd *cobra.Command, args []string) error {
		service, err := a.getService()
		if err != nil {
			return err
		}

		value, err := service.GetExchangeRate(args[0])
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s %v\n", args[0], value)

		return nil
	})

	list := &cobra.Command{
		Use:   "list",
		Short: "Print every rate loaded into memory",
		Args:  cobra.NoArgs,
	}
	list.RunE = a.run(func(cmd *cobra.Command, args []string) error {
		service, err := a.getService()
		if err != nil {
			return err
		}

		rates := service.Rates()
		codes := make([]string, 0, len(rates))

		for code := range rates {
			codes = append(codes, code)
		}

		sort.Strings(codes)

		for _, code := range codes {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %v\n", code, rates[code])
		}

		return nil
	})

	read := &cobra.Command{
		Use:   "read CODE",
		Short: "Read the most recent stored rate for CODE",
		Args:  cobra.ExactArgs(1),
	}
	read.RunE = a.run(func(cmd *cobra.Command, args []string) error {
		service, err := a.getService()
		if err != nil {
			return err
		}

		value, err := service.ReadRate(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s %v\n", args[0], value)

		return nil
	})

	create := &cobra.Command{
		Use:   "create CODE RATE",
		Short: "Store a new rate",
		Args:  cobra.ExactArgs(2),
	}
	create.Flags().SetInterspersed(false)
	create.RunE = a.run(func(cmd *cobra.Command, args []string) error {
		value, err := parseRate(args[1])
		if err != nil {
			return err
		}

		service, err := a.getService()
		if err != nil {
			return err
		}

		if err := service.CreateRate(cmd.Context(), args[0], value); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created %s %v\n", args[0], value)

		return nil
	})

	update := &cobra.Command{
		Use:   "update CODE RATE",
		Short: "Replace the stored rate for CODE",
		Args:  cobra.ExactArgs(2),
	}
	update.Flags().SetInterspersed(false)
	update.RunE = a.run(func(cmd *cobra.Command, args []string) error {
		value, err := parseRate(args[1])
		if err != nil {
			return err
		}

		service, err := a.getService()
		if err != nil {
			return err
		}

		if err := service.UpdateRate(cmd.Context(), args[0], value); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "updated %s %v\n", args[0], value)

		return nil
	})

	del := &cobra.Command{
		Use:   "delete CODE",
		Short: "Delete the stored rate for CODE",
		Args:  cobra.ExactArgs(1),
	}
	del.RunE = a.run(func(cmd *cobra.Command, args []string) error {
		service, err := a.getService()
		if err != nil {
			return err
		}

		if err := service.DeleteRate(cmd.Context(), args[0]); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])

		return nil
	})

	rateCmd.AddCommand(get, list, read, create, update, del)

	return rateCmd
}

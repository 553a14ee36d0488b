package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Exchange-rate table commands",
}

var ratesRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch today's exchange rates",
	Long: `Fetch the exchange-rate table now, even if it was refreshed today.

Nothing is fetched when the remaining source quota is below
exchange.min_quota.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if err = a.exchange.Refresh(ctx); err != nil {
			return err
		}

		rates, err := a.exchange.List(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d rates stored\n", len(rates))
		return nil
	},
}

func init() {
	ratesCmd.AddCommand(ratesRefreshCmd)
}

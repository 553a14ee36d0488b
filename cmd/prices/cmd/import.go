package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <catalog.xlsx>",
	Short: "Ingest a catalog workbook",
	Long: `Ingest a catalog workbook, one sheet per country.

Each sheet is committed on its own; the first invalid row aborts the run
and rolls back the sheet it belongs to.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		body, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.catalog.Upload(ctx, filepath.Base(args[0]), body)
		if err != nil {
			return err
		}

		for _, sheet := range report.Sheets {
			fmt.Fprintf(cmd.OutOrStdout(), "%-20s %5d rows %5d prices %5d subcategories\n",
				sheet.Country, sheet.Rows, sheet.PriceValues, sheet.Subcategories)
		}
		return nil
	},
}

var importDesignCmd = &cobra.Command{
	Use:   "import-design <design.xlsx>",
	Short: "Ingest a design surcharge workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		body, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		designs, err := a.catalog.UploadDesign(ctx, filepath.Base(args[0]), body)
		if err != nil {
			return err
		}

		for _, d := range designs {
			fmt.Fprintf(cmd.OutOrStdout(), "country %d: %v %v %v %v %v\n",
				d.CountryID, d.Category1, d.Category2, d.Category3, d.Category4, d.Category5)
		}
		return nil
	},
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dairyerp/dairyclient/internal/domain/models"
	"github.com/dairyerp/dairyclient/internal/service/collections"
)

func newCollectionsCmd(a **app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collections",
		Aliases: []string{"milk"},
		Short:   "Record and query milk collections",
	}
	cmd.AddCommand(newRateCmd(a))
	cmd.AddCommand(newRecordCmd(a))
	cmd.AddCommand(newDailyReportCmd(a))
	cmd.AddCommand(newSummaryCmd(a))
	cmd.AddCommand(newMarkPaidCmd(a))
	cmd.AddCommand(newExportCmd(a))
	cmd.AddCommand(newReceiptCmd(a))
	return cmd
}

func newRateCmd(a **app) *cobra.Command {
	var fat, snf float64
	var confirm bool

	cmd := &cobra.Command{
		Use:   "rate",
		Short: "Preview the per-liter rate for fat/SNF readings",
		RunE: func(cmd *cobra.Command, args []string) error {
			local := collections.Rate(fat, snf)
			fmt.Printf("Provisional rate: %.2f/L\n", local)

			if confirm {
				authoritative, err := (*a).collections.CalculateRate(cmd.Context(), fat, snf)
				if err != nil {
					return err
				}
				fmt.Printf("Backend rate:     %.2f/L\n", authoritative)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&fat, "fat", 0, "Fat percentage")
	cmd.Flags().Float64Var(&snf, "snf", 0, "SNF percentage")
	cmd.Flags().BoolVar(&confirm, "confirm", false, "Also fetch the authoritative backend rate")
	return cmd
}

func newRecordCmd(a **app) *cobra.Command {
	var c models.MilkCollection
	var shift string

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record one milk collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			c.Shift = models.Shift(shift)

			// Rate confirmed by the backend before the record is persisted;
			// the local formula is for preview only.
			rate, err := (*a).collections.CalculateRate(cmd.Context(), c.FatPercentage, c.SNFPercentage)
			if err != nil {
				return err
			}
			c.RatePerLiter = rate
			c.TotalAmount = collections.Amount(c.Quantity, rate)

			saved, err := (*a).collections.Record(cmd.Context(), c)
			if err != nil {
				return err
			}
			fmt.Printf("Recorded collection #%d: %.2f L at %.2f/L = %.2f\n",
				saved.CollectionID, saved.Quantity, saved.RatePerLiter, saved.TotalAmount)
			return nil
		},
	}

	cmd.Flags().IntVar(&c.FarmerID, "farmer", 0, "Farmer id")
	cmd.Flags().IntVar(&c.CenterID, "center", 0, "Center id")
	cmd.Flags().StringVar(&c.CollectionDate, "date", "", "Collection date (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&c.Quantity, "qty", 0, "Quantity in liters")
	cmd.Flags().Float64Var(&c.FatPercentage, "fat", 0, "Fat percentage")
	cmd.Flags().Float64Var(&c.SNFPercentage, "snf", 0, "SNF percentage")
	cmd.Flags().StringVar(&shift, "shift", string(models.ShiftMorning), "Shift: Morning, Evening or Night")
	return cmd
}

func newDailyReportCmd(a **app) *cobra.Command {
	var date string
	var centerID int

	cmd := &cobra.Command{
		Use:   "daily-report",
		Short: "Show all collections for a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := (*a).collections.DailyReport(cmd.Context(), date, centerID)
			if err != nil {
				return err
			}
			for _, c := range report {
				fmt.Printf("#%d farmer=%d center=%d %.2fL %.2f\n",
					c.CollectionID, c.FarmerID, c.CenterID, c.Quantity, c.TotalAmount)
			}
			fmt.Printf("%d collection(s)\n", len(report))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Report date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&centerID, "center", 0, "Restrict to one center")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func newSummaryCmd(a **app) *cobra.Command {
	var params models.CollectionSearchParams

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Paginated collection summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := (*a).collections.Summary(cmd.Context(), params)
			if err != nil {
				return err
			}
			for _, c := range page.Items {
				fmt.Printf("#%d %s farmer=%d %.2fL %.2f (%s)\n",
					c.CollectionID, c.CollectionDate, c.FarmerID, c.Quantity, c.TotalAmount, c.PaymentStatus)
			}
			fmt.Printf("Page %d/%d, %d collection(s) total\n", page.Page, page.TotalPages, page.TotalCount)
			return nil
		},
	}

	cmd.Flags().StringVar(&params.FromDate, "from", "", "From date")
	cmd.Flags().StringVar(&params.ToDate, "to", "", "To date")
	cmd.Flags().IntVar(&params.FarmerID, "farmer", 0, "Filter by farmer id")
	cmd.Flags().IntVar(&params.CenterID, "center", 0, "Filter by center id")
	cmd.Flags().IntVar(&params.Page, "page", 1, "1-indexed page")
	cmd.Flags().IntVar(&params.PageSize, "page-size", 10, "Results per page")
	return cmd
}

func newMarkPaidCmd(a **app) *cobra.Command {
	var id int
	var date string

	cmd := &cobra.Command{
		Use:   "mark-paid",
		Short: "Settle a collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (*a).collections.MarkPaid(cmd.Context(), id, date); err != nil {
				return err
			}
			fmt.Printf("Collection #%d marked paid on %s\n", id, date)
			return nil
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "Collection id")
	cmd.Flags().StringVar(&date, "date", "", "Payment date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func newExportCmd(a **app) *cobra.Command {
	var params models.CollectionSearchParams
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the collection export",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := (*a).collections.Export(cmd.Context(), params)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Printf("Wrote %d bytes to %s\n", len(data), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&params.FromDate, "from", "", "From date")
	cmd.Flags().StringVar(&params.ToDate, "to", "", "To date")
	cmd.Flags().StringVar(&out, "out", "collections.xlsx", "Output file")
	return cmd
}

func newReceiptCmd(a **app) *cobra.Command {
	var id int
	var out string

	cmd := &cobra.Command{
		Use:   "receipt",
		Short: "Download a collection receipt",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := (*a).collections.Receipt(cmd.Context(), id)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write receipt: %w", err)
			}
			fmt.Printf("Wrote %d bytes to %s\n", len(data), out)
			return nil
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "Collection id")
	cmd.Flags().StringVar(&out, "out", "receipt.pdf", "Output file")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dairyerp/dairyclient/internal/domain/models"
)

func newFarmersCmd(a **app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "farmers",
		Short: "Query and manage farmer records",
	}
	cmd.AddCommand(newFarmersListCmd(a))
	cmd.AddCommand(newFarmersCreateCmd(a))
	cmd.AddCommand(newFarmersSearchCmd(a))
	return cmd
}

func newFarmersListCmd(a **app) *cobra.Command {
	var (
		search     string
		page       int
		pageSize   int
		activeOnly bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List farmers with paging and filtering",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := models.FarmerSearchParams{
				Search:   search,
				Page:     page,
				PageSize: pageSize,
			}
			if activeOnly {
				active := true
				params.IsActive = &active
			}

			result, err := (*a).farmers.List(cmd.Context(), params)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tNAME\tVILLAGE\tCONTACT\tACTIVE")
			for _, f := range result.Items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n",
					f.FarmerCode, f.FullName, f.Village, f.ContactNumber, f.IsActive)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("Page %d/%d, %d farmer(s) total\n", result.Page, result.TotalPages, result.TotalCount)
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Substring filter on name, code, village or contact")
	cmd.Flags().IntVar(&page, "page", 1, "1-indexed page")
	cmd.Flags().IntVar(&pageSize, "page-size", 10, "Results per page")
	cmd.Flags().BoolVar(&activeOnly, "active", false, "Show only active farmers")
	return cmd
}

func newFarmersCreateCmd(a **app) *cobra.Command {
	var data models.CreateFarmer

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new farmer",
		RunE: func(cmd *cobra.Command, args []string) error {
			farmer, err := (*a).farmers.Create(cmd.Context(), data)
			if err != nil {
				return err
			}
			fmt.Printf("Created farmer %s (%s)\n", farmer.FullName, farmer.FarmerCode)
			return nil
		},
	}

	cmd.Flags().StringVar(&data.FullName, "name", "", "Full name")
	cmd.Flags().StringVar(&data.ContactNumber, "contact", "", "Contact number")
	cmd.Flags().StringVar(&data.Village, "village", "", "Village")
	cmd.Flags().StringVar(&data.FarmerCode, "code", "", "Farmer code (generated when omitted)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("contact")
	return cmd
}

func newFarmersSearchCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Server-side farmer search",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := (*a).farmers.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, f := range results {
				fmt.Printf("%s\t%s\t%s\n", f.FarmerCode, f.FullName, f.Village)
			}
			fmt.Printf("%d match(es)\n", len(results))
			return nil
		},
	}
}

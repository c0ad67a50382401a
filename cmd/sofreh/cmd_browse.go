package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/sofreh/app/services"
)

// sofreh restaurants — list restaurants.
var restaurantsCmd = &cobra.Command{
	Use:   "restaurants",
	Short: "List restaurants",
	RunE: func(cmd *cobra.Command, args []string) error {
		restaurants, err := services.NewCatalogService().Restaurants(cmd.Context())
		if err != nil {
			return err
		}
		if len(restaurants) == 0 {
			fmt.Println("No restaurants found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tFOODS\tDESCRIPTION")
		for _, r := range restaurants {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", r.ID, r.Name, len(r.Foods), truncate(r.Description, 60))
		}
		return w.Flush()
	},
}

// sofreh foods — list foods across restaurants.
var foodsCmd = &cobra.Command{
	Use:   "foods",
	Short: "List foods",
	RunE: func(cmd *cobra.Command, args []string) error {
		foods, err := services.NewCatalogService().Foods(cmd.Context())
		if err != nil {
			return err
		}
		if len(foods) == 0 {
			fmt.Println("No foods found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPRICE\tDISCOUNT")
		for _, f := range foods {
			discount := "-"
			if f.DiscountPercent > 0 {
				discount = fmt.Sprintf("%d%% → %.0f", f.DiscountPercent, f.EffectivePrice())
			}
			fmt.Fprintf(w, "%d\t%s\t%.0f\t%s\n", f.ID, f.Name, float64(f.Price), discount)
		}
		return w.Flush()
	},
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

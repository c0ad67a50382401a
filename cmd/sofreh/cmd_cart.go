package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/sofreh/app/services"
	"github.com/shashiranjanraj/sofreh/internal/cart"
)

var (
	cartQty       int
	cartRemoveAll bool
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show and edit the cart (works logged out too)",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := cart.NewStore()
		store.Load(cmd.Context())

		lines := store.Lines()
		if len(lines) == 0 {
			fmt.Printf("Your cart is empty (%s mode).\n", cart.CurrentMode())
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "FOOD\tQTY\tUNIT\tSUBTOTAL")
		for _, l := range lines {
			fmt.Fprintf(w, "%s (#%d)\t%d\t%.0f\t%.0f\n",
				l.Food.Name, l.Food.ID, l.Quantity, l.Food.EffectivePrice(), l.Subtotal())
		}
		fmt.Fprintf(w, "\tTOTAL\t\t%.0f\n", store.Total())
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("(%s mode)\n", cart.CurrentMode())
		return nil
	},
}

// sofreh cart add <food-id> — put a food in the cart.
var cartAddCmd = &cobra.Command{
	Use:   "add <food-id>",
	Short: "Add a food to the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		foodID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("food id must be a number, got %q", args[0])
		}

		food, ok, err := services.NewCatalogService().Food(cmd.Context(), foodID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no food with id %d", foodID)
		}

		store := cart.NewStore()
		store.Load(cmd.Context())
		if err := store.Add(cmd.Context(), food, cartQty); err != nil {
			return err
		}

		fmt.Printf("Added %d × %s. Cart total: %.0f\n", cartQty, food.Name, store.Total())
		return nil
	},
}

// sofreh cart remove <food-id> — decrement, or drop with --all.
var cartRemoveCmd = &cobra.Command{
	Use:   "remove <food-id>",
	Short: "Remove one unit of a food (--all drops the whole line)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		foodID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("food id must be a number, got %q", args[0])
		}

		store := cart.NewStore()
		store.Load(cmd.Context())
		if err := store.Remove(cmd.Context(), foodID, cartRemoveAll); err != nil {
			return err
		}

		fmt.Printf("Cart total: %.0f (%d lines)\n", store.Total(), store.Len())
		return nil
	},
}

// sofreh cart merge — carry the guest cart into the server cart.
var cartMergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge the guest cart into your account's cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := cart.NewStore()
		if err := store.Merge(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("Merged. Cart total: %.0f (%d lines)\n", store.Total(), store.Len())
		return nil
	},
}

func init() {
	cartAddCmd.Flags().IntVar(&cartQty, "qty", 1, "quantity to add")
	cartRemoveCmd.Flags().BoolVar(&cartRemoveAll, "all", false, "remove the whole line, not just one unit")

	cartCmd.AddCommand(cartAddCmd)
	cartCmd.AddCommand(cartRemoveCmd)
	cartCmd.AddCommand(cartMergeCmd)
}

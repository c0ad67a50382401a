package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/sofreh/app/models"
	"github.com/shashiranjanraj/sofreh/app/services"
	"github.com/shashiranjanraj/sofreh/internal/cart"
	"github.com/shashiranjanraj/sofreh/internal/history"
	"github.com/shashiranjanraj/sofreh/pkg/logger"
)

var (
	orderRestaurant int
	orderAddress    string
	orderPhone      string
	orderNote       string
	orderCard       string
	orderCVV2       string
	orderOTP        string
	exportPath      string
	exportDisk      string
)

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Place orders",
}

// sofreh order place — turn the cart into a paid order.
var orderPlaceCmd = &cobra.Command{
	Use:   "place",
	Short: "Create, check out and pay an order from the current cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store := cart.NewStore()
		store.Load(ctx)
		lines := store.Lines()
		if len(lines) == 0 {
			return fmt.Errorf("your cart is empty — add something first")
		}

		restaurantID := orderRestaurant
		if restaurantID == 0 {
			restaurantID = lines[0].Food.RestaurantID
		}
		total := store.Total()

		items := make([]models.OrderItem, 0, len(lines))
		for _, l := range lines {
			items = append(items, models.OrderItem{FoodID: l.Food.ID, Quantity: l.Quantity})
		}

		orders := services.NewOrderService()

		created, err := orders.Create(ctx, restaurantID, items)
		if err != nil {
			return err
		}

		checkout, err := orders.Checkout(ctx, created.UUID, models.CheckoutRequest{
			Address: orderAddress,
			Phone:   orderPhone,
			Note:    orderNote,
		})
		if err != nil {
			return err
		}

		payment, err := orders.Pay(ctx, checkout.OrderUUID, models.Card{
			Number: orderCard,
			CVV2:   orderCVV2,
			OTP:    orderOTP,
		})
		if err != nil {
			return err
		}
		if !payment.Paid() {
			return fmt.Errorf("payment declined: %s", payment.Message)
		}

		recordOrder(history.Order{
			UUID:         created.UUID,
			RestaurantID: restaurantID,
			Total:        total,
			Status:       "paid",
			Address:      orderAddress,
			Phone:        orderPhone,
		})

		if err := store.Clear(); err != nil {
			logger.Warn("order placed but cart not cleared", "error", err)
		}

		fmt.Printf("Order %s paid. Total: %.0f\n", created.UUID, total)
		return nil
	},
}

// sofreh orders — list past orders from the local history.
var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List your past orders (local history, works offline)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := history.Connect(); err != nil {
			return err
		}

		if exportPath != "" {
			n, err := history.Export(exportDisk, exportPath)
			if err != nil {
				return err
			}
			fmt.Printf("Exported %d orders to %s:%s\n", n, exportDisk, exportPath)
			return nil
		}

		orders, err := history.List(50)
		if err != nil {
			return err
		}
		if len(orders) == 0 {
			fmt.Println("No orders recorded yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "WHEN\tUUID\tTOTAL\tSTATUS")
		for _, o := range orders {
			fmt.Fprintf(w, "%s\t%s\t%.0f\t%s\n",
				o.CreatedAt.Local().Format("2006-01-02 15:04"), o.UUID, o.Total, o.Status)
		}
		return w.Flush()
	},
}

// recordOrder writes to the history DB, best effort: a paid order must not
// look failed just because the local database is unavailable.
func recordOrder(o history.Order) {
	if err := history.Connect(); err != nil {
		logger.Warn("order history unavailable", "error", err)
		return
	}
	if err := history.Record(o); err != nil {
		logger.Warn("order not recorded in history", "error", err)
	}
}

func init() {
	orderPlaceCmd.Flags().IntVar(&orderRestaurant, "restaurant", 0, "restaurant id (default: from the first cart line)")
	orderPlaceCmd.Flags().StringVar(&orderAddress, "address", "", "delivery address")
	orderPlaceCmd.Flags().StringVar(&orderPhone, "phone", "", "contact phone (0XXXXXXXXXX)")
	orderPlaceCmd.Flags().StringVar(&orderNote, "note", "", "note for the restaurant")
	orderPlaceCmd.Flags().StringVar(&orderCard, "card", "", "card number for the fake gateway (12-19 digits)")
	orderPlaceCmd.Flags().StringVar(&orderCVV2, "cvv2", "", "card CVV2 (3-4 digits)")
	orderPlaceCmd.Flags().StringVar(&orderOTP, "otp", "", "one-time password from the fake gateway (6 digits)")
	orderPlaceCmd.MarkFlagRequired("address") //nolint:errcheck
	orderPlaceCmd.MarkFlagRequired("phone")   //nolint:errcheck
	orderPlaceCmd.MarkFlagRequired("card")    //nolint:errcheck
	orderPlaceCmd.MarkFlagRequired("cvv2")    //nolint:errcheck
	orderPlaceCmd.MarkFlagRequired("otp")     //nolint:errcheck

	ordersCmd.Flags().StringVar(&exportPath, "export", "", "write the full history as JSON to this path instead of listing")
	ordersCmd.Flags().StringVar(&exportDisk, "disk", "local", "storage disk for --export (local or s3)")

	orderCmd.AddCommand(orderPlaceCmd)
}

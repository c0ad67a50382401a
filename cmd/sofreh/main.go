package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/sofreh/app/services"
	_ "github.com/shashiranjanraj/sofreh/database/migrations" // register history migrations
	"github.com/shashiranjanraj/sofreh/pkg/cache"
	"github.com/shashiranjanraj/sofreh/pkg/gateway"
	"github.com/shashiranjanraj/sofreh/pkg/logger"
	"github.com/shashiranjanraj/sofreh/pkg/storage"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, friendly(err))
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "sofreh",
	Short:         "Sofreh — restaurant ordering & reservation client",
	Long:          "Sofreh is a command-line client for the Sofreh restaurant platform:\nbrowse menus, manage a cart as guest or logged in, place orders, book\ntables, and run the vendor dashboard.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		storage.Connect()
		if err := cache.Connect(); err != nil {
			logger.Debug("cache unavailable, running without it", "error", err)
		}
	},
}

func init() {
	// Session
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	// Browsing
	rootCmd.AddCommand(restaurantsCmd)
	rootCmd.AddCommand(foodsCmd)

	// Cart
	rootCmd.AddCommand(cartCmd)

	// Orders
	rootCmd.AddCommand(orderCmd)
	rootCmd.AddCommand(ordersCmd)

	// Reservations
	rootCmd.AddCommand(reserveCmd)
	rootCmd.AddCommand(reservationsCmd)

	// Vendor
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(dashboardCmd)
}

// friendly turns sentinel errors into actionable one-liners.
func friendly(err error) string {
	switch {
	case errors.Is(err, gateway.ErrLoginRequired):
		return "Your session has expired. Please run `sofreh login`."
	case errors.Is(err, services.ErrInvalidCredentials):
		return "Invalid username or password."
	default:
		if ve, ok := services.AsValidation(err); ok {
			return ve.Error()
		}
		return err.Error()
	}
}

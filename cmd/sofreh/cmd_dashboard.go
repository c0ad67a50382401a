package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/sofreh/app/models"
	"github.com/shashiranjanraj/sofreh/app/services"
	"github.com/shashiranjanraj/sofreh/config"
	"github.com/shashiranjanraj/sofreh/internal/dashboard"
	"github.com/shashiranjanraj/sofreh/internal/feed"
	"github.com/shashiranjanraj/sofreh/internal/history"
	"github.com/shashiranjanraj/sofreh/pkg/database"
	"github.com/shashiranjanraj/sofreh/pkg/logger"
	"github.com/shashiranjanraj/sofreh/pkg/queue"
	"github.com/shashiranjanraj/sofreh/pkg/rbac"
	"github.com/shashiranjanraj/sofreh/pkg/schedule"
)

var settingsFile string

// historyRetention is how long completed orders stay in the local database.
const historyRetention = 180 * 24 * time.Hour

// sofreh dashboard — run the local vendor dashboard.
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Run the local vendor dashboard (live reservations, orders, metrics)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := requireVendor(ctx); err != nil {
			return err
		}

		if uri := config.Get("LOG_MONGO_URI", ""); uri != "" {
			mh, err := logger.UseMongo(uri, config.Get("LOG_MONGO_DB", "sofreh"), "logs")
			if err != nil {
				logger.Warn("dashboard: mongo log sink unavailable", "error", err)
			} else {
				defer mh.Close()
			}
		}

		if err := history.Connect(); err != nil {
			logger.Warn("dashboard: order history unavailable", "error", err)
		} else {
			queue.UseDB(database.DB)
			schedule.Daily().Name("history-prune").WithoutOverlapping().Run(func() {
				if _, err := history.Prune(historyRetention); err != nil {
					logger.Warn("dashboard: history prune failed", "error", err)
				}
			})
		}
		schedule.Start(ctx)
		dashboard.StartAlerts(ctx)

		reservations := services.NewReservationService()
		f := feed.New(reservations)
		go f.Run(ctx)

		fmt.Printf("Dashboard on %s — Ctrl-C to stop.\n", config.DashboardAddr())
		return dashboard.NewServer(f, reservations).Run(ctx)
	},
}

// sofreh settings — update the restaurant profile from a JSON file.
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Update your restaurant profile and menu from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireVendor(cmd.Context()); err != nil {
			return err
		}

		raw, err := os.ReadFile(settingsFile)
		if err != nil {
			return fmt.Errorf("read settings file: %w", err)
		}

		var settings models.RestaurantSettings
		if err := json.Unmarshal(raw, &settings); err != nil {
			return fmt.Errorf("parse %s: %w", settingsFile, err)
		}

		if err := services.NewVendorService().SaveSettings(cmd.Context(), settings); err != nil {
			return err
		}
		fmt.Printf("Settings saved for %q (%d menu items).\n", settings.Name, len(settings.MenuItems))
		return nil
	},
}

// requireVendor checks the logged-in profile before a vendor-only command
// spends any real work. The server still enforces its own rules.
func requireVendor(ctx context.Context) error {
	user, err := services.NewAuthService().Me(ctx)
	if err != nil {
		return err
	}
	if !rbac.Can(user.Role, rbac.ManageRestaurant) {
		return fmt.Errorf("this command needs a vendor account; %q is a %s", user.Username, user.Role)
	}
	return nil
}

func init() {
	settingsCmd.Flags().StringVar(&settingsFile, "file", "settings.json", "path to the settings JSON file")
}

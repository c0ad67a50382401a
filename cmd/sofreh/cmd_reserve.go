package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/sofreh/app/models"
	"github.com/shashiranjanraj/sofreh/app/services"
)

var reserveInput models.Reservation

// sofreh reserve — book a table.
var reserveCmd = &cobra.Command{
	Use:   "reserve",
	Short: "Book a table",
	RunE: func(cmd *cobra.Command, args []string) error {
		created, err := services.NewReservationService().Create(cmd.Context(), reserveInput)
		if err != nil {
			return err
		}
		fmt.Printf("Reserved: %s at %s for %d guests (ref #%d).\n",
			created.Date, created.Time, created.Guests, created.ID)
		return nil
	},
}

// sofreh reservations — list the current reservations (vendor view).
var reservationsCmd = &cobra.Command{
	Use:   "reservations",
	Short: "List reservations",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := services.NewReservationService().List(cmd.Context())
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No reservations.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tDATE\tTIME\tGUESTS\tNAME\tPHONE")
		for _, r := range list {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n", r.ID, r.Date, r.Time, r.Guests, r.Name, r.Phone)
		}
		return w.Flush()
	},
}

func init() {
	f := reserveCmd.Flags()
	f.StringVar(&reserveInput.Date, "date", "", "reservation date (YYYY-MM-DD)")
	f.StringVar(&reserveInput.Time, "time", "", "reservation time (HH:MM)")
	f.IntVar(&reserveInput.Guests, "guests", 2, "number of guests")
	f.StringVar(&reserveInput.Name, "name", "", "name for the booking")
	f.StringVar(&reserveInput.Phone, "phone", "", "contact phone (0XXXXXXXXXX)")
	f.StringVar(&reserveInput.Message, "message", "", "message for the restaurant")
	reserveCmd.MarkFlagRequired("date")  //nolint:errcheck
	reserveCmd.MarkFlagRequired("time")  //nolint:errcheck
	reserveCmd.MarkFlagRequired("name")  //nolint:errcheck
	reserveCmd.MarkFlagRequired("phone") //nolint:errcheck
}

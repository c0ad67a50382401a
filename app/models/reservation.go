package models

import "fmt"

// Reservation is a table booking. Records arrive from two sources — polled
// GET /reservations/ snapshots and pushed broker events — and both decode
// into this one shape. Pushed events may lack the server id.
type Reservation struct {
	ID           int    `json:"id,omitempty"`
	RestaurantID int    `json:"restaurant_id,omitempty"`
	Date         string `json:"date" validate:"required,date"`
	Time         string `json:"time" validate:"required"`
	Guests       int    `json:"guests" validate:"required,gte=1,lte=50"`
	Name         string `json:"name" validate:"required,min=2,max=100"`
	Phone        string `json:"phone" validate:"required,regex=^0\d{10}$"`
	Message      string `json:"message,omitempty" validate:"nullable,max=500"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// Key identifies a reservation across both feed sources. The server id wins
// when present; pushed events without one fall back to a composite of the
// fields the broker does deliver.
func (r Reservation) Key() string {
	if r.ID != 0 {
		return fmt.Sprintf("id:%d", r.ID)
	}
	return fmt.Sprintf("%s|%s|%s|%s", r.Name, r.Date, r.Time, r.Phone)
}

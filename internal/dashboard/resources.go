package dashboard

import (
	"time"

	"github.com/shashiranjanraj/sofreh/app/models"
	"github.com/shashiranjanraj/sofreh/internal/history"
	"github.com/shashiranjanraj/sofreh/pkg/resource"
)

// reservationResource is the wire shape of a reservation on the dashboard
// API. Phone numbers stay, the raw message is trimmed to what the list
// view needs.
type reservationResource struct{ resource.Base }

func (reservationResource) ToArray(v interface{}) resource.Map {
	r := v.(models.Reservation)
	return resource.Map{
		"id":         r.ID,
		"name":       r.Name,
		"date":       r.Date,
		"time":       r.Time,
		"guests":     r.Guests,
		"phone":      r.Phone,
		"message":    r.Message,
		"created_at": r.CreatedAt,
	}
}

type orderResource struct{ resource.Base }

func (orderResource) ToArray(v interface{}) resource.Map {
	o := v.(history.Order)
	return resource.Map{
		"uuid":            o.UUID,
		"restaurant_name": o.RestaurantName,
		"total":           o.Total,
		"status":          o.Status,
		"created_at":      o.CreatedAt.Format(time.RFC3339),
	}
}

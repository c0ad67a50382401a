package services

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/sofreh/app/models"
	"github.com/shashiranjanraj/sofreh/pkg/gateway"
	"github.com/shashiranjanraj/sofreh/pkg/httpx"
	"github.com/shashiranjanraj/sofreh/pkg/logger"
	"github.com/shashiranjanraj/sofreh/pkg/validate"
)

// ReservationService books tables and reads the vendor's reservation list.
type ReservationService struct{}

func NewReservationService() *ReservationService {
	return &ReservationService{}
}

// Create books a table. The server echoes the stored record back with its id.
func (s *ReservationService) Create(ctx context.Context, r models.Reservation) (models.Reservation, error) {
	if errs := validate.Struct(&r); validate.HasErrors(errs) {
		return models.Reservation{}, &ValidationError{Fields: errs}
	}

	resp, err := gateway.Send(httpx.Post(gateway.URL("/reservations/")).Body(r).WithContext(ctx))
	if err != nil {
		return models.Reservation{}, err
	}
	if err := resp.Throw(); err != nil {
		return models.Reservation{}, fmt.Errorf("reservations: create: %w", err)
	}

	var created models.Reservation
	if err := resp.JSON(&created); err != nil {
		return models.Reservation{}, fmt.Errorf("reservations: create: %w", err)
	}

	logger.Info("reservations: created", "id", created.ID, "date", created.Date, "time", created.Time)
	return created, nil
}

// List fetches the current reservation snapshot. Vendors use this both
// directly and as the polling half of the live feed.
func (s *ReservationService) List(ctx context.Context) ([]models.Reservation, error) {
	resp, err := gateway.Send(httpx.Get(gateway.URL("/reservations/")).WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if err := resp.Throw(); err != nil {
		return nil, fmt.Errorf("reservations: list: %w", err)
	}

	var list []models.Reservation
	if err := resp.JSON(&list); err != nil {
		return nil, fmt.Errorf("reservations: list: %w", err)
	}
	return list, nil
}

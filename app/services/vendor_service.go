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

// VendorService manages the vendor's restaurant profile.
type VendorService struct{}

func NewVendorService() *VendorService {
	return &VendorService{}
}

// SaveSettings replaces the restaurant profile, menu included. Validation
// mirrors the server rules so bad input never leaves the client.
func (s *VendorService) SaveSettings(ctx context.Context, settings models.RestaurantSettings) error {
	if errs := validate.Struct(&settings); validate.HasErrors(errs) {
		return &ValidationError{Fields: errs}
	}
	for i, item := range settings.MenuItems {
		if errs := validate.Struct(&item); validate.HasErrors(errs) {
			keyed := make(map[string]string, len(errs))
			for field, msg := range errs {
				keyed[fmt.Sprintf("menuItems[%d].%s", i, field)] = msg
			}
			return &ValidationError{Fields: keyed}
		}
	}

	resp, err := gateway.Send(httpx.Post(gateway.URL("/restaurant/settings/")).Body(settings).WithContext(ctx))
	if err != nil {
		return err
	}
	if err := resp.Throw(); err != nil {
		return fmt.Errorf("vendor: save settings: %w", err)
	}

	logger.Info("vendor: settings saved", "name", settings.Name, "menu_items", len(settings.MenuItems))
	return nil
}

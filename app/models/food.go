package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Price is a monetary amount. The API serialises decimals inconsistently —
// sometimes as JSON numbers, sometimes as quoted strings — so Price accepts
// both on the wire.
type Price float64

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*p = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("models: price %q: %w", s, err)
		}
		*p = Price(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*p = Price(f)
	return nil
}

// Food is a read-only projection of a menu item. The client never mutates
// foods directly; vendors manage them through the settings endpoint.
type Food struct {
	ID              int    `json:"id"`
	RestaurantID    int    `json:"restaurant,omitempty"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	Price           Price  `json:"price"`
	DiscountPercent int    `json:"discount_percent"`
	DiscountedPrice Price  `json:"discounted_price"`
	Image           string `json:"image,omitempty"`
}

// EffectivePrice is the amount a single unit actually costs:
// the discounted price when a discount applies, the list price otherwise.
func (f Food) EffectivePrice() float64 {
	if f.DiscountPercent > 0 {
		return float64(f.DiscountedPrice)
	}
	return float64(f.Price)
}

// Restaurant is a read-only projection from GET /restaurants-public/.
type Restaurant struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Foods       []Food `json:"foods,omitempty"`
}

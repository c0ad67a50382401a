package models

import (
	"bytes"
	"encoding/json"
)

// CartLine is one food/quantity pairing within a cart.
//
// This is the single normalized line shape. The wire has two historical
// shapes — server lines `{id, food: {...}, quantity}` and flat guest lines
// `{id, name, price, ..., quantity}` where id is the FOOD id — and both
// decode into this struct, so nothing downstream ever branches on shape.
type CartLine struct {
	LineID   int  `json:"id,omitempty"` // server-side line id, 0 for guest lines
	Food     Food `json:"food"`
	Quantity int  `json:"quantity"`
}

func (l *CartLine) UnmarshalJSON(data []byte) error {
	var probe struct {
		ID       int             `json:"id"`
		Food     json.RawMessage `json:"food"`
		Quantity int             `json:"quantity"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	if len(probe.Food) > 0 && !bytes.Equal(bytes.TrimSpace(probe.Food), []byte("null")) {
		// Nested server shape.
		var f Food
		if err := json.Unmarshal(probe.Food, &f); err != nil {
			return err
		}
		l.LineID = probe.ID
		l.Food = f
		l.Quantity = probe.Quantity
		return nil
	}

	// Flat guest shape: the whole object is the food, id included.
	var f Food
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	l.LineID = 0
	l.Food = f
	l.Quantity = probe.Quantity
	return nil
}

// Matches reports whether this line is for the given food id.
func (l CartLine) Matches(foodID int) bool { return l.Food.ID == foodID }

// Subtotal is quantity × effective unit price.
func (l CartLine) Subtotal() float64 {
	return float64(l.Quantity) * l.Food.EffectivePrice()
}

// Cart is an ordered collection of cart lines. The API returns it either as
// a bare array or wrapped in `{"items": [...]}`; both decode the same way.
type Cart []CartLine

func (c *Cart) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var wrapped struct {
			Items []CartLine `json:"items"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return err
		}
		*c = wrapped.Items
		return nil
	}
	var lines []CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	*c = lines
	return nil
}

// Total derives the cart total. Never stored, always recomputed.
func (c Cart) Total() float64 {
	var sum float64
	for _, l := range c {
		sum += l.Subtotal()
	}
	return sum
}

// Find returns the index of the line for foodID, or -1.
func (c Cart) Find(foodID int) int {
	for i, l := range c {
		if l.Matches(foodID) {
			return i
		}
	}
	return -1
}

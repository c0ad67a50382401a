package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sofreh/app/models"
)

func TestPrice_AcceptsBothWireForms(t *testing.T) {
	cases := map[string]float64{
		`12000`:     12000,
		`"12000"`:   12000,
		`"120.50"`:  120.50,
		`null`:      0,
		`""`:        0,
	}
	for raw, want := range cases {
		var p models.Price
		require.NoError(t, json.Unmarshal([]byte(raw), &p), "input %s", raw)
		assert.Equal(t, want, float64(p), "input %s", raw)
	}
}

func TestPrice_RejectsNonNumericString(t *testing.T) {
	var p models.Price
	assert.Error(t, json.Unmarshal([]byte(`"twelve"`), &p))
}

func TestEffectivePrice(t *testing.T) {
	full := models.Food{Price: 10000}
	assert.Equal(t, 10000.0, full.EffectivePrice())

	discounted := models.Food{Price: 10000, DiscountPercent: 20, DiscountedPrice: 8000}
	assert.Equal(t, 8000.0, discounted.EffectivePrice())
}

func TestCartLine_NestedServerShape(t *testing.T) {
	raw := `{"id":31,"food":{"id":7,"name":"kebab","price":"12000","discount_percent":0},"quantity":2}`

	var l models.CartLine
	require.NoError(t, json.Unmarshal([]byte(raw), &l))
	assert.Equal(t, 31, l.LineID)
	assert.Equal(t, 7, l.Food.ID)
	assert.Equal(t, "kebab", l.Food.Name)
	assert.Equal(t, 24000.0, l.Subtotal())
}

func TestCartLine_FlatGuestShape(t *testing.T) {
	// Flat lines carry the FOOD id in "id" and no nested object.
	raw := `{"id":7,"name":"kebab","price":12000,"quantity":3}`

	var l models.CartLine
	require.NoError(t, json.Unmarshal([]byte(raw), &l))
	assert.Equal(t, 0, l.LineID)
	assert.Equal(t, 7, l.Food.ID)
	assert.Equal(t, 3, l.Quantity)
}

func TestCart_BareArrayAndWrappedForms(t *testing.T) {
	array := `[{"food":{"id":1,"price":100},"quantity":2}]`
	wrapped := `{"items":[{"food":{"id":1,"price":100},"quantity":2}]}`

	var a, w models.Cart
	require.NoError(t, json.Unmarshal([]byte(array), &a))
	require.NoError(t, json.Unmarshal([]byte(wrapped), &w))
	assert.Equal(t, a, w)
	assert.Equal(t, 200.0, a.Total())
}

func TestCart_Find(t *testing.T) {
	c := models.Cart{
		{Food: models.Food{ID: 1}, Quantity: 1},
		{Food: models.Food{ID: 9}, Quantity: 2},
	}
	assert.Equal(t, 1, c.Find(9))
	assert.Equal(t, -1, c.Find(404))
}

func TestReservationKey(t *testing.T) {
	withID := models.Reservation{ID: 42, Name: "Sara", Date: "2026-09-01", Time: "19:00", Phone: "09123456789"}
	assert.Equal(t, "id:42", withID.Key())

	pushed := models.Reservation{Name: "Sara", Date: "2026-09-01", Time: "19:00", Phone: "09123456789"}
	assert.Equal(t, "Sara|2026-09-01|19:00|09123456789", pushed.Key())
}

func TestPaymentResultPaid(t *testing.T) {
	assert.True(t, models.PaymentResult{Status: "success"}.Paid())
	assert.False(t, models.PaymentResult{Status: "failed"}.Paid())
}

func TestUserIsVendor(t *testing.T) {
	assert.False(t, models.User{Role: "customer"}.IsVendor())
	assert.True(t, models.User{Role: "vendor"}.IsVendor())
	assert.True(t, models.User{Role: "admin"}.IsVendor())
}

package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sofreh/app/models"
	"github.com/shashiranjanraj/sofreh/app/services"
	"github.com/shashiranjanraj/sofreh/pkg/credentials"
	"github.com/shashiranjanraj/sofreh/pkg/testkit"
)

// ─── Auth ─────────────────────────────────────────────────────────────────────

func TestLogin_StoresPairAndReturnsProfile(t *testing.T) {
	testkit.TempDataDir(t)
	tr := testkit.Install(t,
		testkit.Stub{Method: "POST", Path: "/login/", Body: `{"access":"acc-1","refresh":"ref-1"}`},
		testkit.Stub{Method: "GET", Path: "/me/", Body: `{"id":1,"username":"sara","role":"customer"}`},
	)

	user, err := services.NewAuthService().Login(context.Background(), "sara", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "sara", user.Username)

	assert.Equal(t, "acc-1", credentials.Access())
	assert.Equal(t, "ref-1", credentials.Refresh())

	calls := tr.Calls()
	require.Len(t, calls, 2)
	assert.Empty(t, calls[0].Bearer, "login itself must not carry a bearer")
	assert.Equal(t, "acc-1", calls[1].Bearer)
}

func TestLogin_WrongPassword(t *testing.T) {
	testkit.TempDataDir(t)
	testkit.Install(t,
		testkit.Stub{Method: "POST", Path: "/login/", Status: 401, Body: `{"detail":"No active account found"}`},
	)

	_, err := services.NewAuthService().Login(context.Background(), "sara", "wrongpass")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	assert.True(t, credentials.Pair().Empty())
}

func TestLogin_ValidatesBeforeSending(t *testing.T) {
	testkit.TempDataDir(t)
	tr := testkit.Install(t)

	_, err := services.NewAuthService().Login(context.Background(), "ab", "short")
	ve, ok := services.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "username")
	assert.Contains(t, ve.Fields, "password")
	assert.Empty(t, tr.Calls(), "invalid input must never reach the wire")
}

func TestRegister_ThenLogsIn(t *testing.T) {
	testkit.TempDataDir(t)
	testkit.Install(t,
		testkit.Stub{Method: "POST", Path: "/register/", Status: 201, Body: `{"id":2,"username":"omid"}`},
		testkit.Stub{Method: "POST", Path: "/login/", Body: `{"access":"acc-2","refresh":"ref-2"}`},
		testkit.Stub{Method: "GET", Path: "/me/", Body: `{"id":2,"username":"omid","role":"customer"}`},
	)

	user, err := services.NewAuthService().Register(context.Background(), "omid", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "omid", user.Username)
	assert.Equal(t, "acc-2", credentials.Access())
}

func TestLogout_ClearsCredentials(t *testing.T) {
	testkit.TempDataDir(t)
	testkit.SeedCredentials(t, "acc-1", "ref-1")

	require.NoError(t, services.NewAuthService().Logout())
	assert.True(t, credentials.Pair().Empty())
}

// ─── Catalog ──────────────────────────────────────────────────────────────────

func TestCatalog_FoodLookup(t *testing.T) {
	testkit.TempDataDir(t)
	testkit.Install(t, testkit.Stub{
		Method: "GET", Path: "/foods/", Repeat: 2,
		Body: `[{"id":7,"name":"kebab","price":"12000"},{"id":9,"name":"ash","price":5000}]`,
	})

	svc := services.NewCatalogService()
	f, ok, err := svc.Food(context.Background(), 9)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ash", f.Name)
	assert.Equal(t, 5000.0, float64(f.Price))

	_, ok, err = svc.Food(context.Background(), 404)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCatalog_Restaurants(t *testing.T) {
	testkit.TempDataDir(t)
	testkit.Install(t, testkit.Stub{
		Method: "GET", Path: "/restaurants-public/",
		Body: `[{"id":1,"name":"Sofreh House","foods":[{"id":7,"price":100}]}]`,
	})

	list, err := services.NewCatalogService().Restaurants(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Sofreh House", list[0].Name)
	assert.Len(t, list[0].Foods, 1)
}

// ─── Orders ───────────────────────────────────────────────────────────────────

func TestOrder_EmptyIsRejectedLocally(t *testing.T) {
	testkit.TempDataDir(t)
	tr := testkit.Install(t)

	_, err := services.NewOrderService().Create(context.Background(), 1, nil)
	assert.ErrorIs(t, err, services.ErrEmptyOrder)
	assert.Empty(t, tr.Calls())
}

func TestOrder_FullFlow(t *testing.T) {
	testkit.TempDataDir(t)
	testkit.SeedCredentials(t, "acc-1", "ref-1")
	tr := testkit.Install(t,
		testkit.Stub{Method: "POST", Path: "/orders/", Status: 201, Body: `{"uuid":"ord-123"}`},
		testkit.Stub{Method: "POST", Path: "/orders/ord-123/checkout/", Body: `{"order_uuid":"pay-456"}`},
		testkit.Stub{Method: "POST", Path: "/payments/verify/", Body: `{"status":"success","order_uuid":"ord-123"}`},
	)

	ctx := context.Background()
	svc := services.NewOrderService()

	created, err := svc.Create(ctx, 1, []models.OrderItem{{FoodID: 7, Quantity: 2}})
	require.NoError(t, err)
	assert.Equal(t, "ord-123", created.UUID)

	checkout, err := svc.Checkout(ctx, created.UUID, models.CheckoutRequest{
		Address: "12 Valiasr St, Tehran",
		Phone:   "09123456789",
	})
	require.NoError(t, err)
	assert.Equal(t, "pay-456", checkout.OrderUUID)

	payment, err := svc.Pay(ctx, checkout.OrderUUID, models.Card{
		Number: "6037991234567890",
		CVV2:   "123",
		OTP:    "123456",
	})
	require.NoError(t, err)
	assert.True(t, payment.Paid())

	tr.AssertAllConsumed(t)
	assert.JSONEq(t,
		`{"ref_code":"pay-456","card_number":"6037991234567890","cvv2":"123","otp":"123456"}`,
		tr.Calls()[2].Body)
}

func TestOrder_CheckoutValidation(t *testing.T) {
	testkit.TempDataDir(t)
	tr := testkit.Install(t)

	_, err := services.NewOrderService().Checkout(context.Background(), "ord-123", models.CheckoutRequest{
		Address: "abc", // too short
		Phone:   "12345",
	})
	ve, ok := services.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "address")
	assert.Contains(t, ve.Fields, "phone")
	assert.Empty(t, tr.Calls())
}

func TestOrder_DeclinedPaymentIsAResult(t *testing.T) {
	testkit.TempDataDir(t)
	testkit.SeedCredentials(t, "acc-1", "ref-1")
	testkit.Install(t,
		testkit.Stub{Method: "POST", Path: "/payments/verify/", Body: `{"status":"failed","message":"insufficient funds"}`},
	)

	payment, err := services.NewOrderService().Pay(context.Background(), "pay-456", models.Card{
		Number: "6037991234567890",
		CVV2:   "123",
		OTP:    "123456",
	})
	require.NoError(t, err)
	assert.False(t, payment.Paid())
	assert.Equal(t, "insufficient funds", payment.Message)
}

func TestOrder_PayRejectsBadCardLocally(t *testing.T) {
	testkit.TempDataDir(t)
	tr := testkit.Install(t)

	_, err := services.NewOrderService().Pay(context.Background(), "pay-456", models.Card{
		Number: "not-a-card",
		CVV2:   "12",
		OTP:    "99",
	})
	ve, ok := services.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "card_number")
	assert.Contains(t, ve.Fields, "cvv2")
	assert.Contains(t, ve.Fields, "otp")
	assert.Empty(t, tr.Calls())
}

// ─── Reservations ─────────────────────────────────────────────────────────────

func TestReservation_CreateEchoesServerRecord(t *testing.T) {
	testkit.TempDataDir(t)
	testkit.SeedCredentials(t, "acc-1", "ref-1")
	testkit.Install(t, testkit.Stub{
		Method: "POST", Path: "/reservations/", Status: 201,
		Body: `{"id":42,"date":"2026-09-01","time":"19:00","guests":4,"name":"Sara","phone":"09123456789","created_at":"2026-08-30T18:00:00Z"}`,
	})

	created, err := services.NewReservationService().Create(context.Background(), models.Reservation{
		Date:   "2026-09-01",
		Time:   "19:00",
		Guests: 4,
		Name:   "Sara",
		Phone:  "09123456789",
	})
	require.NoError(t, err)
	assert.Equal(t, 42, created.ID)
	assert.Equal(t, "id:42", created.Key())
}

func TestReservation_GuestsOutOfRange(t *testing.T) {
	testkit.TempDataDir(t)
	tr := testkit.Install(t)

	_, err := services.NewReservationService().Create(context.Background(), models.Reservation{
		Date:   "2026-09-01",
		Time:   "19:00",
		Guests: 80,
		Name:   "Sara",
		Phone:  "09123456789",
	})
	ve, ok := services.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "guests")
	assert.Empty(t, tr.Calls())
}

// ─── Vendor ───────────────────────────────────────────────────────────────────

func TestVendor_SaveSettings(t *testing.T) {
	testkit.TempDataDir(t)
	testkit.SeedCredentials(t, "acc-1", "ref-1")
	tr := testkit.Install(t,
		testkit.Stub{Method: "POST", Path: "/restaurant/settings/", Body: `{"status":"ok"}`},
	)

	err := services.NewVendorService().SaveSettings(context.Background(), models.RestaurantSettings{
		Name:        "Sofreh House",
		Address:     "12 Valiasr St, Tehran",
		Phone:       "09123456789",
		Description: "Traditional Persian food, made daily.",
		MenuItems:   []models.MenuItem{{Name: "Kebab", Price: "12000"}},
	})
	require.NoError(t, err)
	tr.AssertAllConsumed(t)
}

func TestVendor_MenuItemErrorsAreKeyedByIndex(t *testing.T) {
	testkit.TempDataDir(t)
	tr := testkit.Install(t)

	err := services.NewVendorService().SaveSettings(context.Background(), models.RestaurantSettings{
		Name:        "Sofreh House",
		Address:     "12 Valiasr St, Tehran",
		Phone:       "09123456789",
		Description: "Traditional Persian food, made daily.",
		MenuItems:   []models.MenuItem{{Name: "K", Price: "not-a-number"}},
	})
	ve, ok := services.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "menuItems[0].name")
	assert.Contains(t, ve.Fields, "menuItems[0].price")
	assert.Empty(t, tr.Calls())
}

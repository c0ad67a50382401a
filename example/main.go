// Package main shows sofreh used as a library instead of through the CLI:
// log in, browse the catalog, fill the cart and pay.
//
// To run this example against a local API:
//
//	API_BASE_URL=http://localhost:8000/api go run .
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/shashiranjanraj/sofreh/app/models"
	"github.com/shashiranjanraj/sofreh/app/services"
	"github.com/shashiranjanraj/sofreh/internal/cart"
	"github.com/shashiranjanraj/sofreh/pkg/storage"
)

func main() {
	ctx := context.Background()
	storage.Connect()

	auth := services.NewAuthService()
	user, err := auth.Login(ctx, "demo", "demo-password")
	if err != nil {
		log.Fatalf("login: %v", err)
	}
	fmt.Printf("logged in as %s (%s)\n", user.Username, user.Role)

	catalog := services.NewCatalogService()
	foods, err := catalog.Foods(ctx)
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}
	if len(foods) == 0 {
		log.Fatal("catalog is empty")
	}

	store := cart.NewStore()
	store.Load(ctx)
	if err := store.Add(ctx, foods[0], 2); err != nil {
		log.Fatalf("cart: %v", err)
	}
	fmt.Printf("cart total: %.0f\n", store.Total())

	orders := services.NewOrderService()
	items := make([]models.OrderItem, 0, store.Len())
	for _, line := range store.Lines() {
		items = append(items, models.OrderItem{FoodID: line.Food.ID, Quantity: line.Quantity})
	}

	created, err := orders.Create(ctx, foods[0].RestaurantID, items)
	if err != nil {
		log.Fatalf("create order: %v", err)
	}
	checkout, err := orders.Checkout(ctx, created.UUID, models.CheckoutRequest{
		Address: "12 Valiasr St, Tehran",
		Phone:   "09123456789",
	})
	if err != nil {
		log.Fatalf("checkout: %v", err)
	}
	payment, err := orders.Pay(ctx, checkout.OrderUUID, models.Card{
		Number: "6037991234567890",
		CVV2:   "123",
		OTP:    "123456",
	})
	if err != nil {
		log.Fatalf("pay: %v", err)
	}

	if payment.Paid() {
		fmt.Printf("order %s paid\n", created.UUID)
		store.Clear() //nolint:errcheck
	} else {
		fmt.Printf("payment declined: %s\n", payment.Message)
	}
}

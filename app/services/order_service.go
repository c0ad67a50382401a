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

// OrderService drives the create → checkout → pay flow against the remote
// API. All three steps require an authenticated session.
type OrderService struct{}

func NewOrderService() *OrderService {
	return &OrderService{}
}

// Create opens a new order for the given restaurant.
func (s *OrderService) Create(ctx context.Context, restaurantID int, items []models.OrderItem) (models.OrderCreated, error) {
	var created models.OrderCreated
	if len(items) == 0 {
		return created, ErrEmptyOrder
	}

	body := models.OrderRequest{Restaurant: restaurantID, Items: items}
	resp, err := gateway.Send(httpx.Post(gateway.URL("/orders/")).Body(body).WithContext(ctx))
	if err != nil {
		return created, err
	}
	if err := resp.Throw(); err != nil {
		return created, fmt.Errorf("orders: create: %w", err)
	}
	if err := resp.JSON(&created); err != nil {
		return created, fmt.Errorf("orders: create: %w", err)
	}

	logger.Info("orders: created", "uuid", created.UUID, "restaurant", restaurantID, "items", len(items))
	return created, nil
}

// Checkout submits the delivery details and returns the payment reference.
// The request is validated locally before anything is sent.
func (s *OrderService) Checkout(ctx context.Context, uuid string, req models.CheckoutRequest) (models.CheckoutResult, error) {
	var result models.CheckoutResult
	if errs := validate.Struct(&req); validate.HasErrors(errs) {
		return result, &ValidationError{Fields: errs}
	}

	url := gateway.URL("/orders/" + uuid + "/checkout/")
	resp, err := gateway.Send(httpx.Post(url).Body(req).WithContext(ctx))
	if err != nil {
		return result, err
	}
	if err := resp.Throw(); err != nil {
		return result, fmt.Errorf("orders: checkout: %w", err)
	}
	if err := resp.JSON(&result); err != nil {
		return result, fmt.Errorf("orders: checkout: %w", err)
	}

	logger.Info("orders: checked out", "uuid", uuid, "ref", result.OrderUUID)
	return result, nil
}

// Pay runs the simulated payment gateway verification for a checkout
// reference. The card details are validated locally first; a declined
// payment is a result, not an error.
func (s *OrderService) Pay(ctx context.Context, refCode string, card models.Card) (models.PaymentResult, error) {
	var result models.PaymentResult

	body := models.PaymentVerifyRequest{
		RefCode:    refCode,
		CardNumber: card.Number,
		CVV2:       card.CVV2,
		OTP:        card.OTP,
	}
	if errs := validate.Struct(&body); validate.HasErrors(errs) {
		return result, &ValidationError{Fields: errs}
	}

	resp, err := gateway.Send(httpx.Post(gateway.URL("/payments/verify/")).Body(body).WithContext(ctx))
	if err != nil {
		return result, err
	}
	if err := resp.Throw(); err != nil {
		return result, fmt.Errorf("orders: pay: %w", err)
	}
	if err := resp.JSON(&result); err != nil {
		return result, fmt.Errorf("orders: pay: %w", err)
	}

	logger.Info("orders: payment verified", "ref", refCode, "status", result.Status)
	return result, nil
}

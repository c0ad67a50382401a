package models

// OrderItem is one line of an order creation payload.
type OrderItem struct {
	FoodID   int `json:"food_id"`
	Quantity int `json:"quantity"`
}

// OrderRequest is the body of POST /orders/.
type OrderRequest struct {
	Restaurant int         `json:"restaurant"`
	Items      []OrderItem `json:"items"`
}

// OrderCreated is the response of POST /orders/.
type OrderCreated struct {
	UUID string `json:"uuid"`
}

// CheckoutRequest is the body of POST /orders/{uuid}/checkout/.
type CheckoutRequest struct {
	Address string `json:"address" validate:"required,min=5"`
	Phone   string `json:"phone"   validate:"required,regex=^0\d{10}$"`
	Note    string `json:"note"    validate:"nullable,max=500"`
}

// CheckoutResult carries the payment reference the fake gateway expects.
type CheckoutResult struct {
	OrderUUID string `json:"order_uuid"`
}

// Card is the card input the fake gateway asks for.
type Card struct {
	Number string
	CVV2   string
	OTP    string
}

// PaymentVerifyRequest is the body of POST /payments/verify/. The digit
// rules mirror the gateway's own checks, so a typo fails locally instead
// of coming back as a 400.
type PaymentVerifyRequest struct {
	RefCode    string `json:"ref_code"    validate:"required"`
	CardNumber string `json:"card_number" validate:"required,regex=^\d{12,19}$"`
	CVV2       string `json:"cvv2"        validate:"required,regex=^\d{3,4}$"`
	OTP        string `json:"otp"         validate:"required,regex=^\d{6}$"`
}

// PaymentResult is the outcome of the simulated gateway verification.
type PaymentResult struct {
	Status    string `json:"status"` // "success" | "failed"
	Message   string `json:"message,omitempty"`
	OrderUUID string `json:"order_uuid,omitempty"`
}

// Paid reports whether the simulated payment went through.
func (p PaymentResult) Paid() bool { return p.Status == "success" }

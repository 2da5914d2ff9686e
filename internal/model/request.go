package model

// RegisterAccountRequest is the body of POST /accounts.
type RegisterAccountRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" binding:"required,email"`
}

// RecordUsageRequest is the body of POST /usage.
type RecordUsageRequest struct {
	SecondsConsumed int64 `json:"seconds_consumed" binding:"min=0"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string `json:"message" binding:"required,max=4000"`
}

// CreateOrderRequest is the body of POST /orders.
type CreateOrderRequest struct {
	Provider string `json:"provider" binding:"omitempty,oneof=razorpay stripe alipay"`
}

// ConfirmOrderRequest is the client-side checkout callback.
type ConfirmOrderRequest struct {
	OrderID   string `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// GrantPremiumRequest is the body of the admin grant endpoint.
type GrantPremiumRequest struct {
	Months int `json:"months" binding:"omitempty,min=1,max=36"`
}

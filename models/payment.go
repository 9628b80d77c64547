package models

// PaymentSession is a charge session opened with the payment gateway.
type PaymentSession struct {
	OrderRef     string `json:"orderRef"`
	GatewayRef   string `json:"gatewayRef,omitempty"`
	ClientSecret string `json:"clientSecret,omitempty"`
	Amount       int64  `json:"amount"` // minor units
	Currency     string `json:"currency"`
	// Signature binds OrderRef to GatewayRef. The checkout echoes it back
	// with GatewayRef as the payment reference.
	Signature string `json:"signature,omitempty"`
}

// PaymentResult is what the checkout reports back on success.
type PaymentResult struct {
	OrderRef   string `json:"orderRef" binding:"required"`
	PaymentRef string `json:"paymentRef" binding:"required"`
	Signature  string `json:"signature" binding:"required"`
}

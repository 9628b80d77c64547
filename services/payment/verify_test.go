package payment

import (
	"context"
	"errors"
	"testing"

	"maidbook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap/zaptest"
)

func succeededIntent() *stripe.PaymentIntent {
	return &stripe.PaymentIntent{
		ID:       "pi_1",
		Status:   stripe.PaymentIntentStatusSucceeded,
		Amount:   300000,
		Currency: "inr",
		Metadata: map[string]string{"order_ref": "order_1"},
	}
}

func TestStripeVerifier(t *testing.T) {
	signer := NewSigner("test_secret")
	sess := models.PaymentSession{OrderRef: "order_1", GatewayRef: "pi_1", Amount: 300000, Currency: "INR"}
	good := models.PaymentResult{OrderRef: "order_1", PaymentRef: "pi_1", Signature: signer.Sign("order_1", "pi_1")}

	tests := []struct {
		name   string
		res    models.PaymentResult
		intent func(pi *stripe.PaymentIntent)
		want   bool
		calls  int
	}{
		{name: "succeeded", res: good, want: true, calls: 1},
		{
			name:  "payment ref stripe never issued",
			res:   models.PaymentResult{OrderRef: "order_1", PaymentRef: "not_a_stripe_charge", Signature: signer.Sign("order_1", "not_a_stripe_charge")},
			calls: 0,
		},
		{
			name:  "forged signature",
			res:   models.PaymentResult{OrderRef: "order_1", PaymentRef: "pi_1", Signature: signer.Sign("order_2", "pi_1")},
			calls: 0,
		},
		{
			name:   "requires payment method",
			res:    good,
			intent: func(pi *stripe.PaymentIntent) { pi.Status = stripe.PaymentIntentStatusRequiresPaymentMethod },
			calls:  1,
		},
		{
			name:   "processing",
			res:    good,
			intent: func(pi *stripe.PaymentIntent) { pi.Status = stripe.PaymentIntentStatusProcessing },
			calls:  1,
		},
		{
			name:   "different amount",
			res:    good,
			intent: func(pi *stripe.PaymentIntent) { pi.Amount = 100 },
			calls:  1,
		},
		{
			name:   "different currency",
			res:    good,
			intent: func(pi *stripe.PaymentIntent) { pi.Currency = "usd" },
			calls:  1,
		},
		{
			name:   "other order",
			res:    good,
			intent: func(pi *stripe.PaymentIntent) { pi.Metadata["order_ref"] = "order_2" },
			calls:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			var gotID string
			v := NewStripeVerifier(signer, zaptest.NewLogger(t), func(id string, p *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
				calls++
				gotID = id
				pi := succeededIntent()
				if tt.intent != nil {
					tt.intent(pi)
				}
				return pi, nil
			})

			ok, err := v.VerifyPayment(context.Background(), sess, tt.res)

			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, tt.calls, calls)
			if calls > 0 {
				assert.Equal(t, "pi_1", gotID)
			}
		})
	}
}

func TestStripeVerifier_FetchError(t *testing.T) {
	signer := NewSigner("test_secret")
	sess := models.PaymentSession{OrderRef: "order_1", GatewayRef: "pi_1", Amount: 300000, Currency: "INR"}
	boom := errors.New("stripe unavailable")
	v := NewStripeVerifier(signer, zaptest.NewLogger(t), func(id string, p *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
		return nil, boom
	})

	ok, err := v.VerifyPayment(context.Background(), sess,
		models.PaymentResult{OrderRef: "order_1", PaymentRef: "pi_1", Signature: signer.Sign("order_1", "pi_1")})

	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)
}

package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigner(t *testing.T) {
	s := NewSigner("test_secret")

	sig := s.Sign("order_1", "pi_1")
	require.Len(t, sig, 64)

	ok, err := s.Valid("order_1", "pi_1", sig)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Valid("order_1", "pi_1", " "+sig+" ")
	require.NoError(t, err)
	assert.True(t, ok)

	tests := []struct {
		name                string
		order, payment, sig string
	}{
		{"swapped refs", "pi_1", "order_1", sig},
		{"other payment", "order_1", "pi_2", sig},
		{"not hex", "order_1", "pi_1", "zz"},
		{"truncated", "order_1", "pi_1", sig[:62]},
		{"empty signature", "order_1", "pi_1", ""},
		{"empty payment", "order_1", "", sig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := s.Valid(tt.order, tt.payment, tt.sig)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestSigner_SeparatorMatters(t *testing.T) {
	s := NewSigner("s")
	assert.NotEqual(t, s.Sign("ab", "c"), s.Sign("a", "bc"))
}

func TestSigner_NoSecret(t *testing.T) {
	s := NewSigner("")
	ok, err := s.Valid("order_1", "pi_1", "00")
	assert.Error(t, err)
	assert.False(t, ok)
}

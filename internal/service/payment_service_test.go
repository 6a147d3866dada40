package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	lastAmount   int64
	lastCurrency string
	lastReceipt  string
	err          error
}

func (g *stubGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string, _ map[string]interface{}) (*GatewayOrder, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.lastAmount = amount
	g.lastCurrency = currency
	g.lastReceipt = receipt
	return &GatewayOrder{OrderID: "order_stub", Amount: amount, Currency: currency}, nil
}

func newService(gateway PaymentGateway, secret string) *PaymentService {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewPaymentService(gateway, secret, "INR", log)
}

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCreateOrderConvertsToMinorUnits(t *testing.T) {
	gateway := &stubGateway{}
	s := newService(gateway, "secret")

	order, err := s.CreateOrder(context.Background(), decimal.RequireFromString("500"), "receipt_1", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), order.Amount)
	assert.Equal(t, "INR", gateway.lastCurrency)
	assert.Equal(t, "receipt_1", gateway.lastReceipt)

	_, err = s.CreateOrder(context.Background(), decimal.RequireFromString("499.99"), "receipt_2", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(49999), gateway.lastAmount)
}

func TestCreateOrderPropagatesGatewayError(t *testing.T) {
	gateway := &stubGateway{err: assert.AnError}
	s := newService(gateway, "secret")

	_, err := s.CreateOrder(context.Background(), decimal.RequireFromString("100"), "receipt", nil)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestVerifyPaymentAcceptsValidSignature(t *testing.T) {
	s := newService(&stubGateway{}, "secret")

	paymentID, err := s.VerifyPayment("order_1", "pay_1", sign("secret", "order_1", "pay_1"))
	require.NoError(t, err)
	assert.Equal(t, "pay_1", paymentID)
}

func TestVerifyPaymentIsDeterministic(t *testing.T) {
	s := newService(&stubGateway{}, "secret")
	signature := sign("secret", "order_1", "pay_1")

	for i := 0; i < 3; i++ {
		_, err := s.VerifyPayment("order_1", "pay_1", signature)
		require.NoError(t, err)
	}
}

func TestVerifyPaymentRejectsTampering(t *testing.T) {
	s := newService(&stubGateway{}, "secret")
	valid := sign("secret", "order_1", "pay_1")

	// Flip the last nibble of the hex digest.
	altered := valid[:len(valid)-1]
	if valid[len(valid)-1] == 'a' {
		altered += "b"
	} else {
		altered += "a"
	}

	_, err := s.VerifyPayment("order_1", "pay_1", altered)
	assert.ErrorIs(t, err, ErrSignatureMismatch)

	// A signature for different identifiers must not transfer.
	_, err = s.VerifyPayment("order_2", "pay_1", valid)
	assert.ErrorIs(t, err, ErrSignatureMismatch)

	_, err = s.VerifyPayment("order_1", "pay_2", valid)
	assert.ErrorIs(t, err, ErrSignatureMismatch)
}

func TestVerifyPaymentRejectsMissingFields(t *testing.T) {
	s := newService(&stubGateway{}, "secret")
	valid := sign("secret", "order_1", "pay_1")

	_, err := s.VerifyPayment("", "pay_1", valid)
	assert.ErrorIs(t, err, ErrMissingPaymentFields)

	_, err = s.VerifyPayment("order_1", "", valid)
	assert.ErrorIs(t, err, ErrMissingPaymentFields)

	_, err = s.VerifyPayment("order_1", "pay_1", "")
	assert.ErrorIs(t, err, ErrMissingPaymentFields)
}

func TestVerifyPaymentRequiresConfiguredSecret(t *testing.T) {
	s := newService(&stubGateway{}, "")

	_, err := s.VerifyPayment("order_1", "pay_1", sign("", "order_1", "pay_1"))
	assert.ErrorIs(t, err, ErrPaymentConfig)
}

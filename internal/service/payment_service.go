package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrMissingPaymentFields = errors.New("missing required payment verification fields")
	ErrPaymentConfig        = errors.New("payment verification configuration error")
	ErrSignatureMismatch    = errors.New("payment signature verification failed")
)

// GatewayOrder is the order reference returned by the payment gateway.
// Amount is in the gateway's minor units (paise for INR).
type GatewayOrder struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// PaymentGateway creates payment orders with the external gateway. Wrapped in
// an interface so tests run against a fake instead of the live API.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]interface{}) (*GatewayOrder, error)
}

// PaymentService creates gateway orders and verifies checkout callbacks.
// Verification is stateless: an HMAC-SHA256 over "orderID|paymentID" with the
// shared gateway secret, hex encoded, compared in constant time. It is the
// trust boundary between "the client claims a payment happened" and "the
// payment is provably authentic".
type PaymentService struct {
	gateway  PaymentGateway
	secret   string
	currency string
	log      *logrus.Logger
}

func NewPaymentService(gateway PaymentGateway, secret, currency string, log *logrus.Logger) *PaymentService {
	return &PaymentService{
		gateway:  gateway,
		secret:   secret,
		currency: currency,
		log:      log,
	}
}

// CreateOrder registers a new order with the gateway, scaled to minor units
// (fee 500.00 becomes 50000). Each call creates a fresh order; abandoned
// orders stay gateway-side with no local record.
func (s *PaymentService) CreateOrder(ctx context.Context, fee decimal.Decimal, receipt string, notes map[string]interface{}) (*GatewayOrder, error) {
	amountMinor := fee.Mul(decimal.NewFromInt(100)).IntPart()

	order, err := s.gateway.CreateOrder(ctx, amountMinor, s.currency, receipt, notes)
	if err != nil {
		s.log.Warnf("Failed to create payment order: %+v", err)
		return nil, err
	}

	s.log.Infof("Payment order created: id=%s, amount=%d %s", order.OrderID, order.Amount, order.Currency)
	return order, nil
}

// VerifyPayment validates the signature the client received from checkout.
// Returns the payment ID on success so callers can link it to the
// appointment they are about to persist.
func (s *PaymentService) VerifyPayment(orderID, paymentID, signature string) (string, error) {
	if orderID == "" || paymentID == "" || signature == "" {
		s.log.Warnf("Payment verification rejected: has_order_id=%t, has_payment_id=%t, has_signature=%t",
			orderID != "", paymentID != "", signature != "")
		return "", ErrMissingPaymentFields
	}

	if s.secret == "" {
		s.log.Error("Payment gateway secret is not configured")
		return "", ErrPaymentConfig
	}

	expected := s.expectedSignature(orderID, paymentID)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		// Never log the full signatures, a prefix is enough for correlation.
		s.log.Warnf("Payment signature mismatch for order %s, signature prefix %s", orderID, prefix(signature, 10))
		return "", ErrSignatureMismatch
	}

	return paymentID, nil
}

func (s *PaymentService) expectedSignature(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

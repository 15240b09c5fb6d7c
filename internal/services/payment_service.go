package services

import (
	"math"
	"strings"
	"time"

	"github.com/pollwave/pollwave/internal/models"
)

// PaymentProvider is the upstream payment processor. The concrete
// Stripe implementation lives in internal/payments.
type PaymentProvider interface {
	CreateIntent(amountMinor int64, currency string) (clientSecret string, err error)
	GetIntent(id string) (*IntentStatus, error)
}

type IntentStatus struct {
	Amount    int64
	Currency  string
	Succeeded bool
}

type PaymentStore interface {
	AddPayment(p *models.Payment) error
	ListPayments() ([]*models.Payment, error)
}

type PaymentService struct {
	store    PaymentStore
	provider PaymentProvider
	currency string
	now      func() time.Time
	idGen    func(n int) string
}

func NewPaymentService(store PaymentStore, provider PaymentProvider) *PaymentService {
	return &PaymentService{
		store:    store,
		provider: provider,
		currency: "usd",
		now:      func() time.Time { return time.Now().UTC() },
		idGen:    shortID,
	}
}

// MinorUnits converts a decimal price to the processor's integer
// minor units. The contract is truncation at the cent: 19.999 maps to
// 1999, never 2000. Rounding to a tenth of a cent first keeps binary
// float noise (19.99*100 = 1998.9999...) from eating a cent.
func MinorUnits(price float64) int64 {
	return int64(math.Round(price*1000)) / 10
}

// CreateIntent asks the processor for a card-payable intent and
// returns the client secret. Upstream failures surface as bad-gateway
// errors; there is no retry.
func (s *PaymentService) CreateIntent(price float64) (string, error) {
	if price <= 0 {
		return "", NewInvalidError("price must be positive")
	}
	secret, err := s.provider.CreateIntent(MinorUnits(price), s.currency)
	if err != nil {
		return "", NewBadGatewayError("payment provider: " + err.Error())
	}
	return secret, nil
}

// Record persists a payment confirmation after checking it against
// the processor's own record: the referenced intent must exist, have
// succeeded, and carry the claimed amount.
func (s *PaymentService) Record(p *models.Payment) (*models.Payment, error) {
	if p == nil || strings.TrimSpace(p.Email) == "" || strings.TrimSpace(p.TransactionID) == "" {
		return nil, NewInvalidError("email/transactionId required")
	}
	st, err := s.provider.GetIntent(p.TransactionID)
	if err != nil {
		return nil, NewBadGatewayError("payment provider: " + err.Error())
	}
	if st == nil || !st.Succeeded || st.Amount != MinorUnits(p.Price) {
		return nil, NewInvalidError("payment not verified")
	}
	p.ID = s.idGen(8)
	if p.Currency == "" {
		p.Currency = s.currency
	}
	if p.Date.IsZero() {
		p.Date = s.now()
	}
	if err := s.store.AddPayment(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PaymentService) List() ([]*models.Payment, error) {
	return s.store.ListPayments()
}

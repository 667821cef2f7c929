package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetrental-backend/internal/adapters"
	"fleetrental-backend/internal/audit"
	"fleetrental-backend/internal/clock"
	"fleetrental-backend/internal/domain"
)

type accountingHarness struct {
	svc      AccountingService
	gateway  *adapters.FakePaymentAdapter
	notifier *adapters.InMemoryNotificationAdapter
	trail    *audit.Trail
}

func newAccountingHarness(t *testing.T) *accountingHarness {
	t.Helper()
	clk := clock.NewFixedClock(testPickupTime)
	gateway := adapters.NewFakePaymentAdapter(clk)
	notifier := adapters.NewInMemoryNotificationAdapter()
	trail := audit.NewTrail()
	return &accountingHarness{
		svc:      NewAccountingService(clk, gateway, notifier, trail),
		gateway:  gateway,
		notifier: notifier,
		trail:    trail,
	}
}

func completedRental(t *testing.T) *domain.RentalAgreement {
	t.Helper()
	return &domain.RentalAgreement{
		ID:          1,
		Reservation: testReservation(t, economyClass(t)),
		Vehicle:     testVehicle(economyClass(t)),
		ChargeItems: []domain.ChargeItem{
			{Description: "Base rate (3 days @ USD 30.00/day)", Amount: usd(t, "90.00")},
			{Description: "Late fee (2 hours @ USD 25.00/hour)", Amount: usd(t, "50.00")},
		},
		Completed: true,
	}
}

func TestCreateInvoice(t *testing.T) {
	h := newAccountingHarness(t)
	invoice, err := h.svc.CreateInvoice(completedRental(t))
	require.NoError(t, err)

	assert.Equal(t, 1, invoice.ID)
	assert.Equal(t, domain.InvoiceStatusPending, invoice.Status)
	assert.True(t, invoice.TotalAmount.Equal(usd(t, "140.00")))
	assert.Len(t, invoice.ChargeItems, 2)

	stored, err := h.svc.GetInvoice(invoice.ID)
	require.NoError(t, err)
	assert.Same(t, invoice, stored)
}

func TestAuthorizeDeposit(t *testing.T) {
	h := newAccountingHarness(t)
	invoice, err := h.svc.CreateInvoice(completedRental(t))
	require.NoError(t, err)

	payment := h.svc.AuthorizeDeposit(invoice, usd(t, "150.00"))
	assert.Equal(t, domain.PaymentStatusAuthorized, payment.Status)
	assert.Len(t, h.trail.ByEventType(audit.EventPaymentAuthorization), 1)
}

func TestAuthorizeDepositFailure(t *testing.T) {
	h := newAccountingHarness(t)
	invoice, err := h.svc.CreateInvoice(completedRental(t))
	require.NoError(t, err)

	h.gateway.SetSimulateFailure(true)
	payment := h.svc.AuthorizeDeposit(invoice, usd(t, "150.00"))

	assert.Equal(t, domain.PaymentStatusFailed, payment.Status)
	assert.Len(t, h.trail.ByEventType(audit.EventPaymentFailure), 1)
	assert.Len(t, h.notifier.SentByType(domain.NotificationInvoiceFailed), 1)
}

func TestFinalizePayment(t *testing.T) {
	h := newAccountingHarness(t)
	invoice, err := h.svc.CreateInvoice(completedRental(t))
	require.NoError(t, err)

	assert.True(t, h.svc.FinalizePayment(invoice))
	assert.Equal(t, domain.InvoiceStatusPaid, invoice.Status)
	assert.Len(t, h.trail.ByEventType(audit.EventPaymentCapture), 1)

	successes := h.notifier.SentByType(domain.NotificationInvoiceSuccess)
	require.Len(t, successes, 1)
	assert.Equal(t, "alice@example.com", successes[0].Recipient)

	assert.Len(t, h.svc.ListPaidInvoices(), 1)
	assert.Empty(t, h.svc.ListPendingInvoices())
}

func TestFinalizePaymentFailure(t *testing.T) {
	h := newAccountingHarness(t)
	invoice, err := h.svc.CreateInvoice(completedRental(t))
	require.NoError(t, err)

	h.gateway.SetSimulateFailure(true)
	assert.False(t, h.svc.FinalizePayment(invoice))

	assert.Equal(t, domain.InvoiceStatusFailed, invoice.Status)
	assert.Len(t, h.trail.ByEventType(audit.EventPaymentFailure), 1)
	assert.Len(t, h.notifier.SentByType(domain.NotificationInvoiceFailed), 1)
}

func TestRetryPayment(t *testing.T) {
	h := newAccountingHarness(t)
	invoice, err := h.svc.CreateInvoice(completedRental(t))
	require.NoError(t, err)

	h.gateway.SetSimulateFailure(true)
	require.False(t, h.svc.FinalizePayment(invoice))

	// Only pending invoices may be retried.
	assert.False(t, h.svc.RetryPayment(invoice.ID))

	require.True(t, h.svc.MarkInvoicePending(invoice.ID))
	h.gateway.SetSimulateFailure(false)
	assert.True(t, h.svc.RetryPayment(invoice.ID))
	assert.Equal(t, domain.InvoiceStatusPaid, invoice.Status)

	assert.False(t, h.svc.RetryPayment(99))
	assert.False(t, h.svc.MarkInvoicePending(99))
}

func TestCreateInvoiceCurrencyMismatch(t *testing.T) {
	h := newAccountingHarness(t)
	rental := completedRental(t)
	eur, err := domain.MoneyFromString("5.00", "EUR")
	require.NoError(t, err)
	rental.AddCharge(domain.ChargeItem{Description: "x", Amount: eur})

	_, err = h.svc.CreateInvoice(rental)
	assert.ErrorIs(t, err, domain.ErrCurrencyMismatch)
}

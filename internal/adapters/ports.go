// Package adapters declares the outbound ports the engine depends on
// and in-memory implementations for tests and demos. Real delivery and
// payment gateways live outside this module.
package adapters

import (
	"sync"

	"fleetrental-backend/internal/clock"
	"fleetrental-backend/internal/domain"
	"fleetrental-backend/internal/logger"
)

// NotificationPort sends a notification to a customer. Implementations
// must not block lifecycle operations; a false return means delivery
// was refused, which callers treat as non-fatal.
type NotificationPort interface {
	SendNotification(n domain.Notification) bool
}

// PaymentPort processes payments against invoices built from completed
// rental agreements.
type PaymentPort interface {
	// AuthorizePayment places a hold, e.g. for a deposit at pickup.
	AuthorizePayment(invoice *domain.Invoice, amount domain.Money) *domain.Payment
	// CapturePayment settles a previously authorized payment.
	CapturePayment(payment *domain.Payment) bool
	// ProcessPayment authorizes and captures in one step.
	ProcessPayment(invoice *domain.Invoice, amount domain.Money) *domain.Payment
}

// InMemoryNotificationAdapter records notifications for inspection.
type InMemoryNotificationAdapter struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func NewInMemoryNotificationAdapter() *InMemoryNotificationAdapter {
	return &InMemoryNotificationAdapter{}
}

func (a *InMemoryNotificationAdapter) SendNotification(n domain.Notification) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sent = append(a.sent, n)
	logger.PortCall("notification", "send", "type", string(n.Type), "recipient", n.Recipient)
	return true
}

func (a *InMemoryNotificationAdapter) Sent() []domain.Notification {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.Notification(nil), a.sent...)
}

func (a *InMemoryNotificationAdapter) SentByType(t domain.NotificationType) []domain.Notification {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []domain.Notification
	for _, n := range a.sent {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

func (a *InMemoryNotificationAdapter) SentByRecipient(recipient string) []domain.Notification {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []domain.Notification
	for _, n := range a.sent {
		if n.Recipient == recipient {
			out = append(out, n)
		}
	}
	return out
}

func (a *InMemoryNotificationAdapter) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sent = nil
}

// FakePaymentAdapter simulates a gateway and can be switched into
// failure mode.
type FakePaymentAdapter struct {
	mu              sync.Mutex
	clk             clock.Clock
	simulateFailure bool
	payments        []*domain.Payment
	nextID          int
}

func NewFakePaymentAdapter(clk clock.Clock) *FakePaymentAdapter {
	return &FakePaymentAdapter{clk: clk, nextID: 1}
}

func (a *FakePaymentAdapter) SetSimulateFailure(fail bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.simulateFailure = fail
}

func (a *FakePaymentAdapter) AuthorizePayment(invoice *domain.Invoice, amount domain.Money) *domain.Payment {
	a.mu.Lock()
	defer a.mu.Unlock()
	status := domain.PaymentStatusAuthorized
	if a.simulateFailure {
		status = domain.PaymentStatusFailed
	}
	p := a.record(invoice, amount, status)
	logger.PortResult("payment", "authorize", nil, "invoice_id", invoice.ID, "status", string(status))
	return p
}

func (a *FakePaymentAdapter) CapturePayment(payment *domain.Payment) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if payment.Status != domain.PaymentStatusAuthorized {
		return false
	}
	if a.simulateFailure {
		payment.Status = domain.PaymentStatusFailed
		return false
	}
	payment.Status = domain.PaymentStatusCaptured
	payment.Timestamp = a.clk.Now()
	return true
}

func (a *FakePaymentAdapter) ProcessPayment(invoice *domain.Invoice, amount domain.Money) *domain.Payment {
	a.mu.Lock()
	defer a.mu.Unlock()
	status := domain.PaymentStatusCaptured
	if a.simulateFailure {
		status = domain.PaymentStatusFailed
	}
	p := a.record(invoice, amount, status)
	logger.PortResult("payment", "process", nil, "invoice_id", invoice.ID, "status", string(status))
	return p
}

func (a *FakePaymentAdapter) Payments() []*domain.Payment {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*domain.Payment(nil), a.payments...)
}

func (a *FakePaymentAdapter) record(invoice *domain.Invoice, amount domain.Money, status domain.PaymentStatus) *domain.Payment {
	p := &domain.Payment{
		ID:        a.nextID,
		Invoice:   invoice,
		Amount:    amount,
		Status:    status,
		Timestamp: a.clk.Now(),
	}
	a.nextID++
	a.payments = append(a.payments, p)
	return p
}

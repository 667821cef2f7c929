package service

import (
	"fmt"
	"sync"

	"fleetrental-backend/internal/adapters"
	"fleetrental-backend/internal/audit"
	"fleetrental-backend/internal/clock"
	"fleetrental-backend/internal/domain"
	"fleetrental-backend/internal/logger"
)

const invoiceEntityType = "Invoice"

type accountingService struct {
	clk      clock.Clock
	payments adapters.PaymentPort
	notifier adapters.NotificationPort
	trail    *audit.Trail

	mu       sync.Mutex
	invoices map[int]*domain.Invoice
	nextID   int
}

func NewAccountingService(clk clock.Clock, payments adapters.PaymentPort,
	notifier adapters.NotificationPort, trail *audit.Trail) AccountingService {
	return &accountingService{
		clk:      clk,
		payments: payments,
		notifier: notifier,
		trail:    trail,
		invoices: make(map[int]*domain.Invoice),
		nextID:   1,
	}
}

func (s *accountingService) CreateInvoice(rental *domain.RentalAgreement) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	invoice, err := domain.InvoiceFromRentalAgreement(s.nextID, rental, s.clk.Now())
	if err != nil {
		return nil, err
	}
	s.nextID++
	s.invoices[invoice.ID] = invoice
	logger.Info("Invoice created", "invoice_id", invoice.ID,
		"rental_id", rental.ID, "total", invoice.TotalAmount.String())
	return invoice, nil
}

func (s *accountingService) AuthorizeDeposit(invoice *domain.Invoice, amount domain.Money) *domain.Payment {
	payment := s.payments.AuthorizePayment(invoice, amount)

	if payment.Status == domain.PaymentStatusAuthorized {
		s.logPayment(audit.EventPaymentAuthorization, invoice, amount, "Deposit authorized")
	} else {
		s.logPayment(audit.EventPaymentFailure, invoice, amount, "Deposit authorization failed")
		s.notifyFailure(invoice)
	}
	return payment
}

func (s *accountingService) FinalizePayment(invoice *domain.Invoice) bool {
	payment := s.payments.ProcessPayment(invoice, invoice.TotalAmount)

	if payment.Status == domain.PaymentStatusCaptured {
		invoice.Status = domain.InvoiceStatusPaid
		s.logPayment(audit.EventPaymentCapture, invoice, invoice.TotalAmount, "Payment captured")
		s.notifySuccess(invoice)
		return true
	}
	invoice.Status = domain.InvoiceStatusFailed
	s.logPayment(audit.EventPaymentFailure, invoice, invoice.TotalAmount, "Payment failed")
	s.notifyFailure(invoice)
	return false
}

func (s *accountingService) MarkInvoicePending(invoiceID int) bool {
	s.mu.Lock()
	invoice, ok := s.invoices[invoiceID]
	s.mu.Unlock()
	if !ok {
		return false
	}
	invoice.Status = domain.InvoiceStatusPending
	s.notifyFailure(invoice)
	return true
}

func (s *accountingService) RetryPayment(invoiceID int) bool {
	s.mu.Lock()
	invoice, ok := s.invoices[invoiceID]
	s.mu.Unlock()
	if !ok || invoice.Status != domain.InvoiceStatusPending {
		return false
	}
	return s.FinalizePayment(invoice)
}

func (s *accountingService) GetInvoice(invoiceID int) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	invoice, ok := s.invoices[invoiceID]
	if !ok {
		return nil, fmt.Errorf("invoice %d not found", invoiceID)
	}
	return invoice, nil
}

func (s *accountingService) ListPendingInvoices() []*domain.Invoice {
	return s.filter(domain.InvoiceStatusPending)
}

func (s *accountingService) ListPaidInvoices() []*domain.Invoice {
	return s.filter(domain.InvoiceStatusPaid)
}

func (s *accountingService) filter(status domain.InvoiceStatus) []*domain.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Invoice
	for _, invoice := range s.invoices {
		if invoice.Status == status {
			out = append(out, invoice)
		}
	}
	return out
}

func (s *accountingService) logPayment(event audit.EventType, invoice *domain.Invoice,
	amount domain.Money, description string) {
	if s.trail == nil {
		return
	}
	s.trail.Log(audit.Entry{
		Timestamp:   s.clk.Now(),
		EventType:   event,
		ActorType:   audit.ActorSystem,
		ActorName:   "System",
		EntityType:  invoiceEntityType,
		EntityID:    invoice.ID,
		Description: description,
		Metadata: map[string]any{
			"invoice_id": invoice.ID,
			"rental_id":  invoice.Rental.ID,
			"amount":     amount.String(),
		},
	})
}

func (s *accountingService) notifySuccess(invoice *domain.Invoice) {
	if s.notifier == nil {
		return
	}
	customer := invoice.Rental.Reservation.Customer
	s.notifier.SendNotification(domain.Notification{
		Type:      domain.NotificationInvoiceSuccess,
		Recipient: customer.Email,
		Message: fmt.Sprintf("Payment successful for invoice %d, amount %s. Your rental is complete.",
			invoice.ID, invoice.TotalAmount),
		Timestamp: s.clk.Now(),
	})
}

func (s *accountingService) notifyFailure(invoice *domain.Invoice) {
	if s.notifier == nil {
		return
	}
	customer := invoice.Rental.Reservation.Customer
	s.notifier.SendNotification(domain.Notification{
		Type:      domain.NotificationInvoiceFailed,
		Recipient: customer.Email,
		Message: fmt.Sprintf("We could not process payment for invoice %d, amount %s. Please contact us.",
			invoice.ID, invoice.TotalAmount),
		Timestamp: s.clk.Now(),
	})
}

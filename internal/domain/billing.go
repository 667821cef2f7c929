package domain

import "time"

type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "Pending"
	InvoiceStatusPaid    InvoiceStatus = "Paid"
	InvoiceStatusFailed  InvoiceStatus = "Failed"
)

type PaymentStatus string

const (
	PaymentStatusAuthorized PaymentStatus = "Authorized"
	PaymentStatusCaptured   PaymentStatus = "Captured"
	PaymentStatusFailed     PaymentStatus = "Failed"
	PaymentStatusRefunded   PaymentStatus = "Refunded"
)

// Invoice bills the accumulated charges of a rental agreement.
type Invoice struct {
	ID          int              `json:"id"`
	Rental      *RentalAgreement `json:"rental"`
	ChargeItems []ChargeItem     `json:"charge_items"`
	TotalAmount Money            `json:"total_amount"`
	Status      InvoiceStatus    `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
}

// InvoiceFromRentalAgreement snapshots the agreement's charges into a
// pending invoice.
func InvoiceFromRentalAgreement(invoiceID int, rental *RentalAgreement, createdAt time.Time) (*Invoice, error) {
	total, err := rental.TotalCharges()
	if err != nil {
		return nil, err
	}
	return &Invoice{
		ID:          invoiceID,
		Rental:      rental,
		ChargeItems: append([]ChargeItem(nil), rental.ChargeItems...),
		TotalAmount: total,
		Status:      InvoiceStatusPending,
		CreatedAt:   createdAt,
	}, nil
}

type Payment struct {
	ID        int           `json:"id"`
	Invoice   *Invoice      `json:"invoice"`
	Amount    Money         `json:"amount"`
	Status    PaymentStatus `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
}

type NotificationType string

const (
	NotificationReservationConfirmation NotificationType = "ReservationConfirmation"
	NotificationPickupReminder          NotificationType = "PickupReminder"
	NotificationOverdueReturn           NotificationType = "OverdueReturn"
	NotificationInvoiceSuccess          NotificationType = "InvoiceSuccess"
	NotificationInvoiceFailed           NotificationType = "InvoiceFailed"
)

// Notification is a message handed to the NotificationPort; delivery is
// outside this module.
type Notification struct {
	Type      NotificationType `json:"type"`
	Recipient string           `json:"recipient"` // email or phone
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
}

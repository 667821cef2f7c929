package domain

import "errors"

var (
	ErrVehicleUnavailable = errors.New("vehicle is not available")
	ErrMaintenanceDue     = errors.New("vehicle is due for maintenance")
	ErrRentalNotFound     = errors.New("rental agreement not found")
	ErrRentalCompleted    = errors.New("rental agreement already completed")
	ErrCurrencyMismatch   = errors.New("currency mismatch")
	ErrInvalidMeasurement = errors.New("invalid measurement")

	ErrVehicleNotFound     = errors.New("vehicle not found")
	ErrReservationNotFound = errors.New("reservation not found")
)

// Package service hosts the rental lifecycle engine and its
// collaborating fleet services. All state is in-memory and owned by the
// service instances; see the snapshot package for the persistence
// boundary.
package service

import (
	"time"

	"fleetrental-backend/internal/domain"
)

type RentalService interface {
	// PickupVehicle starts a rental. An empty pickupToken generates a
	// fresh one; replaying a known token returns the original agreement
	// with no side effects.
	PickupVehicle(reservation *domain.Reservation, vehicle *domain.Vehicle,
		startOdometer domain.Kilometers, startFuel domain.FuelLevel,
		agent *domain.Agent, pickupToken string) (*domain.RentalAgreement, error)
	// ReturnVehicle completes a rental and computes all charges.
	// Returning an already-completed agreement is a no-op that yields
	// the stored agreement.
	ReturnVehicle(rentalID int, endOdometer domain.Kilometers,
		endFuel domain.FuelLevel, agent *domain.Agent) (*domain.RentalAgreement, error)
	// ExtendRental moves the expected return time forward. Returns
	// false without mutating anything when a conflicting reservation
	// exists for the same vehicle.
	ExtendRental(rentalID int, newReturnTime time.Time) (bool, error)
	// AddManualDamageCharge appends a damage line item; false when the
	// agreement does not exist. Allowed before and after completion.
	AddManualDamageCharge(rentalID int, amount domain.Money, description string, agent *domain.Agent) bool

	GetRental(rentalID int) (*domain.RentalAgreement, error)
	GetActiveRentalByVehicle(vehicleID int) (*domain.RentalAgreement, error)
	ListActiveRentals() []*domain.RentalAgreement
	ListOverdueRentals(gracePeriodHours int) []*domain.RentalAgreement
}

type MaintenanceService interface {
	RegisterMaintenancePlan(vehicle *domain.Vehicle, serviceType string,
		odometerThreshold domain.Kilometers, timeThreshold *time.Time) *domain.MaintenanceRecord
	IsMaintenanceDue(vehicle *domain.Vehicle) bool
	DueMaintenanceRecords(vehicle *domain.Vehicle) []*domain.MaintenanceRecord
	ListDueVehicles(vehicles []*domain.Vehicle) []*domain.Vehicle
	// CanAssignVehicle requires Available status and no due maintenance.
	CanAssignVehicle(vehicle *domain.Vehicle) bool
	CompleteMaintenance(vehicle *domain.Vehicle, serviceType string)
}

type InventoryService interface {
	AddVehicle(vehicle *domain.Vehicle)
	GetVehicle(vehicleID int) (*domain.Vehicle, error)
	CheckAvailability(class domain.VehicleClass, location domain.Location, start, end time.Time) Availability
	SearchAvailableClasses(location domain.Location, start, end time.Time) []Availability
	ListVehiclesByLocation(location domain.Location) []*domain.Vehicle
	ListVehiclesByClass(class domain.VehicleClass) []*domain.Vehicle
	ListAllVehicles() []*domain.Vehicle
	Statistics() FleetStatistics
}

type ReservationService interface {
	CreateReservation(customer domain.Customer, class domain.VehicleClass,
		location domain.Location, pickupTime, returnTime time.Time,
		addons []domain.AddOn, tier *domain.InsuranceTier, deposit domain.Money) *domain.Reservation
	ModifyReservation(reservationID int, pickupTime, returnTime *time.Time,
		addons []domain.AddOn, tier *domain.InsuranceTier) (*domain.Reservation, error)
	CancelReservation(reservationID int) error
	GetReservation(reservationID int) (*domain.Reservation, error)
	ListReservations() []*domain.Reservation
	// SendPickupReminder notifies the customer ahead of their pickup
	// window.
	SendPickupReminder(reservationID int) error
	// AssignVehicle pins a reservation to a specific vehicle, making it
	// visible to the extension conflict check.
	AssignVehicle(reservationID, vehicleID int) error

	ReservationCalendar
}

// ReservationCalendar answers whether extending a rental on a vehicle
// collides with another reservation pinned to that vehicle.
type ReservationCalendar interface {
	HasConflict(vehicleID, excludeReservationID int, from, to time.Time) bool
}

type AccountingService interface {
	CreateInvoice(rental *domain.RentalAgreement) (*domain.Invoice, error)
	AuthorizeDeposit(invoice *domain.Invoice, amount domain.Money) *domain.Payment
	FinalizePayment(invoice *domain.Invoice) bool
	MarkInvoicePending(invoiceID int) bool
	RetryPayment(invoiceID int) bool
	GetInvoice(invoiceID int) (*domain.Invoice, error)
	ListPendingInvoices() []*domain.Invoice
	ListPaidInvoices() []*domain.Invoice
}

// Availability describes fleet supply for one class at one location.
type Availability struct {
	VehicleClass         string    `json:"vehicle_class"`
	Location             string    `json:"location"`
	StartTime            time.Time `json:"start_time"`
	EndTime              time.Time `json:"end_time"`
	AvailableCount       int       `json:"available_count"`
	TotalCount           int       `json:"total_count"`
	MaintenanceHoldCount int       `json:"maintenance_hold_count"`
	AvailableVehicleIDs  []int     `json:"available_vehicles"`
}

// FleetStatistics aggregates vehicle counts across the fleet.
type FleetStatistics struct {
	TotalCount        int            `json:"total_count"`
	AvailableCount    int            `json:"available_count"`
	RentedCount       int            `json:"rented_count"`
	OutOfServiceCount int            `json:"under_maintenance_count"`
	CleaningCount     int            `json:"cleaning_count"`
	ByClass           map[string]int `json:"by_class"`
	ByLocation        map[string]int `json:"by_location"`
}

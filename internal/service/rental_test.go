package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetrental-backend/internal/audit"
	"fleetrental-backend/internal/clock"
	"fleetrental-backend/internal/domain"
	"fleetrental-backend/internal/pricing"
)

var (
	testPickupTime = time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC)
	testReturnTime = testPickupTime.Add(72 * time.Hour)
)

func usd(t *testing.T, amount string) domain.Money {
	t.Helper()
	m, err := domain.MoneyFromString(amount, "USD")
	require.NoError(t, err)
	return m
}

type rentalHarness struct {
	clk     *clock.FixedClock
	trail   *audit.Trail
	gate    MaintenanceService
	rentals RentalService
}

func newRentalHarness(t *testing.T, calendar ReservationCalendar) *rentalHarness {
	t.Helper()
	clk := clock.NewFixedClock(testPickupTime)
	trail := audit.NewTrail()
	gate := NewMaintenanceService(clk, DefaultWarningWindowKm)
	policy := pricing.NewStandardPolicy(clk, pricing.StandardPolicyOptions{
		LateFeePerHour:      usd(t, "25.00"),
		GracePeriodHours:    1,
		MileageOveragePerKm: usd(t, "0.50"),
		FuelRefillPerTenth:  usd(t, "10.00"),
	})
	return &rentalHarness{
		clk:     clk,
		trail:   trail,
		gate:    gate,
		rentals: NewRentalService(clk, policy, gate, trail, calendar),
	}
}

func economyClass(t *testing.T) domain.VehicleClass {
	t.Helper()
	return domain.VehicleClass{
		Name:                  "Economy",
		BaseRate:              usd(t, "30.00"),
		DailyMileageAllowance: 200,
	}
}

func testReservation(t *testing.T, class domain.VehicleClass) *domain.Reservation {
	t.Helper()
	return &domain.Reservation{
		ID:           1,
		Customer:     domain.Customer{ID: 1, Name: "Alice", Email: "alice@example.com"},
		VehicleClass: class,
		PickupTime:   testPickupTime,
		ReturnTime:   testReturnTime,
		Deposit:      usd(t, "150.00"),
	}
}

func testVehicle(class domain.VehicleClass) *domain.Vehicle {
	return &domain.Vehicle{
		ID:        1,
		Class:     class,
		Status:    domain.VehicleStatusAvailable,
		Odometer:  12000,
		FuelLevel: domain.FullTank(),
	}
}

func testAgent() *domain.Agent {
	return &domain.Agent{ID: 7, Name: "Dan", Branch: "Downtown"}
}

func TestPickupVehicle(t *testing.T) {
	h := newRentalHarness(t, nil)
	class := economyClass(t)
	reservation := testReservation(t, class)
	vehicle := testVehicle(class)

	rental, err := h.rentals.PickupVehicle(reservation, vehicle, 12000, domain.FullTank(), testAgent(), "T1")
	require.NoError(t, err)

	assert.Equal(t, 1, rental.ID)
	assert.Equal(t, "T1", rental.PickupToken)
	assert.Equal(t, testReturnTime, rental.ExpectedReturnTime)
	assert.False(t, rental.Upgraded)
	assert.Equal(t, domain.VehicleStatusRented, vehicle.Status)

	entries := h.trail.ByEventType(audit.EventVehiclePickup)
	require.Len(t, entries, 1)
	assert.Equal(t, rental.ID, entries[0].EntityID)
	assert.Equal(t, audit.ActorAgent, entries[0].ActorType)
}

func TestPickupIdempotentToken(t *testing.T) {
	h := newRentalHarness(t, nil)
	class := economyClass(t)
	reservation := testReservation(t, class)
	vehicle := testVehicle(class)

	first, err := h.rentals.PickupVehicle(reservation, vehicle, 12000, domain.FullTank(), testAgent(), "T1")
	require.NoError(t, err)

	second, err := h.rentals.PickupVehicle(reservation, vehicle, 12000, domain.FullTank(), testAgent(), "T1")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Len(t, h.trail.ByEventType(audit.EventVehiclePickup), 1)
	assert.Len(t, h.rentals.ListActiveRentals(), 1)
}

func TestPickupGeneratesTokenWhenEmpty(t *testing.T) {
	h := newRentalHarness(t, nil)
	class := economyClass(t)
	rental, err := h.rentals.PickupVehicle(testReservation(t, class), testVehicle(class),
		12000, domain.FullTank(), testAgent(), "")
	require.NoError(t, err)
	assert.NotEmpty(t, rental.PickupToken)
}

func TestPickupVehicleUnavailable(t *testing.T) {
	h := newRentalHarness(t, nil)
	class := economyClass(t)
	vehicle := testVehicle(class)
	vehicle.Status = domain.VehicleStatusCleaning

	_, err := h.rentals.PickupVehicle(testReservation(t, class), vehicle,
		12000, domain.FullTank(), testAgent(), "T1")
	assert.ErrorIs(t, err, domain.ErrVehicleUnavailable)
	assert.Empty(t, h.trail.All())
}

func TestPickupBlockedByMaintenance(t *testing.T) {
	h := newRentalHarness(t, nil)
	class := economyClass(t)
	vehicle := testVehicle(class)
	// Odometer 12000 is inside the 500 km warning window of the threshold.
	h.gate.RegisterMaintenancePlan(vehicle, "Oil Change", 12400, nil)

	_, err := h.rentals.PickupVehicle(testReservation(t, class), vehicle,
		12000, domain.FullTank(), testAgent(), "T1")
	assert.ErrorIs(t, err, domain.ErrMaintenanceDue)
	assert.Equal(t, domain.VehicleStatusAvailable, vehicle.Status)
}

func TestPickupUpgradeIsAudited(t *testing.T) {
	h := newRentalHarness(t, nil)
	reservation := testReservation(t, economyClass(t))
	suv := domain.VehicleClass{Name: "SUV", BaseRate: usd(t, "55.00"), DailyMileageAllowance: 250}
	vehicle := testVehicle(suv)

	rental, err := h.rentals.PickupVehicle(reservation, vehicle, 12000, domain.FullTank(), testAgent(), "T1")
	require.NoError(t, err)

	assert.True(t, rental.Upgraded)
	upgrades := h.trail.ByEventType(audit.EventVehicleUpgrade)
	require.Len(t, upgrades, 1)
	assert.Equal(t, "Economy", upgrades[0].Metadata["original_class"])
	assert.Equal(t, "SUV", upgrades[0].Metadata["upgraded_class"])
}

func TestReturnVehicle(t *testing.T) {
	h := newRentalHarness(t, nil)
	class := economyClass(t)
	vehicle := testVehicle(class)
	rental, err := h.rentals.PickupVehicle(testReservation(t, class), vehicle,
		12000, domain.FullTank(), testAgent(), "T1")
	require.NoError(t, err)

	h.clk.Set(testReturnTime)
	returned, err := h.rentals.ReturnVehicle(rental.ID, 12300, domain.FullTank(), testAgent())
	require.NoError(t, err)

	assert.True(t, returned.Completed)
	require.Len(t, returned.ChargeItems, 1)
	assert.True(t, returned.ChargeItems[0].Amount.Equal(usd(t, "90.00")))
	assert.Equal(t, domain.VehicleStatusCleaning, vehicle.Status)
	assert.Equal(t, 12300, vehicle.Odometer.Value())
	assert.Empty(t, h.rentals.ListActiveRentals())
	assert.Len(t, h.trail.ByEventType(audit.EventVehicleReturn), 1)
}

func TestReturnVehicleIdempotent(t *testing.T) {
	h := newRentalHarness(t, nil)
	class := economyClass(t)
	rental, err := h.rentals.PickupVehicle(testReservation(t, class), testVehicle(class),
		12000, domain.FullTank(), testAgent(), "T1")
	require.NoError(t, err)

	h.clk.Set(testReturnTime)
	first, err := h.rentals.ReturnVehicle(rental.ID, 12300, domain.FullTank(), testAgent())
	require.NoError(t, err)

	// A replayed return must not recompute charges or log again.
	h.clk.Advance(5 * time.Hour)
	second, err := h.rentals.ReturnVehicle(rental.ID, 12999, domain.EmptyTank(), testAgent())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Len(t, second.ChargeItems, 1)
	assert.Equal(t, 12300, second.EndOdometer.Value())
	assert.Len(t, h.trail.ByEventType(audit.EventVehicleReturn), 1)
}

func TestReturnVehicleLate(t *testing.T) {
	h := newRentalHarness(t, nil)
	class := economyClass(t)
	rental, err := h.rentals.PickupVehicle(testReservation(t, class), testVehicle(class),
		12000, domain.FullTank(), testAgent(), "T1")
	require.NoError(t, err)

	h.clk.Set(testReturnTime.Add(3 * time.Hour))
	returned, err := h.rentals.ReturnVehicle(rental.ID, 12300, domain.FullTank(), testAgent())
	require.NoError(t, err)

	require.Len(t, returned.ChargeItems, 2)
	assert.True(t, returned.ChargeItems[1].Amount.Equal(usd(t, "50.00")))
}

func TestReturnVehicleRejectsBadOdometer(t *testing.T) {
	h := newRentalHarness(t, nil)
	class := economyClass(t)
	rental, err := h.rentals.PickupVehicle(testReservation(t, class), testVehicle(class),
		12000, domain.FullTank(), testAgent(), "T1")
	require.NoError(t, err)

	h.clk.Set(testReturnTime)
	_, err = h.rentals.ReturnVehicle(rental.ID, 11000, domain.FullTank(), testAgent())
	assert.ErrorIs(t, err, domain.ErrInvalidMeasurement)

	assert.False(t, rental.Completed)
	assert.Nil(t, rental.ActualReturnTime)
	assert.Equal(t, domain.VehicleStatusRented, rental.Vehicle.Status)
}

func TestReturnVehicleNotFound(t *testing.T) {
	h := newRentalHarness(t, nil)
	_, err := h.rentals.ReturnVehicle(42, 12300, domain.FullTank(), testAgent())
	assert.ErrorIs(t, err, domain.ErrRentalNotFound)
}

func TestExtendRental(t *testing.T) {
	h := newRentalHarness(t, nil)
	class := economyClass(t)
	reservation := testReservation(t, class)
	rental, err := h.rentals.PickupVehicle(reservation, testVehicle(class),
		12000, domain.FullTank(), testAgent(), "T1")
	require.NoError(t, err)

	newReturn := testReturnTime.Add(24 * time.Hour)
	ok, err := h.rentals.ExtendRental(rental.ID, newReturn)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, newReturn, rental.ExpectedReturnTime)
	assert.Equal(t, newReturn, reservation.ReturnTime)

	extensions := h.trail.ByEventType(audit.EventRentalExtension)
	require.Len(t, extensions, 1)
	assert.Equal(t, testReturnTime.Format(time.RFC3339), extensions[0].Metadata["original_return_time"])
}

func TestExtendRentalConflict(t *testing.T) {
	clk := clock.NewFixedClock(testPickupTime)
	reservations := NewReservationService(clk, nil, nil)
	h := newRentalHarness(t, reservations)
	class := economyClass(t)
	vehicle := testVehicle(class)

	rental, err := h.rentals.PickupVehicle(testReservation(t, class), vehicle,
		12000, domain.FullTank(), testAgent(), "T1")
	require.NoError(t, err)

	// Another customer holds this vehicle right after the current return.
	next := reservations.CreateReservation(domain.Customer{ID: 2, Name: "Bob"}, class,
		domain.Location{ID: 1}, testReturnTime.Add(2*time.Hour), testReturnTime.Add(26*time.Hour),
		nil, nil, usd(t, "100.00"))
	require.NoError(t, reservations.AssignVehicle(next.ID, vehicle.ID))

	ok, err := h.rentals.ExtendRental(rental.ID, testReturnTime.Add(24*time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, testReturnTime, rental.ExpectedReturnTime)
	assert.Empty(t, h.trail.ByEventType(audit.EventRentalExtension))
}

func TestExtendCompletedRental(t *testing.T) {
	h := newRentalHarness(t, nil)
	class := economyClass(t)
	rental, err := h.rentals.PickupVehicle(testReservation(t, class), testVehicle(class),
		12000, domain.FullTank(), testAgent(), "T1")
	require.NoError(t, err)

	h.clk.Set(testReturnTime)
	_, err = h.rentals.ReturnVehicle(rental.ID, 12300, domain.FullTank(), testAgent())
	require.NoError(t, err)

	_, err = h.rentals.ExtendRental(rental.ID, testReturnTime.Add(24*time.Hour))
	assert.ErrorIs(t, err, domain.ErrRentalCompleted)
}

func TestAddManualDamageCharge(t *testing.T) {
	h := newRentalHarness(t, nil)
	class := economyClass(t)
	rental, err := h.rentals.PickupVehicle(testReservation(t, class), testVehicle(class),
		12000, domain.FullTank(), testAgent(), "T1")
	require.NoError(t, err)

	h.clk.Set(testReturnTime)
	_, err = h.rentals.ReturnVehicle(rental.ID, 12300, domain.FullTank(), testAgent())
	require.NoError(t, err)

	// Damage found during cleaning, after completion.
	ok := h.rentals.AddManualDamageCharge(rental.ID, usd(t, "75.00"), "Scratched rear bumper", testAgent())
	assert.True(t, ok)

	require.Len(t, rental.ChargeItems, 2)
	assert.Equal(t, "Damage charge: Scratched rear bumper", rental.ChargeItems[1].Description)
	assert.Len(t, h.trail.ByEventType(audit.EventManualDamageCharge), 1)

	assert.False(t, h.rentals.AddManualDamageCharge(42, usd(t, "75.00"), "x", testAgent()))
}

func TestGetActiveRentalByVehicle(t *testing.T) {
	h := newRentalHarness(t, nil)
	class := economyClass(t)
	vehicle := testVehicle(class)
	rental, err := h.rentals.PickupVehicle(testReservation(t, class), vehicle,
		12000, domain.FullTank(), testAgent(), "T1")
	require.NoError(t, err)

	found, err := h.rentals.GetActiveRentalByVehicle(vehicle.ID)
	require.NoError(t, err)
	assert.Same(t, rental, found)

	h.clk.Set(testReturnTime)
	_, err = h.rentals.ReturnVehicle(rental.ID, 12300, domain.FullTank(), testAgent())
	require.NoError(t, err)

	_, err = h.rentals.GetActiveRentalByVehicle(vehicle.ID)
	assert.ErrorIs(t, err, domain.ErrRentalNotFound)
}

func TestListOverdueRentals(t *testing.T) {
	h := newRentalHarness(t, nil)
	class := economyClass(t)
	rental, err := h.rentals.PickupVehicle(testReservation(t, class), testVehicle(class),
		12000, domain.FullTank(), testAgent(), "T1")
	require.NoError(t, err)

	h.clk.Set(testReturnTime.Add(time.Hour))
	assert.Empty(t, h.rentals.ListOverdueRentals(1))

	h.clk.Advance(time.Second)
	overdue := h.rentals.ListOverdueRentals(1)
	require.Len(t, overdue, 1)
	assert.Equal(t, rental.ID, overdue[0].ID)
}

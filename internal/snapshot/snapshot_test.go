package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetrental-backend/internal/audit"
	"fleetrental-backend/internal/domain"
)

func usd(t *testing.T, amount string) domain.Money {
	t.Helper()
	m, err := domain.MoneyFromString(amount, "USD")
	require.NoError(t, err)
	return m
}

func TestFromMoney(t *testing.T) {
	record := FromMoney(usd(t, "90.5"))
	assert.Equal(t, "90.50", record.Amount)
	assert.Equal(t, "USD", record.Currency)
}

func TestFromVehicle(t *testing.T) {
	vehicle := &domain.Vehicle{
		ID: 1,
		Class: domain.VehicleClass{
			Name:                  "Economy",
			BaseRate:              usd(t, "30.00"),
			DailyMileageAllowance: 200,
		},
		Location:  domain.Location{ID: 3},
		Status:    domain.VehicleStatusCleaning,
		Odometer:  12500,
		FuelLevel: domain.FullTank(),
	}

	record := FromVehicle(vehicle)
	assert.Equal(t, "Economy", record.ClassName)
	assert.Equal(t, "Cleaning", record.Status)
	assert.Equal(t, 12500, record.OdometerKm)
	assert.Equal(t, 3, record.LocationID)
	assert.InDelta(t, 1.0, record.FuelLevel, 1e-9)
}

func TestFromReservation(t *testing.T) {
	vehicleID := 4
	reservation := &domain.Reservation{
		ID:       2,
		Customer: domain.Customer{ID: 1},
		VehicleClass: domain.VehicleClass{
			Name: "SUV", BaseRate: usd(t, "55.00"),
		},
		Location:          domain.Location{ID: 1},
		PickupTime:        time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC),
		ReturnTime:        time.Date(2025, 11, 8, 10, 0, 0, 0, time.UTC),
		AddOns:            []domain.AddOn{{Name: "GPS", DailyFee: usd(t, "5.00")}},
		InsuranceTier:     &domain.InsuranceTier{Name: "Premium", DailyFee: usd(t, "12.00")},
		Deposit:           usd(t, "150.00"),
		AssignedVehicleID: &vehicleID,
	}

	record := FromReservation(reservation)
	assert.Equal(t, []string{"GPS"}, record.AddOnNames)
	assert.Equal(t, "Premium", record.InsuranceTierName)
	require.NotNil(t, record.AssignedVehicleID)
	assert.Equal(t, 4, *record.AssignedVehicleID)
	assert.Equal(t, "150.00", record.Deposit.Amount)
}

func TestFromRentalAgreement(t *testing.T) {
	pickup := time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC)
	returned := pickup.Add(75 * time.Hour)
	endOdometer := domain.Kilometers(12500)
	endFuel, err := domain.NewFuelLevel(0.7)
	require.NoError(t, err)

	rental := &domain.RentalAgreement{
		ID:                 1,
		Reservation:        &domain.Reservation{ID: 2},
		Vehicle:            &domain.Vehicle{ID: 3},
		PickupToken:        "T1",
		StartOdometer:      12000,
		StartFuelLevel:     domain.FullTank(),
		PickupTime:         pickup,
		ExpectedReturnTime: pickup.Add(72 * time.Hour),
		ActualReturnTime:   &returned,
		EndOdometer:        &endOdometer,
		EndFuelLevel:       &endFuel,
		ChargeItems: []domain.ChargeItem{
			{Description: "Base rate", Amount: usd(t, "90.00")},
		},
		Completed: true,
		Upgraded:  true,
	}

	record := FromRentalAgreement(rental)
	assert.Equal(t, 2, record.ReservationID)
	assert.Equal(t, 3, record.VehicleID)
	assert.Equal(t, "T1", record.PickupToken)
	require.NotNil(t, record.EndOdometerKm)
	assert.Equal(t, 12500, *record.EndOdometerKm)
	require.NotNil(t, record.EndFuelLevel)
	assert.InDelta(t, 0.7, *record.EndFuelLevel, 1e-9)
	require.Len(t, record.ChargeItems, 1)
	assert.Equal(t, "90.00", record.ChargeItems[0].Amount.Amount)
	assert.True(t, record.Completed)
	assert.True(t, record.Upgraded)
}

func TestFromRentalAgreementInProgress(t *testing.T) {
	rental := &domain.RentalAgreement{
		ID:          1,
		Reservation: &domain.Reservation{ID: 2},
		Vehicle:     &domain.Vehicle{ID: 3},
	}

	record := FromRentalAgreement(rental)
	assert.Nil(t, record.ActualReturnTime)
	assert.Nil(t, record.EndOdometerKm)
	assert.Nil(t, record.EndFuelLevel)
	assert.Empty(t, record.ChargeItems)
}

func TestFromMaintenanceRecord(t *testing.T) {
	serviced := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	odometer := domain.Kilometers(11000)
	record := FromMaintenanceRecord(&domain.MaintenanceRecord{
		ID:                  1,
		VehicleID:           3,
		ServiceType:         "Oil Change",
		OdometerThreshold:   20000,
		LastServiceDate:     &serviced,
		LastServiceOdometer: &odometer,
	})

	assert.Equal(t, 20000, record.OdometerThresholdKm)
	require.NotNil(t, record.LastServiceKm)
	assert.Equal(t, 11000, *record.LastServiceKm)
}

func TestFromAuditEntry(t *testing.T) {
	actorID := 7
	entry := audit.Entry{
		ID:          4,
		EventType:   audit.EventVehiclePickup,
		ActorType:   audit.ActorAgent,
		ActorID:     &actorID,
		ActorName:   "Dan",
		EntityType:  "RentalAgreement",
		EntityID:    1,
		Description: "Vehicle 3 picked up",
		Metadata:    map[string]any{"vehicle_id": 3},
	}

	record := FromAuditEntry(entry)
	assert.Equal(t, int64(4), record.ID)
	assert.Equal(t, "VehiclePickup", record.EventType)
	assert.Equal(t, "Agent", record.ActorType)
	require.NotNil(t, record.ActorID)
	assert.Equal(t, 7, *record.ActorID)
	assert.Equal(t, 3, record.Metadata["vehicle_id"])
}

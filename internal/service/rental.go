package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"fleetrental-backend/internal/audit"
	"fleetrental-backend/internal/clock"
	"fleetrental-backend/internal/domain"
	"fleetrental-backend/internal/logger"
	"fleetrental-backend/internal/pricing"
)

const rentalEntityType = "RentalAgreement"

type rentalService struct {
	clk         clock.Clock
	policy      *pricing.Policy
	maintenance MaintenanceService
	trail       *audit.Trail
	calendar    ReservationCalendar

	// mu serializes every check-then-act against the stores below:
	// token registration, vehicle status transitions and the
	// vehicle→rental index must be atomic within the process.
	mu             sync.Mutex
	agreements     map[int]*domain.RentalAgreement
	pickupTokens   map[string]int // token -> agreement id
	vehicleRentals map[int]int    // vehicle id -> agreement id
	nextID         int
}

// NewRentalService builds the lifecycle engine. calendar may be nil, in
// which case extensions never detect conflicts.
func NewRentalService(clk clock.Clock, policy *pricing.Policy,
	maintenance MaintenanceService, trail *audit.Trail, calendar ReservationCalendar) RentalService {
	return &rentalService{
		clk:            clk,
		policy:         policy,
		maintenance:    maintenance,
		trail:          trail,
		calendar:       calendar,
		agreements:     make(map[int]*domain.RentalAgreement),
		pickupTokens:   make(map[string]int),
		vehicleRentals: make(map[int]int),
		nextID:         1,
	}
}

func (s *rentalService) PickupVehicle(reservation *domain.Reservation, vehicle *domain.Vehicle,
	startOdometer domain.Kilometers, startFuel domain.FuelLevel,
	agent *domain.Agent, pickupToken string) (*domain.RentalAgreement, error) {

	if pickupToken == "" {
		pickupToken = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Idempotent replay: a known token returns the original agreement
	// without creating anything or logging a second pickup.
	if existingID, ok := s.pickupTokens[pickupToken]; ok {
		return s.agreements[existingID], nil
	}

	if !vehicle.CanBeAssigned() {
		return nil, fmt.Errorf("%w: vehicle %d has status %s", domain.ErrVehicleUnavailable, vehicle.ID, vehicle.Status)
	}
	if s.maintenance.IsMaintenanceDue(vehicle) {
		return nil, fmt.Errorf("%w: vehicle %d", domain.ErrMaintenanceDue, vehicle.ID)
	}

	upgraded := vehicle.Class.Name != reservation.VehicleClass.Name
	now := s.clk.Now()

	rental := &domain.RentalAgreement{
		ID:                 s.nextID,
		Reservation:        reservation,
		Vehicle:            vehicle,
		PickupToken:        pickupToken,
		StartOdometer:      startOdometer,
		StartFuelLevel:     startFuel,
		PickupTime:         now,
		ExpectedReturnTime: reservation.ReturnTime,
		PickupAgent:        agent,
		Upgraded:           upgraded,
	}
	s.nextID++
	s.agreements[rental.ID] = rental
	s.pickupTokens[pickupToken] = rental.ID
	s.vehicleRentals[vehicle.ID] = rental.ID

	if err := vehicle.MarkRented(); err != nil {
		// Unreachable: availability was checked under the same lock.
		return nil, err
	}
	vehicle.Odometer = startOdometer
	vehicle.FuelLevel = startFuel

	s.log(audit.Entry{
		Timestamp:   now,
		EventType:   audit.EventVehiclePickup,
		ActorType:   actorType(agent),
		ActorID:     actorID(agent),
		ActorName:   actorName(agent),
		EntityType:  rentalEntityType,
		EntityID:    rental.ID,
		Description: fmt.Sprintf("Vehicle %d picked up for reservation %d", vehicle.ID, reservation.ID),
		Metadata: map[string]any{
			"vehicle_id":       vehicle.ID,
			"reservation_id":   reservation.ID,
			"pickup_token":     pickupToken,
			"start_odometer":   startOdometer.Value(),
			"start_fuel_level": startFuel.Level(),
		},
	})

	if upgraded {
		s.log(audit.Entry{
			Timestamp:   now,
			EventType:   audit.EventVehicleUpgrade,
			ActorType:   actorType(agent),
			ActorID:     actorID(agent),
			ActorName:   actorName(agent),
			EntityType:  rentalEntityType,
			EntityID:    rental.ID,
			Description: fmt.Sprintf("Vehicle upgraded from %s to %s", reservation.VehicleClass.Name, vehicle.Class.Name),
			Metadata: map[string]any{
				"original_class": reservation.VehicleClass.Name,
				"upgraded_class": vehicle.Class.Name,
				"vehicle_id":     vehicle.ID,
			},
		})
	}

	logger.Info("Vehicle picked up", "rental_id", rental.ID, "vehicle_id", vehicle.ID,
		"reservation_id", reservation.ID, "upgraded", upgraded)
	return rental, nil
}

func (s *rentalService) ReturnVehicle(rentalID int, endOdometer domain.Kilometers,
	endFuel domain.FuelLevel, agent *domain.Agent) (*domain.RentalAgreement, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	rental, ok := s.agreements[rentalID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrRentalNotFound, rentalID)
	}
	if rental.Completed {
		// Idempotent replay: charges stay frozen, no second audit entry.
		return rental, nil
	}

	// Reject corrupt odometer readings before mutating anything.
	driven, err := endOdometer.Sub(rental.StartOdometer)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	rental.ActualReturnTime = &now
	rental.EndOdometer = &endOdometer
	rental.EndFuelLevel = &endFuel
	rental.ReturnAgent = agent

	rental.ChargeItems = s.policy.CalculateCharges(rental)
	rental.Completed = true

	rental.Vehicle.MarkCleaning()
	rental.Vehicle.Odometer = endOdometer
	rental.Vehicle.FuelLevel = endFuel
	delete(s.vehicleRentals, rental.Vehicle.ID)

	total, totalErr := rental.TotalCharges()
	totalStr := ""
	if totalErr == nil {
		totalStr = total.String()
	} else {
		logger.Warn("Charge total not representable", "rental_id", rental.ID, "error", totalErr)
	}

	s.log(audit.Entry{
		Timestamp:   now,
		EventType:   audit.EventVehicleReturn,
		ActorType:   actorType(agent),
		ActorID:     actorID(agent),
		ActorName:   actorName(agent),
		EntityType:  rentalEntityType,
		EntityID:    rental.ID,
		Description: fmt.Sprintf("Vehicle %d returned for rental agreement %d", rental.Vehicle.ID, rental.ID),
		Metadata: map[string]any{
			"vehicle_id":      rental.Vehicle.ID,
			"end_odometer":    endOdometer.Value(),
			"end_fuel_level":  endFuel.Level(),
			"total_charges":   totalStr,
			"driven_distance": driven.Value(),
		},
	})

	logger.Info("Vehicle returned", "rental_id", rental.ID, "vehicle_id", rental.Vehicle.ID,
		"driven_km", driven.Value(), "charge_items", len(rental.ChargeItems))
	return rental, nil
}

func (s *rentalService) ExtendRental(rentalID int, newReturnTime time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rental, ok := s.agreements[rentalID]
	if !ok {
		return false, fmt.Errorf("%w: %d", domain.ErrRentalNotFound, rentalID)
	}
	if rental.Completed {
		return false, fmt.Errorf("%w: cannot extend rental %d", domain.ErrRentalCompleted, rentalID)
	}

	if s.calendar != nil && s.calendar.HasConflict(
		rental.Vehicle.ID, rental.Reservation.ID, rental.ExpectedReturnTime, newReturnTime) {
		logger.Info("Extension blocked by reservation conflict",
			"rental_id", rental.ID, "vehicle_id", rental.Vehicle.ID)
		return false, nil
	}

	previousReturn := rental.ExpectedReturnTime
	rental.ExpectedReturnTime = newReturnTime
	rental.Reservation.ReturnTime = newReturnTime

	s.log(audit.Entry{
		Timestamp:   s.clk.Now(),
		EventType:   audit.EventRentalExtension,
		ActorType:   audit.ActorSystem,
		ActorName:   "System",
		EntityType:  rentalEntityType,
		EntityID:    rental.ID,
		Description: fmt.Sprintf("Rental extended to %s", newReturnTime.Format(time.RFC3339)),
		Metadata: map[string]any{
			"rental_agreement_id":  rental.ID,
			"original_return_time": previousReturn.Format(time.RFC3339),
			"new_return_time":      newReturnTime.Format(time.RFC3339),
		},
	})

	logger.Info("Rental extended", "rental_id", rental.ID, "new_return_time", newReturnTime)
	return true, nil
}

func (s *rentalService) AddManualDamageCharge(rentalID int, amount domain.Money,
	description string, agent *domain.Agent) bool {

	s.mu.Lock()
	defer s.mu.Unlock()

	rental, ok := s.agreements[rentalID]
	if !ok {
		return false
	}

	rental.AddCharge(domain.ChargeItem{
		Description: fmt.Sprintf("Damage charge: %s", description),
		Amount:      amount,
	})

	s.log(audit.Entry{
		Timestamp:   s.clk.Now(),
		EventType:   audit.EventManualDamageCharge,
		ActorType:   actorType(agent),
		ActorID:     actorID(agent),
		ActorName:   actorName(agent),
		EntityType:  rentalEntityType,
		EntityID:    rental.ID,
		Description: fmt.Sprintf("Manual damage charge added: %s", description),
		Metadata: map[string]any{
			"rental_agreement_id": rental.ID,
			"amount":              amount.String(),
			"description":         description,
		},
	})

	logger.Info("Manual damage charge added", "rental_id", rental.ID, "amount", amount.String())
	return true
}

func (s *rentalService) GetRental(rentalID int) (*domain.RentalAgreement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rental, ok := s.agreements[rentalID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrRentalNotFound, rentalID)
	}
	return rental, nil
}

func (s *rentalService) GetActiveRentalByVehicle(vehicleID int) (*domain.RentalAgreement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rentalID, ok := s.vehicleRentals[vehicleID]
	if !ok {
		return nil, fmt.Errorf("%w: no active rental for vehicle %d", domain.ErrRentalNotFound, vehicleID)
	}
	return s.agreements[rentalID], nil
}

func (s *rentalService) ListActiveRentals() []*domain.RentalAgreement {
	s.mu.Lock()
	defer s.mu.Unlock()
	var active []*domain.RentalAgreement
	for _, rental := range s.agreements {
		if !rental.Completed {
			active = append(active, rental)
		}
	}
	return active
}

func (s *rentalService) ListOverdueRentals(gracePeriodHours int) []*domain.RentalAgreement {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clk.Now()
	var overdue []*domain.RentalAgreement
	for _, rental := range s.agreements {
		if !rental.Completed && rental.IsOverdue(now, gracePeriodHours) {
			overdue = append(overdue, rental)
		}
	}
	return overdue
}

// log appends to the audit trail; trail problems must never abort the
// primary operation.
func (s *rentalService) log(e audit.Entry) {
	if s.trail == nil {
		return
	}
	s.trail.Log(e)
}

func actorType(agent *domain.Agent) audit.ActorType {
	if agent != nil {
		return audit.ActorAgent
	}
	return audit.ActorSystem
}

func actorID(agent *domain.Agent) *int {
	if agent != nil {
		return &agent.ID
	}
	return nil
}

func actorName(agent *domain.Agent) string {
	if agent != nil {
		return agent.Name
	}
	return "System"
}

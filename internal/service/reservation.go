package service

import (
	"fmt"
	"time"

	"sync"

	"fleetrental-backend/internal/adapters"
	"fleetrental-backend/internal/audit"
	"fleetrental-backend/internal/clock"
	"fleetrental-backend/internal/domain"
	"fleetrental-backend/internal/logger"
)

const reservationEntityType = "Reservation"

type reservationService struct {
	clk      clock.Clock
	notifier adapters.NotificationPort
	trail    *audit.Trail

	mu           sync.Mutex
	reservations map[int]*domain.Reservation
	nextID       int
}

func NewReservationService(clk clock.Clock, notifier adapters.NotificationPort, trail *audit.Trail) ReservationService {
	return &reservationService{
		clk:          clk,
		notifier:     notifier,
		trail:        trail,
		reservations: make(map[int]*domain.Reservation),
		nextID:       1,
	}
}

func (s *reservationService) CreateReservation(customer domain.Customer, class domain.VehicleClass,
	location domain.Location, pickupTime, returnTime time.Time,
	addons []domain.AddOn, tier *domain.InsuranceTier, deposit domain.Money) *domain.Reservation {

	s.mu.Lock()
	reservation := &domain.Reservation{
		ID:            s.nextID,
		Customer:      customer,
		VehicleClass:  class,
		Location:      location,
		PickupTime:    pickupTime,
		ReturnTime:    returnTime,
		AddOns:        addons,
		InsuranceTier: tier,
		Deposit:       deposit,
	}
	s.nextID++
	s.reservations[reservation.ID] = reservation
	s.mu.Unlock()

	now := s.clk.Now()
	if s.trail != nil {
		s.trail.Log(audit.Entry{
			Timestamp:   now,
			EventType:   audit.EventReservationCreated,
			ActorType:   audit.ActorCustomer,
			ActorID:     &customer.ID,
			ActorName:   customer.Name,
			EntityType:  reservationEntityType,
			EntityID:    reservation.ID,
			Description: fmt.Sprintf("Reservation created for %s at %s", class.Name, location.Name),
			Metadata: map[string]any{
				"vehicle_class": class.Name,
				"location_id":   location.ID,
				"pickup_time":   pickupTime.Format(time.RFC3339),
				"return_time":   returnTime.Format(time.RFC3339),
			},
		})
	}

	if s.notifier != nil {
		s.notifier.SendNotification(domain.Notification{
			Type:      domain.NotificationReservationConfirmation,
			Recipient: customer.Email,
			Message: fmt.Sprintf("Your %s reservation at %s is confirmed: pickup %s, return %s.",
				class.Name, location.Name,
				pickupTime.Format(time.RFC1123), returnTime.Format(time.RFC1123)),
			Timestamp: now,
		})
	}

	logger.Info("Reservation created", "reservation_id", reservation.ID,
		"customer_id", customer.ID, "vehicle_class", class.Name)
	return reservation
}

func (s *reservationService) ModifyReservation(reservationID int, pickupTime, returnTime *time.Time,
	addons []domain.AddOn, tier *domain.InsuranceTier) (*domain.Reservation, error) {

	s.mu.Lock()
	reservation, ok := s.reservations[reservationID]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %d", domain.ErrReservationNotFound, reservationID)
	}
	if pickupTime != nil {
		reservation.PickupTime = *pickupTime
	}
	if returnTime != nil {
		reservation.ReturnTime = *returnTime
	}
	if addons != nil {
		reservation.AddOns = addons
	}
	if tier != nil {
		reservation.InsuranceTier = tier
	}
	s.mu.Unlock()

	if s.trail != nil {
		s.trail.Log(audit.Entry{
			Timestamp:   s.clk.Now(),
			EventType:   audit.EventReservationModified,
			ActorType:   audit.ActorCustomer,
			ActorID:     &reservation.Customer.ID,
			ActorName:   reservation.Customer.Name,
			EntityType:  reservationEntityType,
			EntityID:    reservation.ID,
			Description: "Reservation modified",
			Metadata: map[string]any{
				"pickup_time": reservation.PickupTime.Format(time.RFC3339),
				"return_time": reservation.ReturnTime.Format(time.RFC3339),
			},
		})
	}
	return reservation, nil
}

func (s *reservationService) CancelReservation(reservationID int) error {
	s.mu.Lock()
	reservation, ok := s.reservations[reservationID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", domain.ErrReservationNotFound, reservationID)
	}
	delete(s.reservations, reservationID)
	s.mu.Unlock()

	if s.trail != nil {
		s.trail.Log(audit.Entry{
			Timestamp:   s.clk.Now(),
			EventType:   audit.EventReservationCancelled,
			ActorType:   audit.ActorCustomer,
			ActorID:     &reservation.Customer.ID,
			ActorName:   reservation.Customer.Name,
			EntityType:  reservationEntityType,
			EntityID:    reservation.ID,
			Description: "Reservation cancelled",
		})
	}
	logger.Info("Reservation cancelled", "reservation_id", reservationID)
	return nil
}

func (s *reservationService) GetReservation(reservationID int) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reservation, ok := s.reservations[reservationID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrReservationNotFound, reservationID)
	}
	return reservation, nil
}

func (s *reservationService) ListReservations() []*domain.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Reservation, 0, len(s.reservations))
	for _, reservation := range s.reservations {
		out = append(out, reservation)
	}
	return out
}

func (s *reservationService) SendPickupReminder(reservationID int) error {
	s.mu.Lock()
	reservation, ok := s.reservations[reservationID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %d", domain.ErrReservationNotFound, reservationID)
	}

	if s.notifier != nil {
		s.notifier.SendNotification(domain.Notification{
			Type:      domain.NotificationPickupReminder,
			Recipient: reservation.Customer.Email,
			Message: fmt.Sprintf("Reminder: your %s pickup at %s is scheduled for %s.",
				reservation.VehicleClass.Name, reservation.Location.Name,
				reservation.PickupTime.Format(time.RFC1123)),
			Timestamp: s.clk.Now(),
		})
	}
	logger.Info("Pickup reminder sent", "reservation_id", reservationID,
		"customer_id", reservation.Customer.ID)
	return nil
}

func (s *reservationService) AssignVehicle(reservationID, vehicleID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reservation, ok := s.reservations[reservationID]
	if !ok {
		return fmt.Errorf("%w: %d", domain.ErrReservationNotFound, reservationID)
	}
	reservation.AssignedVehicleID = &vehicleID
	return nil
}

// HasConflict reports whether another reservation pinned to the vehicle
// overlaps the (from, to] extension window.
func (s *reservationService) HasConflict(vehicleID, excludeReservationID int, from, to time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, reservation := range s.reservations {
		if reservation.ID == excludeReservationID {
			continue
		}
		if reservation.AssignedVehicleID == nil || *reservation.AssignedVehicleID != vehicleID {
			continue
		}
		if reservation.PickupTime.Before(to) && reservation.ReturnTime.After(from) {
			return true
		}
	}
	return false
}

package jobs

import (
	"fmt"
	"time"

	"fleetrental-backend/internal/domain"
	"fleetrental-backend/internal/logger"
)

// pickupReminderLead is how far ahead of pickup the reminder sweep looks.
const pickupReminderLead = 24 * time.Hour

// SweepOverdueRentals finds rentals past expected return plus grace and
// notifies the customers. It never mutates rental state.
func (jr *JobRunner) SweepOverdueRentals() {
	jr.runWithRecovery("SweepOverdueRentals", func() {
		grace := jr.cfg.Rental.OverdueGraceHours
		overdue := jr.rentals.ListOverdueRentals(grace)
		if len(overdue) == 0 {
			logger.Debug("No overdue rentals")
			return
		}

		for _, rental := range overdue {
			customer := rental.Reservation.Customer
			if jr.notifier != nil {
				jr.notifier.SendNotification(domain.Notification{
					Type:      domain.NotificationOverdueReturn,
					Recipient: customer.Email,
					Message: fmt.Sprintf("Your rental %d was due back %s. Please return the vehicle or extend the rental.",
						rental.ID, rental.ExpectedReturnTime.Format("Mon, 02 Jan 2006 15:04")),
					Timestamp: jr.clk.Now(),
				})
			}
			logger.Warn("Rental overdue", "rental_id", rental.ID,
				"vehicle_id", rental.Vehicle.ID, "expected_return", rental.ExpectedReturnTime)
		}
		logger.Info("Overdue sweep complete", "count", len(overdue))
	})
}

// SweepPickupReminders reminds customers whose pickup falls within the
// next day. Each reservation is reminded at most once per process.
func (jr *JobRunner) SweepPickupReminders() {
	jr.runWithRecovery("SweepPickupReminders", func() {
		now := jr.clk.Now()
		cutoff := now.Add(pickupReminderLead)
		sent := 0
		for _, reservation := range jr.reservations.ListReservations() {
			if reservation.PickupTime.Before(now) || reservation.PickupTime.After(cutoff) {
				continue
			}
			if jr.reminded[reservation.ID] {
				continue
			}
			if err := jr.reservations.SendPickupReminder(reservation.ID); err != nil {
				logger.Error("Pickup reminder failed", "reservation_id", reservation.ID, "error", err)
				continue
			}
			jr.reminded[reservation.ID] = true
			sent++
		}
		logger.Info("Pickup reminder sweep complete", "sent", sent)
	})
}

// SweepMaintenanceDue reports every vehicle the gate currently flags.
func (jr *JobRunner) SweepMaintenanceDue() {
	jr.runWithRecovery("SweepMaintenanceDue", func() {
		fleet := jr.inventory.ListAllVehicles()
		due := jr.gate.ListDueVehicles(fleet)
		for _, vehicle := range due {
			logger.Warn("Vehicle due for maintenance", "vehicle_id", vehicle.ID,
				"odometer_km", vehicle.Odometer.Value(), "status", string(vehicle.Status))
		}
		logger.Info("Maintenance sweep complete", "due", len(due), "fleet_size", len(fleet))
	})
}

package domain

import "time"

// MaintenanceRecord is one service plan entry for a vehicle. A vehicle
// with any due record is blocked from rental assignment.
type MaintenanceRecord struct {
	ID                  int         `json:"id"`
	VehicleID           int         `json:"vehicle_id"`
	ServiceType         string      `json:"service_type"`
	OdometerThreshold   Kilometers  `json:"odometer_threshold"`
	TimeThreshold       *time.Time  `json:"time_threshold,omitempty"`
	LastServiceDate     *time.Time  `json:"last_service_date,omitempty"`
	LastServiceOdometer *Kilometers `json:"last_service_odometer,omitempty"`
}

// IsDue reports whether service is due: the odometer is within
// warningWindowKm of (or past) the threshold, or the absolute time
// threshold has been reached.
func (m *MaintenanceRecord) IsDue(currentOdometer Kilometers, now time.Time, warningWindowKm int) bool {
	trigger := int(m.OdometerThreshold) - warningWindowKm
	if int(currentOdometer) >= trigger {
		return true
	}
	if m.TimeThreshold != nil && !now.Before(*m.TimeThreshold) {
		return true
	}
	return false
}

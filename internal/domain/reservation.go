package domain

import "time"

type Customer struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Agent struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Branch string `json:"branch"`
}

// AddOn is an optional daily-fee service (GPS, child seat, extra driver).
type AddOn struct {
	Name     string `json:"name"`
	DailyFee Money  `json:"daily_fee"`
}

type InsuranceTier struct {
	Name     string `json:"name"`
	DailyFee Money  `json:"daily_fee"`
}

// Reservation is created by the reservation service and consumed
// read-only by the rental engine, except for return-time updates on
// extension. AssignedVehicleID is set when a specific vehicle has been
// pinned for the reservation; the extension conflict check relies on it.
type Reservation struct {
	ID                int            `json:"id"`
	Customer          Customer       `json:"customer"`
	VehicleClass      VehicleClass   `json:"vehicle_class"`
	Location          Location       `json:"location"`
	PickupTime        time.Time      `json:"pickup_time"`
	ReturnTime        time.Time      `json:"return_time"`
	AddOns            []AddOn        `json:"addons,omitempty"`
	InsuranceTier     *InsuranceTier `json:"insurance_tier,omitempty"`
	Deposit           Money          `json:"deposit"`
	AssignedVehicleID *int           `json:"assigned_vehicle_id,omitempty"`
}

// DurationDays is the rental length in days, any fraction rounded up,
// minimum one day.
func (r *Reservation) DurationDays() int {
	d := r.ReturnTime.Sub(r.PickupTime)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) > 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}

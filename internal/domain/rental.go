package domain

import "time"

// ChargeItem is one itemized line of a rental bill.
type ChargeItem struct {
	Description string `json:"description"`
	Amount      Money  `json:"amount"`
}

// RentalAgreement records one vehicle assignment from pickup to return.
// The rental engine owns it exclusively while in progress; once
// Completed is set the rule-computed charges are frozen and only manual
// damage charges may still be appended.
type RentalAgreement struct {
	ID                 int          `json:"id"`
	Reservation        *Reservation `json:"reservation"`
	Vehicle            *Vehicle     `json:"vehicle"`
	PickupToken        string       `json:"pickup_token"`
	StartOdometer      Kilometers   `json:"start_odometer"`
	StartFuelLevel     FuelLevel    `json:"start_fuel_level"`
	PickupTime         time.Time    `json:"pickup_time"`
	ExpectedReturnTime time.Time    `json:"expected_return_time"`
	PickupAgent        *Agent       `json:"pickup_agent,omitempty"`
	ReturnAgent        *Agent       `json:"return_agent,omitempty"`
	ActualReturnTime   *time.Time   `json:"actual_return_time,omitempty"`
	EndOdometer        *Kilometers  `json:"end_odometer,omitempty"`
	EndFuelLevel       *FuelLevel   `json:"end_fuel_level,omitempty"`
	ChargeItems        []ChargeItem `json:"charge_items,omitempty"`
	Completed          bool         `json:"completed"`
	Upgraded           bool         `json:"upgraded"`
}

// IsOverdue reports whether the vehicle is still out past the expected
// return time plus the grace period.
func (r *RentalAgreement) IsOverdue(now time.Time, gracePeriodHours int) bool {
	if r.ActualReturnTime != nil {
		return false
	}
	deadline := r.ExpectedReturnTime.Add(time.Duration(gracePeriodHours) * time.Hour)
	return now.After(deadline)
}

// WasReturnedLate reports whether the completed return happened after
// the grace deadline.
func (r *RentalAgreement) WasReturnedLate(gracePeriodHours int) bool {
	if r.ActualReturnTime == nil {
		return false
	}
	deadline := r.ExpectedReturnTime.Add(time.Duration(gracePeriodHours) * time.Hour)
	return r.ActualReturnTime.After(deadline)
}

// LateHours is the number of billable late hours at the given time.
// Partial hours past the grace deadline round up.
func (r *RentalAgreement) LateHours(at time.Time, gracePeriodHours int) int {
	deadline := r.ExpectedReturnTime.Add(time.Duration(gracePeriodHours) * time.Hour)
	if !at.After(deadline) {
		return 0
	}
	late := at.Sub(deadline)
	hours := int(late / time.Hour)
	if late%time.Hour > 0 {
		hours++
	}
	return hours
}

// DrivenDistance is end minus start odometer, nil before the vehicle
// has been returned.
func (r *RentalAgreement) DrivenDistance() (*Kilometers, error) {
	if r.EndOdometer == nil {
		return nil, nil
	}
	driven, err := r.EndOdometer.Sub(r.StartOdometer)
	if err != nil {
		return nil, err
	}
	return &driven, nil
}

func (r *RentalAgreement) AddCharge(item ChargeItem) {
	r.ChargeItems = append(r.ChargeItems, item)
}

// TotalCharges sums every charge item. Mixed currencies fail with
// ErrCurrencyMismatch.
func (r *RentalAgreement) TotalCharges() (Money, error) {
	if len(r.ChargeItems) == 0 {
		return ZeroMoney(DefaultCurrency), nil
	}
	total := r.ChargeItems[0].Amount
	for _, item := range r.ChargeItems[1:] {
		var err error
		total, err = total.Add(item.Amount)
		if err != nil {
			return Money{}, err
		}
	}
	return total, nil
}

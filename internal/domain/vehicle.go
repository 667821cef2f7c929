package domain

import "fmt"

type VehicleStatus string

const (
	VehicleStatusAvailable    VehicleStatus = "Available"
	VehicleStatusReserved     VehicleStatus = "Reserved"
	VehicleStatusRented       VehicleStatus = "Rented"
	VehicleStatusOutOfService VehicleStatus = "OutOfService"
	VehicleStatusCleaning     VehicleStatus = "Cleaning"
)

// VehicleClass is immutable reference data shared by many vehicles.
type VehicleClass struct {
	Name                  string `json:"name"`
	BaseRate              Money  `json:"base_rate"`
	DailyMileageAllowance int    `json:"daily_mileage_allowance"` // km per day
}

// Location represents a branch location.
type Location struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Vehicle is a physical unit of the fleet. Status transitions are
// guarded: only an Available vehicle may be assigned to a rental.
type Vehicle struct {
	ID        int           `json:"id"`
	Class     VehicleClass  `json:"class"`
	Location  Location      `json:"location"`
	Status    VehicleStatus `json:"status"`
	Odometer  Kilometers    `json:"odometer"`
	FuelLevel FuelLevel     `json:"fuel_level"`
}

func (v *Vehicle) CanBeAssigned() bool {
	return v.Status == VehicleStatusAvailable
}

func (v *Vehicle) MarkRented() error {
	if !v.CanBeAssigned() {
		return fmt.Errorf("%w: vehicle %d has status %s", ErrVehicleUnavailable, v.ID, v.Status)
	}
	v.Status = VehicleStatusRented
	return nil
}

func (v *Vehicle) MarkAvailable() {
	v.Status = VehicleStatusAvailable
}

func (v *Vehicle) MarkOutOfService() {
	v.Status = VehicleStatusOutOfService
}

func (v *Vehicle) MarkCleaning() {
	v.Status = VehicleStatusCleaning
}

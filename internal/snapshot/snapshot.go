// Package snapshot flattens engine aggregates into plain structured
// records so an external writer can serialize them to any wire format
// without reaching into engine internals.
package snapshot

import (
	"time"

	"fleetrental-backend/internal/audit"
	"fleetrental-backend/internal/domain"
)

type MoneyRecord struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type ChargeItemRecord struct {
	Description string      `json:"description"`
	Amount      MoneyRecord `json:"amount"`
}

type VehicleRecord struct {
	ID              int         `json:"id"`
	ClassName       string      `json:"class_name"`
	BaseRate        MoneyRecord `json:"base_rate"`
	DailyAllowanceK int         `json:"daily_mileage_allowance"`
	LocationID      int         `json:"location_id"`
	Status          string      `json:"status"`
	OdometerKm      int         `json:"odometer_km"`
	FuelLevel       float64     `json:"fuel_level"`
}

type ReservationRecord struct {
	ID                int         `json:"id"`
	CustomerID        int         `json:"customer_id"`
	VehicleClassName  string      `json:"vehicle_class_name"`
	LocationID        int         `json:"location_id"`
	PickupTime        time.Time   `json:"pickup_time"`
	ReturnTime        time.Time   `json:"return_time"`
	AddOnNames        []string    `json:"addon_names,omitempty"`
	InsuranceTierName string      `json:"insurance_tier_name,omitempty"`
	Deposit           MoneyRecord `json:"deposit"`
	AssignedVehicleID *int        `json:"assigned_vehicle_id,omitempty"`
}

type RentalAgreementRecord struct {
	ID                 int                `json:"id"`
	ReservationID      int                `json:"reservation_id"`
	VehicleID          int                `json:"vehicle_id"`
	PickupToken        string             `json:"pickup_token"`
	StartOdometerKm    int                `json:"start_odometer_km"`
	StartFuelLevel     float64            `json:"start_fuel_level"`
	PickupTime         time.Time          `json:"pickup_time"`
	ExpectedReturnTime time.Time          `json:"expected_return_time"`
	ActualReturnTime   *time.Time         `json:"actual_return_time,omitempty"`
	EndOdometerKm      *int               `json:"end_odometer_km,omitempty"`
	EndFuelLevel       *float64           `json:"end_fuel_level,omitempty"`
	ChargeItems        []ChargeItemRecord `json:"charge_items,omitempty"`
	Completed          bool               `json:"completed"`
	Upgraded           bool               `json:"upgraded"`
}

type MaintenanceRecordRecord struct {
	ID                  int        `json:"id"`
	VehicleID           int        `json:"vehicle_id"`
	ServiceType         string     `json:"service_type"`
	OdometerThresholdKm int        `json:"odometer_threshold_km"`
	TimeThreshold       *time.Time `json:"time_threshold,omitempty"`
	LastServiceDate     *time.Time `json:"last_service_date,omitempty"`
	LastServiceKm       *int       `json:"last_service_km,omitempty"`
}

type AuditEntryRecord struct {
	ID          int64          `json:"id"`
	Timestamp   time.Time      `json:"timestamp"`
	EventType   string         `json:"event_type"`
	ActorType   string         `json:"actor_type"`
	ActorID     *int           `json:"actor_id,omitempty"`
	ActorName   string         `json:"actor_name,omitempty"`
	EntityType  string         `json:"entity_type"`
	EntityID    int            `json:"entity_id"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func FromMoney(m domain.Money) MoneyRecord {
	return MoneyRecord{Amount: m.Amount().StringFixed(2), Currency: m.Currency()}
}

func FromChargeItem(item domain.ChargeItem) ChargeItemRecord {
	return ChargeItemRecord{Description: item.Description, Amount: FromMoney(item.Amount)}
}

func FromVehicle(v *domain.Vehicle) VehicleRecord {
	return VehicleRecord{
		ID:              v.ID,
		ClassName:       v.Class.Name,
		BaseRate:        FromMoney(v.Class.BaseRate),
		DailyAllowanceK: v.Class.DailyMileageAllowance,
		LocationID:      v.Location.ID,
		Status:          string(v.Status),
		OdometerKm:      v.Odometer.Value(),
		FuelLevel:       v.FuelLevel.Level(),
	}
}

func FromReservation(r *domain.Reservation) ReservationRecord {
	record := ReservationRecord{
		ID:                r.ID,
		CustomerID:        r.Customer.ID,
		VehicleClassName:  r.VehicleClass.Name,
		LocationID:        r.Location.ID,
		PickupTime:        r.PickupTime,
		ReturnTime:        r.ReturnTime,
		Deposit:           FromMoney(r.Deposit),
		AssignedVehicleID: r.AssignedVehicleID,
	}
	for _, addon := range r.AddOns {
		record.AddOnNames = append(record.AddOnNames, addon.Name)
	}
	if r.InsuranceTier != nil {
		record.InsuranceTierName = r.InsuranceTier.Name
	}
	return record
}

func FromRentalAgreement(r *domain.RentalAgreement) RentalAgreementRecord {
	record := RentalAgreementRecord{
		ID:                 r.ID,
		ReservationID:      r.Reservation.ID,
		VehicleID:          r.Vehicle.ID,
		PickupToken:        r.PickupToken,
		StartOdometerKm:    r.StartOdometer.Value(),
		StartFuelLevel:     r.StartFuelLevel.Level(),
		PickupTime:         r.PickupTime,
		ExpectedReturnTime: r.ExpectedReturnTime,
		ActualReturnTime:   r.ActualReturnTime,
		Completed:          r.Completed,
		Upgraded:           r.Upgraded,
	}
	if r.EndOdometer != nil {
		km := r.EndOdometer.Value()
		record.EndOdometerKm = &km
	}
	if r.EndFuelLevel != nil {
		level := r.EndFuelLevel.Level()
		record.EndFuelLevel = &level
	}
	for _, item := range r.ChargeItems {
		record.ChargeItems = append(record.ChargeItems, FromChargeItem(item))
	}
	return record
}

func FromMaintenanceRecord(m *domain.MaintenanceRecord) MaintenanceRecordRecord {
	record := MaintenanceRecordRecord{
		ID:                  m.ID,
		VehicleID:           m.VehicleID,
		ServiceType:         m.ServiceType,
		OdometerThresholdKm: m.OdometerThreshold.Value(),
		TimeThreshold:       m.TimeThreshold,
		LastServiceDate:     m.LastServiceDate,
	}
	if m.LastServiceOdometer != nil {
		km := m.LastServiceOdometer.Value()
		record.LastServiceKm = &km
	}
	return record
}

func FromAuditEntry(e audit.Entry) AuditEntryRecord {
	return AuditEntryRecord{
		ID:          e.ID,
		Timestamp:   e.Timestamp,
		EventType:   string(e.EventType),
		ActorType:   string(e.ActorType),
		ActorID:     e.ActorID,
		ActorName:   e.ActorName,
		EntityType:  e.EntityType,
		EntityID:    e.EntityID,
		Description: e.Description,
		Metadata:    e.Metadata,
	}
}

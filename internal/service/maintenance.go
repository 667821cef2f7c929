package service

import (
	"sync"
	"time"

	"fleetrental-backend/internal/clock"
	"fleetrental-backend/internal/domain"
	"fleetrental-backend/internal/logger"
)

// DefaultWarningWindowKm marks a vehicle due this many kilometers
// before its odometer threshold.
const DefaultWarningWindowKm = 500

type maintenanceService struct {
	clk             clock.Clock
	warningWindowKm int

	mu      sync.Mutex
	records map[int][]*domain.MaintenanceRecord // vehicle id -> records
	nextID  int
}

// NewMaintenanceService builds the maintenance gate. A warningWindowKm
// of zero or less falls back to DefaultWarningWindowKm.
func NewMaintenanceService(clk clock.Clock, warningWindowKm int) MaintenanceService {
	if warningWindowKm <= 0 {
		warningWindowKm = DefaultWarningWindowKm
	}
	return &maintenanceService{
		clk:             clk,
		warningWindowKm: warningWindowKm,
		records:         make(map[int][]*domain.MaintenanceRecord),
		nextID:          1,
	}
}

func (s *maintenanceService) RegisterMaintenancePlan(vehicle *domain.Vehicle, serviceType string,
	odometerThreshold domain.Kilometers, timeThreshold *time.Time) *domain.MaintenanceRecord {

	s.mu.Lock()
	defer s.mu.Unlock()

	record := &domain.MaintenanceRecord{
		ID:                s.nextID,
		VehicleID:         vehicle.ID,
		ServiceType:       serviceType,
		OdometerThreshold: odometerThreshold,
		TimeThreshold:     timeThreshold,
	}
	s.nextID++
	s.records[vehicle.ID] = append(s.records[vehicle.ID], record)

	logger.Debug("Maintenance plan registered", "vehicle_id", vehicle.ID,
		"service_type", serviceType, "odometer_threshold", odometerThreshold.Value())
	return record
}

func (s *maintenanceService) IsMaintenanceDue(vehicle *domain.Vehicle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isDueLocked(vehicle)
}

func (s *maintenanceService) isDueLocked(vehicle *domain.Vehicle) bool {
	now := s.clk.Now()
	for _, record := range s.records[vehicle.ID] {
		if record.IsDue(vehicle.Odometer, now, s.warningWindowKm) {
			return true
		}
	}
	return false
}

func (s *maintenanceService) DueMaintenanceRecords(vehicle *domain.Vehicle) []*domain.MaintenanceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clk.Now()
	var due []*domain.MaintenanceRecord
	for _, record := range s.records[vehicle.ID] {
		if record.IsDue(vehicle.Odometer, now, s.warningWindowKm) {
			due = append(due, record)
		}
	}
	return due
}

func (s *maintenanceService) ListDueVehicles(vehicles []*domain.Vehicle) []*domain.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []*domain.Vehicle
	for _, vehicle := range vehicles {
		if s.isDueLocked(vehicle) {
			due = append(due, vehicle)
		}
	}
	return due
}

func (s *maintenanceService) CanAssignVehicle(vehicle *domain.Vehicle) bool {
	if !vehicle.CanBeAssigned() {
		return false
	}
	return !s.IsMaintenanceDue(vehicle)
}

// CompleteMaintenance stamps last-service bookkeeping on the matching
// record. Threshold renewal is the fleet planner's job, not ours.
func (s *maintenanceService) CompleteMaintenance(vehicle *domain.Vehicle, serviceType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clk.Now()
	odometer := vehicle.Odometer
	for _, record := range s.records[vehicle.ID] {
		if record.ServiceType == serviceType {
			record.LastServiceDate = &now
			record.LastServiceOdometer = &odometer
			logger.Info("Maintenance completed", "vehicle_id", vehicle.ID, "service_type", serviceType)
			return
		}
	}
}

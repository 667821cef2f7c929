package service

import (
	"fmt"
	"sync"
	"time"

	"fleetrental-backend/internal/clock"
	"fleetrental-backend/internal/domain"
)

type inventoryService struct {
	clk         clock.Clock
	maintenance MaintenanceService

	mu       sync.Mutex
	vehicles map[int]*domain.Vehicle
}

func NewInventoryService(clk clock.Clock, maintenance MaintenanceService) InventoryService {
	return &inventoryService{
		clk:         clk,
		maintenance: maintenance,
		vehicles:    make(map[int]*domain.Vehicle),
	}
}

func (s *inventoryService) AddVehicle(vehicle *domain.Vehicle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicles[vehicle.ID] = vehicle
}

func (s *inventoryService) GetVehicle(vehicleID int) (*domain.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vehicle, ok := s.vehicles[vehicleID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrVehicleNotFound, vehicleID)
	}
	return vehicle, nil
}

func (s *inventoryService) CheckAvailability(class domain.VehicleClass, location domain.Location,
	start, end time.Time) Availability {

	matching := s.matching(func(v *domain.Vehicle) bool {
		return v.Class.Name == class.Name && v.Location.ID == location.ID
	})

	result := Availability{
		VehicleClass: class.Name,
		Location:     location.Name,
		StartTime:    start,
		EndTime:      end,
		TotalCount:   len(matching),
	}
	for _, vehicle := range matching {
		if s.maintenance.IsMaintenanceDue(vehicle) {
			result.MaintenanceHoldCount++
			continue
		}
		if vehicle.Status == domain.VehicleStatusAvailable {
			result.AvailableCount++
			result.AvailableVehicleIDs = append(result.AvailableVehicleIDs, vehicle.ID)
		}
	}
	return result
}

func (s *inventoryService) SearchAvailableClasses(location domain.Location, start, end time.Time) []Availability {
	s.mu.Lock()
	classes := make(map[string]domain.VehicleClass)
	for _, vehicle := range s.vehicles {
		if vehicle.Location.ID == location.ID {
			classes[vehicle.Class.Name] = vehicle.Class
		}
	}
	s.mu.Unlock()

	var results []Availability
	for _, class := range classes {
		availability := s.CheckAvailability(class, location, start, end)
		if availability.AvailableCount > 0 {
			results = append(results, availability)
		}
	}
	return results
}

func (s *inventoryService) ListVehiclesByLocation(location domain.Location) []*domain.Vehicle {
	return s.matching(func(v *domain.Vehicle) bool {
		return v.Location.ID == location.ID
	})
}

func (s *inventoryService) ListVehiclesByClass(class domain.VehicleClass) []*domain.Vehicle {
	return s.matching(func(v *domain.Vehicle) bool {
		return v.Class.Name == class.Name
	})
}

func (s *inventoryService) ListAllVehicles() []*domain.Vehicle {
	return s.matching(func(*domain.Vehicle) bool { return true })
}

func (s *inventoryService) Statistics() FleetStatistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := FleetStatistics{
		ByClass:    make(map[string]int),
		ByLocation: make(map[string]int),
	}
	for _, vehicle := range s.vehicles {
		stats.TotalCount++
		switch vehicle.Status {
		case domain.VehicleStatusAvailable:
			stats.AvailableCount++
		case domain.VehicleStatusRented:
			stats.RentedCount++
		case domain.VehicleStatusOutOfService:
			stats.OutOfServiceCount++
		case domain.VehicleStatusCleaning:
			stats.CleaningCount++
		}
		stats.ByClass[vehicle.Class.Name]++
		stats.ByLocation[vehicle.Location.Name]++
	}
	return stats
}

func (s *inventoryService) matching(keep func(*domain.Vehicle) bool) []*domain.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Vehicle
	for _, vehicle := range s.vehicles {
		if keep(vehicle) {
			out = append(out, vehicle)
		}
	}
	return out
}

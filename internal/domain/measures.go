package domain

import (
	"fmt"
	"math"
)

// Kilometers is a non-negative distance. Odometer arithmetic that would
// go negative indicates corrupt readings and is rejected.
type Kilometers int

func NewKilometers(v int) (Kilometers, error) {
	if v < 0 {
		return 0, fmt.Errorf("%w: kilometers must be non-negative, got %d", ErrInvalidMeasurement, v)
	}
	return Kilometers(v), nil
}

func (k Kilometers) Add(other Kilometers) Kilometers {
	return k + other
}

func (k Kilometers) Sub(other Kilometers) (Kilometers, error) {
	result := int(k) - int(other)
	if result < 0 {
		return 0, fmt.Errorf("%w: resulting kilometers cannot be negative: %d", ErrInvalidMeasurement, result)
	}
	return Kilometers(result), nil
}

func (k Kilometers) Value() int { return int(k) }

func (k Kilometers) String() string {
	return fmt.Sprintf("%d km", int(k))
}

// fuelEpsilon absorbs float drift when comparing fuel readings.
const fuelEpsilon = 0.001

// FuelLevel is a tank fraction in [0.0, 1.0].
type FuelLevel float64

func NewFuelLevel(level float64) (FuelLevel, error) {
	if level < 0.0 || level > 1.0 {
		return 0, fmt.Errorf("%w: fuel level must be between 0.0 and 1.0, got %v", ErrInvalidMeasurement, level)
	}
	return FuelLevel(level), nil
}

func FullTank() FuelLevel  { return FuelLevel(1.0) }
func EmptyTank() FuelLevel { return FuelLevel(0.0) }

func (f FuelLevel) Level() float64 { return float64(f) }

func (f FuelLevel) Equal(other FuelLevel) bool {
	return math.Abs(float64(f)-float64(other)) < fuelEpsilon
}

func (f FuelLevel) LessThan(other FuelLevel) bool {
	return float64(f) < float64(other)
}

func (f FuelLevel) String() string {
	return fmt.Sprintf("%.1f%%", float64(f)*100)
}

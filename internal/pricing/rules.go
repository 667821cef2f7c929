package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fleetrental-backend/internal/clock"
	"fleetrental-backend/internal/domain"
)

// Rule derives zero or more charge items from a fully-populated rental
// agreement. Rules never mutate the agreement.
type Rule interface {
	Calculate(rental *domain.RentalAgreement, clk clock.Clock) []domain.ChargeItem
}

// RuleFunc adapts a plain function into a Rule.
type RuleFunc func(rental *domain.RentalAgreement, clk clock.Clock) []domain.ChargeItem

func (f RuleFunc) Calculate(rental *domain.RentalAgreement, clk clock.Clock) []domain.ChargeItem {
	return f(rental, clk)
}

// BaseRateRule charges the vehicle class daily rate for every day of
// the reservation.
type BaseRateRule struct{}

func (BaseRateRule) Calculate(rental *domain.RentalAgreement, _ clock.Clock) []domain.ChargeItem {
	days := rental.Reservation.DurationDays()
	rate := rental.Vehicle.Class.BaseRate
	return []domain.ChargeItem{{
		Description: fmt.Sprintf("Base rate (%d days @ %s/day)", days, rate),
		Amount:      rate.MulInt(int64(days)),
	}}
}

// AddOnRule charges each selected add-on's daily fee per day.
type AddOnRule struct{}

func (AddOnRule) Calculate(rental *domain.RentalAgreement, _ clock.Clock) []domain.ChargeItem {
	days := rental.Reservation.DurationDays()
	var items []domain.ChargeItem
	for _, addon := range rental.Reservation.AddOns {
		items = append(items, domain.ChargeItem{
			Description: fmt.Sprintf("%s (%d days @ %s/day)", addon.Name, days, addon.DailyFee),
			Amount:      addon.DailyFee.MulInt(int64(days)),
		})
	}
	return items
}

// InsuranceRule charges the selected tier's daily fee per day, nothing
// when no tier was chosen.
type InsuranceRule struct{}

func (InsuranceRule) Calculate(rental *domain.RentalAgreement, _ clock.Clock) []domain.ChargeItem {
	tier := rental.Reservation.InsuranceTier
	if tier == nil {
		return nil
	}
	days := rental.Reservation.DurationDays()
	return []domain.ChargeItem{{
		Description: fmt.Sprintf("%s insurance (%d days @ %s/day)", tier.Name, days, tier.DailyFee),
		Amount:      tier.DailyFee.MulInt(int64(days)),
	}}
}

// LateFeeRule bills each hour past expected return plus grace period,
// partial hours rounding up. Only fires once an actual return time is
// recorded.
type LateFeeRule struct {
	HourlyRate       domain.Money
	GracePeriodHours int
}

func NewLateFeeRule(hourlyRate domain.Money, gracePeriodHours int) LateFeeRule {
	return LateFeeRule{HourlyRate: hourlyRate, GracePeriodHours: gracePeriodHours}
}

func (r LateFeeRule) Calculate(rental *domain.RentalAgreement, _ clock.Clock) []domain.ChargeItem {
	if rental.ActualReturnTime == nil {
		return nil
	}
	lateHours := rental.LateHours(*rental.ActualReturnTime, r.GracePeriodHours)
	if lateHours <= 0 {
		return nil
	}
	return []domain.ChargeItem{{
		Description: fmt.Sprintf("Late fee (%d hours @ %s/hour)", lateHours, r.HourlyRate),
		Amount:      r.HourlyRate.MulInt(int64(lateHours)),
	}}
}

// MileageOverageRule bills distance driven beyond the class allowance
// times the rental duration.
type MileageOverageRule struct {
	PerKmRate domain.Money
}

func NewMileageOverageRule(perKmRate domain.Money) MileageOverageRule {
	return MileageOverageRule{PerKmRate: perKmRate}
}

func (r MileageOverageRule) Calculate(rental *domain.RentalAgreement, _ clock.Clock) []domain.ChargeItem {
	driven, err := rental.DrivenDistance()
	if err != nil || driven == nil {
		return nil
	}
	days := rental.Reservation.DurationDays()
	allowance := rental.Vehicle.Class.DailyMileageAllowance * days
	if driven.Value() <= allowance {
		return nil
	}
	overage := driven.Value() - allowance
	return []domain.ChargeItem{{
		Description: fmt.Sprintf("Mileage overage (%d km @ %s/km)", overage, r.PerKmRate),
		Amount:      r.PerKmRate.MulInt(int64(overage)),
	}}
}

// FuelRefillRule bills each full 10-percentage-point fuel deficit
// between pickup and return, flooring partial tenths.
type FuelRefillRule struct {
	PerTenthRate domain.Money
}

func NewFuelRefillRule(perTenthRate domain.Money) FuelRefillRule {
	return FuelRefillRule{PerTenthRate: perTenthRate}
}

func (r FuelRefillRule) Calculate(rental *domain.RentalAgreement, _ clock.Clock) []domain.ChargeItem {
	if rental.EndFuelLevel == nil {
		return nil
	}
	if !rental.EndFuelLevel.LessThan(rental.StartFuelLevel) {
		return nil
	}
	deficit := rental.StartFuelLevel.Level() - rental.EndFuelLevel.Level()
	// Floor to whole tenths; the epsilon keeps float drift from eating
	// an exact tenth (0.7-0.4 is not 0.3 in binary).
	units := int(deficit*10 + 1e-9)
	if units <= 0 {
		return nil
	}
	return []domain.ChargeItem{{
		Description: fmt.Sprintf("Fuel refill charge (%d%% @ %s/10%%)", units*10, r.PerTenthRate),
		Amount:      r.PerTenthRate.MulInt(int64(units)),
	}}
}

// WeekendMultiplierRule surcharges rentals picked up on a Saturday or
// Sunday by (multiplier-1) of the base rate total.
type WeekendMultiplierRule struct {
	Multiplier float64
}

func NewWeekendMultiplierRule(multiplier float64) WeekendMultiplierRule {
	return WeekendMultiplierRule{Multiplier: multiplier}
}

func (r WeekendMultiplierRule) Calculate(rental *domain.RentalAgreement, _ clock.Clock) []domain.ChargeItem {
	day := rental.PickupTime.Weekday()
	if day != time.Saturday && day != time.Sunday {
		return nil
	}
	days := rental.Reservation.DurationDays()
	baseTotal := rental.Vehicle.Class.BaseRate.MulInt(int64(days))
	factor := surchargeFactor(r.Multiplier)
	return []domain.ChargeItem{{
		Description: fmt.Sprintf("Weekend surcharge (%d%%)", factorPercent(factor)),
		Amount:      baseTotal.MulDecimal(factor),
	}}
}

// SeasonMultiplierRule surcharges rentals picked up in a peak month by
// (multiplier-1) of the base rate total.
type SeasonMultiplierRule struct {
	PeakMonths []time.Month
	Multiplier float64
}

func NewSeasonMultiplierRule(peakMonths []time.Month, multiplier float64) SeasonMultiplierRule {
	return SeasonMultiplierRule{PeakMonths: peakMonths, Multiplier: multiplier}
}

func (r SeasonMultiplierRule) Calculate(rental *domain.RentalAgreement, _ clock.Clock) []domain.ChargeItem {
	month := rental.PickupTime.Month()
	peak := false
	for _, m := range r.PeakMonths {
		if m == month {
			peak = true
			break
		}
	}
	if !peak {
		return nil
	}
	days := rental.Reservation.DurationDays()
	baseTotal := rental.Vehicle.Class.BaseRate.MulInt(int64(days))
	factor := surchargeFactor(r.Multiplier)
	return []domain.ChargeItem{{
		Description: fmt.Sprintf("Peak season surcharge (%d%%)", factorPercent(factor)),
		Amount:      baseTotal.MulDecimal(factor),
	}}
}

// surchargeFactor converts a multiplier like 1.2 into the exact decimal
// factor 0.2. Subtracting in float64 first would leave binary drift
// (1.2-1.0 is 0.1999...) on the invoice; NewFromFloat of the multiplier
// itself is exact because it takes the shortest round-tripping decimal.
func surchargeFactor(multiplier float64) decimal.Decimal {
	return decimal.NewFromFloat(multiplier).Sub(decimal.NewFromInt(1))
}

func factorPercent(factor decimal.Decimal) int64 {
	return factor.Mul(decimal.NewFromInt(100)).IntPart()
}

// DamageChargeRule emits a pre-supplied one-off amount when positive.
// Built outside the standard policy for manual adjustments.
type DamageChargeRule struct {
	Amount domain.Money
}

func NewDamageChargeRule(amount domain.Money) DamageChargeRule {
	return DamageChargeRule{Amount: amount}
}

func (r DamageChargeRule) Calculate(_ *domain.RentalAgreement, _ clock.Clock) []domain.ChargeItem {
	if !r.Amount.IsPositive() {
		return nil
	}
	return []domain.ChargeItem{{
		Description: "Damage charge",
		Amount:      r.Amount,
	}}
}

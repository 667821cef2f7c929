// Package pricing computes itemized rental charges from an ordered set
// of declarative rules.
package pricing

import (
	"time"

	"fleetrental-backend/internal/clock"
	"fleetrental-backend/internal/domain"
)

// Policy runs its rules in registration order and concatenates their
// charge items. Order affects presentation only; the total is a plain
// sum.
type Policy struct {
	clk   clock.Clock
	rules []Rule
}

func NewPolicy(clk clock.Clock) *Policy {
	return &Policy{clk: clk}
}

// AddRule appends a rule; returns the policy for chaining.
func (p *Policy) AddRule(rule Rule) *Policy {
	p.rules = append(p.rules, rule)
	return p
}

func (p *Policy) CalculateCharges(rental *domain.RentalAgreement) []domain.ChargeItem {
	var all []domain.ChargeItem
	for _, rule := range p.rules {
		all = append(all, rule.Calculate(rental, p.clk)...)
	}
	return all
}

// CalculateTotal sums the charges of every rule that fired. Mixing
// currencies across rules fails with ErrCurrencyMismatch.
func (p *Policy) CalculateTotal(rental *domain.RentalAgreement) (domain.Money, error) {
	charges := p.CalculateCharges(rental)
	if len(charges) == 0 {
		return domain.ZeroMoney(domain.DefaultCurrency), nil
	}
	total := charges[0].Amount
	for _, item := range charges[1:] {
		var err error
		total, err = total.Add(item.Amount)
		if err != nil {
			return domain.Money{}, err
		}
	}
	return total, nil
}

// StandardPolicyOptions configures the standard rule set. Zero-valued
// rates fall back to the defaults used by the fleet.
type StandardPolicyOptions struct {
	LateFeePerHour        domain.Money
	GracePeriodHours      int
	MileageOveragePerKm   domain.Money
	FuelRefillPerTenth    domain.Money
	ApplyWeekendSurcharge bool
	WeekendMultiplier     float64
	PeakSeasonMonths      []time.Month
	PeakSeasonMultiplier  float64
}

// NewStandardPolicy builds the standard rule chain: base rate, add-ons,
// insurance, late fee, mileage overage, fuel refill, plus the optional
// weekend and peak-season surcharges.
func NewStandardPolicy(clk clock.Clock, opts StandardPolicyOptions) *Policy {
	lateFee := opts.LateFeePerHour
	if lateFee.IsZero() {
		lateFee, _ = domain.MoneyFromString("25.00", domain.DefaultCurrency)
	}
	grace := opts.GracePeriodHours
	if grace <= 0 {
		grace = 1
	}
	perKm := opts.MileageOveragePerKm
	if perKm.IsZero() {
		perKm, _ = domain.MoneyFromString("0.50", domain.DefaultCurrency)
	}
	perTenth := opts.FuelRefillPerTenth
	if perTenth.IsZero() {
		perTenth, _ = domain.MoneyFromString("10.00", domain.DefaultCurrency)
	}

	policy := NewPolicy(clk).
		AddRule(BaseRateRule{}).
		AddRule(AddOnRule{}).
		AddRule(InsuranceRule{}).
		AddRule(NewLateFeeRule(lateFee, grace)).
		AddRule(NewMileageOverageRule(perKm)).
		AddRule(NewFuelRefillRule(perTenth))

	if opts.ApplyWeekendSurcharge {
		mult := opts.WeekendMultiplier
		if mult <= 1.0 {
			mult = 1.2
		}
		policy.AddRule(NewWeekendMultiplierRule(mult))
	}
	if len(opts.PeakSeasonMonths) > 0 {
		mult := opts.PeakSeasonMultiplier
		if mult <= 1.0 {
			mult = 1.3
		}
		policy.AddRule(NewSeasonMultiplierRule(opts.PeakSeasonMonths, mult))
	}
	return policy
}

package main

import (
	"flag"
	"log"
	"os"
	"time"

	"fleetrental-backend/internal/adapters"
	"fleetrental-backend/internal/audit"
	"fleetrental-backend/internal/clock"
	"fleetrental-backend/internal/config"
	"fleetrental-backend/internal/domain"
	"fleetrental-backend/internal/jobs"
	"fleetrental-backend/internal/logger"
	"fleetrental-backend/internal/pricing"
	"fleetrental-backend/internal/scheduler"
	"fleetrental-backend/internal/service"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "Path to configuration file")
	flag.Parse()

	cfg := config.Default()
	if _, err := os.Stat(*configPath); err == nil {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		cfg = loaded
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting fleet rental demo", "log_level", cfg.Log.Level)

	// A fixed clock makes the scenario reproducible run to run.
	clk := clock.NewFixedClock(time.Date(2025, 11, 5, 9, 0, 0, 0, time.UTC))

	trail := audit.NewTrail()
	notifier := adapters.NewInMemoryNotificationAdapter()
	paymentGateway := adapters.NewFakePaymentAdapter(clk)

	lateFee := mustMoney(cfg.Pricing.LateFeePerHour, cfg.Pricing.Currency)
	perKm := mustMoney(cfg.Pricing.MileageOveragePerKm, cfg.Pricing.Currency)
	perTenth := mustMoney(cfg.Pricing.FuelRefillPerTenth, cfg.Pricing.Currency)

	policy := pricing.NewStandardPolicy(clk, pricing.StandardPolicyOptions{
		LateFeePerHour:        lateFee,
		GracePeriodHours:      cfg.Pricing.GracePeriodHours,
		MileageOveragePerKm:   perKm,
		FuelRefillPerTenth:    perTenth,
		ApplyWeekendSurcharge: cfg.Pricing.ApplyWeekendSurcharge,
		WeekendMultiplier:     cfg.Pricing.WeekendMultiplier,
		PeakSeasonMonths:      cfg.PeakMonths(),
		PeakSeasonMultiplier:  cfg.Pricing.PeakSeasonMultiplier,
	})

	maintenanceSvc := service.NewMaintenanceService(clk, cfg.Maintenance.WarningWindowKm)
	inventorySvc := service.NewInventoryService(clk, maintenanceSvc)
	reservationSvc := service.NewReservationService(clk, notifier, trail)
	rentalSvc := service.NewRentalService(clk, policy, maintenanceSvc, trail, reservationSvc)
	accountingSvc := service.NewAccountingService(clk, paymentGateway, notifier, trail)

	runner := jobs.NewJobRunner(cfg, clk, rentalSvc, inventorySvc, maintenanceSvc, reservationSvc, notifier)
	sched := scheduler.NewScheduler(runner)
	sched.Start()
	defer sched.Stop()

	// Fleet setup.
	downtown := domain.Location{ID: 1, Name: "Downtown", Address: "100 Main St"}
	economy := domain.VehicleClass{
		Name:                  "Economy",
		BaseRate:              mustMoney("30.00", cfg.Pricing.Currency),
		DailyMileageAllowance: 200,
	}
	car := &domain.Vehicle{
		ID:        1,
		Class:     economy,
		Location:  downtown,
		Status:    domain.VehicleStatusAvailable,
		Odometer:  12000,
		FuelLevel: domain.FullTank(),
	}
	inventorySvc.AddVehicle(car)
	maintenanceSvc.RegisterMaintenancePlan(car, "Oil Change", 20000, nil)

	alice := domain.Customer{ID: 1, Name: "Alice Brown", Email: "alice@example.com", Phone: "555-0100"}
	agent := &domain.Agent{ID: 7, Name: "Dan Chen", Branch: "Downtown"}

	pickupTime := time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC)
	returnTime := time.Date(2025, 11, 8, 10, 0, 0, 0, time.UTC)
	reservation := reservationSvc.CreateReservation(alice, economy, downtown,
		pickupTime, returnTime, nil, nil, mustMoney("150.00", cfg.Pricing.Currency))

	// Pickup is an hour out, so the reminder sweep fires for it.
	runner.SweepPickupReminders()

	clk.Set(pickupTime)
	rental, err := rentalSvc.PickupVehicle(reservation, car, 12000, domain.FullTank(), agent, "demo-token-123")
	if err != nil {
		log.Fatalf("Pickup failed: %v", err)
	}
	logger.Info("Rental created", "rental_id", rental.ID, "token", rental.PickupToken)

	// Replaying the same token returns the same agreement.
	replay, _ := rentalSvc.PickupVehicle(reservation, car, 12000, domain.FullTank(), agent, "demo-token-123")
	logger.Info("Idempotent replay", "same_agreement", replay.ID == rental.ID)

	depositInvoice, err := accountingSvc.CreateInvoice(rental)
	if err != nil {
		log.Fatalf("Invoice failed: %v", err)
	}
	accountingSvc.AuthorizeDeposit(depositInvoice, reservation.Deposit)

	// Extend by one day.
	extended, err := rentalSvc.ExtendRental(rental.ID, returnTime.Add(24*time.Hour))
	if err != nil {
		log.Fatalf("Extension failed: %v", err)
	}
	logger.Info("Extension", "granted", extended)

	// Return three hours late with 500 km driven and a quarter tank gone.
	clk.Set(returnTime.Add(24*time.Hour + 3*time.Hour))
	endFuel, _ := domain.NewFuelLevel(0.7)
	rental, err = rentalSvc.ReturnVehicle(rental.ID, 12500, endFuel, agent)
	if err != nil {
		log.Fatalf("Return failed: %v", err)
	}
	total, _ := rental.TotalCharges()
	logger.Info("Return complete", "charge_items", len(rental.ChargeItems), "total", total.String())

	rentalSvc.AddManualDamageCharge(rental.ID, mustMoney("75.00", cfg.Pricing.Currency), "Scratched rear bumper", agent)

	finalInvoice, err := accountingSvc.CreateInvoice(rental)
	if err != nil {
		log.Fatalf("Final invoice failed: %v", err)
	}
	paid := accountingSvc.FinalizePayment(finalInvoice)
	logger.Info("Payment finalized", "paid", paid, "invoice_total", finalInvoice.TotalAmount.String())

	runner.SweepOverdueRentals()
	runner.SweepMaintenanceDue()

	stats := inventorySvc.Statistics()
	logger.Info("Fleet statistics", "total", stats.TotalCount, "cleaning", stats.CleaningCount)
	logger.Info("Audit trail", "entries", trail.Len())
	for _, entry := range trail.All() {
		logger.Info("Audit entry", "id", entry.ID, "event", string(entry.EventType), "description", entry.Description)
	}
	logger.Info("Notifications sent", "count", len(notifier.Sent()))
}

func mustMoney(amount, currency string) domain.Money {
	m, err := domain.MoneyFromString(amount, currency)
	if err != nil {
		log.Fatalf("Bad money literal %q: %v", amount, err)
	}
	return m
}

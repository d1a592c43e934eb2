package service

import (
	"fmt"
	"time"

	"parklot-service/internal/config"
	"parklot-service/internal/domain/parking"
)

// Stays shorter than 30 minutes are free.
const freeStayHours = 0.5

// Recurring users get a flat 5% off.
const recurringDiscountFactor = 0.95

// FareEngine computes the price of a stay from its timestamps and the
// spot's vehicle type. It is a pure computation; whether the discount
// applies is decided by the caller.
type FareEngine struct {
	rates map[parking.VehicleType]float64
}

func NewFareEngine(cfg config.FareConfig) *FareEngine {
	return &FareEngine{
		rates: map[parking.VehicleType]float64{
			parking.VehicleTypeCar:  cfg.CarRatePerHour,
			parking.VehicleTypeBike: cfg.BikeRatePerHour,
		},
	}
}

func (e *FareEngine) ComputeFare(inTime, outTime time.Time, vt parking.VehicleType, discount bool) (float64, error) {
	if outTime.IsZero() || outTime.Before(inTime) {
		return 0, fmt.Errorf("%w: out time %v is not after in time %v", ErrInvalidInterval, outTime, inTime)
	}

	duration := outTime.Sub(inTime).Hours()
	if duration < freeStayHours {
		return 0, nil
	}

	rate, ok := e.rates[vt]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownVehicleType, vt)
	}

	price := duration * rate
	if discount {
		price *= recurringDiscountFactor
	}
	return price, nil
}

// ComputeStandardFare prices a stay without any discount.
func (e *FareEngine) ComputeStandardFare(inTime, outTime time.Time, vt parking.VehicleType) (float64, error) {
	return e.ComputeFare(inTime, outTime, vt, false)
}

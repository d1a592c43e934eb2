package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"parklot-service/internal/domain/parking"
)

// SpotAllocator hands out and reclaims physical spots. A full lot is an
// expected outcome, not an error: FindAvailableSpot returns nil in that
// case.
type SpotAllocator struct {
	spots SpotStore
	log   zerolog.Logger
}

func NewSpotAllocator(spots SpotStore, log zerolog.Logger) *SpotAllocator {
	return &SpotAllocator{
		spots: spots,
		log:   log,
	}
}

func (a *SpotAllocator) FindAvailableSpot(ctx context.Context, vt parking.VehicleType) (*parking.Spot, error) {
	spot, err := a.spots.GetNextAvailable(ctx, vt)
	if err != nil {
		return nil, fmt.Errorf("failed to query available spots: %w", err)
	}
	if spot == nil {
		a.log.Debug().Str("vehicle_type", string(vt)).Msg("no available spot")
		return nil, nil
	}
	return spot, nil
}

func (a *SpotAllocator) MarkOccupied(ctx context.Context, spot *parking.Spot) error {
	spot.Available = false
	if err := a.spots.UpdateAvailability(ctx, spot); err != nil {
		return fmt.Errorf("failed to mark spot %d occupied: %w", spot.Number, err)
	}
	a.log.Debug().Int("spot", spot.Number).Msg("spot marked occupied")
	return nil
}

func (a *SpotAllocator) MarkFree(ctx context.Context, spot *parking.Spot) error {
	spot.Available = true
	if err := a.spots.UpdateAvailability(ctx, spot); err != nil {
		return fmt.Errorf("failed to mark spot %d free: %w", spot.Number, err)
	}
	a.log.Debug().Int("spot", spot.Number).Msg("spot marked free")
	return nil
}

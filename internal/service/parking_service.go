package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"parklot-service/internal/domain/parking"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrNoCapacity         = errors.New("no available spot")
	ErrInvalidInterval    = errors.New("invalid parking interval")
	ErrUnknownVehicleType = errors.New("unknown vehicle type")
	ErrStorageUpdate      = errors.New("storage update failed")
)

// Vehicle type menu selections, as presented to the operator.
const (
	SelectionCar  = 1
	SelectionBike = 2
)

// A vehicle is a recurring user once it has this many recorded tickets,
// the currently open one included. The discount therefore starts on the
// second visit.
const recurringVisitThreshold = 2

// ParkingService runs one vehicle visit at a time: entry allocates a
// spot and opens a ticket, exit prices the ticket and releases the
// spot. Flows are synchronous and sequential; nothing here guards
// against two overlapping visits racing for the same spot.
type ParkingService struct {
	allocator *SpotAllocator
	tickets   TicketStore
	events    EventStore
	fare      *FareEngine
	log       zerolog.Logger
}

func NewParkingService(
	allocator *SpotAllocator,
	tickets TicketStore,
	events EventStore,
	fare *FareEngine,
	log zerolog.Logger,
) *ParkingService {
	return &ParkingService{
		allocator: allocator,
		tickets:   tickets,
		events:    events,
		fare:      fare,
		log:       log,
	}
}

func vehicleTypeFromSelection(selection int) (parking.VehicleType, error) {
	switch selection {
	case SelectionCar:
		return parking.VehicleTypeCar, nil
	case SelectionBike:
		return parking.VehicleTypeBike, nil
	default:
		return "", fmt.Errorf("%w: vehicle type selection %d", ErrInvalidInput, selection)
	}
}

// GetNextParkingNumberIfAvailable resolves the vehicle type from the
// input source and looks up the next free spot for it. It performs no
// mutation; a full lot surfaces as ErrNoCapacity.
func (s *ParkingService) GetNextParkingNumberIfAvailable(ctx context.Context, in InputSource) (*parking.Spot, error) {
	selection, err := in.ReadSelection()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read selection: %v", ErrInvalidInput, err)
	}

	vt, err := vehicleTypeFromSelection(selection)
	if err != nil {
		return nil, err
	}

	spot, err := s.allocator.FindAvailableSpot(ctx, vt)
	if err != nil {
		return nil, err
	}
	if spot == nil {
		return nil, fmt.Errorf("%w: vehicle type %s", ErrNoCapacity, vt)
	}

	return spot, nil
}

// ProcessIncomingVehicle runs the entry flow: resolve the vehicle type,
// allocate a spot, open a ticket. The recurring-user flag in the result
// is informational only and does not affect entry.
func (s *ParkingService) ProcessIncomingVehicle(ctx context.Context, in InputSource) (*parking.EntryResult, error) {
	spot, err := s.GetNextParkingNumberIfAvailable(ctx, in)
	if err != nil {
		return nil, err
	}

	if err := s.allocator.MarkOccupied(ctx, spot); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUpdate, err)
	}

	regNumber, err := in.ReadVehicleRegNumber()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read vehicle registration number: %v", ErrInvalidInput, err)
	}

	ticket := &parking.Ticket{
		Ref:              uuid.NewString(),
		VehicleRegNumber: regNumber,
		Spot:             spot,
		InTime:           time.Now(),
	}

	if err := s.tickets.Save(ctx, ticket); err != nil {
		s.log.Error().
			Err(err).
			Str("vehicle", regNumber).
			Int("spot", spot.Number).
			Msg("failed to save ticket")
		return nil, fmt.Errorf("failed to save ticket: %w", err)
	}

	recurring := s.isRecurringUser(ctx, regNumber)

	s.recordGateEvent(ctx, ticket, parking.DirectionIn, map[string]interface{}{
		"ticket_ref":     ticket.Ref,
		"vehicle_type":   string(spot.Type),
		"recurring_user": recurring,
	})

	s.log.Info().
		Int64("ticket_id", ticket.ID).
		Str("ticket_ref", ticket.Ref).
		Str("vehicle", regNumber).
		Int("spot", spot.Number).
		Str("vehicle_type", string(spot.Type)).
		Bool("recurring_user", recurring).
		Time("in_time", ticket.InTime).
		Msg("vehicle parked")

	return &parking.EntryResult{
		Ticket:        ticket,
		RecurringUser: recurring,
	}, nil
}

// ProcessExitingVehicle runs the exit flow: price the open ticket and
// release its spot. A failed ticket update is logged and surfaced, but
// spot release is still attempted so a transient write error cannot
// lock up a physical spot.
func (s *ParkingService) ProcessExitingVehicle(ctx context.Context, in InputSource) (*parking.ExitResult, error) {
	regNumber, err := in.ReadVehicleRegNumber()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read vehicle registration number: %v", ErrInvalidInput, err)
	}

	ticket, err := s.tickets.GetOpenTicket(ctx, regNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch open ticket: %w", err)
	}
	if ticket == nil {
		return nil, fmt.Errorf("%w: no open ticket for vehicle %s", ErrNotFound, regNumber)
	}

	count, err := s.tickets.CountForVehicle(ctx, regNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to count tickets for vehicle: %w", err)
	}
	recurring := count >= recurringVisitThreshold

	outTime := time.Now()
	ticket.OutTime = &outTime

	price, err := s.fare.ComputeFare(ticket.InTime, outTime, ticket.Spot.Type, recurring)
	if err != nil {
		return nil, err
	}
	ticket.Price = price

	updateErr := s.tickets.Update(ctx, ticket)
	if updateErr != nil {
		s.log.Error().
			Err(updateErr).
			Int64("ticket_id", ticket.ID).
			Str("vehicle", regNumber).
			Msg("failed to update ticket, releasing spot anyway")
	}

	releaseErr := s.allocator.MarkFree(ctx, ticket.Spot)
	if releaseErr != nil {
		s.log.Error().
			Err(releaseErr).
			Int("spot", ticket.Spot.Number).
			Msg("failed to release spot")
	}

	s.recordGateEvent(ctx, ticket, parking.DirectionOut, map[string]interface{}{
		"ticket_ref":     ticket.Ref,
		"price":          price,
		"recurring_user": recurring,
	})

	if updateErr != nil {
		return nil, fmt.Errorf("%w: ticket update: %v", ErrStorageUpdate, updateErr)
	}
	if releaseErr != nil {
		return nil, fmt.Errorf("%w: spot release: %v", ErrStorageUpdate, releaseErr)
	}

	s.log.Info().
		Int64("ticket_id", ticket.ID).
		Str("vehicle", regNumber).
		Int("spot", ticket.Spot.Number).
		Float64("price", price).
		Bool("recurring_user", recurring).
		Time("out_time", outTime).
		Msg("vehicle exited")

	return &parking.ExitResult{
		Ticket:        ticket,
		RecurringUser: recurring,
		DiscountGiven: recurring && price > 0,
	}, nil
}

// ListTickets returns the vehicle's visit history, newest first.
func (s *ParkingService) ListTickets(ctx context.Context, vehicleRegNumber string, limit int) ([]parking.Ticket, error) {
	if vehicleRegNumber == "" {
		return nil, fmt.Errorf("%w: vehicle registration number is required", ErrInvalidInput)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.tickets.ListForVehicle(ctx, vehicleRegNumber, limit)
}

// ListGateEvents returns the vehicle's gate audit trail, newest first.
func (s *ParkingService) ListGateEvents(ctx context.Context, vehicleRegNumber string, limit int) ([]parking.GateEvent, error) {
	if vehicleRegNumber == "" {
		return nil, fmt.Errorf("%w: vehicle registration number is required", ErrInvalidInput)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.events.ListForVehicle(ctx, vehicleRegNumber, limit)
}

// isRecurringUser never fails a flow: a broken history lookup only
// costs the informational flag at entry.
func (s *ParkingService) isRecurringUser(ctx context.Context, vehicleRegNumber string) bool {
	count, err := s.tickets.CountForVehicle(ctx, vehicleRegNumber)
	if err != nil {
		s.log.Warn().
			Err(err).
			Str("vehicle", vehicleRegNumber).
			Msg("failed to count tickets for vehicle")
		return false
	}
	return count >= recurringVisitThreshold
}

func (s *ParkingService) recordGateEvent(ctx context.Context, ticket *parking.Ticket, direction parking.GateDirection, payload map[string]interface{}) {
	event := &parking.GateEvent{
		TicketID:         ticket.ID,
		Direction:        direction,
		VehicleRegNumber: ticket.VehicleRegNumber,
		SpotNumber:       ticket.Spot.Number,
		EventTime:        time.Now(),
		Payload:          payload,
	}
	if err := s.events.Record(ctx, event); err != nil {
		s.log.Warn().
			Err(err).
			Str("direction", string(direction)).
			Str("vehicle", ticket.VehicleRegNumber).
			Msg("failed to record gate event")
	}
}

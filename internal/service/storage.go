package service

import (
	"context"

	"parklot-service/internal/domain/parking"
)

// InputSource supplies the operator-facing values a vehicle flow needs:
// a numeric vehicle-type selection and a registration number. Reads are
// synchronous pulls.
type InputSource interface {
	ReadSelection() (int, error)
	ReadVehicleRegNumber() (string, error)
}

type SpotStore interface {
	GetNextAvailable(ctx context.Context, vt parking.VehicleType) (*parking.Spot, error)
	UpdateAvailability(ctx context.Context, spot *parking.Spot) error
}

type TicketStore interface {
	Save(ctx context.Context, ticket *parking.Ticket) error
	GetOpenTicket(ctx context.Context, vehicleRegNumber string) (*parking.Ticket, error)
	Update(ctx context.Context, ticket *parking.Ticket) error
	CountForVehicle(ctx context.Context, vehicleRegNumber string) (int64, error)
	ListForVehicle(ctx context.Context, vehicleRegNumber string, limit int) ([]parking.Ticket, error)
}

type EventStore interface {
	Record(ctx context.Context, event *parking.GateEvent) error
	ListForVehicle(ctx context.Context, vehicleRegNumber string, limit int) ([]parking.GateEvent, error)
}

package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"parklot-service/internal/domain/parking"
)

type TicketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

type Ticket struct {
	ID               int64      `gorm:"primaryKey"`
	Ref              string     `gorm:"not null;uniqueIndex"`
	VehicleRegNumber string     `gorm:"not null"`
	SpotNumber       int        `gorm:"not null"`
	InTime           time.Time  `gorm:"not null"`
	OutTime          *time.Time
	Price            float64
	CreatedAt        time.Time
}

func (Ticket) TableName() string {
	return "tickets"
}

func (r *TicketRepository) Save(ctx context.Context, ticket *parking.Ticket) error {
	dbTicket := Ticket{
		Ref:              ticket.Ref,
		VehicleRegNumber: ticket.VehicleRegNumber,
		SpotNumber:       ticket.Spot.Number,
		InTime:           ticket.InTime,
		OutTime:          ticket.OutTime,
		Price:            ticket.Price,
		CreatedAt:        time.Now(),
	}

	if err := r.db.WithContext(ctx).Create(&dbTicket).Error; err != nil {
		return err
	}

	ticket.ID = dbTicket.ID
	return nil
}

// GetOpenTicket returns the vehicle's ticket without an out-time, or
// nil when the vehicle is not currently parked. The owned spot is
// loaded alongside.
func (r *TicketRepository) GetOpenTicket(ctx context.Context, vehicleRegNumber string) (*parking.Ticket, error) {
	var dbTicket Ticket
	err := r.db.WithContext(ctx).
		Where("vehicle_reg_number = ? AND out_time IS NULL", vehicleRegNumber).
		Order("in_time DESC").
		First(&dbTicket).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var dbSpot ParkingSpot
	if err := r.db.WithContext(ctx).Where("number = ?", dbTicket.SpotNumber).First(&dbSpot).Error; err != nil {
		return nil, fmt.Errorf("failed to load spot %d for ticket %d: %w", dbTicket.SpotNumber, dbTicket.ID, err)
	}

	return toDomainTicket(dbTicket, dbSpot), nil
}

// Update persists the out-time and price of a closed ticket. A missing
// row counts as a failed update.
func (r *TicketRepository) Update(ctx context.Context, ticket *parking.Ticket) error {
	result := r.db.WithContext(ctx).
		Model(&Ticket{}).
		Where("id = ?", ticket.ID).
		Updates(map[string]interface{}{
			"out_time": ticket.OutTime,
			"price":    ticket.Price,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("ticket %d not found", ticket.ID)
	}
	return nil
}

// CountForVehicle counts every ticket ever recorded for the vehicle,
// the open one included.
func (r *TicketRepository) CountForVehicle(ctx context.Context, vehicleRegNumber string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Ticket{}).
		Where("vehicle_reg_number = ?", vehicleRegNumber).
		Count(&count).Error
	return count, err
}

func (r *TicketRepository) ListForVehicle(ctx context.Context, vehicleRegNumber string, limit int) ([]parking.Ticket, error) {
	query := r.db.WithContext(ctx).
		Where("vehicle_reg_number = ?", vehicleRegNumber).
		Order("in_time DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	var dbTickets []Ticket
	if err := query.Find(&dbTickets).Error; err != nil {
		return nil, err
	}

	tickets := make([]parking.Ticket, 0, len(dbTickets))
	for _, t := range dbTickets {
		var dbSpot ParkingSpot
		if err := r.db.WithContext(ctx).Where("number = ?", t.SpotNumber).First(&dbSpot).Error; err != nil {
			return nil, fmt.Errorf("failed to load spot %d for ticket %d: %w", t.SpotNumber, t.ID, err)
		}
		tickets = append(tickets, *toDomainTicket(t, dbSpot))
	}

	return tickets, nil
}

func toDomainTicket(dbTicket Ticket, dbSpot ParkingSpot) *parking.Ticket {
	return &parking.Ticket{
		ID:               dbTicket.ID,
		Ref:              dbTicket.Ref,
		VehicleRegNumber: dbTicket.VehicleRegNumber,
		Spot:             toDomainSpot(dbSpot),
		InTime:           dbTicket.InTime,
		OutTime:          dbTicket.OutTime,
		Price:            dbTicket.Price,
	}
}

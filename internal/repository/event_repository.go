package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"parklot-service/internal/domain/parking"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

type GateEvent struct {
	ID               int64     `gorm:"primaryKey"`
	TicketID         *int64
	Direction        string    `gorm:"not null"`
	VehicleRegNumber string    `gorm:"not null"`
	SpotNumber       int       `gorm:"not null"`
	EventTime        time.Time `gorm:"not null"`
	Payload          datatypes.JSON
	CreatedAt        time.Time
}

func (GateEvent) TableName() string {
	return "gate_events"
}

func (r *EventRepository) Record(ctx context.Context, event *parking.GateEvent) error {
	dbEvent := GateEvent{
		Direction:        string(event.Direction),
		VehicleRegNumber: event.VehicleRegNumber,
		SpotNumber:       event.SpotNumber,
		EventTime:        event.EventTime,
		CreatedAt:        time.Now(),
	}

	if event.TicketID != 0 {
		dbEvent.TicketID = &event.TicketID
	}
	if len(event.Payload) > 0 {
		raw, err := json.Marshal(event.Payload)
		if err != nil {
			return fmt.Errorf("failed to marshal event payload: %w", err)
		}
		dbEvent.Payload = datatypes.JSON(raw)
	}

	if err := r.db.WithContext(ctx).Create(&dbEvent).Error; err != nil {
		return err
	}

	event.ID = dbEvent.ID
	return nil
}

func (r *EventRepository) ListForVehicle(ctx context.Context, vehicleRegNumber string, limit int) ([]parking.GateEvent, error) {
	query := r.db.WithContext(ctx).
		Where("vehicle_reg_number = ?", vehicleRegNumber).
		Order("event_time DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	var dbEvents []GateEvent
	if err := query.Find(&dbEvents).Error; err != nil {
		return nil, err
	}

	events := make([]parking.GateEvent, 0, len(dbEvents))
	for _, e := range dbEvents {
		event := parking.GateEvent{
			ID:               e.ID,
			Direction:        parking.GateDirection(e.Direction),
			VehicleRegNumber: e.VehicleRegNumber,
			SpotNumber:       e.SpotNumber,
			EventTime:        e.EventTime,
		}
		if e.TicketID != nil {
			event.TicketID = *e.TicketID
		}
		if len(e.Payload) > 0 {
			var payload map[string]interface{}
			if err := json.Unmarshal(e.Payload, &payload); err == nil {
				event.Payload = payload
			}
		}
		events = append(events, event)
	}

	return events, nil
}

package parking

import (
	"time"
)

type VehicleType string

const (
	VehicleTypeCar  VehicleType = "CAR"
	VehicleTypeBike VehicleType = "BIKE"
)

// Spot is one physical parking place. Number is stable for the lifetime
// of the facility; Available flips as vehicles come and go.
type Spot struct {
	Number    int         `json:"number"`
	Type      VehicleType `json:"type"`
	Available bool        `json:"available"`
}

// Ticket records one vehicle stay. OutTime is nil while the vehicle is
// parked; Price stays zero until computed at exit. Closed tickets are
// never deleted, they are the visit history behind the recurring-user
// discount.
type Ticket struct {
	ID               int64      `json:"id"`
	Ref              string     `json:"ref"`
	VehicleRegNumber string     `json:"vehicle_reg_number"`
	Spot             *Spot      `json:"spot"`
	InTime           time.Time  `json:"in_time"`
	OutTime          *time.Time `json:"out_time,omitempty"`
	Price            float64    `json:"price"`
}

type GateDirection string

const (
	DirectionIn  GateDirection = "IN"
	DirectionOut GateDirection = "OUT"
)

// GateEvent is an audit record of a vehicle passing the gate in either
// direction.
type GateEvent struct {
	ID               int64                  `json:"id"`
	TicketID         int64                  `json:"ticket_id"`
	Direction        GateDirection          `json:"direction"`
	VehicleRegNumber string                 `json:"vehicle_reg_number"`
	SpotNumber       int                    `json:"spot_number"`
	EventTime        time.Time              `json:"event_time"`
	Payload          map[string]interface{} `json:"payload,omitempty"`
}

type EntryResult struct {
	Ticket        *Ticket `json:"ticket"`
	RecurringUser bool    `json:"recurring_user"`
}

type ExitResult struct {
	Ticket        *Ticket `json:"ticket"`
	RecurringUser bool    `json:"recurring_user"`
	DiscountGiven bool    `json:"discount_given"`
}

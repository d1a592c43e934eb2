package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"parklot-service/internal/domain/parking"
)

type SpotRepository struct {
	db *gorm.DB
}

func NewSpotRepository(db *gorm.DB) *SpotRepository {
	return &SpotRepository{db: db}
}

type ParkingSpot struct {
	Number    int    `gorm:"primaryKey"`
	Type      string `gorm:"not null"`
	Available bool   `gorm:"not null"`
}

func (ParkingSpot) TableName() string {
	return "parking_spots"
}

// GetNextAvailable returns the lowest-numbered free spot of the given
// type, or nil when the lot has no capacity for it.
func (r *SpotRepository) GetNextAvailable(ctx context.Context, vt parking.VehicleType) (*parking.Spot, error) {
	var spot ParkingSpot
	err := r.db.WithContext(ctx).
		Where("type = ? AND available = ?", string(vt), true).
		Order("number ASC").
		First(&spot).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return toDomainSpot(spot), nil
}

// UpdateAvailability persists the spot's availability flag. A missing
// row counts as a failed update.
func (r *SpotRepository) UpdateAvailability(ctx context.Context, spot *parking.Spot) error {
	result := r.db.WithContext(ctx).
		Model(&ParkingSpot{}).
		Where("number = ?", spot.Number).
		Update("available", spot.Available)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("spot %d not found", spot.Number)
	}
	return nil
}

func toDomainSpot(spot ParkingSpot) *parking.Spot {
	return &parking.Spot{
		Number:    spot.Number,
		Type:      parking.VehicleType(spot.Type),
		Available: spot.Available,
	}
}

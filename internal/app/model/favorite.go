package model

import "time"

// Favorite links a user to a listing they saved. Rows are hard deleted.
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorites_user_vehicle" json:"user_id"`
	VehicleID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorites_user_vehicle;index" json:"vehicle_id"`
	CreatedAt time.Time `json:"created_at"`

	Vehicle VehicleListing `gorm:"foreignKey:VehicleID;constraint:OnDelete:CASCADE" json:"vehicle,omitempty"`
}

func (Favorite) TableName() string {
	return "favorites"
}

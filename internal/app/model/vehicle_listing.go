package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VehicleCondition string

const (
	ConditionNew     VehicleCondition = "new" // 0 km
	ConditionSemiNew VehicleCondition = "semi_new"
	ConditionUsed    VehicleCondition = "used"
)

func (c VehicleCondition) Valid() bool {
	switch c {
	case ConditionNew, ConditionSemiNew, ConditionUsed:
		return true
	}
	return false
}

type ListingStatus string

const (
	ListingActive   ListingStatus = "active"
	ListingInactive ListingStatus = "inactive"
)

// VehicleTypes are the body styles a listing may declare.
var VehicleTypes = []string{"Hatchback", "Sedán", "Coupé", "SUV", "Deportivo", "Pick Up"}

func IsValidVehicleType(t string) bool {
	for _, v := range VehicleTypes {
		if v == t {
			return true
		}
	}
	return false
}

const MaxListingImages = 6

type VehicleListing struct {
	ID           string           `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID       uint             `gorm:"not null;index" json:"user_id"` // publisher
	Brand        string           `gorm:"not null;index" json:"brand"`
	Model        string           `gorm:"not null" json:"model"`
	Year         int              `gorm:"not null;index" json:"year"`
	Price        int              `gorm:"not null;index" json:"price"` // whole CLP
	Mileage      int              `gorm:"not null;default:0" json:"mileage"`
	Transmission string           `gorm:"type:varchar(30)" json:"transmission"`
	FuelType     string           `gorm:"type:varchar(30)" json:"fuel_type"`
	Color        string           `gorm:"type:varchar(30)" json:"color"`
	EngineSize   int              `json:"engine_size"` // cc
	Condition    VehicleCondition `gorm:"type:varchar(20);not null" json:"condition"`
	VehicleType  string           `gorm:"type:varchar(30)" json:"vehicle_type,omitempty"`
	Description  string           `gorm:"type:text" json:"description"`
	Images       []string         `gorm:"serializer:json;type:text" json:"images"`
	Status       ListingStatus    `gorm:"type:varchar(20);default:'active';index" json:"status"`
	CreatedAt    time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func (VehicleListing) TableName() string {
	return "vehicle_listings"
}

func (v *VehicleListing) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.Status == "" {
		v.Status = ListingActive
	}
	return nil
}

func (v *VehicleListing) IsActive() bool {
	return v.Status == ListingActive
}

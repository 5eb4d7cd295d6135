package model

import "time"

// Profile is the public contact card of a personal account.
type Profile struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	FullName  string    `gorm:"not null" json:"full_name"`
	Username  string    `gorm:"not null" json:"username"`
	Phone     string    `gorm:"not null" json:"phone"` // +56...
	Region    string    `gorm:"not null" json:"region"`
	City      string    `gorm:"not null" json:"city"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// BusinessProfile holds the company data of a business account.
type BusinessProfile struct {
	UserID         uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	LegalName      string    `gorm:"not null" json:"legal_name"`      // razón social
	CommercialName string    `gorm:"not null" json:"commercial_name"` // nombre de fantasía
	RUT            string    `gorm:"column:rut;not null" json:"rut"` // Chilean tax id
	Region         string    `gorm:"not null" json:"region"`
	City           string    `gorm:"not null" json:"city"`
	Address        string    `gorm:"not null" json:"address"`
	CorporateEmail string    `gorm:"not null" json:"corporate_email"`
	Phone          string    `gorm:"not null" json:"phone"`
	Website        string    `json:"website,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (BusinessProfile) TableName() string {
	return "business_profiles"
}

// SellerProfile is the subset of a profile shown next to a listing.
type SellerProfile struct {
	FullName string `json:"full_name"`
	Username string `json:"username,omitempty"`
	Phone    string `json:"phone"`
	Region   string `json:"region"`
	City     string `json:"city"`
}

package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string // access level

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// AccountType decides which profile page a user manages.
type AccountType string

const (
	AccountPersonal AccountType = "personal"
	AccountBusiness AccountType = "business"
)

type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	AccountType  AccountType    `gorm:"type:varchar(20);default:'personal'" json:"account_type"`
	FullName     string         `json:"full_name"`          // required for business accounts
	Position     string         `json:"position,omitempty"` // job title of the business contact
	Role         UserRole       `gorm:"type:varchar(20);default:'user'" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"` // soft delete
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsBusiness() bool {
	return u.AccountType == AccountBusiness
}

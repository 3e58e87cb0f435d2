package entities

import (
	"github.com/google/uuid"
)

const (
	RoleDonor     = "donor"
	RoleRecipient = "recipient"
	RoleAdmin     = "admin"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Role         string    `gorm:"size:20;not null;default:donor;index" json:"role"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        string    `json:"phone,omitempty"`
	Organization string    `json:"organization,omitempty"`
	Address      string    `json:"address,omitempty"`
	Latitude     float64   `gorm:"index:idx_users_lat_lon,priority:1" json:"latitude"`
	Longitude    float64   `gorm:"index:idx_users_lat_lon,priority:2" json:"longitude"`
	GeoVector

	// bools carry no column default: gorm would replace an explicit false with it
	EmailNotifications bool    `gorm:"not null" json:"email_notifications"`
	SMSNotifications   bool    `gorm:"not null" json:"sms_notifications"`
	MaxDistance        float64 `gorm:"default:50" json:"max_distance"`
	IsActive           bool    `gorm:"not null;index" json:"is_active"`

	Timestamp
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

func (u *User) Coordinates() (float64, float64) {
	return u.Latitude, u.Longitude
}

package entities

import (
	"time"

	"github.com/google/uuid"
)

type DonationStatus string

const (
	StatusAvailable DonationStatus = "available"
	StatusClaimed   DonationStatus = "claimed"
	StatusPickedUp  DonationStatus = "picked-up"
	StatusCompleted DonationStatus = "completed"
	StatusExpired   DonationStatus = "expired"
	StatusCancelled DonationStatus = "cancelled"
)

func (s DonationStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusClaimed, StatusPickedUp, StatusCompleted, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition leaves the status.
func (s DonationStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusExpired || s == StatusCancelled
}

type Donation struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	DonorID     uuid.UUID      `gorm:"type:uuid;index:idx_donations_donor_status,priority:1;not null" json:"donor_id"`
	Title       string         `gorm:"size:100;not null" json:"title"`
	Description string         `gorm:"size:500;not null" json:"description"`
	FoodType    string         `gorm:"size:20;not null" json:"food_type"`
	Status      DonationStatus `gorm:"size:20;not null;default:available;index:idx_donations_status_pickup,priority:1;index:idx_donations_donor_status,priority:2" json:"status"`

	QuantityAmount float64  `gorm:"not null" json:"quantity_amount"`
	QuantityUnit   string   `gorm:"size:20;not null" json:"quantity_unit"`
	Allergens      []string `gorm:"serializer:json" json:"allergens"`
	Tags           []string `gorm:"serializer:json" json:"tags"`
	ImageURLs      []string `gorm:"serializer:json" json:"image_urls"`

	PreparationDate time.Time `gorm:"not null" json:"preparation_date"`
	ExpiryDate      time.Time `gorm:"not null;index" json:"expiry_date"`
	PickupStart     time.Time `gorm:"not null;index:idx_donations_status_pickup,priority:2" json:"pickup_start"`
	PickupEnd       time.Time `gorm:"not null" json:"pickup_end"`

	Street       string  `json:"street"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	ZipCode      string  `json:"zip_code"`
	Country      string  `gorm:"default:USA" json:"country"`
	Instructions string  `gorm:"size:200" json:"instructions,omitempty"`
	Latitude     float64 `gorm:"index:idx_donations_lat_lon,priority:1" json:"latitude"`
	Longitude    float64 `gorm:"index:idx_donations_lat_lon,priority:2" json:"longitude"`
	GeoVector

	RecipientID *uuid.UUID `gorm:"type:uuid;index" json:"recipient_id,omitempty"`
	ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
	PickupTime  *time.Time `json:"pickup_time,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	RemindedAt  *time.Time `json:"reminded_at,omitempty"`

	IsUrgent            bool   `json:"is_urgent"`
	SpecialInstructions string `gorm:"size:300" json:"special_instructions,omitempty"`
	EmailSent           bool   `json:"email_sent"`
	SMSSent             bool   `json:"sms_sent"`

	Donor     *User `gorm:"foreignKey:DonorID" json:"-"`
	Recipient *User `gorm:"foreignKey:RecipientID" json:"-"`
	Timestamp
}

// Coordinates returns the donation point as (latitude, longitude).
func (d *Donation) Coordinates() (float64, float64) {
	return d.Latitude, d.Longitude
}

// DonationEvent is an append-only row written for every committed transition.
type DonationEvent struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	DonationID uuid.UUID      `gorm:"type:uuid;index;not null" json:"donation_id"`
	Event      string         `gorm:"size:20;not null" json:"event"`
	FromStatus DonationStatus `gorm:"size:20" json:"from_status"`
	ToStatus   DonationStatus `gorm:"size:20" json:"to_status"`
	ActorID    *uuid.UUID     `gorm:"type:uuid" json:"actor_id,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

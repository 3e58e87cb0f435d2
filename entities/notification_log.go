package entities

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"

	NotificationSent   = "sent"
	NotificationFailed = "failed"
)

// NotificationLog records one delivery attempt to one user over one channel.
type NotificationLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Event      string     `gorm:"size:40;not null" json:"event"`
	DonationID *uuid.UUID `gorm:"type:uuid;index" json:"donation_id,omitempty"`
	UserID     uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	Channel    string     `gorm:"size:10;not null" json:"channel"`
	Status     string     `gorm:"size:10;not null" json:"status"`
	Error      string     `json:"error,omitempty"`
	SentAt     time.Time  `json:"sent_at"`
}

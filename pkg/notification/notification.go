// Package notification delivers donation lifecycle events to users over
// email and SMS, and to connected clients over the realtime hub.
package notification

import (
	"context"

	"FoodShare-Backend/entities"

	"github.com/google/uuid"
)

const (
	EventNewDonation     = "new-donation"
	EventDonationClaimed = "donation-claimed"
	EventDonationStatus  = "donation-status"
	EventPickupReminder  = "pickup-reminder"
)

// Target is one user to notify and the channels they opted into.
type Target struct {
	UserID   uuid.UUID
	Name     string
	Email    string
	Phone    string
	Channels []string
}

// Message is the channel-independent content of a notification.
type Message struct {
	Event      string
	DonationID *uuid.UUID
	Subject    string
	Body       string
	Urgent     bool
}

// Channel delivers a message to one target.
type Channel interface {
	Name() string
	Send(ctx context.Context, target Target, msg Message) error
}

// Notifier accepts notifications without waiting for delivery.
type Notifier interface {
	Notify(event string, targets []Target, msg Message) bool
}

// Broadcaster pushes events to connected realtime clients.
type Broadcaster interface {
	Broadcast(event string, data any)
}

// TargetFor builds a target from the user's notification preferences.
// Users that opted out of everything yield a target with no channels.
func TargetFor(u *entities.User) Target {
	t := Target{
		UserID: u.ID,
		Name:   u.FullName(),
		Email:  u.Email,
		Phone:  u.Phone,
	}
	if u.EmailNotifications && u.Email != "" {
		t.Channels = append(t.Channels, entities.ChannelEmail)
	}
	if u.SMSNotifications && u.Phone != "" {
		t.Channels = append(t.Channels, entities.ChannelSMS)
	}
	return t
}

// Discard is a Notifier and Broadcaster that drops everything.
type Discard struct{}

func (Discard) Notify(string, []Target, Message) bool { return true }
func (Discard) Broadcast(string, any)                  {}

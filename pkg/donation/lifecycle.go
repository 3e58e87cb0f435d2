package donation

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"FoodShare-Backend/domain"
	"FoodShare-Backend/entities"

	"github.com/google/uuid"
)

type Event string

const (
	EventClaim    Event = "claim"
	EventPickup   Event = "pickup"
	EventComplete Event = "complete"
	EventCancel   Event = "cancel"
	EventExpire   Event = "expire"
)

const (
	WindowUpcoming = "upcoming"
	WindowOpen     = "open"
	WindowClosed   = "closed"
)

// Transition is the outcome of a successful Apply: the status the record held
// when it was read, the status it moves to and the columns to persist.
type Transition struct {
	Event   Event
	From    entities.DonationStatus
	To      entities.DonationStatus
	Updates map[string]any
}

// EffectiveStatus is the status a reader should see at now. An available
// donation whose expiry date has passed is expired even if storage has not
// been swept yet.
func EffectiveStatus(d *entities.Donation, now time.Time) entities.DonationStatus {
	if d.Status == entities.StatusAvailable && !now.Before(d.ExpiryDate) {
		return entities.StatusExpired
	}
	return d.Status
}

// PickupWindowStatus reports where now falls relative to the pickup window.
func PickupWindowStatus(d *entities.Donation, now time.Time) string {
	switch {
	case now.Before(d.PickupStart):
		return WindowUpcoming
	case now.After(d.PickupEnd):
		return WindowClosed
	default:
		return WindowOpen
	}
}

// Apply checks event against the transition table and, when allowed, moves d
// to the next state in memory. Nothing is persisted; the caller writes
// Transition.Updates conditionally on Transition.From.
func Apply(d *entities.Donation, event Event, actor domain.Actor, now time.Time) (Transition, error) {
	current := d.Status
	t := Transition{Event: event, From: current, Updates: map[string]any{"updated_at": now}}

	switch event {
	case EventClaim:
		if current != entities.StatusAvailable {
			switch current {
			case entities.StatusClaimed, entities.StatusPickedUp, entities.StatusCompleted:
				return t, domain.NewAlreadyClaimed(d.ID.String())
			}
			return t, domain.NewInvalidTransition(string(current), string(event))
		}
		if !now.Before(d.ExpiryDate) {
			return t, domain.NewInvalidTransition(string(entities.StatusExpired), string(event))
		}
		if now.Before(d.PickupStart) || now.After(d.PickupEnd) {
			return t, &domain.Error{
				Kind:    domain.KindInvalidTransition,
				Message: fmt.Sprintf("cannot claim outside the pickup window (%s)", PickupWindowStatus(d, now)),
			}
		}
		recipientID, err := uuid.Parse(actor.UserID)
		if err != nil {
			return t, domain.NewValidationError(domain.FieldError{Field: "recipient_id", Message: "must be a valid id"})
		}
		claimedAt := now
		d.RecipientID = &recipientID
		d.ClaimedAt = &claimedAt
		t.To = entities.StatusClaimed
		t.Updates["recipient_id"] = recipientID
		t.Updates["claimed_at"] = claimedAt

	case EventPickup:
		if current != entities.StatusClaimed {
			return t, domain.NewInvalidTransition(string(current), string(event))
		}
		if !isRecipient(d, actor) {
			return t, domain.NewForbidden("only the claiming recipient may mark a donation as picked up")
		}
		pickedAt := now
		d.PickupTime = &pickedAt
		t.To = entities.StatusPickedUp
		t.Updates["pickup_time"] = pickedAt

	case EventComplete:
		if current != entities.StatusPickedUp {
			return t, domain.NewInvalidTransition(string(current), string(event))
		}
		if !isRecipient(d, actor) {
			return t, domain.NewForbidden("only the claiming recipient may complete a donation")
		}
		completedAt := now
		d.CompletedAt = &completedAt
		t.To = entities.StatusCompleted
		t.Updates["completed_at"] = completedAt

	case EventCancel:
		if current != entities.StatusAvailable && current != entities.StatusClaimed {
			return t, domain.NewInvalidTransition(string(current), string(event))
		}
		if !isDonor(d, actor) && !actor.IsAdmin() {
			return t, domain.NewForbidden("only the donor or an admin may cancel a donation")
		}
		t.To = entities.StatusCancelled

	case EventExpire:
		if current != entities.StatusAvailable || now.Before(d.ExpiryDate) {
			return t, domain.NewInvalidTransition(string(current), string(event))
		}
		t.To = entities.StatusExpired

	default:
		return t, domain.NewInvalidTransition(string(current), string(event))
	}

	t.Updates["status"] = t.To
	d.Status = t.To
	d.UpdatedAt = now
	return t, nil
}

// CheckEditable guards pre-claim edits and donor ownership.
func CheckEditable(d *entities.Donation, actor domain.Actor, now time.Time) error {
	if !isDonor(d, actor) {
		return domain.NewForbidden("only the donor may edit a donation")
	}
	if status := EffectiveStatus(d, now); status != entities.StatusAvailable {
		return domain.NewImmutableAfterClaim(string(status))
	}
	return nil
}

// CheckDeletable allows deletion of available or cancelled donations by the
// donor, or by an admin.
func CheckDeletable(d *entities.Donation, actor domain.Actor, now time.Time) error {
	if !isDonor(d, actor) && !actor.IsAdmin() {
		return domain.NewForbidden("only the donor or an admin may delete a donation")
	}
	status := EffectiveStatus(d, now)
	if status != entities.StatusAvailable && status != entities.StatusCancelled {
		return domain.NewInvalidTransition(string(status), "delete")
	}
	return nil
}

// ValidateDonation checks the record-level invariants. Field formats are
// checked earlier by the request validator; these hold for every stored record.
func ValidateDonation(d *entities.Donation) error {
	var fields []domain.FieldError
	add := func(field, msg string) {
		fields = append(fields, domain.FieldError{Field: field, Message: msg})
	}

	if strings.TrimSpace(d.Title) == "" {
		add("title", "is required")
	}
	if strings.TrimSpace(d.Description) == "" {
		add("description", "is required")
	}
	if !slices.Contains(domain.FoodTypes, d.FoodType) {
		add("food_type", "must be one of: "+strings.Join(domain.FoodTypes, ", "))
	}
	if !(d.QuantityAmount > 0) {
		add("quantity.amount", "must be greater than 0")
	}
	if !slices.Contains(domain.QuantityUnits, d.QuantityUnit) {
		add("quantity.unit", "must be one of: "+strings.Join(domain.QuantityUnits, ", "))
	}
	for _, a := range d.Allergens {
		if !slices.Contains(domain.AllergenValues, a) {
			add("allergens", fmt.Sprintf("unknown allergen %q", a))
			break
		}
	}
	if !d.ExpiryDate.After(d.PreparationDate) {
		add("expiry_date", "must be after preparation_date")
	}
	if !d.PickupStart.Before(d.PickupEnd) {
		add("pickup_window.end_time", "must be after start_time")
	}
	if d.Latitude < -90 || d.Latitude > 90 {
		add("location.coordinates", "latitude must be between -90 and 90")
	}
	if d.Longitude < -180 || d.Longitude > 180 {
		add("location.coordinates", "longitude must be between -180 and 180")
	}

	if len(fields) > 0 {
		return domain.NewValidationError(fields...)
	}
	return nil
}

// normalizeSet trims, drops empties and removes duplicates, keeping order.
func normalizeSet(values []string, lower bool) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if lower {
			v = strings.ToLower(v)
		}
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func isDonor(d *entities.Donation, actor domain.Actor) bool {
	return actor.UserID != "" && d.DonorID.String() == actor.UserID
}

func isRecipient(d *entities.Donation, actor domain.Actor) bool {
	return d.RecipientID != nil && actor.UserID != "" && d.RecipientID.String() == actor.UserID
}

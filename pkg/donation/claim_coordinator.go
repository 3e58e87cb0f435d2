package donation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FoodShare-Backend/domain"
	"FoodShare-Backend/entities"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodshare_donation_transitions_total",
		Help: "Donation transition attempts by event and outcome.",
	}, []string{"event", "outcome"})
)

const (
	outcomeSuccess  = "success"
	outcomeConflict = "conflict"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// ClaimCoordinator runs state transitions against storage. Every write is
// conditional on the status that was read, so two concurrent transitions on
// the same donation can never both commit. No in-process lock is involved;
// the guarantee holds across any number of server instances.
type ClaimCoordinator struct {
	repo DonationRepository
	now  func() time.Time
}

func NewClaimCoordinator(repo DonationRepository, now func() time.Time) *ClaimCoordinator {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &ClaimCoordinator{repo: repo, now: now}
}

func (c *ClaimCoordinator) Load(ctx context.Context, id string) (*entities.Donation, error) {
	donationID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.NewNotFound("donation")
	}
	d, err := c.repo.GetDonationByID(ctx, donationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFound("donation")
		}
		return nil, fmt.Errorf("get donation %s: %w", donationID, err)
	}
	return d, nil
}

// Claim reserves an available donation for the recipient. Losing a race to
// another claim, or to the expiry sweep, fails with an already-claimed error.
func (c *ClaimCoordinator) Claim(ctx context.Context, id string, recipient domain.Actor) (*entities.Donation, error) {
	d, _, err := c.Transition(ctx, id, EventClaim, recipient)
	return d, err
}

// Transition loads the donation, applies event and persists the result
// conditionally on the status it was loaded with.
func (c *ClaimCoordinator) Transition(ctx context.Context, id string, event Event, actor domain.Actor) (*entities.Donation, Transition, error) {
	d, err := c.Load(ctx, id)
	if err != nil {
		return nil, Transition{}, err
	}
	now := c.now()
	c.ExpireIfDue(ctx, d)

	t, err := Apply(d, event, actor, now)
	if err != nil {
		outcome := outcomeRejected
		if errors.Is(err, domain.ErrAlreadyClaimed) {
			outcome = outcomeConflict
		}
		transitionsTotal.WithLabelValues(string(event), outcome).Inc()
		return nil, t, err
	}

	ok, err := c.repo.CompareAndSwapStatus(ctx, d.ID, t.From, t.Updates)
	if err != nil {
		transitionsTotal.WithLabelValues(string(event), outcomeError).Inc()
		return nil, t, err
	}
	if !ok {
		transitionsTotal.WithLabelValues(string(event), outcomeConflict).Inc()
		return nil, t, c.conflict(ctx, d.ID, event)
	}

	transitionsTotal.WithLabelValues(string(event), outcomeSuccess).Inc()
	c.record(ctx, d.ID, t, actor)
	return d, t, nil
}

// conflict explains a lost conditional write from the status now stored.
func (c *ClaimCoordinator) conflict(ctx context.Context, id uuid.UUID, event Event) error {
	if event == EventClaim {
		return domain.NewAlreadyClaimed(id.String())
	}
	current, err := c.repo.GetDonationByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NewNotFound("donation")
		}
		return fmt.Errorf("reload donation %s: %w", id, err)
	}
	return domain.NewInvalidTransition(string(EffectiveStatus(current, c.now())), string(event))
}

// ExpireIfDue applies lazy expiry to d. When d is past its expiry date it is
// reported as expired, and the transition is persisted if nobody beat us to
// it. Persistence failures are logged; the in-memory status is still updated.
func (c *ClaimCoordinator) ExpireIfDue(ctx context.Context, d *entities.Donation) bool {
	now := c.now()
	if EffectiveStatus(d, now) != entities.StatusExpired || d.Status == entities.StatusExpired {
		return false
	}

	from := d.Status
	d.Status = entities.StatusExpired

	ok, err := c.repo.ExpireDonation(ctx, d.ID, now)
	if err != nil {
		log.Errorw("failed to persist lazy expiry", "donation_id", d.ID, "error", err)
		return false
	}
	if ok {
		transitionsTotal.WithLabelValues(string(EventExpire), outcomeSuccess).Inc()
		c.record(ctx, d.ID, Transition{Event: EventExpire, From: from, To: entities.StatusExpired}, domain.Actor{})
	}
	return ok
}

// ExpireByID is the sweep's form of ExpireIfDue. Re-expiring an expired
// donation is a no-op.
func (c *ClaimCoordinator) ExpireByID(ctx context.Context, id uuid.UUID) (bool, error) {
	ok, err := c.repo.ExpireDonation(ctx, id, c.now())
	if err != nil || !ok {
		return false, err
	}
	transitionsTotal.WithLabelValues(string(EventExpire), outcomeSuccess).Inc()
	c.record(ctx, id, Transition{Event: EventExpire, From: entities.StatusAvailable, To: entities.StatusExpired}, domain.Actor{})
	return true, nil
}

func (c *ClaimCoordinator) record(ctx context.Context, id uuid.UUID, t Transition, actor domain.Actor) {
	event := &entities.DonationEvent{
		ID:         uuid.New(),
		DonationID: id,
		Event:      string(t.Event),
		FromStatus: t.From,
		ToStatus:   t.To,
		CreatedAt:  c.now(),
	}
	if actorID, err := uuid.Parse(actor.UserID); err == nil {
		event.ActorID = &actorID
	}
	if err := c.repo.CreateEvent(ctx, event); err != nil {
		log.Errorw("failed to record donation event", "donation_id", id, "event", t.Event, "error", err)
	}
}

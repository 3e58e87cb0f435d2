package donation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FoodShare-Backend/domain"
	"FoodShare-Backend/pkg/notification"

	"github.com/gofiber/fiber/v2/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "foodshare_expiry_sweep_duration_seconds",
		Help:    "Duration of expiry sweeps.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	sweepExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodshare_expiry_sweep_expired_total",
		Help: "Donations expired by the background sweep.",
	})

	remindersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodshare_pickup_reminders_total",
		Help: "Pickup reminders queued.",
	})
)

type SchedulerConfig struct {
	Interval           time.Duration
	BatchSize          int
	ReminderLeadTime   time.Duration
	RemindersScheduled bool
}

// LifecycleScheduler expires overdue donations and reminds recipients of
// upcoming pickups on a fixed interval. Runs never overlap.
type LifecycleScheduler struct {
	repo        DonationRepository
	coordinator *ClaimCoordinator
	notifier    notification.Notifier
	cfg         SchedulerConfig
	now         func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewLifecycleScheduler(repo DonationRepository, coordinator *ClaimCoordinator, notifier notification.Notifier, cfg SchedulerConfig) *LifecycleScheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.ReminderLeadTime <= 0 {
		cfg.ReminderLeadTime = 24 * time.Hour
	}
	if notifier == nil {
		notifier = notification.Discard{}
	}
	return &LifecycleScheduler{
		repo:        repo,
		coordinator: coordinator,
		notifier:    notifier,
		cfg:         cfg,
		now:         coordinator.now,
	}
}

// Start launches the background loop. It is called once at startup.
func (s *LifecycleScheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		log.Infow("lifecycle scheduler started", "interval", s.cfg.Interval.String(), "reminders", s.cfg.RemindersScheduled)

		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("lifecycle scheduler stopped")
				return
			case <-ticker.C:
				if _, err := s.RunOnce(ctx); err != nil {
					log.Errorw("expiry sweep failed", "error", err)
				}
				if s.cfg.RemindersScheduled {
					if _, err := s.SendPickupReminders(ctx); err != nil {
						log.Errorw("pickup reminders failed", "error", err)
					}
				}
			}
		}
	}()
}

// Stop ends the background loop and waits for the current run to finish.
func (s *LifecycleScheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.done != nil {
		<-s.done
	}
}

// RunOnce expires every available donation whose expiry date has passed.
// Donations claimed concurrently are left alone; running it twice is harmless.
func (s *LifecycleScheduler) RunOnce(ctx context.Context) (domain.SweepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	started := time.Now()
	var result domain.SweepResult
	defer func() {
		result.Duration = time.Since(started)
		sweepDuration.Observe(result.Duration.Seconds())
	}()

	for {
		ids, err := s.repo.ListDueForExpiry(ctx, s.now(), s.cfg.BatchSize)
		if err != nil {
			return result, fmt.Errorf("list donations due for expiry: %w", err)
		}

		expired := 0
		for _, id := range ids {
			ok, err := s.coordinator.ExpireByID(ctx, id)
			if err != nil {
				result.Errors++
				log.Errorw("failed to expire donation", "donation_id", id, "error", err)
				continue
			}
			if ok {
				expired++
			}
		}
		result.Expired += expired
		sweepExpiredTotal.Add(float64(expired))

		// a short or unproductive batch means nothing is left to do this run
		if len(ids) < s.cfg.BatchSize || expired == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
	}

	if result.Expired > 0 || result.Errors > 0 {
		log.Infow("expiry sweep finished", "expired", result.Expired, "errors", result.Errors)
	}
	return result, nil
}

// SendPickupReminders notifies recipients of claimed donations whose pickup
// window opens within the lead time. Each donation is reminded once.
func (s *LifecycleScheduler) SendPickupReminders(ctx context.Context) (domain.ReminderResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result domain.ReminderResult
	now := s.now()

	donations, err := s.repo.ListDueForReminder(ctx, now, now.Add(s.cfg.ReminderLeadTime))
	if err != nil {
		return result, fmt.Errorf("list donations due for reminder: %w", err)
	}

	for _, d := range donations {
		if d.Recipient == nil {
			continue
		}
		ok, err := s.repo.MarkReminded(ctx, d.ID, now)
		if err != nil {
			log.Errorw("failed to mark donation reminded", "donation_id", d.ID, "error", err)
			continue
		}
		if !ok {
			continue
		}

		where := fmt.Sprintf("%s, %s, %s %s", d.Street, d.City, d.State, d.ZipCode)
		if d.Instructions != "" {
			where += " (" + d.Instructions + ")"
		}
		s.notifier.Notify(notification.EventPickupReminder, []notification.Target{notification.TargetFor(d.Recipient)}, notification.Message{
			DonationID: &d.ID,
			Subject:    "Pickup reminder: " + d.Title,
			Body: fmt.Sprintf("Your pickup of %q opens %s and closes %s at %s.",
				d.Title, d.PickupStart.Format(time.RFC1123), d.PickupEnd.Format(time.RFC1123), where),
			Urgent: d.IsUrgent,
		})
		result.Count++
	}
	remindersTotal.Add(float64(result.Count))

	if result.Count > 0 {
		log.Infow("pickup reminders queued", "count", result.Count)
	}
	return result, nil
}

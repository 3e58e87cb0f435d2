package notification

import (
	"context"
	"sync"
	"time"

	"FoodShare-Backend/entities"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	deliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodshare_notification_deliveries_total",
		Help: "Notification delivery attempts by channel and outcome.",
	}, []string{"channel", "status"})

	droppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodshare_notification_dropped_total",
		Help: "Notifications dropped because the queue was full or closed.",
	})
)

type DispatcherConfig struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

type job struct {
	target Target
	msg    Message
}

// Dispatcher fans notifications out to channels on a fixed pool of workers.
// Notify never blocks: when the queue is full the notification is dropped
// and logged. Every attempt is recorded in the notification log.
type Dispatcher struct {
	channels map[string]Channel
	repo     NotificationRepository
	timeout  time.Duration
	workers  int
	now      func() time.Time

	mu     sync.RWMutex
	queue  chan job
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(cfg DispatcherConfig, repo NotificationRepository, channels ...Channel) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	byName := make(map[string]Channel, len(channels))
	for _, ch := range channels {
		if ch != nil {
			byName[ch.Name()] = ch
		}
	}

	return &Dispatcher{
		channels: byName,
		repo:     repo,
		timeout:  cfg.Timeout,
		workers:  cfg.Workers,
		now:      func() time.Time { return time.Now().UTC() },
		queue:    make(chan job, cfg.QueueSize),
	}
}

// Start launches the workers. It is called once at startup.
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for j := range d.queue {
				d.deliver(j)
			}
		}()
	}
	log.Infow("notification dispatcher started", "workers", d.workers, "channels", len(d.channels))
}

// Notify queues msg for every target with at least one channel.
// It reports false if anything was dropped.
func (d *Dispatcher) Notify(event string, targets []Target, msg Message) bool {
	msg.Event = event

	d.mu.RLock()
	defer d.mu.RUnlock()

	ok := true
	for _, t := range targets {
		if len(t.Channels) == 0 {
			continue
		}
		if d.closed {
			droppedTotal.Inc()
			ok = false
			continue
		}
		select {
		case d.queue <- job{target: t, msg: msg}:
		default:
			droppedTotal.Inc()
			ok = false
			log.Warnw("notification queue full, dropping", "event", event, "user_id", t.UserID)
		}
	}
	return ok
}

// Stop closes the queue and waits for queued notifications to drain or for
// ctx to end.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) deliver(j job) {
	for _, name := range j.target.Channels {
		ch, ok := d.channels[name]
		if !ok {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := ch.Send(ctx, j.target, j.msg)
		cancel()

		entry := &entities.NotificationLog{
			ID:         uuid.New(),
			Event:      j.msg.Event,
			DonationID: j.msg.DonationID,
			UserID:     j.target.UserID,
			Channel:    name,
			Status:     entities.NotificationSent,
			SentAt:     d.now(),
		}
		if err != nil {
			entry.Status = entities.NotificationFailed
			entry.Error = err.Error()
			log.Errorw("notification delivery failed",
				"event", j.msg.Event, "channel", name, "user_id", j.target.UserID, "error", err)
		}
		deliveriesTotal.WithLabelValues(name, entry.Status).Inc()

		if d.repo == nil {
			continue
		}
		logCtx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if lerr := d.repo.CreateLog(logCtx, entry); lerr != nil {
			log.Errorw("failed to record notification", "user_id", j.target.UserID, "error", lerr)
		}
		if err == nil && j.msg.DonationID != nil && j.msg.Event == EventNewDonation {
			if lerr := d.repo.MarkDonationNotified(logCtx, *j.msg.DonationID, name); lerr != nil {
				log.Errorw("failed to mark donation notified", "donation_id", *j.msg.DonationID, "error", lerr)
			}
		}
		cancel()
	}
}

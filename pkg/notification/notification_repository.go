package notification

import (
	"context"

	"FoodShare-Backend/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	NotificationRepository interface {
		CreateLog(ctx context.Context, log *entities.NotificationLog) error
		MarkDonationNotified(ctx context.Context, donationID uuid.UUID, channel string) error
		ListLogs(ctx context.Context, donationID uuid.UUID) ([]*entities.NotificationLog, error)
	}

	notificationRepository struct {
		db *gorm.DB
	}
)

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) CreateLog(ctx context.Context, log *entities.NotificationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *notificationRepository) MarkDonationNotified(ctx context.Context, donationID uuid.UUID, channel string) error {
	column := "email_sent"
	if channel == entities.ChannelSMS {
		column = "sms_sent"
	}
	return r.db.WithContext(ctx).
		Model(&entities.Donation{}).
		Where("id = ?", donationID).
		UpdateColumn(column, true).Error
}

func (r *notificationRepository) ListLogs(ctx context.Context, donationID uuid.UUID) ([]*entities.NotificationLog, error) {
	var logs []*entities.NotificationLog
	if err := r.db.WithContext(ctx).
		Where("donation_id = ?", donationID).
		Order("sent_at").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

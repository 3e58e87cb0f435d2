package donation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"FoodShare-Backend/entities"
	"FoodShare-Backend/pkg/geo"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListQuery is the storage-level form of a listing request. Status filters
// are evaluated against the effective status at Now.
type ListQuery struct {
	Status      entities.DonationStatus
	FoodType    string
	IsUrgent    *bool
	DonorID     *uuid.UUID
	RecipientID *uuid.UUID
	Now         time.Time
	OrderBy     string
	Offset      int
	Limit       int
}

type (
	DonationRepository interface {
		CreateDonation(ctx context.Context, donation *entities.Donation) error
		GetDonationByID(ctx context.Context, id uuid.UUID) (*entities.Donation, error)
		ListDonations(ctx context.Context, q ListQuery) ([]*entities.Donation, int64, error)
		ListDonationsWithin(ctx context.Context, q ListQuery, box geo.BoundingBox, center geo.Point, limit int) ([]*entities.Donation, error)

		// CompareAndSwapStatus writes updates only if the stored status still
		// equals from. It reports false when another writer got there first.
		CompareAndSwapStatus(ctx context.Context, id uuid.UUID, from entities.DonationStatus, updates map[string]any) (bool, error)
		// UpdateAvailableDonation applies pre-claim edits. It reports false once
		// the donation is claimed or past its expiry date.
		UpdateAvailableDonation(ctx context.Context, id uuid.UUID, now time.Time, updates map[string]any) (bool, error)
		DeleteDonation(ctx context.Context, id uuid.UUID, statuses ...entities.DonationStatus) (bool, error)

		// ExpireDonation flips an available donation whose expiry date has
		// passed to expired. It reports false when there was nothing to do.
		ExpireDonation(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
		ListDueForExpiry(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
		ListDueForReminder(ctx context.Context, from, to time.Time) ([]*entities.Donation, error)
		MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

		CreateEvent(ctx context.Context, event *entities.DonationEvent) error
		ListEvents(ctx context.Context, donationID uuid.UUID) ([]*entities.DonationEvent, error)
	}

	donationRepository struct {
		db *gorm.DB
	}
)

func NewDonationRepository(db *gorm.DB) DonationRepository {
	return &donationRepository{db: db}
}

func (r *donationRepository) CreateDonation(ctx context.Context, donation *entities.Donation) error {
	return r.db.WithContext(ctx).Create(donation).Error
}

func (r *donationRepository) GetDonationByID(ctx context.Context, id uuid.UUID) (*entities.Donation, error) {
	var donation entities.Donation
	if err := r.db.WithContext(ctx).
		Preload("Donor").
		Preload("Recipient").
		Where("id = ?", id).
		First(&donation).Error; err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *donationRepository) filtered(ctx context.Context, q ListQuery) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&entities.Donation{})

	switch q.Status {
	case "":
	case entities.StatusAvailable:
		tx = tx.Where("status = ? AND expiry_date > ?", entities.StatusAvailable, q.Now)
	case entities.StatusExpired:
		tx = tx.Where("(status = ? OR (status = ? AND expiry_date <= ?))",
			entities.StatusExpired, entities.StatusAvailable, q.Now)
	default:
		tx = tx.Where("status = ?", q.Status)
	}
	if q.FoodType != "" {
		tx = tx.Where("food_type = ?", q.FoodType)
	}
	if q.IsUrgent != nil {
		tx = tx.Where("is_urgent = ?", *q.IsUrgent)
	}
	if q.DonorID != nil {
		tx = tx.Where("donor_id = ?", *q.DonorID)
	}
	if q.RecipientID != nil {
		tx = tx.Where("recipient_id = ?", *q.RecipientID)
	}
	return tx
}

func (r *donationRepository) ListDonations(ctx context.Context, q ListQuery) ([]*entities.Donation, int64, error) {
	var donations []*entities.Donation
	var count int64

	if err := r.filtered(ctx, q).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	orderBy := q.OrderBy
	if orderBy == "" {
		orderBy = "created_at DESC"
	}
	tx := r.filtered(ctx, q).
		Preload("Donor").
		Preload("Recipient").
		Order(orderBy).
		Order("id")
	if q.Limit > 0 {
		tx = tx.Offset(q.Offset).Limit(q.Limit)
	}
	if err := tx.Find(&donations).Error; err != nil {
		return nil, 0, err
	}

	return donations, count, nil
}

// ListDonationsWithin narrows q to the bounding box and returns at most limit
// candidates, nearest first. Exact distances are left to the caller.
func (r *donationRepository) ListDonationsWithin(ctx context.Context, q ListQuery, box geo.BoundingBox, center geo.Point, limit int) ([]*entities.Donation, error) {
	var donations []*entities.Donation

	tx := r.filtered(ctx, q).
		Preload("Donor").
		Preload("Recipient").
		Where("latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat)
	if !box.SpansAllLongitudes {
		tx = tx.Where("longitude BETWEEN ? AND ?", box.MinLon, box.MaxLon)
	}
	tx = tx.Clauses(entities.NearestFirst(center))
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if err := tx.Find(&donations).Error; err != nil {
		return nil, err
	}
	return donations, nil
}

func (r *donationRepository) CompareAndSwapStatus(ctx context.Context, id uuid.UUID, from entities.DonationStatus, updates map[string]any) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Donation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("update donation %s: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *donationRepository) UpdateAvailableDonation(ctx context.Context, id uuid.UUID, now time.Time, updates map[string]any) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Donation{}).
		Where("id = ? AND status = ? AND expiry_date > ?", id, entities.StatusAvailable, now).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("update donation %s: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *donationRepository) DeleteDonation(ctx context.Context, id uuid.UUID, statuses ...entities.DonationStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND status IN ?", id, statuses).
		Delete(&entities.Donation{})
	if result.Error != nil {
		return false, fmt.Errorf("delete donation %s: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *donationRepository) ExpireDonation(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Donation{}).
		Where("id = ? AND status = ? AND expiry_date <= ?", id, entities.StatusAvailable, now).
		Updates(map[string]any{"status": entities.StatusExpired, "updated_at": now})
	if result.Error != nil {
		return false, fmt.Errorf("expire donation %s: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *donationRepository) ListDueForExpiry(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	tx := r.db.WithContext(ctx).
		Model(&entities.Donation{}).
		Where("status = ? AND expiry_date <= ?", entities.StatusAvailable, now).
		Order("expiry_date")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if err := tx.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *donationRepository) ListDueForReminder(ctx context.Context, from, to time.Time) ([]*entities.Donation, error) {
	var donations []*entities.Donation
	if err := r.db.WithContext(ctx).
		Preload("Donor").
		Preload("Recipient").
		Where("status = ? AND reminded_at IS NULL", entities.StatusClaimed).
		Where("pickup_start >= ? AND pickup_start <= ?", from, to).
		Order("pickup_start").
		Find(&donations).Error; err != nil {
		return nil, err
	}
	return donations, nil
}

func (r *donationRepository) MarkReminded(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Donation{}).
		Where("id = ? AND reminded_at IS NULL", id).
		Update("reminded_at", at)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *donationRepository) CreateEvent(ctx context.Context, event *entities.DonationEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *donationRepository) ListEvents(ctx context.Context, donationID uuid.UUID) ([]*entities.DonationEvent, error) {
	var events []*entities.DonationEvent
	if err := r.db.WithContext(ctx).
		Where("donation_id = ?", donationID).
		Order("created_at").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// jsonColumn encodes a slice the way serializer:json stores it, for map
// based updates that bypass the model's serializer.
func jsonColumn(values []string) string {
	if values == nil {
		values = []string{}
	}
	b, _ := json.Marshal(values)
	return string(b)
}

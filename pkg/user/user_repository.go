package user

import (
	"context"
	"strings"

	"FoodShare-Backend/entities"
	"FoodShare-Backend/pkg/geo"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListQuery struct {
	Role     string
	IsActive *bool
	Search   string
	Offset   int
	Limit    int
}

type (
	UserRepository interface {
		CreateUser(ctx context.Context, user *entities.User) error
		GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
		UpdateUser(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error)
		ListUsers(ctx context.Context, q ListQuery) ([]*entities.User, int64, error)
		ListRecipientsWithin(ctx context.Context, box geo.BoundingBox, center geo.Point, emailOptIn bool, limit int) ([]*entities.User, error)
	}

	userRepository struct {
		db *gorm.DB
	}
)

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *entities.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateUser(ctx context.Context, id uuid.UUID, updates map[string]any) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.User{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *userRepository) filtered(ctx context.Context, q ListQuery) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&entities.User{})
	if q.Role != "" {
		tx = tx.Where("role = ?", q.Role)
	}
	if q.IsActive != nil {
		tx = tx.Where("is_active = ?", *q.IsActive)
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		tx = tx.Where(
			"(LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(organization) LIKE ?)",
			like, like, like, like,
		)
	}
	return tx
}

func (r *userRepository) ListUsers(ctx context.Context, q ListQuery) ([]*entities.User, int64, error) {
	var users []*entities.User
	var count int64

	if err := r.filtered(ctx, q).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	tx := r.filtered(ctx, q).Order("created_at DESC").Order("id")
	if q.Limit > 0 {
		tx = tx.Offset(q.Offset).Limit(q.Limit)
	}
	if err := tx.Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, count, nil
}

func (r *userRepository) ListRecipientsWithin(ctx context.Context, box geo.BoundingBox, center geo.Point, emailOptIn bool, limit int) ([]*entities.User, error) {
	var users []*entities.User

	tx := r.db.WithContext(ctx).
		Where("role = ? AND is_active = ?", entities.RoleRecipient, true).
		Where("latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat)
	if !box.SpansAllLongitudes {
		tx = tx.Where("longitude BETWEEN ? AND ?", box.MinLon, box.MaxLon)
	}
	if emailOptIn {
		tx = tx.Where("email_notifications = ?", true)
	}
	tx = tx.Clauses(entities.NearestFirst(center))
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if err := tx.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

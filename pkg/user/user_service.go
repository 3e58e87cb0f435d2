package user

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"

	"FoodShare-Backend/domain"
	"FoodShare-Backend/entities"
	"FoodShare-Backend/pkg/geo"
	"FoodShare-Backend/pkg/geocoder"
	"FoodShare-Backend/pkg/matching"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultUserListLimit = 20

type (
	UserService interface {
		GetProfile(ctx context.Context, userID string) (*domain.UserResponse, error)
		UpdateLocation(ctx context.Context, userID string, req domain.UpdateLocationRequest) (*domain.UserResponse, error)
		UpdatePreferences(ctx context.Context, userID string, req domain.UpdatePreferencesRequest) (*domain.UserResponse, error)
		NearbyRecipients(ctx context.Context, userID string, req domain.NearbyRecipientsRequest) ([]domain.NearbyRecipient, error)

		ListUsers(ctx context.Context, filter domain.ListUsersFilter) (*domain.UserList, error)
		SetActive(ctx context.Context, id string, active bool) (*domain.UserResponse, error)
	}

	userService struct {
		userRepository UserRepository
		matching       matching.MatchingService
		geocoder       geocoder.Resolver
	}
)

func NewUserService(userRepository UserRepository, matchingService matching.MatchingService, resolver geocoder.Resolver) UserService {
	return &userService{
		userRepository: userRepository,
		matching:       matchingService,
		geocoder:       resolver,
	}
}

func (s *userService) load(ctx context.Context, id string) (*entities.User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.NewNotFound("user")
	}
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFound("user")
		}
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}
	return user, nil
}

func (s *userService) update(ctx context.Context, user *entities.User, updates map[string]any) (*domain.UserResponse, error) {
	if _, err := s.userRepository.UpdateUser(ctx, user.ID, updates); err != nil {
		return nil, fmt.Errorf("update user %s: %w", user.ID, err)
	}
	updated, err := s.userRepository.GetUserByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("reload user %s: %w", user.ID, err)
	}
	return ToUserResponse(updated), nil
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*domain.UserResponse, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

func (s *userService) UpdateLocation(ctx context.Context, userID string, req domain.UpdateLocationRequest) (*domain.UserResponse, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	address := strings.TrimSpace(req.Address)
	if address != "" {
		updates["address"] = address
	}

	if req.Latitude != nil && req.Longitude != nil {
		point := geo.Point{Latitude: *req.Latitude, Longitude: *req.Longitude}
		if err := point.Validate(); err != nil {
			return nil, domain.NewValidationError(domain.FieldError{Field: "latitude", Message: err.Error()})
		}
		maps.Copy(updates, entities.LocationColumns(point.Latitude, point.Longitude))
	} else {
		res, err := s.geocoder.Resolve(ctx, address)
		if err != nil {
			if errors.Is(err, geocoder.ErrNoResults) || errors.Is(err, geocoder.ErrNoAddress) {
				return nil, domain.NewValidationError(domain.FieldError{Field: "address", Message: "could not be resolved to a location"})
			}
			return nil, fmt.Errorf("geocode user address: %w", err)
		}
		maps.Copy(updates, entities.LocationColumns(res.Latitude, res.Longitude))
		if res.FormattedAddress != "" {
			updates["address"] = res.FormattedAddress
		}
	}

	return s.update(ctx, user, updates)
}

func (s *userService) UpdatePreferences(ctx context.Context, userID string, req domain.UpdatePreferencesRequest) (*domain.UserResponse, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.EmailNotifications != nil {
		updates["email_notifications"] = *req.EmailNotifications
	}
	if req.SMSNotifications != nil {
		if *req.SMSNotifications && user.Phone == "" {
			return nil, domain.NewValidationError(domain.FieldError{Field: "sms_notifications", Message: "requires a phone number on the profile"})
		}
		updates["sms_notifications"] = *req.SMSNotifications
	}
	if req.MaxDistance != nil {
		updates["max_distance"] = *req.MaxDistance
	}
	if len(updates) == 0 {
		return ToUserResponse(user), nil
	}

	return s.update(ctx, user, updates)
}

func (s *userService) NearbyRecipients(ctx context.Context, userID string, req domain.NearbyRecipientsRequest) ([]domain.NearbyRecipient, error) {
	if req.Latitude == nil || req.Longitude == nil {
		return nil, domain.NewValidationError(domain.FieldError{Field: "latitude", Message: "latitude and longitude are required"})
	}
	center := geo.Point{Latitude: *req.Latitude, Longitude: *req.Longitude}
	if err := center.Validate(); err != nil {
		return nil, domain.NewValidationError(domain.FieldError{Field: "latitude", Message: err.Error()})
	}

	radius := req.MaxDistance
	if radius <= 0 {
		radius = geo.DefaultRadiusMiles
		if user, err := s.load(ctx, userID); err == nil && user.MaxDistance > 0 {
			radius = user.MaxDistance
		}
	}

	matches, err := s.matching.NearbyRecipients(ctx, center, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("nearby recipients: %w", err)
	}

	out := make([]domain.NearbyRecipient, 0, len(matches))
	for _, m := range matches {
		out = append(out, domain.NearbyRecipient{
			PublicUser: *ToPublicUser(m.Item),
			Distance:   m.Distance,
		})
	}
	return out, nil
}

func (s *userService) ListUsers(ctx context.Context, filter domain.ListUsersFilter) (*domain.UserList, error) {
	page := max(filter.Page, 1)
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultUserListLimit
	}

	users, total, err := s.userRepository.ListUsers(ctx, ListQuery{
		Role:     filter.Role,
		IsActive: filter.IsActive,
		Search:   filter.Search,
		Offset:   domain.PageOffset(page, limit),
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	items := make([]*domain.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, ToUserResponse(u))
	}
	return &domain.UserList{
		Items:      items,
		Pagination: domain.NewPagination(page, limit, total),
	}, nil
}

func (s *userService) SetActive(ctx context.Context, id string, active bool) (*domain.UserResponse, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, user, map[string]any{"is_active": active})
}

func ToUserResponse(u *entities.User) *domain.UserResponse {
	return &domain.UserResponse{
		ID:                 u.ID.String(),
		Email:              u.Email,
		Role:               u.Role,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Phone:              u.Phone,
		Organization:       u.Organization,
		Address:            u.Address,
		Coordinates:        [2]float64{u.Longitude, u.Latitude},
		EmailNotifications: u.EmailNotifications,
		SMSNotifications:   u.SMSNotifications,
		MaxDistance:        u.MaxDistance,
		IsActive:           u.IsActive,
	}
}

// ToPublicUser returns the profile subset shown to other users, or nil.
func ToPublicUser(u *entities.User) *domain.PublicUser {
	if u == nil || u.ID == uuid.Nil {
		return nil
	}
	return &domain.PublicUser{
		ID:           u.ID.String(),
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Organization: u.Organization,
		Phone:        u.Phone,
	}
}

// Package matching pairs donations with nearby recipients and recipients with
// nearby donations.
package matching

import (
	"context"

	"FoodShare-Backend/entities"
	"FoodShare-Backend/pkg/geo"
)

const (
	DefaultRecipientLimit = 50
	DefaultMaxCandidates  = 2000
)

// CandidateLoader returns stored entities inside box ordered by great-circle
// distance from center, at most limit of them.
type CandidateLoader[T geo.Locatable] func(ctx context.Context, box geo.BoundingBox, center geo.Point, limit int) ([]T, error)

// Nearby loads candidates around center and keeps those within radiusMiles
// that satisfy pred, nearest first, capped at limit. truncated reports that
// maxCandidates cut the candidate set while still inside the radius, so more
// matches may exist beyond the ones returned.
func Nearby[T geo.Locatable](ctx context.Context, load CandidateLoader[T], center geo.Point, radiusMiles float64, pred func(T) bool, limit, maxCandidates int) (matches []geo.Match[T], truncated bool, err error) {
	if err := center.Validate(); err != nil {
		return nil, false, err
	}
	if radiusMiles <= 0 {
		radiusMiles = geo.DefaultRadiusMiles
	}
	candidates, err := load(ctx, geo.BoundingBoxFor(center, radiusMiles), center, maxCandidates)
	if err != nil {
		return nil, false, err
	}
	if n := len(candidates); maxCandidates > 0 && n >= maxCandidates {
		truncated = center.DistanceTo(candidates[n-1]) <= radiusMiles
	}
	return geo.FindNearby(candidates, center, radiusMiles, pred, limit), truncated, nil
}

// UserSource is implemented by the user repository. emailOptIn narrows the
// candidates to users accepting email notifications.
type UserSource interface {
	ListRecipientsWithin(ctx context.Context, box geo.BoundingBox, center geo.Point, emailOptIn bool, limit int) ([]*entities.User, error)
}

type Config struct {
	RadiusMiles   float64
	Limit         int
	MaxCandidates int
}

type (
	MatchingService interface {
		// RecipientsForDonation finds the recipients to tell about a new
		// donation: active, opted into email, within the match radius.
		RecipientsForDonation(ctx context.Context, d *entities.Donation) ([]geo.Match[*entities.User], error)
		NearbyRecipients(ctx context.Context, center geo.Point, radiusMiles float64, limit int) ([]geo.Match[*entities.User], error)
	}

	matchingService struct {
		users UserSource
		cfg   Config
	}
)

func NewMatchingService(users UserSource, cfg Config) MatchingService {
	if cfg.RadiusMiles <= 0 {
		cfg.RadiusMiles = geo.DefaultRadiusMiles
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultRecipientLimit
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = DefaultMaxCandidates
	}
	cfg.MaxCandidates = max(cfg.MaxCandidates, cfg.Limit)
	return &matchingService{users: users, cfg: cfg}
}

func IsNotifiableRecipient(u *entities.User) bool {
	return u.Role == entities.RoleRecipient && u.IsActive && u.EmailNotifications
}

func isActiveRecipient(u *entities.User) bool {
	return u.Role == entities.RoleRecipient && u.IsActive
}

func (s *matchingService) RecipientsForDonation(ctx context.Context, d *entities.Donation) ([]geo.Match[*entities.User], error) {
	center := geo.Point{Latitude: d.Latitude, Longitude: d.Longitude}
	// candidates arrive nearest first, so a cap at or above Limit keeps the
	// nearest Limit recipients exact
	matches, _, err := Nearby(ctx, s.loader(true), center, s.cfg.RadiusMiles, IsNotifiableRecipient, s.cfg.Limit, s.cfg.MaxCandidates)
	return matches, err
}

func (s *matchingService) NearbyRecipients(ctx context.Context, center geo.Point, radiusMiles float64, limit int) ([]geo.Match[*entities.User], error) {
	if limit <= 0 {
		limit = s.cfg.Limit
	}
	matches, _, err := Nearby(ctx, s.loader(false), center, radiusMiles, isActiveRecipient, limit, s.cfg.MaxCandidates)
	return matches, err
}

func (s *matchingService) loader(emailOptIn bool) CandidateLoader[*entities.User] {
	return func(ctx context.Context, box geo.BoundingBox, center geo.Point, limit int) ([]*entities.User, error) {
		return s.users.ListRecipientsWithin(ctx, box, center, emailOptIn, limit)
	}
}

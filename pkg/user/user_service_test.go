package user

import (
	"context"
	"testing"

	"FoodShare-Backend/domain"
	"FoodShare-Backend/entities"
	"FoodShare-Backend/internal/utils/testdb"
	"FoodShare-Backend/pkg/geo"
	"FoodShare-Backend/pkg/geocoder"
	"FoodShare-Backend/pkg/matching"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	result  geocoder.Result
	err     error
	lookups []string
}

func (s *stubResolver) Resolve(ctx context.Context, address string) (geocoder.Result, error) {
	s.lookups = append(s.lookups, address)
	return s.result, s.err
}

func setup(t *testing.T) (UserRepository, UserService, *stubResolver) {
	t.Helper()
	repo := NewUserRepository(testdb.New(t))
	resolver := &stubResolver{result: geocoder.Result{Latitude: 40.7306, Longitude: -73.9866, FormattedAddress: "Union Sq, New York, NY"}}
	service := NewUserService(repo, matching.NewMatchingService(repo, matching.Config{}), resolver)
	return repo, service, resolver
}

func seed(t *testing.T, repo UserRepository, role, email string, lat, lon float64) *entities.User {
	t.Helper()
	u := &entities.User{
		ID:                 uuid.New(),
		Email:              email,
		Role:               role,
		FirstName:          "Test",
		LastName:           role,
		Latitude:           lat,
		Longitude:          lon,
		EmailNotifications: true,
		MaxDistance:        50,
		IsActive:           true,
	}
	require.NoError(t, repo.CreateUser(context.Background(), u))
	return u
}

func TestGetProfile(t *testing.T) {
	repo, service, _ := setup(t)
	u := seed(t, repo, entities.RoleDonor, "donor@example.org", 40.7128, -74.0060)

	res, err := service.GetProfile(context.Background(), u.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "donor@example.org", res.Email)
	assert.Equal(t, [2]float64{-74.0060, 40.7128}, res.Coordinates)

	_, err = service.GetProfile(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateLocation(t *testing.T) {
	repo, service, resolver := setup(t)
	ctx := context.Background()
	u := seed(t, repo, entities.RoleRecipient, "r@example.org", 0, 0)

	lat, lon := 34.0522, -118.2437
	res, err := service.UpdateLocation(ctx, u.ID.String(), domain.UpdateLocationRequest{Latitude: &lat, Longitude: &lon})
	require.NoError(t, err)
	assert.Equal(t, [2]float64{lon, lat}, res.Coordinates)
	assert.Empty(t, resolver.lookups)

	res, err = service.UpdateLocation(ctx, u.ID.String(), domain.UpdateLocationRequest{Address: " 33 Union Sq W "})
	require.NoError(t, err)
	assert.Equal(t, [2]float64{-73.9866, 40.7306}, res.Coordinates)
	assert.Equal(t, "Union Sq, New York, NY", res.Address)
	assert.Equal(t, []string{"33 Union Sq W"}, resolver.lookups)

	resolver.err = geocoder.ErrNoResults
	_, err = service.UpdateLocation(ctx, u.ID.String(), domain.UpdateLocationRequest{Address: "nowhere"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	bad := 120.0
	_, err = service.UpdateLocation(ctx, u.ID.String(), domain.UpdateLocationRequest{Latitude: &bad, Longitude: &lon})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdatePreferences(t *testing.T) {
	repo, service, _ := setup(t)
	ctx := context.Background()
	u := seed(t, repo, entities.RoleRecipient, "r@example.org", 0, 0)

	off, on := false, true
	distance := 15.0
	res, err := service.UpdatePreferences(ctx, u.ID.String(), domain.UpdatePreferencesRequest{
		EmailNotifications: &off,
		MaxDistance:        &distance,
	})
	require.NoError(t, err)
	assert.False(t, res.EmailNotifications)
	assert.Equal(t, 15.0, res.MaxDistance)

	_, err = service.UpdatePreferences(ctx, u.ID.String(), domain.UpdatePreferencesRequest{SMSNotifications: &on})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = repo.UpdateUser(ctx, u.ID, map[string]any{"phone": "+15555550100"})
	require.NoError(t, err)
	res, err = service.UpdatePreferences(ctx, u.ID.String(), domain.UpdatePreferencesRequest{SMSNotifications: &on})
	require.NoError(t, err)
	assert.True(t, res.SMSNotifications)
}

func TestNearbyRecipients(t *testing.T) {
	repo, service, _ := setup(t)
	ctx := context.Background()
	donor := seed(t, repo, entities.RoleDonor, "d@example.org", 40.7128, -74.0060)
	near := seed(t, repo, entities.RoleRecipient, "near@example.org", 40.7306, -73.9866)
	quiet := seed(t, repo, entities.RoleRecipient, "quiet@example.org", 40.7200, -74.0000)
	seed(t, repo, entities.RoleRecipient, "far@example.org", 42.6526, -73.7562)
	inactive := seed(t, repo, entities.RoleRecipient, "inactive@example.org", 40.7150, -74.0050)

	_, err := repo.UpdateUser(ctx, quiet.ID, map[string]any{"email_notifications": false})
	require.NoError(t, err)
	_, err = service.SetActive(ctx, inactive.ID.String(), false)
	require.NoError(t, err)

	lat, lon := 40.7128, -74.0060
	out, err := service.NearbyRecipients(ctx, donor.ID.String(), domain.NearbyRecipientsRequest{Latitude: &lat, Longitude: &lon})
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, quiet.ID.String(), out[0].ID)
	assert.Equal(t, near.ID.String(), out[1].ID)
	assert.Less(t, out[0].Distance, out[1].Distance)

	_, err = service.NearbyRecipients(ctx, donor.ID.String(), domain.NearbyRecipientsRequest{Latitude: &lat})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestListUsers(t *testing.T) {
	repo, service, _ := setup(t)
	ctx := context.Background()
	seed(t, repo, entities.RoleDonor, "bakery@example.org", 0, 0)
	seed(t, repo, entities.RoleRecipient, "shelter@example.org", 0, 0)
	closed := seed(t, repo, entities.RoleRecipient, "pantry@example.org", 0, 0)
	_, err := service.SetActive(ctx, closed.ID.String(), false)
	require.NoError(t, err)

	list, err := service.ListUsers(ctx, domain.ListUsersFilter{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 3)
	assert.Equal(t, 20, list.Pagination.Limit)

	active := true
	list, err = service.ListUsers(ctx, domain.ListUsersFilter{Role: entities.RoleRecipient, IsActive: &active})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "shelter@example.org", list.Items[0].Email)

	list, err = service.ListUsers(ctx, domain.ListUsersFilter{Search: "PANTRY"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.False(t, list.Items[0].IsActive)

	list, err = service.ListUsers(ctx, domain.ListUsersFilter{Limit: 2, Page: 2})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, int64(3), list.Pagination.Total)
	assert.Equal(t, int64(2), list.Pagination.TotalPages)
}

func TestListRecipientsWithin_NearestFirst(t *testing.T) {
	repo, _, _ := setup(t)
	ctx := context.Background()
	// about 27.6 miles north, then about 17 miles east of (60, 10)
	seed(t, repo, entities.RoleRecipient, "north@example.org", 60.4, 10)
	east := seed(t, repo, entities.RoleRecipient, "east@example.org", 60, 10.5)

	center := geo.Point{Latitude: 60, Longitude: 10}
	users, err := repo.ListRecipientsWithin(ctx, geo.BoundingBoxFor(center, 50), center, true, 1)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, east.ID, users[0].ID)

	// across the antimeridian
	west := seed(t, repo, entities.RoleRecipient, "west@example.org", 0, -179.9)
	seed(t, repo, entities.RoleRecipient, "island@example.org", 0.3, 179.9)
	center = geo.Point{Latitude: 0, Longitude: 179.9}
	users, err = repo.ListRecipientsWithin(ctx, geo.BoundingBoxFor(center, 50), center, true, 1)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, west.ID, users[0].ID)
}

func TestUpdateLocation_MovesUnitVector(t *testing.T) {
	repo, service, _ := setup(t)
	ctx := context.Background()
	u := seed(t, repo, entities.RoleRecipient, "r@example.org", 0, 0)

	lat, lon := 0.0, 90.0
	_, err := service.UpdateLocation(ctx, u.ID.String(), domain.UpdateLocationRequest{Latitude: &lat, Longitude: &lon})
	require.NoError(t, err)

	stored, err := repo.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0, stored.GeoX, 1e-9)
	assert.InDelta(t, 1, stored.GeoY, 1e-9)
}

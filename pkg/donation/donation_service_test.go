package donation

import (
	"context"
	"sync"
	"testing"
	"time"

	"FoodShare-Backend/domain"
	"FoodShare-Backend/entities"
	"FoodShare-Backend/internal/utils/storage"
	"FoodShare-Backend/internal/utils/testdb"
	"FoodShare-Backend/pkg/geocoder"
	"FoodShare-Backend/pkg/matching"
	"FoodShare-Backend/pkg/notification"
	"FoodShare-Backend/pkg/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type sent struct {
	event   string
	targets []notification.Target
	msg     notification.Message
}

type recorder struct {
	mu         sync.Mutex
	sent       []sent
	broadcasts []string
}

func (r *recorder) Notify(event string, targets []notification.Target, msg notification.Message) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sent{event: event, targets: targets, msg: msg})
	return true
}

func (r *recorder) Broadcast(event string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcasts = append(r.broadcasts, event)
}

func (r *recorder) events(event string) []sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sent
	for _, s := range r.sent {
		if s.event == event {
			out = append(out, s)
		}
	}
	return out
}

type fixedResolver struct {
	result geocoder.Result
	err    error
}

func (f fixedResolver) Resolve(ctx context.Context, address string) (geocoder.Result, error) {
	return f.result, f.err
}

type fixture struct {
	clock    *clock
	repo     DonationRepository
	users    user.UserRepository
	coord    *ClaimCoordinator
	service  DonationService
	notified *recorder
	resolver *fixedResolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.New(t)

	f := &fixture{
		clock:    &clock{now: epoch},
		repo:     NewDonationRepository(db),
		users:    user.NewUserRepository(db),
		notified: &recorder{},
		resolver: &fixedResolver{result: geocoder.Result{Latitude: 40.7306, Longitude: -73.9866}},
	}
	f.coord = NewClaimCoordinator(f.repo, f.clock.Now)
	f.service = NewDonationService(
		f.repo,
		f.users,
		f.coord,
		matching.NewMatchingService(f.users, matching.Config{}),
		f.resolver,
		storage.NewAwsS3WithClient(nil, "", ""),
		f.notified,
		f.notified,
		Config{Now: f.clock.Now},
	)
	return f
}

// serviceWith builds a second service over the fixture's storage with cfg.
func (f *fixture) serviceWith(cfg Config) DonationService {
	cfg.Now = f.clock.Now
	return NewDonationService(
		f.repo,
		f.users,
		f.coord,
		matching.NewMatchingService(f.users, matching.Config{}),
		f.resolver,
		storage.NewAwsS3WithClient(nil, "", ""),
		f.notified,
		f.notified,
		cfg,
	)
}

func (f *fixture) user(t *testing.T, role string, lat, lon float64) *entities.User {
	t.Helper()
	u := &entities.User{
		ID:                 uuid.New(),
		Email:              uuid.NewString() + "@example.org",
		Role:               role,
		FirstName:          role,
		Latitude:           lat,
		Longitude:          lon,
		EmailNotifications: true,
		MaxDistance:        50,
		IsActive:           true,
	}
	require.NoError(t, f.users.CreateUser(context.Background(), u))
	return u
}

func createRequest(lat, lon float64) domain.CreateDonationRequest {
	return domain.CreateDonationRequest{
		Title:           "Bagels",
		Description:     "Two dozen day-old bagels",
		FoodType:        "baked",
		Quantity:        domain.QuantityRequest{Amount: 24, Unit: "items"},
		Allergens:       []string{"Gluten", "wheat", "gluten"},
		PreparationDate: epoch.Add(-2 * time.Hour),
		ExpiryDate:      epoch.Add(24 * time.Hour),
		PickupWindow: domain.PickupWindowRequest{
			StartTime: epoch.Add(2 * time.Hour),
			EndTime:   epoch.Add(6 * time.Hour),
		},
		Location: domain.LocationRequest{
			Address: domain.AddressRequest{
				Street:  "1 Main St",
				City:    "New York",
				State:   "NY",
				ZipCode: "10001",
			},
			Coordinates: []float64{lon, lat},
		},
		Tags: []string{"bakery"},
	}
}

func (f *fixture) create(t *testing.T, donor *entities.User, req domain.CreateDonationRequest) *domain.DonationResponse {
	t.Helper()
	res, err := f.service.CreateDonation(context.Background(), donor.ID.String(), req)
	require.NoError(t, err)
	return res
}

func TestCreateDonation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	donor := f.user(t, entities.RoleDonor, 40.7128, -74.0060)
	near := f.user(t, entities.RoleRecipient, 40.7306, -73.9866)
	far := f.user(t, entities.RoleRecipient, 42.6526, -73.7562)
	optedOut := f.user(t, entities.RoleRecipient, 40.7200, -74.0000)
	_, err := f.users.UpdateUser(ctx, optedOut.ID, map[string]any{"email_notifications": false})
	require.NoError(t, err)

	res := f.create(t, donor, createRequest(40.7128, -74.0060))

	assert.Equal(t, string(entities.StatusAvailable), res.Status)
	assert.Equal(t, donor.ID.String(), res.DonorID)
	assert.Equal(t, []string{"gluten", "wheat"}, res.Allergens)
	assert.Equal(t, "USA", res.Location.Address.Country)
	assert.Equal(t, [2]float64{-74.0060, 40.7128}, res.Location.Coordinates)
	assert.Equal(t, WindowUpcoming, res.PickupWindow.Status)
	assert.Nil(t, res.Claim)

	stored, err := f.service.GetDonation(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Title, stored.Title)
	require.NotNil(t, stored.Donor)
	assert.Equal(t, donor.ID.String(), stored.Donor.ID)

	notes := f.notified.events(notification.EventNewDonation)
	require.Len(t, notes, 1)
	require.Len(t, notes[0].targets, 1)
	assert.Equal(t, near.ID, notes[0].targets[0].UserID)
	assert.NotEqual(t, far.ID, notes[0].targets[0].UserID)
	assert.Contains(t, f.notified.broadcasts, notification.EventNewDonation)

	history, err := f.service.DonationHistory(ctx, res.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "create", history[0].Event)
}

func TestCreateDonation_Geocodes(t *testing.T) {
	f := newFixture(t)
	donor := f.user(t, entities.RoleDonor, 40.7128, -74.0060)

	req := createRequest(0, 0)
	req.Location.Coordinates = nil
	res := f.create(t, donor, req)
	assert.Equal(t, [2]float64{-73.9866, 40.7306}, res.Location.Coordinates)

	f.resolver.err = geocoder.ErrNoResults
	_, err := f.service.CreateDonation(context.Background(), donor.ID.String(), req)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateDonation_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	donor := f.user(t, entities.RoleDonor, 40.7128, -74.0060)

	req := createRequest(40.7128, -74.0060)
	req.ExpiryDate = req.PreparationDate.Add(-time.Hour)
	_, err := f.service.CreateDonation(ctx, donor.ID.String(), req)
	assert.ErrorIs(t, err, domain.ErrValidation)

	req = createRequest(40.7128, -74.0060)
	req.PickupWindow.EndTime = req.PickupWindow.StartTime
	_, err = f.service.CreateDonation(ctx, donor.ID.String(), req)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.service.CreateDonation(ctx, uuid.NewString(), createRequest(40.7128, -74.0060))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := f.service.ListDonations(ctx, domain.ListDonationsFilter{})
	require.NoError(t, err)
	assert.Zero(t, list.TotalCount)
}

func TestClaimScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	donor := f.user(t, entities.RoleDonor, 40.7128, -74.0060)
	first := f.user(t, entities.RoleRecipient, 40.7306, -73.9866)
	second := f.user(t, entities.RoleRecipient, 40.7306, -73.9866)

	res := f.create(t, donor, createRequest(40.7128, -74.0060))

	f.clock.Set(epoch.Add(time.Hour))
	_, err := f.service.ClaimDonation(ctx, first.ID.String(), res.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.NotErrorIs(t, err, domain.ErrAlreadyClaimed)

	f.clock.Set(epoch.Add(3 * time.Hour))
	claimed, err := f.service.ClaimDonation(ctx, first.ID.String(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entities.StatusClaimed), claimed.Status)
	require.NotNil(t, claimed.Claim)
	assert.Equal(t, first.ID.String(), claimed.Claim.RecipientID)
	require.NotNil(t, claimed.Claim.Recipient)

	f.clock.Set(epoch.Add(4 * time.Hour))
	_, err = f.service.ClaimDonation(ctx, second.ID.String(), res.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyClaimed)

	donorNotes := f.notified.events(notification.EventDonationClaimed)
	require.Len(t, donorNotes, 1)
	assert.Equal(t, donor.ID, donorNotes[0].targets[0].UserID)
	assert.Contains(t, f.notified.broadcasts, notification.EventDonationClaimed)
}

func TestClaimDonation_Concurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	donor := f.user(t, entities.RoleDonor, 40.7128, -74.0060)
	res := f.create(t, donor, createRequest(40.7128, -74.0060))
	f.clock.Set(epoch.Add(3 * time.Hour))

	const racers = 8
	recipients := make([]*entities.User, racers)
	for i := range recipients {
		recipients[i] = f.user(t, entities.RoleRecipient, 40.7306, -73.9866)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for _, r := range recipients {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := f.service.ClaimDonation(ctx, id, res.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case domain.KindOf(err) == domain.KindAlreadyClaimed:
				conflicts++
			default:
				t.Errorf("unexpected claim error: %v", err)
			}
		}(r.ID.String())
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, racers-1, conflicts)

	history, err := f.service.DonationHistory(ctx, res.ID)
	require.NoError(t, err)
	claims := 0
	for _, e := range history {
		if e.Event == string(EventClaim) {
			claims++
		}
	}
	assert.Equal(t, 1, claims)
}

func TestRecipientTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	donor := f.user(t, entities.RoleDonor, 40.7128, -74.0060)
	recipient := f.user(t, entities.RoleRecipient, 40.7306, -73.9866)
	other := f.user(t, entities.RoleRecipient, 40.7306, -73.9866)
	res := f.create(t, donor, createRequest(40.7128, -74.0060))

	_, err := f.service.MarkPickedUp(ctx, recipient.ID.String(), res.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	f.clock.Set(epoch.Add(3 * time.Hour))
	_, err = f.service.ClaimDonation(ctx, recipient.ID.String(), res.ID)
	require.NoError(t, err)

	_, err = f.service.MarkPickedUp(ctx, other.ID.String(), res.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	f.clock.Set(epoch.Add(4 * time.Hour))
	picked, err := f.service.MarkPickedUp(ctx, recipient.ID.String(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entities.StatusPickedUp), picked.Status)
	require.NotNil(t, picked.Claim.PickupTime)

	f.clock.Set(epoch.Add(5 * time.Hour))
	completed, err := f.service.MarkCompleted(ctx, recipient.ID.String(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entities.StatusCompleted), completed.Status)

	err = f.service.CancelDonation(ctx, domain.Actor{UserID: donor.ID.String(), Role: domain.RoleDonor}, res.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	history, err := f.service.DonationHistory(ctx, res.ID)
	require.NoError(t, err)
	var events []string
	for _, e := range history {
		events = append(events, e.Event)
	}
	assert.Equal(t, []string{"create", "claim", "pickup", "complete"}, events)
}

func TestCancelDonation_NotifiesRecipient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	donor := f.user(t, entities.RoleDonor, 40.7128, -74.0060)
	recipient := f.user(t, entities.RoleRecipient, 40.7306, -73.9866)
	res := f.create(t, donor, createRequest(40.7128, -74.0060))

	f.clock.Set(epoch.Add(3 * time.Hour))
	_, err := f.service.ClaimDonation(ctx, recipient.ID.String(), res.ID)
	require.NoError(t, err)

	err = f.service.CancelDonation(ctx, domain.Actor{UserID: recipient.ID.String(), Role: domain.RoleRecipient}, res.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, f.service.CancelDonation(ctx, domain.Actor{UserID: donor.ID.String(), Role: domain.RoleDonor}, res.ID))

	got, err := f.service.GetDonation(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entities.StatusCancelled), got.Status)

	notes := f.notified.events(notification.EventDonationStatus)
	require.NotEmpty(t, notes)
	assert.Equal(t, recipient.ID, notes[len(notes)-1].targets[0].UserID)
}

func TestGetDonation_LazyExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	donor := f.user(t, entities.RoleDonor, 40.7128, -74.0060)

	req := createRequest(40.7128, -74.0060)
	req.ExpiryDate = epoch.Add(time.Second)
	res := f.create(t, donor, req)

	f.clock.Set(epoch.Add(2 * time.Second))
	got, err := f.service.GetDonation(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entities.StatusExpired), got.Status)

	id := uuid.MustParse(res.ID)
	stored, err := f.repo.GetDonationByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusExpired, stored.Status)

	_, err = f.service.GetDonation(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.service.GetDonation(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListDonations_StatusFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	donor := f.user(t, entities.RoleDonor, 40.7128, -74.0060)

	fresh := f.create(t, donor, createRequest(40.7128, -74.0060))
	req := createRequest(40.7128, -74.0060)
	req.ExpiryDate = epoch.Add(time.Hour)
	stale := f.create(t, donor, req)

	f.clock.Set(epoch.Add(3 * time.Hour))

	available, err := f.service.ListDonations(ctx, domain.ListDonationsFilter{Status: "available"})
	require.NoError(t, err)
	require.Len(t, available.Items, 1)
	assert.Equal(t, fresh.ID, available.Items[0].ID)

	expired, err := f.service.ListDonations(ctx, domain.ListDonationsFilter{Status: "expired"})
	require.NoError(t, err)
	require.Len(t, expired.Items, 1)
	assert.Equal(t, stale.ID, expired.Items[0].ID)
	assert.Equal(t, string(entities.StatusExpired), expired.Items[0].Status)

	all, err := f.service.ListDonations(ctx, domain.ListDonationsFilter{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.TotalCount)
	assert.Len(t, all.Items, 1)
	assert.Equal(t, 1, all.Page)
}

func TestListDonations_Nearby(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	donor := f.user(t, entities.RoleDonor, 40.7128, -74.0060)

	manhattan := f.create(t, donor, createRequest(40.7128, -74.0060))
	brooklyn := f.create(t, donor, createRequest(40.6782, -73.9442))
	f.create(t, donor, createRequest(42.6526, -73.7562))

	lat, lon := 40.6900, -73.9500
	list, err := f.service.ListDonations(ctx, domain.ListDonationsFilter{Latitude: &lat, Longitude: &lon, RadiusMiles: 25})
	require.NoError(t, err)

	require.Len(t, list.Items, 2)
	assert.Equal(t, int64(2), list.TotalCount)
	assert.Equal(t, brooklyn.ID, list.Items[0].ID)
	assert.Equal(t, manhattan.ID, list.Items[1].ID)
	require.NotNil(t, list.Items[0].Distance)
	assert.Less(t, *list.Items[0].Distance, *list.Items[1].Distance)

	_, err = f.service.ListDonations(ctx, domain.ListDonationsFilter{Latitude: &lat})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestListDonations_CandidateCapKeepsNearest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	donor := f.user(t, entities.RoleDonor, 60, 10)

	// about 17 miles east, and about 27.6 miles north; in raw degrees the
	// northern one looks closer
	east := f.create(t, donor, createRequest(60, 10.5))
	north := f.create(t, donor, createRequest(60.4, 10))

	lat, lon := 60.0, 10.0
	filter := domain.ListDonationsFilter{Latitude: &lat, Longitude: &lon, RadiusMiles: 50}

	list, err := f.serviceWith(Config{MaxCandidates: 1}).ListDonations(ctx, filter)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, east.ID, list.Items[0].ID)
	assert.InDelta(t, 17.2, *list.Items[0].Distance, 0.5)
	assert.True(t, list.Truncated)

	list, err = f.serviceWith(Config{MaxCandidates: 3}).ListDonations(ctx, filter)
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, int64(2), list.TotalCount)
	assert.Equal(t, east.ID, list.Items[0].ID)
	assert.Equal(t, north.ID, list.Items[1].ID)
	assert.False(t, list.Truncated)
}

func TestListDonations_CandidateCapAcrossAntimeridian(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	donor := f.user(t, entities.RoleDonor, 0, 179.9)

	// about 13.8 miles across the antimeridian, and about 20.7 miles north
	west := f.create(t, donor, createRequest(0, -179.9))
	f.create(t, donor, createRequest(0.3, 179.9))

	lat, lon := 0.0, 179.9
	list, err := f.serviceWith(Config{MaxCandidates: 1}).ListDonations(ctx, domain.ListDonationsFilter{Latitude: &lat, Longitude: &lon, RadiusMiles: 50})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, west.ID, list.Items[0].ID)
	assert.InDelta(t, 13.8, *list.Items[0].Distance, 0.5)
}

func TestListDonations_PageBeyondRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	donor := f.user(t, entities.RoleDonor, 40.7128, -74.0060)
	f.create(t, donor, createRequest(40.7128, -74.0060))

	lat, lon := 40.7128, -74.0060
	for name, filter := range map[string]domain.ListDonationsFilter{
		"plain":  {Page: 92233720368547761, Limit: 100},
		"nearby": {Page: 92233720368547761, Limit: 100, Latitude: &lat, Longitude: &lon},
	} {
		t.Run(name, func(t *testing.T) {
			list, err := f.service.ListDonations(ctx, filter)
			require.NoError(t, err)
			assert.Empty(t, list.Items)
			assert.Equal(t, int64(1), list.TotalCount)
		})
	}

	assert.Equal(t, 0, domain.PageOffset(1, 10))
	assert.Equal(t, 20, domain.PageOffset(3, 10))
	assert.Positive(t, domain.PageOffset(92233720368547761, 100))
}

func TestUpdateDonation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	donor := f.user(t, entities.RoleDonor, 40.7128, -74.0060)
	recipient := f.user(t, entities.RoleRecipient, 40.7306, -73.9866)
	res := f.create(t, donor, createRequest(40.7128, -74.0060))

	title := "Fresh bagels"
	updated, err := f.service.UpdateDonation(ctx, donor.ID.String(), res.ID, domain.UpdateDonationRequest{
		Title:     &title,
		Allergens: []string{"Eggs"},
	})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)

	got, err := f.service.GetDonation(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, title, got.Title)
	assert.Equal(t, []string{"eggs"}, got.Allergens)

	_, err = f.service.UpdateDonation(ctx, recipient.ID.String(), res.ID, domain.UpdateDonationRequest{Title: &title})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	f.clock.Set(epoch.Add(3 * time.Hour))
	_, err = f.service.ClaimDonation(ctx, recipient.ID.String(), res.ID)
	require.NoError(t, err)

	_, err = f.service.UpdateDonation(ctx, donor.ID.String(), res.ID, domain.UpdateDonationRequest{Title: &title})
	assert.ErrorIs(t, err, domain.ErrImmutableAfterClaim)
}

func TestDeleteDonation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	donor := f.user(t, entities.RoleDonor, 40.7128, -74.0060)
	recipient := f.user(t, entities.RoleRecipient, 40.7306, -73.9866)
	donorActor := domain.Actor{UserID: donor.ID.String(), Role: domain.RoleDonor}

	open := f.create(t, donor, createRequest(40.7128, -74.0060))
	taken := f.create(t, donor, createRequest(40.7128, -74.0060))

	f.clock.Set(epoch.Add(3 * time.Hour))
	_, err := f.service.ClaimDonation(ctx, recipient.ID.String(), taken.ID)
	require.NoError(t, err)

	err = f.service.DeleteDonation(ctx, domain.Actor{UserID: recipient.ID.String(), Role: domain.RoleRecipient}, open.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = f.service.DeleteDonation(ctx, donorActor, taken.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	require.NoError(t, f.service.DeleteDonation(ctx, donorActor, open.ID))
	_, err = f.service.GetDonation(ctx, open.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListDonorAndClaimedDonations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	donor := f.user(t, entities.RoleDonor, 40.7128, -74.0060)
	otherDonor := f.user(t, entities.RoleDonor, 40.7128, -74.0060)
	recipient := f.user(t, entities.RoleRecipient, 40.7306, -73.9866)

	mine := f.create(t, donor, createRequest(40.7128, -74.0060))
	f.create(t, otherDonor, createRequest(40.7128, -74.0060))

	list, err := f.service.ListDonorDonations(ctx, donor.ID.String(), domain.ListDonationsFilter{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, mine.ID, list.Items[0].ID)

	f.clock.Set(epoch.Add(3 * time.Hour))
	_, err = f.service.ClaimDonation(ctx, recipient.ID.String(), mine.ID)
	require.NoError(t, err)

	claimed, err := f.service.ListClaimedDonations(ctx, recipient.ID.String(), domain.ListDonationsFilter{})
	require.NoError(t, err)
	require.Len(t, claimed.Items, 1)
	assert.Equal(t, mine.ID, claimed.Items[0].ID)
}

package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"FoodShare-Backend/domain"
	"FoodShare-Backend/internal/api/presenters"
	"FoodShare-Backend/internal/middleware"
	"FoodShare-Backend/internal/utils"
	"FoodShare-Backend/pkg/donation"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDonations implements only what the tests below call; anything else
// panics through the nil embedded interface.
type fakeDonations struct {
	donation.DonationService

	lastFilter domain.ListDonationsFilter
	lastActor  string
	created    *domain.CreateDonationRequest
	claimErr   error
}

func (f *fakeDonations) ListDonations(ctx context.Context, filter domain.ListDonationsFilter) (*domain.DonationList, error) {
	f.lastFilter = filter
	return &domain.DonationList{Items: []*domain.DonationResponse{{ID: "d-1", Status: "available"}}, TotalCount: 1, Page: 1}, nil
}

func (f *fakeDonations) CreateDonation(ctx context.Context, donorID string, req domain.CreateDonationRequest) (*domain.DonationResponse, error) {
	f.lastActor = donorID
	f.created = &req
	return &domain.DonationResponse{ID: "d-2", DonorID: donorID, Title: req.Title, Status: "available"}, nil
}

func (f *fakeDonations) ClaimDonation(ctx context.Context, recipientID string, id string) (*domain.DonationResponse, error) {
	f.lastActor = recipientID
	if f.claimErr != nil {
		return nil, f.claimErr
	}
	return &domain.DonationResponse{ID: id, Status: "claimed"}, nil
}

func newDonationApp(svc donation.DonationService, userID, role string) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: presenters.ErrorHandler})
	h := NewDonationHandler(svc, utils.NewValidator())
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalUserID, userID)
		c.Locals(middleware.LocalRole, role)
		return c.Next()
	})
	app.Get("/donations", h.ListDonations)
	app.Post("/donations", h.CreateDonation)
	app.Post("/donations/:id/claim", h.ClaimDonation)
	return app
}

func send(t *testing.T, app *fiber.App, req *http.Request) (int, presenters.Response) {
	t.Helper()
	res, err := app.Test(req)
	require.NoError(t, err)
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	var body presenters.Response
	require.NoError(t, json.Unmarshal(raw, &body))
	return res.StatusCode, body
}

const validDonation = `{
	"title": "Day-old bread",
	"description": "Twenty loaves of sourdough",
	"food_type": "baked",
	"quantity": {"amount": 20, "unit": "items"},
	"preparation_date": "2026-03-01T08:00:00Z",
	"expiry_date": "2026-03-02T12:00:00Z",
	"pickup_window": {"start_time": "2026-03-01T14:00:00Z", "end_time": "2026-03-01T18:00:00Z"},
	"location": {
		"address": {"street": "1 Main St", "city": "New York", "state": "NY", "zip_code": "10001"},
		"coordinates": [-74.006, 40.7128]
	}
}`

func TestListDonations_ParsesQuery(t *testing.T) {
	svc := &fakeDonations{}
	app := newDonationApp(svc, "", "")

	status, body := send(t, app, httptest.NewRequest(http.MethodGet,
		"/donations?status=available&latitude=40.7&longitude=-74&max_distance=5&sort_by=distance&page=2", nil))
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, body.Status)
	assert.Equal(t, "available", svc.lastFilter.Status)
	require.NotNil(t, svc.lastFilter.Latitude)
	assert.Equal(t, 40.7, *svc.lastFilter.Latitude)
	assert.Equal(t, 5.0, svc.lastFilter.RadiusMiles)
	assert.Equal(t, 2, svc.lastFilter.Page)

	status, body = send(t, app, httptest.NewRequest(http.MethodGet, "/donations?status=eaten", nil))
	assert.Equal(t, fiber.StatusBadRequest, status)
	require.NotNil(t, body.Error)
	assert.Equal(t, domain.KindValidation, body.Error.Kind)
}

func TestCreateDonation_Handler(t *testing.T) {
	svc := &fakeDonations{}
	app := newDonationApp(svc, "donor-1", domain.RoleDonor)

	req := httptest.NewRequest(http.MethodPost, "/donations", strings.NewReader(validDonation))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	status, body := send(t, app, req)
	assert.Equal(t, fiber.StatusCreated, status)
	assert.True(t, body.Status)
	assert.Equal(t, "donor-1", svc.lastActor)
	require.NotNil(t, svc.created)
	assert.Equal(t, 20.0, svc.created.Quantity.Amount)

	req = httptest.NewRequest(http.MethodPost, "/donations", strings.NewReader(`{"title": ""}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	status, body = send(t, app, req)
	assert.Equal(t, fiber.StatusBadRequest, status)
	require.NotNil(t, body.Error)
	assert.Equal(t, domain.KindValidation, body.Error.Kind)
	assert.NotEmpty(t, body.Error.Fields)
}

func TestClaimDonation_Handler(t *testing.T) {
	svc := &fakeDonations{}
	app := newDonationApp(svc, "recipient-1", domain.RoleRecipient)

	status, body := send(t, app, httptest.NewRequest(http.MethodPost, "/donations/d-1/claim", nil))
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, body.Status)
	assert.Equal(t, "recipient-1", svc.lastActor)

	svc.claimErr = domain.NewAlreadyClaimed("d-1")
	status, body = send(t, app, httptest.NewRequest(http.MethodPost, "/donations/d-1/claim", nil))
	assert.Equal(t, fiber.StatusConflict, status)
	assert.False(t, body.Status)
	assert.Equal(t, domain.KindAlreadyClaimed, body.Error.Kind)

	svc.claimErr = domain.NewNotFound("donation")
	status, _ = send(t, app, httptest.NewRequest(http.MethodPost, "/donations/d-1/claim", nil))
	assert.Equal(t, fiber.StatusNotFound, status)
}

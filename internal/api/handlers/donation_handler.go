package handlers

import (
	"encoding/json"
	"strings"

	"FoodShare-Backend/domain"
	"FoodShare-Backend/internal/api/presenters"
	"FoodShare-Backend/internal/middleware"
	"FoodShare-Backend/internal/utils"
	"FoodShare-Backend/pkg/donation"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	DonationHandler interface {
		ListDonations(c *fiber.Ctx) error
		GetDonation(c *fiber.Ctx) error
		GetDonationHistory(c *fiber.Ctx) error
		CreateDonation(c *fiber.Ctx) error
		UpdateDonation(c *fiber.Ctx) error
		DeleteDonation(c *fiber.Ctx) error
		ClaimDonation(c *fiber.Ctx) error
		PickupDonation(c *fiber.Ctx) error
		CompleteDonation(c *fiber.Ctx) error
		CancelDonation(c *fiber.Ctx) error
	}

	donationHandler struct {
		donationService donation.DonationService
		validator       *validator.Validate
	}
)

func NewDonationHandler(donationService donation.DonationService, validator *validator.Validate) DonationHandler {
	return &donationHandler{
		donationService: donationService,
		validator:       validator,
	}
}

// parseListFilter reads and validates the listing query shared by every
// donation listing endpoint.
func parseListFilter(c *fiber.Ctx, v *validator.Validate) (domain.ListDonationsFilter, error) {
	var filter domain.ListDonationsFilter
	if err := c.QueryParser(&filter); err != nil {
		return filter, domain.NewValidationError(domain.FieldError{Field: "query", Message: err.Error()})
	}
	if err := utils.ValidateStruct(v, filter); err != nil {
		return filter, err
	}
	return filter, nil
}

func (h *donationHandler) ListDonations(c *fiber.Ctx) error {
	filter, err := parseListFilter(c, h.validator)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetDonations, err)
	}

	list, err := h.donationService.ListDonations(c.UserContext(), filter)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetDonations, err)
	}

	return presenters.SuccessResponse(c, list, fiber.StatusOK, domain.MessageSuccessGetDonations)
}

func (h *donationHandler) GetDonation(c *fiber.Ctx) error {
	res, err := h.donationService.GetDonation(c.UserContext(), c.Params("id"))
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetDonations, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetDonations)
}

func (h *donationHandler) GetDonationHistory(c *fiber.Ctx) error {
	history, err := h.donationService.DonationHistory(c.UserContext(), c.Params("id"))
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetDonations, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{"events": history}, fiber.StatusOK, domain.MessageSuccessGetHistory)
}

// CreateDonation accepts a JSON body, or a multipart form with the JSON
// document in "data" and an optional "food_image" file.
func (h *donationHandler) CreateDonation(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)

	req := new(domain.CreateDonationRequest)
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		if err := json.Unmarshal([]byte(c.FormValue("data")), req); err != nil {
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
		}
		req.FoodImage, _ = c.FormFile("food_image")
	} else if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := utils.ValidateStruct(h.validator, req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateDonation, err)
	}

	res, err := h.donationService.CreateDonation(c.UserContext(), actor.UserID, *req)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedCreateDonation, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessCreateDonation)
}

func (h *donationHandler) UpdateDonation(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)

	req := new(domain.UpdateDonationRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := utils.ValidateStruct(h.validator, req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateDonation, err)
	}

	res, err := h.donationService.UpdateDonation(c.UserContext(), actor.UserID, c.Params("id"), *req)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedUpdateDonation, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateDonation)
}

func (h *donationHandler) DeleteDonation(c *fiber.Ctx) error {
	if err := h.donationService.DeleteDonation(c.UserContext(), middleware.CurrentActor(c), c.Params("id")); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedDeleteDonation, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteDonation)
}

func (h *donationHandler) ClaimDonation(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)

	res, err := h.donationService.ClaimDonation(c.UserContext(), actor.UserID, c.Params("id"))
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedClaimDonation, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessClaimDonation)
}

func (h *donationHandler) PickupDonation(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)

	res, err := h.donationService.MarkPickedUp(c.UserContext(), actor.UserID, c.Params("id"))
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedPickupDonation, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessPickupDonation)
}

func (h *donationHandler) CompleteDonation(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)

	res, err := h.donationService.MarkCompleted(c.UserContext(), actor.UserID, c.Params("id"))
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedCompleteDonation, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessCompleteDonation)
}

func (h *donationHandler) CancelDonation(c *fiber.Ctx) error {
	if err := h.donationService.CancelDonation(c.UserContext(), middleware.CurrentActor(c), c.Params("id")); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedCancelDonation, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessCancelDonation)
}

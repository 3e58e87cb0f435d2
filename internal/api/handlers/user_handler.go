package handlers

import (
	"FoodShare-Backend/domain"
	"FoodShare-Backend/internal/api/presenters"
	"FoodShare-Backend/internal/middleware"
	"FoodShare-Backend/internal/utils"
	"FoodShare-Backend/pkg/donation"
	"FoodShare-Backend/pkg/user"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	UserHandler interface {
		Me(c *fiber.Ctx) error
		UpdateLocation(c *fiber.Ctx) error
		UpdatePreferences(c *fiber.Ctx) error
		MyDonations(c *fiber.Ctx) error
		ClaimedDonations(c *fiber.Ctx) error
		NearbyRecipients(c *fiber.Ctx) error
	}

	userHandler struct {
		userService     user.UserService
		donationService donation.DonationService
		validator       *validator.Validate
	}
)

func NewUserHandler(userService user.UserService, donationService donation.DonationService, validator *validator.Validate) UserHandler {
	return &userHandler{
		userService:     userService,
		donationService: donationService,
		validator:       validator,
	}
}

func (h *userHandler) Me(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)

	res, err := h.userService.GetProfile(c.UserContext(), actor.UserID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetProfile, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetProfile)
}

func (h *userHandler) UpdateLocation(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)

	req := new(domain.UpdateLocationRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := utils.ValidateStruct(h.validator, req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateLocation, err)
	}

	res, err := h.userService.UpdateLocation(c.UserContext(), actor.UserID, *req)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedUpdateLocation, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateLocation)
}

func (h *userHandler) UpdatePreferences(c *fiber.Ctx) error {
	actor := middleware.CurrentActor(c)

	req := new(domain.UpdatePreferencesRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := utils.ValidateStruct(h.validator, req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdatePreferences, err)
	}

	res, err := h.userService.UpdatePreferences(c.UserContext(), actor.UserID, *req)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedUpdatePreferences, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdatePreferences)
}

func (h *userHandler) MyDonations(c *fiber.Ctx) error {
	filter, err := parseListFilter(c, h.validator)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetDonations, err)
	}

	list, err := h.donationService.ListDonorDonations(c.UserContext(), middleware.CurrentActor(c).UserID, filter)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetDonations, err)
	}

	return presenters.SuccessResponse(c, list, fiber.StatusOK, domain.MessageSuccessGetDonations)
}

func (h *userHandler) ClaimedDonations(c *fiber.Ctx) error {
	filter, err := parseListFilter(c, h.validator)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetDonations, err)
	}

	list, err := h.donationService.ListClaimedDonations(c.UserContext(), middleware.CurrentActor(c).UserID, filter)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetDonations, err)
	}

	return presenters.SuccessResponse(c, list, fiber.StatusOK, domain.MessageSuccessGetDonations)
}

func (h *userHandler) NearbyRecipients(c *fiber.Ctx) error {
	var req domain.NearbyRecipientsRequest
	if err := c.QueryParser(&req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedNearbyRecipients, err)
	}
	if err := utils.ValidateStruct(h.validator, req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedNearbyRecipients, err)
	}

	recipients, err := h.userService.NearbyRecipients(c.UserContext(), middleware.CurrentActor(c).UserID, req)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedNearbyRecipients, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"recipients": recipients,
		"count":      len(recipients),
	}, fiber.StatusOK, domain.MessageSuccessNearbyRecipients)
}

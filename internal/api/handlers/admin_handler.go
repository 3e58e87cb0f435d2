package handlers

import (
	"context"

	"FoodShare-Backend/domain"
	"FoodShare-Backend/internal/api/presenters"
	"FoodShare-Backend/internal/middleware"
	"FoodShare-Backend/internal/utils"
	"FoodShare-Backend/pkg/donation"
	"FoodShare-Backend/pkg/user"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// LifecycleRunner runs the scheduled lifecycle jobs on demand.
type LifecycleRunner interface {
	RunOnce(ctx context.Context) (domain.SweepResult, error)
	SendPickupReminders(ctx context.Context) (domain.ReminderResult, error)
}

type (
	AdminHandler interface {
		ListUsers(c *fiber.Ctx) error
		UpdateUserStatus(c *fiber.Ctx) error
		ListDonations(c *fiber.Ctx) error
		DeleteDonation(c *fiber.Ctx) error
		CancelDonation(c *fiber.Ctx) error
		SendPickupReminders(c *fiber.Ctx) error
		RunSweep(c *fiber.Ctx) error
	}

	adminHandler struct {
		userService     user.UserService
		donationService donation.DonationService
		lifecycle       LifecycleRunner
		validator       *validator.Validate
	}
)

func NewAdminHandler(userService user.UserService, donationService donation.DonationService, lifecycle LifecycleRunner, validator *validator.Validate) AdminHandler {
	return &adminHandler{
		userService:     userService,
		donationService: donationService,
		lifecycle:       lifecycle,
		validator:       validator,
	}
}

func (h *adminHandler) ListUsers(c *fiber.Ctx) error {
	var filter domain.ListUsersFilter
	if err := c.QueryParser(&filter); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetUsers, err)
	}
	if err := utils.ValidateStruct(h.validator, filter); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetUsers, err)
	}

	list, err := h.userService.ListUsers(c.UserContext(), filter)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetUsers, err)
	}

	return presenters.SuccessResponse(c, list, fiber.StatusOK, domain.MessageSuccessGetUsers)
}

func (h *adminHandler) UpdateUserStatus(c *fiber.Ctx) error {
	req := new(domain.UpdateUserStatusRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := utils.ValidateStruct(h.validator, req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateUserStatus, err)
	}

	res, err := h.userService.SetActive(c.UserContext(), c.Params("id"), *req.IsActive)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedUpdateUserStatus, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateUserStatus)
}

func (h *adminHandler) ListDonations(c *fiber.Ctx) error {
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

func (h *adminHandler) DeleteDonation(c *fiber.Ctx) error {
	if err := h.donationService.DeleteDonation(c.UserContext(), middleware.CurrentActor(c), c.Params("id")); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedDeleteDonation, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteDonation)
}

func (h *adminHandler) CancelDonation(c *fiber.Ctx) error {
	if err := h.donationService.CancelDonation(c.UserContext(), middleware.CurrentActor(c), c.Params("id")); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedCancelDonation, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessCancelDonation)
}

func (h *adminHandler) SendPickupReminders(c *fiber.Ctx) error {
	res, err := h.lifecycle.SendPickupReminders(c.UserContext())
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedPickupReminders, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessPickupReminders)
}

func (h *adminHandler) RunSweep(c *fiber.Ctx) error {
	res, err := h.lifecycle.RunOnce(c.UserContext())
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedSweep, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessSweep)
}

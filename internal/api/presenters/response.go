package presenters

import (
	"errors"

	"FoodShare-Backend/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

type (
	Response struct {
		Status  bool       `json:"status"`
		Message string     `json:"message"`
		Data    any        `json:"data,omitempty"`
		Error   *ErrorBody `json:"error,omitempty"`
	}

	ErrorBody struct {
		Kind    domain.ErrorKind    `json:"kind"`
		Message string              `json:"message"`
		Fields  []domain.FieldError `json:"fields,omitempty"`
	}
)

func SuccessResponse(c *fiber.Ctx, data any, code int, message string) error {
	return c.Status(code).JSON(Response{
		Status:  true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse renders err. Domain errors carry their own status; code is the
// fallback for anything else.
func ErrorResponse(c *fiber.Ctx, code int, message string, err error) error {
	body := &ErrorBody{Message: message}

	var derr *domain.Error
	if errors.As(err, &derr) {
		code = StatusFor(derr.Kind)
		body.Kind = derr.Kind
		body.Message = derr.Message
		body.Fields = derr.Fields
	} else if err != nil {
		if code >= fiber.StatusInternalServerError {
			log.Errorw("request failed", "path", c.Path(), "error", err)
		} else {
			body.Message = err.Error()
		}
	}

	return c.Status(code).JSON(Response{
		Status:  false,
		Message: message,
		Error:   body,
	})
}

func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return fiber.StatusBadRequest
	case domain.KindUnauthorized:
		return fiber.StatusUnauthorized
	case domain.KindForbidden:
		return fiber.StatusForbidden
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindInvalidTransition, domain.KindAlreadyClaimed, domain.KindImmutableAfterClaim:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler catches errors returned by handlers that did not render a
// response themselves.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(Response{
			Status:  false,
			Message: fe.Message,
		})
	}
	return ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedProcessRequest, err)
}

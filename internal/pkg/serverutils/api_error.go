package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ApiError is the one error type controllers and services return upward.
// The error middleware maps it onto the HTTP response; anything else
// becomes a 500 with a generic body.
type ApiError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ApiError) Error() string {
	return e.Message
}

func NewApiError(status int, code, message string) *ApiError {
	return &ApiError{Status: status, Code: code, Message: message}
}

func Unauthorized(message string) *ApiError {
	return NewApiError(fiber.StatusUnauthorized, "UNAUTHORIZED", message)
}

func NotFound(message string) *ApiError {
	return NewApiError(fiber.StatusNotFound, "NOT_FOUND", message)
}

func BadRequest(message string) *ApiError {
	return NewApiError(fiber.StatusBadRequest, "VALIDATION_ERROR", message)
}

func Conflict(message string) *ApiError {
	return NewApiError(fiber.StatusConflict, "CONFLICT", message)
}

// ExternalServiceError covers failures of the catalog or the generative
// collaborator. Details stay in the logs, not the response.
func ExternalServiceError(message string) *ApiError {
	return NewApiError(fiber.StatusBadGateway, "EXTERNAL_SERVICE_ERROR", message)
}

// ErrorHandlerMiddleware converts returned errors into the JSON error
// envelope. Registered once on the app, after CORS.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var apiErr *ApiError
		if errors.As(err, &apiErr) {
			return ctx.Status(apiErr.Status).JSON(fiber.Map{
				"error": apiErr,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(fiber.Map{
				"error": fiber.Map{"code": "ERROR", "message": fiberErr.Message},
			})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fiber.Map{"code": "INTERNAL", "message": "internal server error"},
		})
	}
}

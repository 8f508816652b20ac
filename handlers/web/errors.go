package web

import (
	"errors"

	"zenbox/handlers/api"
	"zenbox/utils"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the app-wide Fiber error handler. AppErrors show their
// message, never the wrapped cause.
func (p *Pages) ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := T(c, "error_500")

		var fiberErr *fiber.Error
		if appErr, ok := utils.AsAppError(err); ok {
			code = appErr.Code
			message = appErr.Message
			if code >= fiber.StatusInternalServerError {
				utils.Log.Error("Application error on %s %s: %v", c.Method(), c.Path(), appErr)
			} else {
				utils.Log.Debug("Request rejected on %s %s: %v", c.Method(), c.Path(), appErr)
			}
		} else if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
			if code == fiber.StatusNotFound {
				message = T(c, "error_404")
			}
		} else {
			utils.Log.Error("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
		}

		return p.renderError(c, code, message)
	}
}

// NotFound answers routes nobody registered
func (p *Pages) NotFound(c *fiber.Ctx) error {
	return p.renderError(c, fiber.StatusNotFound, T(c, "error_404"))
}

func (p *Pages) renderError(c *fiber.Ctx, code int, message string) error {
	if api.IsAPIRequest(c) {
		return c.Status(code).JSON(fiber.Map{
			"error": message,
		})
	}

	c.Status(code)
	if err := p.Render(c, "error", "page_error", fiber.Map{
		"Code":  code,
		"Error": message,
	}); err != nil {
		utils.Log.Error("Failed to render error page: %v", err)
		return c.Status(code).SendString(message)
	}
	return nil
}

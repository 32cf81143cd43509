package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Fiado-api/internal/application/dto"
	"github.com/jhoicas/Fiado-api/internal/domain"
)

// Códigos de error expuestos en dto.ErrorResponse.
const (
	CodeValidation        = "VALIDATION"
	CodeNotFound          = "NOT_FOUND"
	CodeInsufficientDebt  = "INSUFFICIENT_DEBT"
	CodeDuplicate         = "DUPLICATE"
	CodeInconsistentState = "INCONSISTENT_STATE"
	CodeInternal          = "INTERNAL"
)

// statusFor traduce un error de dominio a (status HTTP, código).
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest, CodeValidation
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, CodeNotFound
	case errors.Is(err, domain.ErrInsufficientDebt):
		return fiber.StatusConflict, CodeInsufficientDebt
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, CodeDuplicate
	case errors.Is(err, domain.ErrInconsistentState):
		return fiber.StatusConflict, CodeInconsistentState
	default:
		return fiber.StatusInternalServerError, CodeInternal
	}
}

// internalMessage reemplaza el texto de errores 500 (driver, SQL) en la respuesta.
const internalMessage = "error interno del servidor"

// localsErrorKey guarda en c.Locals el error original de un 500 para RequestLogger.
const localsErrorKey = "internal_error"

// writeError responde con el cuerpo {code, message} correspondiente a err.
// Los errores internos no exponen su detalle: se devuelve un mensaje genérico y el
// error queda en c.Locals para el log de la petición.
func writeError(c *fiber.Ctx, err error) error {
	status, code := statusFor(err)
	msg := err.Error()
	if code == CodeInternal {
		c.Locals(localsErrorKey, err)
		msg = internalMessage
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

// ErrorHandler para fiber.Config: errores de fiber (ruta inexistente, cuerpo demasiado grande)
// conservan su status; el resto pasa por el mapeo de dominio.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := CodeInternal
		switch fe.Code {
		case fiber.StatusNotFound:
			code = CodeNotFound
		case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusMethodNotAllowed:
			code = CodeValidation
		}
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: code, Message: fe.Message})
	}
	return writeError(c, err)
}

package respond

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Envelope is the uniform response body: {success, message, data}.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// OK writes a 200 envelope.
func OK(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// Created writes a 201 envelope.
func Created(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// HTTPErrorHandler maps application errors onto the envelope:
// ValidationError and ConflictError -> 422, NotFoundError -> 404,
// echo.HTTPError -> its own code, anything else -> 500 with a generic message.
func HTTPErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			ve *ValidationError
			ce *ConflictError
			ne *NotFoundError
			he *echo.HTTPError
		)

		var status int
		env := Envelope{Success: false}

		switch {
		case errors.As(err, &ve):
			status = http.StatusUnprocessableEntity
			env.Message = ve.Msg
			if len(ve.Fields) > 0 {
				env.Errors = ve.Fields
			}
		case errors.As(err, &ce):
			status = http.StatusUnprocessableEntity
			env.Message = ce.Msg
			if ce.Entity != nil {
				env.Data = ce.Entity
			}
		case errors.As(err, &ne):
			status = http.StatusNotFound
			env.Message = ne.Error()
		case errors.As(err, &he):
			status = he.Code
			if msg, ok := he.Message.(string); ok {
				env.Message = msg
			} else {
				env.Message = http.StatusText(he.Code)
			}
		default:
			status = http.StatusInternalServerError
			env.Message = "internal server error"
			logger.Error().Err(err).
				Str("path", c.Request().URL.Path).
				Msg("unhandled error")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, env)
	}
}

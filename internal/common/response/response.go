package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/c14220110/poliklinik-billing/internal/common/apperr"
)

// Envelope adalah bentuk standar seluruh response JSON:
// { "status": HTTP_CODE, "message": "Feedback", "data": ... }
type Envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Code    apperr.Code       `json:"code,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	Data    interface{}       `json:"data"`
}

func JSON(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Envelope{Status: status, Message: message, Data: data})
}

func OK(c echo.Context, message string, data interface{}) error {
	return JSON(c, http.StatusOK, message, data)
}

func Created(c echo.Context, message string, data interface{}) error {
	return JSON(c, http.StatusCreated, message, data)
}

// ErrorHandler menerjemahkan error dari controller menjadi Envelope.
// *apperr.Error dipetakan lewat tabel kode, *echo.HTTPError dipertahankan,
// selain itu dianggap internal dan detailnya hanya dicatat di log.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		env := Envelope{}
		var ae *apperr.Error
		var he *echo.HTTPError
		switch {
		case errors.As(err, &ae):
			env.Status = apperr.HTTPStatus(ae)
			env.Code = ae.Code
			env.Message = ae.Message
			env.Errors = ae.Fields
			if ae.Code == apperr.CodeInternal {
				logger.Error().Err(err).Str("path", c.Path()).Msg("internal error")
			}
		case errors.As(err, &he):
			env.Status = he.Code
			env.Message = fmt.Sprint(he.Message)
			if he.Code >= http.StatusInternalServerError {
				env.Code = apperr.CodeInternal
			}
		default:
			logger.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
			env.Status = http.StatusInternalServerError
			env.Code = apperr.CodeInternal
			env.Message = "internal server error"
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(env.Status)
		} else {
			err = c.JSON(env.Status, env)
		}
		if err != nil {
			logger.Error().Err(err).Msg("write error response")
		}
	}
}

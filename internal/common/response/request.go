package response

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/poliklinik-billing/internal/common/apperr"
)

// Bind membaca body JSON ke v lalu menjalankan echo.Validator bila terpasang.
// Payload yang tidak bisa di-decode menjadi Validation error.
func Bind(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return apperr.Validation("Invalid request payload")
	}
	if c.Echo().Validator != nil {
		return c.Validate(v)
	}
	return nil
}

// PathID mengambil parameter path bertipe id positif.
func PathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validationf("Invalid %s", name).WithField(name, "must be a positive integer")
	}
	return id, nil
}

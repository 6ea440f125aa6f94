package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/poliklinik-billing/internal/administrasi/models"
	"github.com/c14220110/poliklinik-billing/internal/administrasi/services"
	"github.com/c14220110/poliklinik-billing/internal/common/response"
)

type AdministrasiController struct {
	Service *services.AdministrasiService
}

func NewAdministrasiController(service *services.AdministrasiService) *AdministrasiController {
	return &AdministrasiController{Service: service}
}

// Login menangani permintaan login karyawan.
func (ac *AdministrasiController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := response.Bind(c, &req); err != nil {
		return err
	}

	result, err := ac.Service.Login(c.Request().Context(), req)
	if errors.Is(err, services.ErrInvalidCredentials) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password")
	}
	if err != nil {
		return err
	}
	return response.OK(c, "Login successful", result)
}

package controllers

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/poliklinik-billing/internal/administrasi/services"
	"github.com/c14220110/poliklinik-billing/internal/common/response"
)

type PoliklinikController struct {
	Service *services.PoliklinikService
}

func NewPoliklinikController(service *services.PoliklinikService) *PoliklinikController {
	return &PoliklinikController{Service: service}
}

// GetPoliklinikList mengembalikan daftar poliklinik untuk form pendaftaran.
func (pc *PoliklinikController) GetPoliklinikList(c echo.Context) error {
	list, err := pc.Service.GetPoliklinikList(c.Request().Context())
	if err != nil {
		return err
	}
	return response.OK(c, "Poliklinik list retrieved successfully", list)
}

package controllers

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/poliklinik-billing/internal/common/response"
	"github.com/c14220110/poliklinik-billing/internal/dokter/models"
	"github.com/c14220110/poliklinik-billing/internal/dokter/services"
)

type ResepController struct {
	Service *services.ResepService
}

func NewResepController(service *services.ResepService) *ResepController {
	return &ResepController{Service: service}
}

// CreateResep: POST /api/resep
func (rc *ResepController) CreateResep(c echo.Context) error {
	var req models.ResepRequest
	if err := response.Bind(c, &req); err != nil {
		return err
	}

	result, err := rc.Service.DispenseResep(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return response.Created(c, "Resep dispensed successfully", result)
}

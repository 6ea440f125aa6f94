package controllers

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/poliklinik-billing/internal/common/response"
	"github.com/c14220110/poliklinik-billing/internal/dokter/models"
	"github.com/c14220110/poliklinik-billing/internal/dokter/services"
)

type DokterController struct {
	Service *services.DokterService
}

func NewDokterController(service *services.DokterService) *DokterController {
	return &DokterController{Service: service}
}

// AddTindakan: POST /api/kunjungan/:id/tindakan
func (dc *DokterController) AddTindakan(c echo.Context) error {
	visitID, err := response.PathID(c, "id")
	if err != nil {
		return err
	}
	var req models.TindakanRequest
	if err := response.Bind(c, &req); err != nil {
		return err
	}

	result, err := dc.Service.AddTindakan(c.Request().Context(), visitID, req)
	if err != nil {
		return err
	}
	return response.Created(c, "Tindakan recorded successfully", result)
}

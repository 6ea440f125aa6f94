package controllers

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/poliklinik-billing/internal/common/apperr"
	"github.com/c14220110/poliklinik-billing/internal/common/response"
	"github.com/c14220110/poliklinik-billing/internal/manajemen/services"
)

const dateLayout = "2006-01-02"

type DashboardController struct {
	Service *services.DashboardService
	now     func() time.Time
}

func NewDashboardController(svc *services.DashboardService) *DashboardController {
	return &DashboardController{Service: svc, now: time.Now}
}

// GetDashboard handles GET /manajemen/dashboard?rentang_awal=&rentang_akhir=
func (dc *DashboardController) GetDashboard(c echo.Context) error {
	now := dc.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	// parse date or default to today at 00:00
	parse := func(name string) (time.Time, error) {
		s := c.QueryParam(name)
		if s == "" {
			return today, nil
		}
		t, err := time.ParseInLocation(dateLayout, s, now.Location())
		if err != nil {
			return time.Time{}, apperr.Validation("validation failed").WithField(name, "must be a date in YYYY-MM-DD format")
		}
		return t, nil
	}

	start, err := parse("rentang_awal")
	if err != nil {
		return err
	}
	end, err := parse("rentang_akhir")
	if err != nil {
		return err
	}

	dash, err := dc.Service.GetDashboardData(c.Request().Context(), start, end)
	if err != nil {
		return err
	}
	return response.OK(c, "Dashboard retrieved successfully", dash)
}

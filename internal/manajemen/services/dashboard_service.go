package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/c14220110/poliklinik-billing/internal/common/apperr"
	"github.com/c14220110/poliklinik-billing/internal/manajemen/models"
	"github.com/c14220110/poliklinik-billing/internal/repository"
)

// maxRentang membatasi query dashboard agar tidak memindai seluruh tabel.
const maxRentang = 366 * 24 * time.Hour

type DashboardService struct {
	store  repository.Store
	logger zerolog.Logger
}

func NewDashboardService(store repository.Store, logger zerolog.Logger) *DashboardService {
	return &DashboardService{store: store, logger: logger.With().Str("component", "dashboard").Logger()}
}

// GetDashboardData merangkum pendapatan untuk rentang tanggal start..end
// (inklusif, keduanya tengah malam). Tagihan dihitung menurut tanggal dibuat,
// pembayaran menurut tanggal diterima.
func (svc *DashboardService) GetDashboardData(ctx context.Context, start, end time.Time) (*models.DashboardData, error) {
	if end.Before(start) {
		return nil, apperr.Validation("validation failed").WithField("rentang_akhir", "must not be before rentang_awal")
	}
	// extend end to end of day
	to := end.AddDate(0, 0, 1)
	if to.Sub(start) > maxRentang {
		return nil, apperr.Validation("validation failed").WithField("rentang_akhir", "range must not exceed 366 days")
	}

	byStatus, err := svc.store.BillingTotalsByStatus(ctx, start, to)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	byMethod, err := svc.store.PaymentTotalsByMethod(ctx, start, to)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	d := &models.DashboardData{
		RentangAwal:        start,
		RentangAkhir:       end,
		PendapatanTotal:    decimal.Zero,
		PendapatanDiterima: decimal.Zero,
		Piutang:            decimal.Zero,
		PendapatanRataRata: decimal.Zero,
		PerStatus:          byStatus,
		PerMetode:          byMethod,
	}
	for _, row := range byStatus {
		d.JumlahTagihan += row.Count
		d.PendapatanTotal = d.PendapatanTotal.Add(row.Total)
		if sisa := row.Total.Sub(row.Dibayar); sisa.IsPositive() {
			d.Piutang = d.Piutang.Add(sisa)
		}
	}
	for _, row := range byMethod {
		d.PendapatanDiterima = d.PendapatanDiterima.Add(row.Jumlah)
	}
	if d.JumlahTagihan > 0 {
		d.PendapatanRataRata = d.PendapatanTotal.Div(decimal.NewFromInt(int64(d.JumlahTagihan))).Round(2)
	}

	svc.logger.Debug().
		Time("start", start).
		Time("end", end).
		Int("tagihan", d.JumlahTagihan).
		Msg("dashboard computed")
	return d, nil
}

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	adminModels "github.com/c14220110/poliklinik-billing/internal/administrasi/models"
	adminServices "github.com/c14220110/poliklinik-billing/internal/administrasi/services"
	"github.com/c14220110/poliklinik-billing/internal/common/apperr"
	"github.com/c14220110/poliklinik-billing/internal/common/validation"
	"github.com/c14220110/poliklinik-billing/internal/dokter/models"
	"github.com/c14220110/poliklinik-billing/internal/repository"
)

// ResepService mencatat penyerahan obat oleh farmasi: stok dikurangi dan
// tagihan obat ditambahkan ke billing kunjungan.
type ResepService struct {
	store    repository.Store
	billing  BillingRecalculator
	notifier adminServices.Notifier
	logger   zerolog.Logger
}

func NewResepService(store repository.Store, billing BillingRecalculator, notifier adminServices.Notifier, logger zerolog.Logger) *ResepService {
	return &ResepService{
		store:    store,
		billing:  billing,
		notifier: notifier,
		logger:   logger.With().Str("service", "resep").Logger(),
	}
}

// DispenseResep:
//   - kunjungan harus ada dan belum dikunci
//   - baris Obat dikunci, stok harus cukup lalu dikurangi
//   - setiap obat menjadi BillingItem bertipe drug dengan harga satuan obat
//
// Semua langkah berjalan dalam satu transaksi.
func (s *ResepService) DispenseResep(ctx context.Context, req models.ResepRequest) (*models.ChargeResult, error) {
	if err := validation.Struct(&req).Err(); err != nil {
		return nil, err
	}

	var (
		result  models.ChargeResult
		billing *adminModels.Billing
	)
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		// Urutan kunci: Kunjungan, Billing, Obat.
		k, err := openVisitForCharge(ctx, tx, req.VisitID)
		if err != nil {
			return err
		}
		b, err := s.billing.EnsureBillingInTx(ctx, tx, req.VisitID)
		if err != nil {
			return err
		}

		for i, it := range req.Items {
			o, err := tx.GetObat(ctx, it.IDObat, true)
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.NotFound(fmt.Sprintf("Drug %d not found", it.IDObat))
			}
			if err != nil {
				return apperr.Internal(err)
			}
			if o.Stock < it.Jumlah {
				return apperr.Conflict(fmt.Sprintf("Insufficient stock for %s: %d available", o.Nama, o.Stock))
			}

			line, err := chargeLine(i, b.ID, adminModels.ItemTypeDrug, o.IDObat, o.Nama, it.Jumlah, o.HargaSatuan, it.Diskon)
			if err != nil {
				return err
			}
			if err := tx.DecrementStock(ctx, o.IDObat, it.Jumlah); err != nil {
				if errors.Is(err, repository.ErrInsufficientStock) {
					return apperr.Conflict(fmt.Sprintf("Insufficient stock for %s", o.Nama))
				}
				return apperr.Internal(err)
			}
			if err := tx.AddBillingItem(ctx, line); err != nil {
				return apperr.Internal(err)
			}
			result.Items = append(result.Items, *line)
		}

		billing, err = s.billing.RecalculateInTx(ctx, tx, k, adminServices.Adjustments{})
		if err != nil {
			return err
		}
		result.BillingID = billing.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("visit_id", req.VisitID).
		Int64("billing_id", result.BillingID).
		Int("items", len(result.Items)).
		Str("subtotal", billing.Subtotal.StringFixed(2)).
		Msg("resep dispensed")
	if s.notifier != nil {
		if err := s.notifier.Publish(adminServices.EventBillingUpdate, billing); err != nil {
			s.logger.Warn().Err(err).Msg("publish realtime event failed")
		}
	}
	return &result, nil
}

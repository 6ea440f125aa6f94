package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	adminModels "github.com/c14220110/poliklinik-billing/internal/administrasi/models"
	adminServices "github.com/c14220110/poliklinik-billing/internal/administrasi/services"
	"github.com/c14220110/poliklinik-billing/internal/common/apperr"
	"github.com/c14220110/poliklinik-billing/internal/common/validation"
	"github.com/c14220110/poliklinik-billing/internal/dokter/models"
	"github.com/c14220110/poliklinik-billing/internal/repository"
)

// BillingRecalculator dipenuhi oleh *adminServices.BillingService.
type BillingRecalculator interface {
	EnsureBillingInTx(ctx context.Context, tx repository.Store, visitID int64) (*adminModels.Billing, error)
	RecalculateInTx(ctx context.Context, tx repository.Store, k *adminModels.Kunjungan, adj adminServices.Adjustments) (*adminModels.Billing, error)
}

// DokterService mencatat tindakan medis sebagai tagihan kunjungan.
type DokterService struct {
	store    repository.Store
	billing  BillingRecalculator
	notifier adminServices.Notifier
	logger   zerolog.Logger
}

func NewDokterService(store repository.Store, billing BillingRecalculator, notifier adminServices.Notifier, logger zerolog.Logger) *DokterService {
	return &DokterService{
		store:    store,
		billing:  billing,
		notifier: notifier,
		logger:   logger.With().Str("service", "tindakan").Logger(),
	}
}

// openVisitForCharge mengunci baris kunjungan. Tagihan baru hanya boleh
// ditambahkan sebelum rekam medis dikunci.
func openVisitForCharge(ctx context.Context, tx repository.Store, visitID int64) (*adminModels.Kunjungan, error) {
	k, err := tx.GetKunjungan(ctx, visitID, true)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("Visit not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if k.Locked() {
		return nil, apperr.Conflict("Medical record is already locked; no new charges allowed")
	}
	return k, nil
}


// chargeLine membentuk BillingItem; diskon tidak boleh melebihi quantity x harga.
func chargeLine(i int, billingID int64, itemType adminModels.ItemType, refID int64, desc string, qty int, price decimal.Decimal, discount *decimal.Decimal) (*adminModels.BillingItem, error) {
	disc := decimal.Zero
	if discount != nil {
		disc = *discount
	}
	gross := price.Mul(decimal.NewFromInt(int64(qty)))
	if disc.GreaterThan(gross) {
		return nil, apperr.Validation("validation failed").
			WithField(fmt.Sprintf("items[%d].discount", i), "must not exceed quantity x unit price")
	}
	return &adminModels.BillingItem{
		BillingID:   billingID,
		ItemType:    itemType,
		ReferenceID: refID,
		Description: desc,
		Quantity:    qty,
		UnitPrice:   price,
		Discount:    disc,
		TotalPrice:  adminModels.LineTotal(qty, price, disc),
	}, nil
}

// AddTindakan menambahkan tagihan tindakan (item bertipe service) ke kunjungan
// yang rekam medisnya belum dikunci.
func (s *DokterService) AddTindakan(ctx context.Context, visitID int64, req models.TindakanRequest) (*models.ChargeResult, error) {
	// field yang tidak butuh data master
	if err := validation.Struct(&req).Err(); err != nil {
		return nil, err
	}

	var (
		result  models.ChargeResult
		billing *adminModels.Billing
	)
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		k, err := openVisitForCharge(ctx, tx, visitID)
		if err != nil {
			return err
		}
		b, err := s.billing.EnsureBillingInTx(ctx, tx, visitID)
		if err != nil {
			return err
		}

		for i, it := range req.Items {
			t, err := tx.GetTindakan(ctx, it.IDTindakan)
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.NotFound(fmt.Sprintf("Procedure %d not found", it.IDTindakan))
			}
			if err != nil {
				return apperr.Internal(err)
			}
			desc := t.Nama
			if t.KodeICD9 != "" {
				desc = fmt.Sprintf("%s (%s)", t.Nama, t.KodeICD9)
			}
			line, err := chargeLine(i, b.ID, adminModels.ItemTypeService, t.IDTindakan, desc, it.Jumlah, t.Harga, it.Diskon)
			if err != nil {
				return err
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
		Int64("visit_id", visitID).
		Int64("billing_id", result.BillingID).
		Int("items", len(result.Items)).
		Str("subtotal", billing.Subtotal.StringFixed(2)).
		Msg("tindakan charged")
	if s.notifier != nil {
		if err := s.notifier.Publish(adminServices.EventBillingUpdate, billing); err != nil {
			s.logger.Warn().Err(err).Msg("publish realtime event failed")
		}
	}
	return &result, nil
}

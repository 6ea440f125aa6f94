package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/c14220110/poliklinik-billing/internal/administrasi/models"
	"github.com/c14220110/poliklinik-billing/internal/common/apperr"
	"github.com/c14220110/poliklinik-billing/internal/repository"
)

// BillingService menghitung dan membaca tagihan kunjungan.
type BillingService struct {
	store    repository.Store
	tariff   ConsultationTariff
	notifier Notifier
	logger   zerolog.Logger
	now      func() time.Time
}

func NewBillingService(store repository.Store, tariff ConsultationTariff, notifier Notifier, logger zerolog.Logger) *BillingService {
	return &BillingService{
		store:    store,
		tariff:   tariff,
		notifier: notifier,
		logger:   logger.With().Str("service", "billing").Logger(),
		now:      time.Now,
	}
}

// Calculate menghitung ulang tagihan kunjungan yang rekam medisnya sudah dikunci.
// Bacaan pertama di transaksi adalah locking read (Kunjungan lalu Billing),
// jadi jumlah pembayaran yang dijumlahkan selalu data commit terbaru.
func (s *BillingService) Calculate(ctx context.Context, visitID int64, adj Adjustments) (*models.Billing, error) {
	if err := adj.Validate(); err != nil {
		return nil, err
	}

	var billing *models.Billing
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		k, err := tx.GetKunjungan(ctx, visitID, true)
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("Visit not found")
		}
		if err != nil {
			return apperr.Internal(err)
		}
		if !k.Locked() {
			return apperr.NotFound("Visit is not ready for billing: medical record is not locked")
		}

		billing, err = s.RecalculateInTx(ctx, tx, k, adj)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("visit_id", visitID).
		Int64("billing_id", billing.ID).
		Str("total", billing.TotalAmount.StringFixed(2)).
		Str("status", string(billing.PaymentStatus)).
		Msg("billing recalculated")
	publish(s.notifier, s.logger, EventBillingUpdate, billing)
	return billing, nil
}

// EnsureBillingInTx mengunci Billing milik kunjungan, membuatnya bila belum ada.
func (s *BillingService) EnsureBillingInTx(ctx context.Context, tx repository.Store, visitID int64) (*models.Billing, error) {
	b, err := tx.GetBillingByVisit(ctx, visitID, true)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal(err)
	}

	now := s.now()
	b = &models.Billing{
		VisitID:           visitID,
		Subtotal:          decimal.Zero,
		ConsultationFee:   decimal.Zero,
		Discount:          decimal.Zero,
		InsuranceCoverage: decimal.Zero,
		TotalAmount:       decimal.Zero,
		PaymentStatus:     models.PaymentStatusUnpaid,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := tx.CreateBilling(ctx, b); err != nil {
		return nil, apperr.Internal(err)
	}
	return b, nil
}

// RecalculateInTx menghitung ulang Billing kunjungan k di dalam transaksi tx.
// Total baru tidak boleh lebih kecil dari jumlah yang sudah dibayar.
func (s *BillingService) RecalculateInTx(ctx context.Context, tx repository.Store, k *models.Kunjungan, adj Adjustments) (*models.Billing, error) {
	b, err := s.EnsureBillingInTx(ctx, tx, k.ID)
	if err != nil {
		return nil, err
	}
	items, err := tx.ListBillingItems(ctx, b.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	paid, err := tx.SumPayments(ctx, b.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	totals := ComputeTotals(items, s.tariff.FeeFor(k.VisitType), adj)
	if totals.FlatDiscountIgnored {
		s.logger.Warn().
			Int64("visit_id", k.ID).
			Str("discount", adj.Discount.String()).
			Str("discount_percentage", adj.DiscountPercentage.String()).
			Msg("both discount and discountPercentage supplied, flat discount ignored")
	}
	if totals.TotalAmount.LessThan(paid) {
		return nil, apperr.Conflict("New total is lower than the amount already paid")
	}

	b.Subtotal = totals.Subtotal
	b.ConsultationFee = totals.ConsultationFee
	b.Discount = totals.Discount
	b.DiscountPercentage = totals.DiscountPercentage
	b.InsuranceCoverage = totals.InsuranceCoverage
	b.TotalAmount = totals.TotalAmount
	b.PaymentStatus = models.DerivePaymentStatus(paid, totals.TotalAmount)
	b.UpdatedAt = s.now()

	if err := tx.UpdateBillingTotals(ctx, b); err != nil {
		return nil, apperr.Internal(err)
	}
	return b, nil
}

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/c14220110/poliklinik-billing/internal/administrasi/models"
	"github.com/c14220110/poliklinik-billing/internal/common/apperr"
	"github.com/c14220110/poliklinik-billing/internal/common/validation"
	"github.com/c14220110/poliklinik-billing/internal/repository"
)

const msgExceedsRemaining = "Payment amount exceeds remaining balance"

// PaymentInput adalah satu pembayaran yang diterima kasir.
type PaymentInput struct {
	Amount         decimal.Decimal      `json:"amount" validate:"money_pos"`
	Method         models.PaymentMethod `json:"paymentMethod" validate:"oneof=cash transfer card"`
	AmountReceived *decimal.Decimal     `json:"amountReceived" validate:"omitempty,money"`
	Notes          *string              `json:"notes" validate:"omitempty,max=255,utf8"`
	CashierID      int64                `json:"cashierId"`
}

func PaymentInputFromRequest(req models.PaymentRequest, cashierID int64) PaymentInput {
	return PaymentInput{
		Amount:         req.Amount,
		Method:         req.PaymentMethod,
		AmountReceived: req.AmountReceived,
		Notes:          req.Notes,
		CashierID:      cashierID,
	}
}

// Validate memeriksa input pembayaran. Panjang catatan dihitung dalam
// karakter, sesuai kolom VARCHAR(255).
func (in PaymentInput) Validate() error {
	fe := validation.Struct(in)
	if in.Method == models.PaymentMethodCash {
		switch {
		case in.AmountReceived == nil:
			fe.Add("amountReceived", "is required for cash payments")
		case in.AmountReceived.LessThan(in.Amount):
			fe.Add("amountReceived", "must be greater than or equal to amount")
		}
	}
	return fe.Err()
}

// NewReceiptNumber menghasilkan nomor kwitansi KW-YYYYMMDD-XXXXXXXX.
func NewReceiptNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "KW-" + at.Format("20060102") + "-" + suffix
}

// PaymentService mencatat pembayaran terhadap Billing.
type PaymentService struct {
	store    repository.Store
	notifier Notifier
	logger   zerolog.Logger
	now      func() time.Time
	receipt  func(time.Time) string
}

func NewPaymentService(store repository.Store, notifier Notifier, logger zerolog.Logger) *PaymentService {
	return &PaymentService{
		store:    store,
		notifier: notifier,
		logger:   logger.With().Str("service", "payment").Logger(),
		now:      time.Now,
		receipt:  NewReceiptNumber,
	}
}

// ProcessPayment mencatat pembayaran untuk billingID.
func (s *PaymentService) ProcessPayment(ctx context.Context, billingID int64, in PaymentInput) (*models.PaymentResult, error) {
	return s.process(ctx, in, func(tx repository.Store) (*models.Billing, error) {
		b, err := tx.GetBilling(ctx, billingID, true)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Billing not found")
		}
		if err != nil {
			return nil, apperr.Internal(err)
		}
		return b, nil
	})
}

// ProcessPaymentForVisit mencatat pembayaran untuk Billing milik kunjungan visitID.
func (s *PaymentService) ProcessPaymentForVisit(ctx context.Context, visitID int64, in PaymentInput) (*models.PaymentResult, error) {
	return s.process(ctx, in, func(tx repository.Store) (*models.Billing, error) {
		b, err := tx.GetBillingByVisit(ctx, visitID, true)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Billing not found for this visit")
		}
		if err != nil {
			return nil, apperr.Internal(err)
		}
		return b, nil
	})
}

func (s *PaymentService) process(ctx context.Context, in PaymentInput, lockBilling func(tx repository.Store) (*models.Billing, error)) (*models.PaymentResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var result *models.PaymentResult
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		b, err := lockBilling(tx)
		if err != nil {
			return err
		}

		k, err := tx.GetKunjungan(ctx, b.VisitID, false)
		if err != nil {
			return apperr.Internal(err)
		}
		if !k.Locked() {
			return apperr.Conflict("Medical record is not locked yet; billing is not final")
		}

		// Sisa tagihan selalu dihitung dari database di bawah lock baris Billing.
		paid, err := tx.SumPayments(ctx, b.ID)
		if err != nil {
			return apperr.Internal(err)
		}
		remaining := b.TotalAmount.Sub(paid)
		if in.Amount.GreaterThan(remaining) {
			return apperr.Validation(msgExceedsRemaining).
				WithField("amount", "remaining balance is "+decimal.Max(decimal.Zero, remaining).StringFixed(2))
		}

		now := s.now()
		p := &models.Payment{
			BillingID:     b.ID,
			ReceiptNumber: s.receipt(now),
			Amount:        in.Amount,
			PaymentMethod: in.Method,
			ChangeGiven:   decimal.Zero,
			Notes:         in.Notes,
			CashierID:     in.CashierID,
			ReceivedAt:    now,
		}
		if in.Method == models.PaymentMethodCash {
			received := *in.AmountReceived
			p.AmountReceived = &received
			p.ChangeGiven = decimal.Max(decimal.Zero, received.Sub(in.Amount))
		}
		if err := tx.CreatePayment(ctx, p); err != nil {
			return apperr.Internal(err)
		}

		newPaid := paid.Add(in.Amount)
		status := models.DerivePaymentStatus(newPaid, b.TotalAmount)
		if err := tx.UpdatePaymentStatus(ctx, b.ID, status, now); err != nil {
			return apperr.Internal(err)
		}

		result = &models.PaymentResult{
			Payment:         *p,
			TotalAmount:     b.TotalAmount,
			PaidAmount:      newPaid,
			RemainingAmount: b.TotalAmount.Sub(newPaid),
			PaymentStatus:   status,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("billing_id", result.Payment.BillingID).
		Str("receipt", result.Payment.ReceiptNumber).
		Str("amount", result.Payment.Amount.StringFixed(2)).
		Str("method", string(result.Payment.PaymentMethod)).
		Str("status", string(result.PaymentStatus)).
		Int64("cashier_id", result.Payment.CashierID).
		Msg("payment recorded")
	publish(s.notifier, s.logger, EventBillingUpdate, result)
	return result, nil
}

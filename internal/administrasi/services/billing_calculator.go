package services

import (
	"github.com/shopspring/decimal"

	"github.com/c14220110/poliklinik-billing/internal/administrasi/models"
	"github.com/c14220110/poliklinik-billing/internal/common/validation"
)

var hundred = decimal.NewFromInt(100)

// ConsultationTariff memetakan jenis kunjungan ke biaya konsultasi.
type ConsultationTariff map[models.VisitType]decimal.Decimal

func (t ConsultationTariff) FeeFor(v models.VisitType) decimal.Decimal {
	if fee, ok := t[v]; ok {
		return fee
	}
	return decimal.Zero
}

// Adjustments adalah input kasir saat menghitung tagihan. Nilai nil berarti nol.
type Adjustments struct {
	Discount           *decimal.Decimal `json:"discount" validate:"omitempty,money"`
	DiscountPercentage *decimal.Decimal `json:"discountPercentage" validate:"omitempty,percent"`
	InsuranceCoverage  *decimal.Decimal `json:"insuranceCoverage" validate:"omitempty,money"`
}

func AdjustmentsFromRequest(req models.CalculateRequest) Adjustments {
	return Adjustments{
		Discount:           req.Discount,
		DiscountPercentage: req.DiscountPercentage,
		InsuranceCoverage:  req.InsuranceCoverage,
	}
}

// Validate memeriksa batas dan skala nilai penyesuaian. Nominal harus muat di
// DECIMAL(14,2) dan persentase di DECIMAL(5,2) supaya baris yang tersimpan
// sama persis dengan hasil hitung.
func (a Adjustments) Validate() error {
	return validation.Struct(a).Err()
}

// Totals adalah hasil perhitungan tagihan.
type Totals struct {
	Subtotal           decimal.Decimal
	ConsultationFee    decimal.Decimal
	Discount           decimal.Decimal
	DiscountPercentage *decimal.Decimal
	InsuranceCoverage  decimal.Decimal
	TotalAmount        decimal.Decimal
	// FlatDiscountIgnored true bila diskon nominal dikirim bersama persentase.
	FlatDiscountIgnored bool
}

// ComputeTotals menghitung subtotal, diskon, dan total dari item tagihan.
// Diskon persen mengalahkan diskon nominal dan dibulatkan ke 2 desimal.
// Total tidak pernah negatif.
func ComputeTotals(items []models.BillingItem, consultationFee decimal.Decimal, adj Adjustments) Totals {
	subtotal := consultationFee
	for _, it := range items {
		subtotal = subtotal.Add(it.TotalPrice)
	}

	t := Totals{
		Subtotal:          subtotal,
		ConsultationFee:   consultationFee,
		Discount:          decimal.Zero,
		InsuranceCoverage: decimal.Zero,
	}
	if adj.InsuranceCoverage != nil {
		t.InsuranceCoverage = *adj.InsuranceCoverage
	}

	switch {
	case adj.DiscountPercentage != nil:
		pct := *adj.DiscountPercentage
		t.DiscountPercentage = &pct
		t.Discount = subtotal.Mul(pct).Div(hundred).Round(2)
		t.FlatDiscountIgnored = adj.Discount != nil && !adj.Discount.IsZero()
	case adj.Discount != nil:
		t.Discount = *adj.Discount
	}

	t.TotalAmount = decimal.Max(decimal.Zero, subtotal.Sub(t.Discount).Sub(t.InsuranceCoverage))
	return t
}

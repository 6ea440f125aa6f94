package models

import (
	"time"

	"github.com/shopspring/decimal"

	adminModels "github.com/c14220110/poliklinik-billing/internal/administrasi/models"
)

// DashboardData adalah ringkasan pendapatan untuk dashboard manajemen.
type DashboardData struct {
	RentangAwal  time.Time `json:"rentangAwal"`
	RentangAkhir time.Time `json:"rentangAkhir"`

	JumlahTagihan      int             `json:"jumlahTagihan"`
	PendapatanTotal    decimal.Decimal `json:"pendapatanTotal"`
	PendapatanDiterima decimal.Decimal `json:"pendapatanDiterima"`
	Piutang            decimal.Decimal `json:"piutang"`
	PendapatanRataRata decimal.Decimal `json:"pendapatanRataRata"`

	PerStatus []StatusTotal `json:"perStatus"`
	PerMetode []MethodTotal `json:"perMetode"`
}

// StatusTotal mengelompokkan tagihan yang dibuat dalam rentang menurut status bayar.
type StatusTotal struct {
	Status  adminModels.PaymentStatus `json:"status"`
	Count   int                       `json:"count"`
	Total   decimal.Decimal           `json:"total"`
	Dibayar decimal.Decimal           `json:"dibayar"`
}

// MethodTotal mengelompokkan pembayaran yang diterima dalam rentang menurut metode.
type MethodTotal struct {
	Metode adminModels.PaymentMethod `json:"metode"`
	Count  int                       `json:"count"`
	Jumlah decimal.Decimal           `json:"jumlah"`
}

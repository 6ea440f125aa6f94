package models

import (
	"github.com/shopspring/decimal"

	adminModels "github.com/c14220110/poliklinik-billing/internal/administrasi/models"
)

// ResepRequest adalah body POST /resep: obat yang diserahkan farmasi untuk
// satu kunjungan.
type ResepRequest struct {
	VisitID int64              `json:"visitId" validate:"gt=0"`
	Items   []ResepItemRequest `json:"items" validate:"required,min=1,dive"`
}

type ResepItemRequest struct {
	IDObat    int64            `json:"drugId" validate:"gt=0"`
	Jumlah    int              `json:"quantity" validate:"gt=0"`
	Diskon    *decimal.Decimal `json:"discount,omitempty" validate:"omitempty,money"`
	Instruksi string           `json:"instructions" validate:"max=255,utf8"`
}

// TindakanRequest adalah body POST /kunjungan/:id/tindakan.
type TindakanRequest struct {
	Items []TindakanItemRequest `json:"items" validate:"required,min=1,dive"`
}

type TindakanItemRequest struct {
	IDTindakan int64            `json:"procedureId" validate:"gt=0"`
	Jumlah     int              `json:"quantity" validate:"gt=0"`
	Diskon     *decimal.Decimal `json:"discount,omitempty" validate:"omitempty,money"`
}

// ChargeResult dikembalikan setelah tagihan baru tercatat.
type ChargeResult struct {
	BillingID int64                     `json:"billingId"`
	Items     []adminModels.BillingItem `json:"items"`
}

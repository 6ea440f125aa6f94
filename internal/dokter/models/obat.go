package models

import "github.com/shopspring/decimal"

// Obat merepresentasikan record di tabel `Obat`
type Obat struct {
	IDObat      int64           `json:"idObat"`
	Nama        string          `json:"nama"`
	HargaSatuan decimal.Decimal `json:"hargaSatuan"`
	Satuan      string          `json:"satuan"`
	Stock       int             `json:"stock"`
}

// Tindakan merepresentasikan tarif tindakan medis (kode ICD-9-CM).
type Tindakan struct {
	IDTindakan int64           `json:"idTindakan"`
	KodeICD9   string          `json:"kodeIcd9"`
	Nama       string          `json:"nama"`
	Harga      decimal.Decimal `json:"harga"`
}

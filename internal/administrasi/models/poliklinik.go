package models

// Poliklinik mewakili data poli tujuan kunjungan.
type Poliklinik struct {
	IDPoli     int64  `json:"idPoli"`
	NamaPoli   string `json:"namaPoli"`
	Keterangan string `json:"keterangan"`
}

package models

import "time"

// Pasien mewakili data pasien.
type Pasien struct {
	ID           int64     `json:"id"`
	NomorRM      string    `json:"nomorRm"`
	Nama         string    `json:"nama"`
	NIK          string    `json:"nik"`
	NoBPJS       *string   `json:"noBpjs"`
	TanggalLahir time.Time `json:"tanggalLahir"`
	JenisKelamin string    `json:"jenisKelamin"`
	NoTelp       string    `json:"noTelp,omitempty"`
	Alamat       string    `json:"alamat,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

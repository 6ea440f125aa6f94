package models

import "time"

type VisitType string

const (
	VisitTypeOutpatient VisitType = "outpatient"
	VisitTypeInpatient  VisitType = "inpatient"
	VisitTypeEmergency  VisitType = "emergency"
)

// Payer adalah penjamin biaya kunjungan.
type Payer string

const (
	PayerUmum     Payer = "umum"
	PayerBPJS     Payer = "bpjs"
	PayerAsuransi Payer = "asuransi"
)

// Kunjungan mewakili satu kunjungan pasien. Rekam medis kunjungan dianggap
// terkunci bila LockedAt terisi; setelah itu tidak boleh ada tagihan baru.
type Kunjungan struct {
	ID             int64      `json:"id"`
	IDPasien       int64      `json:"idPasien"`
	IDPoli         int64      `json:"idPoli"`
	NomorKunjungan string     `json:"nomorKunjungan"`
	NomorAntrian   int        `json:"nomorAntrian"`
	VisitType      VisitType  `json:"visitType"`
	Payer          Payer      `json:"payer"`
	KeluhanUtama   string     `json:"keluhanUtama"`
	CreatedAt      time.Time  `json:"createdAt"`
	LockedAt       *time.Time `json:"lockedAt"`
	LockedBy       *int64     `json:"lockedBy"`
}

func (k *Kunjungan) Locked() bool {
	return k.LockedAt != nil
}

// RegisterKunjunganRequest adalah body POST /kunjungan. Data pasien dipakai
// hanya jika NIK belum terdaftar.
type RegisterKunjunganRequest struct {
	NIK          string    `json:"nik" validate:"len=16,digits"`
	Nama         string    `json:"nama" validate:"required,max=150,utf8"`
	TanggalLahir string    `json:"tanggalLahir" validate:"datetime=2006-01-02"`
	JenisKelamin string    `json:"jenisKelamin" validate:"required,max=20"`
	NoTelp       string    `json:"noTelp" validate:"max=20"`
	Alamat       string    `json:"alamat" validate:"max=255,utf8"`
	NoBPJS       *string   `json:"noBpjs" validate:"omitempty,max=20"`
	IDPoli       int64     `json:"idPoli" validate:"gt=0"`
	VisitType    VisitType `json:"visitType" validate:"oneof=outpatient inpatient emergency"`
	Payer        Payer     `json:"payer" validate:"omitempty,oneof=umum bpjs asuransi"`
	KeluhanUtama string    `json:"keluhanUtama" validate:"max=500,utf8"`
}

// RegisterKunjunganResult dikembalikan setelah pendaftaran berhasil.
type RegisterKunjunganResult struct {
	Kunjungan  Kunjungan `json:"kunjungan"`
	Pasien     Pasien    `json:"pasien"`
	PasienBaru bool      `json:"pasienBaru"`
}

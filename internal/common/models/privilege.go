package models

// Privilege id sesuai isi tabel Privilege (lihat migrasi 00002).
const (
	PrivPendaftaran = 1
	PrivRekamMedis  = 2
	PrivFarmasi     = 3
	PrivKasir       = 4
	PrivManajemen   = 5
)

var PrivilegeNames = map[int]string{
	PrivPendaftaran: "pendaftaran",
	PrivRekamMedis:  "rekam_medis",
	PrivFarmasi:     "farmasi",
	PrivKasir:       "kasir",
	PrivManajemen:   "manajemen",
}

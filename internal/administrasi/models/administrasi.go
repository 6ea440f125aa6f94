package models

import "time"

// Karyawan adalah petugas yang bisa login (pendaftaran, dokter, farmasi, kasir).
type Karyawan struct {
	ID         int64      `json:"idKaryawan"`
	Nama       string     `json:"nama"`
	Username   string     `json:"username"`
	Password   string     `json:"-"`
	Privileges []int      `json:"privileges"`
	CreatedAt  time.Time  `json:"createdAt"`
	DeletedAt  *time.Time `json:"-"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Karyawan  Karyawan  `json:"karyawan"`
}

package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Claims terpadu dengan field flat untuk id karyawan dan privileges.
type Claims struct {
	IDKaryawan int64  `json:"id_karyawan"`
	Username   string `json:"username"`
	Nama       string `json:"nama"`
	Privileges []int  `json:"privileges"`
	jwt.RegisteredClaims
}

// HasPrivilege memeriksa apakah privilege tertentu dimiliki pemegang token.
func (c *Claims) HasPrivilege(priv int) bool {
	for _, p := range c.Privileges {
		if p == priv {
			return true
		}
	}
	return false
}

// GenerateJWTToken membuat token HS256 dengan masa berlaku sampai exp.
func GenerateJWTToken(secret string, idKaryawan int64, username, nama string, privileges []int, exp time.Time) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("JWT secret key is missing")
	}

	claims := Claims{
		IDKaryawan: idKaryawan,
		Username:   username,
		Nama:       nama,
		Privileges: privileges,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(idKaryawan),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateJWTToken memvalidasi token JWT dan mengembalikan klaim terpadu.
func ValidateJWTToken(secret, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret key is missing")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// Package validation menjalankan tag `validate` (go-playground/validator) dan
// menerjemahkan pelanggarannya ke apperr.FieldErrors. Nama field mengikuti
// tag json, path slice ditulis seperti items[0].quantity.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/c14220110/poliklinik-billing/internal/common/apperr"
)

// MaxMoneyDigits adalah jumlah digit bulat kolom uang DECIMAL(14,2).
const MaxMoneyDigits = 12

var (
	moneyLimit = decimal.New(1, MaxMoneyDigits)
	hundred    = decimal.NewFromInt(100)
)

// MoneyError memeriksa nominal rupiah: tidak negatif (atau > 0 bila positive),
// paling banyak 2 desimal, dan muat di kolom DECIMAL(14,2). String kosong
// berarti valid.
func MoneyError(d decimal.Decimal, positive bool) string {
	switch {
	case positive && !d.IsPositive():
		return "must be greater than 0"
	case d.IsNegative():
		return "must not be negative"
	case !d.Equal(d.Round(2)):
		return "must have at most 2 decimal places"
	case d.GreaterThanOrEqual(moneyLimit):
		return fmt.Sprintf("must have at most %d integer digits", MaxMoneyDigits)
	}
	return ""
}

// PercentError memeriksa persentase untuk kolom DECIMAL(5,2).
func PercentError(d decimal.Decimal) string {
	switch {
	case d.IsNegative() || d.GreaterThan(hundred):
		return "must be between 0 and 100"
	case !d.Equal(d.Round(2)):
		return "must have at most 2 decimal places"
	}
	return ""
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	// decimal divalidasi lewat representasi string agar tidak lewat float.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	rules := map[string]validator.Func{
		"money":     moneyRule(false),
		"money_pos": moneyRule(true),
		"percent": func(fl validator.FieldLevel) bool {
			d, err := decimal.NewFromString(fl.Field().String())
			return err == nil && PercentError(d) == ""
		},
		"digits": func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			for _, r := range s {
				if r < '0' || r > '9' {
					return false
				}
			}
			return s != ""
		},
		"utf8": func(fl validator.FieldLevel) bool {
			return utf8.ValidString(fl.Field().String())
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("validation: register %s: %v", tag, err))
		}
	}
	return v
}

func moneyRule(positive bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && MoneyError(d, positive) == ""
	}
}

// Validator memasang validasi tag ke echo lewat e.Validator, sehingga
// response.Bind langsung menolak payload yang melanggar tag.
type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// Validate memenuhi echo.Validator. Error selalu *apperr.Error bertipe
// validation.
func (*Validator) Validate(i interface{}) error {
	return Struct(i).Err()
}

// Struct menjalankan tag validate pada v (struct atau pointer ke struct) dan
// mengembalikan pelanggarannya. Hasil kosong berarti valid.
func Struct(v interface{}) apperr.FieldErrors {
	fe := apperr.FieldErrors{}
	err := validate.Struct(v)
	if err == nil {
		return fe
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// hanya terjadi bila v bukan struct
		panic(fmt.Sprintf("validation: %v", err))
	}
	for _, e := range verrs {
		fe.Add(fieldPath(e), message(e))
	}
	return fe
}

// fieldPath membuang nama struct teratas: "ResepRequest.items[0].quantity"
// menjadi "items[0].quantity".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + e.Param()
	case "min":
		if e.Kind() == reflect.Slice {
			return "must not be empty"
		}
		return "must be at least " + e.Param() + " characters"
	case "max":
		return "must be at most " + e.Param() + " characters"
	case "len":
		return "must be " + e.Param() + " characters"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(e.Param(), " ", ", ")
	case "datetime":
		return "must use format YYYY-MM-DD"
	case "digits":
		return "must contain only digits"
	case "utf8":
		return "must be valid UTF-8 text"
	case "money", "money_pos":
		if d, err := decimal.NewFromString(fmt.Sprint(e.Value())); err == nil {
			return MoneyError(d, e.Tag() == "money_pos")
		}
		return "must be a decimal number"
	case "percent":
		if d, err := decimal.NewFromString(fmt.Sprint(e.Value())); err == nil {
			return PercentError(d)
		}
		return "must be a decimal number"
	}
	return "is invalid"
}

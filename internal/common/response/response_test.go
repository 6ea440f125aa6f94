package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/c14220110/poliklinik-billing/internal/common/apperr"
	"github.com/c14220110/poliklinik-billing/internal/common/validation"
)

func serveError(t *testing.T, err error) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ErrorHandler(zerolog.Nop())(err, c)

	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return rec, env
}

func TestErrorHandler_Validation(t *testing.T) {
	rec, env := serveError(t, apperr.Validation("validation failed").WithField("amount", "amount must be greater than 0"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if env.Code != apperr.CodeValidation {
		t.Errorf("expected code %s, got %s", apperr.CodeValidation, env.Code)
	}
	if env.Errors["amount"] == "" {
		t.Error("expected field error for amount")
	}
}

func TestErrorHandler_NotFound(t *testing.T) {
	rec, env := serveError(t, apperr.NotFound("billing tidak ditemukan"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if env.Message != "billing tidak ditemukan" {
		t.Errorf("unexpected message %q", env.Message)
	}
}

func TestErrorHandler_UntypedIsInternal(t *testing.T) {
	rec, env := serveError(t, errors.New("sql: connection refused"))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if env.Message != "internal server error" {
		t.Errorf("internal details leaked: %q", env.Message)
	}
}

func TestErrorHandler_EchoHTTPError(t *testing.T) {
	rec, env := serveError(t, echo.NewHTTPError(http.StatusUnauthorized, "Authorization header missing"))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if env.Message != "Authorization header missing" {
		t.Errorf("unexpected message %q", env.Message)
	}
}

func TestCreated(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	if err := Created(c, "ok", map[string]int{"id": 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var env Envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	if env.Status != http.StatusCreated {
		t.Errorf("expected envelope status 201, got %d", env.Status)
	}
}

func TestPathID(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("visitId")
	c.SetParamValues("0")

	_, err := PathID(c, "visitId")
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Code != apperr.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if ae.Message != "Invalid visitId" || ae.Fields["visitId"] == "" {
		t.Errorf("unexpected error %q %v", ae.Message, ae.Fields)
	}

	c.SetParamValues("42")
	id, err := PathID(c, "visitId")
	if err != nil || id != 42 {
		t.Errorf("expected 42, got %d %v", id, err)
	}
}

func TestBind(t *testing.T) {
	type payload struct {
		VisitID int64 `json:"visitId" validate:"gt=0"`
	}
	bind := func(e *echo.Echo, body string) error {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		var p payload
		return Bind(e.NewContext(req, httptest.NewRecorder()), &p)
	}

	e := echo.New()
	if err := bind(e, `{"visitId":0}`); err != nil {
		t.Errorf("without a validator only decoding is checked, got %v", err)
	}
	if err := bind(e, `{"visitId":`); !apperr.Is(err, apperr.CodeValidation) {
		t.Errorf("malformed json: expected validation error, got %v", err)
	}

	e.Validator = validation.New()
	err := bind(e, `{"visitId":0}`)
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Fields["visitId"] != "must be greater than 0" {
		t.Errorf("expected visitId field error, got %v", err)
	}
	if err := bind(e, `{"visitId":7}`); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

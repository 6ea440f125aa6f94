package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPartial, PaymentStatusPaid:
		return true
	}
	return false
}

// DerivePaymentStatus menghitung status dari total pembayaran terhadap total tagihan.
// Tagihan bernilai nol dianggap lunas karena tidak ada yang harus dibayar.
func DerivePaymentStatus(paid, total decimal.Decimal) PaymentStatus {
	switch {
	case paid.GreaterThanOrEqual(total):
		return PaymentStatusPaid
	case paid.IsPositive():
		return PaymentStatusPartial
	default:
		return PaymentStatusUnpaid
	}
}

type ItemType string

const (
	ItemTypeDrug    ItemType = "drug"
	ItemTypeService ItemType = "service"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodCard     PaymentMethod = "card"
)

// Billing adalah rekap tagihan untuk satu kunjungan.
// TotalAmount = max(0, Subtotal - Discount - InsuranceCoverage).
type Billing struct {
	ID                 int64            `json:"id"`
	VisitID            int64            `json:"visitId"`
	Subtotal           decimal.Decimal  `json:"subtotal"`
	ConsultationFee    decimal.Decimal  `json:"consultationFee"`
	Discount           decimal.Decimal  `json:"discount"`
	DiscountPercentage *decimal.Decimal `json:"discountPercentage"`
	InsuranceCoverage  decimal.Decimal  `json:"insuranceCoverage"`
	TotalAmount        decimal.Decimal  `json:"totalAmount"`
	PaymentStatus      PaymentStatus    `json:"paymentStatus"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}

// BillingItem adalah satu baris tagihan (obat atau tindakan). Tidak pernah diubah
// setelah dibuat.
type BillingItem struct {
	ID          int64           `json:"id"`
	BillingID   int64           `json:"billingId"`
	ItemType    ItemType        `json:"itemType"`
	ReferenceID int64           `json:"referenceId"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Discount    decimal.Decimal `json:"discount"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// LineTotal = Quantity * UnitPrice - Discount.
func LineTotal(quantity int, unitPrice, discount decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Sub(discount)
}

type Payment struct {
	ID             int64            `json:"id"`
	BillingID      int64            `json:"billingId"`
	ReceiptNumber  string           `json:"receiptNumber"`
	Amount         decimal.Decimal  `json:"amount"`
	PaymentMethod  PaymentMethod    `json:"paymentMethod"`
	AmountReceived *decimal.Decimal `json:"amountReceived"`
	ChangeGiven    decimal.Decimal  `json:"changeGiven"`
	Notes          *string          `json:"notes"`
	CashierID      int64            `json:"cashierId"`
	ReceivedAt     time.Time        `json:"receivedAt"`
}

// PaymentRequest adalah body POST /billing/payment.
type PaymentRequest struct {
	VisitID        int64            `json:"visitId" validate:"gt=0"`
	Amount         decimal.Decimal  `json:"amount" validate:"money_pos"`
	PaymentMethod  PaymentMethod    `json:"paymentMethod" validate:"oneof=cash transfer card"`
	AmountReceived *decimal.Decimal `json:"amountReceived" validate:"omitempty,money"`
	Notes          *string          `json:"notes" validate:"omitempty,max=255,utf8"`
}

// CalculateRequest adalah body POST /billing/:visitId/calculate.
// Discount dan DiscountPercentage seharusnya tidak dikirim bersamaan;
// jika keduanya ada, persentase yang dipakai.
type CalculateRequest struct {
	Discount           *decimal.Decimal `json:"discount" validate:"omitempty,money"`
	DiscountPercentage *decimal.Decimal `json:"discountPercentage" validate:"omitempty,percent"`
	InsuranceCoverage  *decimal.Decimal `json:"insuranceCoverage" validate:"omitempty,money"`
}

// PaymentResult dikembalikan setelah pembayaran tercatat.
type PaymentResult struct {
	Payment         Payment         `json:"payment"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	PaidAmount      decimal.Decimal `json:"paidAmount"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
}

// BillingDetail adalah response GET /billing/:visitId.
type BillingDetail struct {
	Billing         Billing         `json:"billing"`
	Visit           QueueEntry      `json:"visit"`
	Items           []BillingItem   `json:"items"`
	Payments        []Payment       `json:"payments"`
	PaidAmount      decimal.Decimal `json:"paidAmount"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
}

// QueueEntry adalah satu baris antrian kasir.
type QueueEntry struct {
	VisitID             int64           `json:"visitId"`
	VisitNumber         string          `json:"visitNumber"`
	PatientName         string          `json:"patientName"`
	MedicalRecordNumber string          `json:"medicalRecordNumber"`
	NationalID          string          `json:"nationalId"`
	BPJSNumber          *string         `json:"bpjsNumber"`
	PoliName            string          `json:"poliName"`
	VisitType           VisitType       `json:"visitType"`
	Payer               Payer           `json:"payer"`
	BillingID           int64           `json:"billingId"`
	TotalAmount         decimal.Decimal `json:"totalAmount"`
	PaidAmount          decimal.Decimal `json:"paidAmount"`
	RemainingAmount     decimal.Decimal `json:"remainingAmount"`
	PaymentStatus       PaymentStatus   `json:"paymentStatus"`
	LockedAt            *time.Time      `json:"lockedAt"`
}

// BillingSummary dipakai untuk daftar billing (GET /billing).
type BillingSummary struct {
	BillingID     int64           `json:"billingId"`
	VisitID       int64           `json:"visitId"`
	VisitNumber   string          `json:"visitNumber"`
	PatientName   string          `json:"patientName"`
	PoliName      string          `json:"poliName"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PaidAmount    decimal.Decimal `json:"paidAmount"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	CreatedAt     time.Time       `json:"createdAt"`
}

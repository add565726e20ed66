package finance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/trezcool/shule/core"
)

// PaymentType is the closed set of recognized payment types.
type PaymentType string

const (
	PaymentSalary        PaymentType = "salary"
	PaymentBonus         PaymentType = "bonus"
	PaymentReimbursement PaymentType = "reimbursement"
	PaymentTransfer      PaymentType = "transfer"
	PaymentUnknown       PaymentType = ""
)

var AllPaymentTypes = []PaymentType{PaymentSalary, PaymentBonus, PaymentReimbursement, PaymentTransfer}

func ParsePaymentType(s string) PaymentType {
	switch PaymentType(core.CleanString(s, true /* lower */)) {
	case PaymentSalary:
		return PaymentSalary
	case PaymentBonus:
		return PaymentBonus
	case PaymentReimbursement:
		return PaymentReimbursement
	case PaymentTransfer:
		return PaymentTransfer
	}
	return PaymentUnknown
}

func (pt PaymentType) String() string { return string(pt) }

// Balance is the school's aggregate funds; a single row owned exclusively by
// this package's Repository.
type Balance struct {
	Amount    decimal.Decimal `json:"balance"`
	UpdatedAt time.Time       `json:"updated_at"` // UTC
}

// Transaction is one append-only ledger record. Rows are never updated or
// deleted once written.
type Transaction struct {
	ID          string          `json:"id"`
	RecipientID string          `json:"recipient_id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        PaymentType     `json:"type"`
	Date        time.Time       `json:"date"` // UTC
}

// NewPayment contains information needed to execute a transfer.
type NewPayment struct {
	RecipientID string          `json:"recipient_id" validate:"required,uuid4"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type" validate:"required,paymenttype"`
}

func (np *NewPayment) Validate() error {
	np.Type = core.CleanString(np.Type, true /* lower */)
	return core.Validate.Struct(np)
}

type QueryFilter struct {
	RecipientID string `query:"recipient"`
}

func (qf *QueryFilter) IsEmpty() bool { return qf.RecipientID == "" }

// PaymentCompleted is the event published after a transfer commits.
type PaymentCompleted struct {
	TransactionID string          `json:"transaction_id"`
	RecipientID   string          `json:"recipient_id"`
	Amount        decimal.Decimal `json:"amount"`
	Type          PaymentType     `json:"type"`
	Date          time.Time       `json:"date"`
	Balance       decimal.Decimal `json:"balance"`
}

package finance

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/core"
)

var (
	paymentTypeTag  = "paymenttype"
	paymentTypeText = "invalid payment type"

	amountGTZeroTag  = "amountgt0"
	amountGTZeroText = "amount must be greater than 0"
)

func init() {
	_ = core.Validate.RegisterValidation(paymentTypeTag, paymentTypeValidation)
	core.RegisterCustomTranslation(paymentTypeTag, paymentTypeText)

	core.Validate.RegisterStructValidation(newPaymentStructValidation, NewPayment{})
	core.RegisterCustomTranslation(amountGTZeroTag, amountGTZeroText)
}

// paymentTypeValidation checks that the provided type is a recognized PaymentType.
func paymentTypeValidation(fl validator.FieldLevel) bool {
	return ParsePaymentType(fl.Field().String()) != PaymentUnknown
}

// newPaymentStructValidation checks that the amount is strictly positive.
func newPaymentStructValidation(sl validator.StructLevel) {
	np := sl.Current().Interface().(NewPayment)
	if !np.Amount.IsPositive() {
		sl.ReportError(np.Amount, "amount", "Amount", amountGTZeroTag, "")
	}
}

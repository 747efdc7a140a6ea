package service

import (
	"math"
	"strings"

	"github.com/msomdec/acme-invoices/internal/domain"
	"github.com/shopspring/decimal"
)

// Invoice form field names.
const (
	FieldCustomerID = "customerId"
	FieldAmount     = "amount"
	FieldStatus     = "status"
)

// InvoiceFormFields lists the fields read from an invoice form, in order.
var InvoiceFormFields = []string{FieldCustomerID, FieldAmount, FieldStatus}

const (
	msgSelectCustomer = "Please select a customer"
	msgAmountPositive = "Please enter an amount greater than $0"
	msgAmountTooLarge = "Please enter a smaller amount"
	msgSelectStatus   = "Please select an invoice status"

	msgMissingFields = "Missing Fields."
)

// Bounds applied to the submitted amount before any arithmetic on it.
// Exponents outside the range would make rescaling to cents build huge
// powers of ten.
const (
	maxAmountLength   = 32
	maxAmountExponent = 18
	// With at most maxAmountLength digits, anything scaled below this is
	// less than a cent.
	minAmountExponent = -40
)

var maxMinorUnits = decimal.NewFromInt(math.MaxInt64)

// ValidateCreateInvoice checks a create form. The form must not carry an id;
// ids are generated by the database.
func ValidateCreateInvoice(form domain.FormValues) domain.ValidationResult {
	if _, ok := form.Get("id"); ok {
		panic("service: create invoice form must not carry an id")
	}
	return validateInvoiceForm(form)
}

// ValidateUpdateInvoice checks an update form for the invoice with the given
// id. The rules are the same as for create.
func ValidateUpdateInvoice(id string, form domain.FormValues) domain.ValidationResult {
	if id == "" {
		panic("service: update invoice requires an id")
	}
	return validateInvoiceForm(form)
}

// validateInvoiceForm checks every field and reports all failures together.
func validateInvoiceForm(form domain.FormValues) domain.ValidationResult {
	errs := domain.FieldErrors{}

	customerID := strings.TrimSpace(form.Value(FieldCustomerID))
	if customerID == "" {
		errs[FieldCustomerID] = append(errs[FieldCustomerID], msgSelectCustomer)
	}

	amount, msg := checkAmount(form.Get(FieldAmount))
	if msg != "" {
		errs[FieldAmount] = append(errs[FieldAmount], msg)
	}

	status, ok := domain.ParseInvoiceStatus(form.Value(FieldStatus))
	if !ok {
		errs[FieldStatus] = append(errs[FieldStatus], msgSelectStatus)
	}

	if len(errs) > 0 {
		return domain.ValidationResult{Errors: errs, Message: msgMissingFields}
	}
	return domain.ValidationResult{Fields: &domain.InvoiceFields{
		CustomerID: customerID,
		Amount:     amount,
		Status:     status,
	}}
}

// checkAmount turns the submitted text into a number and checks it is a
// positive amount of whole cents that fits in an int64. An absent or blank
// field coerces to zero. It returns the failure message, or "" when valid.
func checkAmount(raw string, present bool) (decimal.Decimal, string) {
	s := strings.TrimSpace(raw)
	if !present || s == "" {
		return decimal.Zero, msgAmountPositive
	}
	if len(s) > maxAmountLength {
		return decimal.Decimal{}, msgAmountTooLarge
	}

	d, err := decimal.NewFromString(s)
	switch {
	case err != nil || !d.IsPositive():
		return decimal.Decimal{}, msgAmountPositive
	case d.Exponent() > maxAmountExponent:
		return decimal.Decimal{}, msgAmountTooLarge
	case d.Exponent() < minAmountExponent:
		return decimal.Decimal{}, msgAmountPositive
	}

	cents := d.Shift(2).Round(0)
	switch {
	case cents.GreaterThan(maxMinorUnits):
		return decimal.Decimal{}, msgAmountTooLarge
	case !cents.IsPositive():
		return decimal.Decimal{}, msgAmountPositive
	}
	return d, ""
}

// MinorUnits converts a major-unit amount to whole cents, rounding half away
// from zero.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// MajorUnits formats cents as a plain decimal string, e.g. 1250 -> "12.50".
func MajorUnits(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

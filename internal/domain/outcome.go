package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// FieldErrors maps a form field name to its validation messages, in the
// order the rules produced them.
type FieldErrors map[string][]string

// Fields returns the sorted names of the fields that have at least one error.
func (fe FieldErrors) Fields() []string {
	var names []string
	for name, msgs := range fe {
		if len(msgs) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// InvoiceFields is a validated invoice form. Amount is in major units.
type InvoiceFields struct {
	CustomerID string
	Amount     decimal.Decimal
	Status     InvoiceStatus
}

// ValidationResult holds either Fields (success) or Errors and Message
// (failure). Exactly one side is populated.
type ValidationResult struct {
	Fields  *InvoiceFields
	Errors  FieldErrors
	Message string
}

func (r ValidationResult) OK() bool {
	return r.Fields != nil
}

// ActionOutcome is what an invoice action hands back to its caller.
// On success RedirectTo may name the page to navigate to (create, update);
// on failure Message is set and Errors holds any per-field problems.
type ActionOutcome struct {
	RedirectTo string
	Message    string
	Errors     FieldErrors
}

func Redirect(path string) ActionOutcome {
	return ActionOutcome{RedirectTo: path}
}

func Failure(message string, errs FieldErrors) ActionOutcome {
	return ActionOutcome{Message: message, Errors: errs}
}

func (o ActionOutcome) Failed() bool {
	return o.Message != ""
}

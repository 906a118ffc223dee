package invoicer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/xraph/invoicer/invoice"
)

var phonePattern = regexp.MustCompile(`^[0-9+\-() ]+$`)

// minPhoneDigits is the fewest digits a phone number may carry.
const minPhoneDigits = 7

// ValidateInput checks in and returns every violation as a MultiError of
// ValidationError values, or nil when the input is acceptable.
func ValidateInput(in invoice.Input) error {
	var errs MultiError

	if strings.TrimSpace(in.Billing.Name) == "" {
		errs.Add(ValidationError{Field: "billing.name", Reason: "is required"})
	}
	if phone := strings.TrimSpace(in.Billing.Phone); phone != "" {
		if reason := checkPhone(phone); reason != "" {
			errs.Add(ValidationError{Field: "billing.phone", Reason: reason})
		}
	}
	if !in.Currency.Valid() {
		errs.Add(ValidationError{Field: "currency", Reason: fmt.Sprintf("unsupported currency %q", in.Currency)})
	}

	if len(in.Items) == 0 {
		errs.Add(ValidationError{Field: "items", Reason: "at least one line item is required"})
	}
	for i, it := range in.Items {
		field := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(it.Description) == "" {
			errs.Add(ValidationError{Field: field + ".description", Reason: "is required"})
		}
		if !it.Quantity.IsPositive() {
			errs.Add(ValidationError{Field: field + ".quantity", Reason: "must be greater than zero"})
		}
		if it.UnitPrice.IsNegative() {
			errs.Add(ValidationError{Field: field + ".unit_price", Reason: "must not be negative"})
		}
	}

	if in.TaxRate.IsNegative() {
		errs.Add(ValidationError{Field: "tax_rate", Reason: "must not be negative"})
	}
	switch {
	case in.Discount.IsNegative():
		errs.Add(ValidationError{Field: "discount", Reason: "must not be negative"})
	case in.Discount.GreaterThan(subtotalOf(in)):
		errs.Add(ValidationError{Field: "discount", Reason: "must not exceed the subtotal"})
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// subtotalOf sums only the well-formed items so a bad row does not mask a
// discount violation.
func subtotalOf(in invoice.Input) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range in.Items {
		if it.Quantity.IsPositive() && !it.UnitPrice.IsNegative() {
			sum = sum.Add(invoice.LineAmount(it.Quantity, it.UnitPrice))
		}
	}
	return sum
}

func checkPhone(phone string) string {
	if !phonePattern.MatchString(phone) {
		return "may only contain digits, spaces and + - ( )"
	}
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < minPhoneDigits {
		return fmt.Sprintf("must contain at least %d digits", minPhoneDigits)
	}
	return ""
}

// firstViolation unwraps a MultiError to its first ValidationError.
func firstViolation(err error) error {
	if me, ok := err.(MultiError); ok && me.HasErrors() {
		return me.First()
	}
	return err
}

// AngelaMos | 2026
// validate.go

package finance

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelamos/studio-portal/internal/core"
)

// AmountInput is a JSON amount that accepts numbers, numeric strings and
// null, and remembers whether the field was present at all.
type AmountInput struct {
	present bool
	null    bool
	raw     string
}

func (a *AmountInput) UnmarshalJSON(b []byte) error {
	a.present = true
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		a.null = true
		return nil
	}

	s := string(b)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	a.raw = strings.TrimSpace(s)
	return nil
}

func Amount(v string) AmountInput {
	return AmountInput{present: true, raw: v}
}

func NullAmount() AmountInput {
	return AmountInput{present: true, null: true}
}

func (a AmountInput) Present() bool { return a.present }

// Parse reads the amount. ok is false when the text is not a number.
func (a AmountInput) Parse() (decimal.NullDecimal, bool) {
	if !a.present || a.null {
		return decimal.NullDecimal{}, true
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(a.raw, ",", ""))
	if err != nil {
		return decimal.NullDecimal{}, false
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, true
}

// Financials is the persisted pair checked by every write path.
type Financials struct {
	ContractSum  decimal.NullDecimal
	CashReceived decimal.NullDecimal
}

// Validate is the single write-side check for project financials. Values
// are rejected with field messages, never clamped.
func Validate(f Financials) error {
	fields := core.FieldErrors{}

	if f.ContractSum.Valid && f.ContractSum.Decimal.IsNegative() {
		fields["contract_sum"] = "contract_sum must not be negative"
	}

	if f.CashReceived.Valid {
		switch {
		case f.CashReceived.Decimal.IsNegative():
			fields["cash_received"] = "cash_received must not be negative"
		case !f.ContractSum.Valid && f.CashReceived.Decimal.IsPositive():
			fields["cash_received"] = "contract_sum must be set before recording cash received"
		case f.ContractSum.Valid && f.CashReceived.Decimal.GreaterThan(f.ContractSum.Decimal):
			fields["cash_received"] = "cash_received cannot exceed contract_sum"
		}
	}

	if len(fields) > 0 {
		return fields
	}
	return nil
}

// ParseFinancials applies the submitted amounts over current and reports
// non-numeric input per field.
func ParseFinancials(current Financials, contract, cash AmountInput) (Financials, error) {
	next := current
	fields := core.FieldErrors{}

	if contract.Present() {
		v, ok := contract.Parse()
		if !ok {
			fields["contract_sum"] = "contract_sum must be a number"
		}
		next.ContractSum = v
	}

	if cash.Present() {
		v, ok := cash.Parse()
		if !ok {
			fields["cash_received"] = "cash_received must be a number"
		}
		next.CashReceived = v
	}

	if len(fields) > 0 {
		return current, fields
	}
	return next, nil
}

// ValidatePayment checks a single ledger amount.
func ValidatePayment(amount AmountInput) (decimal.Decimal, error) {
	v, ok := amount.Parse()
	switch {
	case !ok:
		return decimal.Zero, core.FieldErrors{"amount": "amount must be a number"}
	case !v.Valid:
		return decimal.Zero, core.FieldErrors{"amount": "amount is required"}
	case !v.Decimal.IsPositive():
		return decimal.Zero, core.FieldErrors{"amount": "amount must be greater than zero"}
	}
	return v.Decimal, nil
}

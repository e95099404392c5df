// AngelaMos | 2026
// validate_test.go

package finance

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/studio-portal/internal/core"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		input     Financials
		wantField string
	}{
		{
			name:  "cash below contract",
			input: Financials{ContractSum: amount(500), CashReceived: amount(100)},
		},
		{
			name:  "cash equals contract",
			input: Financials{ContractSum: amount(500), CashReceived: amount(500)},
		},
		{
			name:  "nothing set",
			input: Financials{},
		},
		{
			name:      "cash exceeds contract",
			input:     Financials{ContractSum: amount(500), CashReceived: amount(501)},
			wantField: "cash_received",
		},
		{
			name:      "negative contract",
			input:     Financials{ContractSum: amount(-1)},
			wantField: "contract_sum",
		},
		{
			name:      "negative cash",
			input:     Financials{ContractSum: amount(10), CashReceived: amount(-1)},
			wantField: "cash_received",
		},
		{
			name:      "cash without contract",
			input:     Financials{CashReceived: amount(10)},
			wantField: "cash_received",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.input)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrInvalidInput)

			var fields core.FieldErrors
			require.True(t, errors.As(err, &fields))
			assert.Contains(t, fields, tt.wantField)
		})
	}
}

func TestAmountInput_UnmarshalJSON(t *testing.T) {
	var body struct {
		Contract AmountInput `json:"contract_sum"`
		Cash     AmountInput `json:"cash_received"`
		Missing  AmountInput `json:"missing"`
	}

	err := json.Unmarshal([]byte(`{"contract_sum": 250000.5, "cash_received": "1,000"}`), &body)
	require.NoError(t, err)

	contract, ok := body.Contract.Parse()
	require.True(t, ok)
	assert.True(t, contract.Decimal.Equal(decimal.RequireFromString("250000.5")))

	cash, ok := body.Cash.Parse()
	require.True(t, ok)
	assert.True(t, cash.Decimal.Equal(decimal.NewFromInt(1000)))

	assert.False(t, body.Missing.Present())
}

func TestParseFinancials(t *testing.T) {
	current := Financials{ContractSum: amount(100), CashReceived: amount(40)}

	t.Run("absent fields keep current values", func(t *testing.T) {
		next, err := ParseFinancials(current, Amount("200"), AmountInput{})
		require.NoError(t, err)
		assert.True(t, next.ContractSum.Decimal.Equal(decimal.NewFromInt(200)))
		assert.True(t, next.CashReceived.Decimal.Equal(decimal.NewFromInt(40)))
	})

	t.Run("null clears", func(t *testing.T) {
		next, err := ParseFinancials(current, AmountInput{}, NullAmount())
		require.NoError(t, err)
		assert.False(t, next.CashReceived.Valid)
	})

	t.Run("non numeric is a field error", func(t *testing.T) {
		_, err := ParseFinancials(current, Amount("lots"), Amount("12x"))
		var fields core.FieldErrors
		require.True(t, errors.As(err, &fields))
		assert.Contains(t, fields, "contract_sum")
		assert.Contains(t, fields, "cash_received")
	})
}

func TestValidatePayment(t *testing.T) {
	v, err := ValidatePayment(Amount("1500.25"))
	require.NoError(t, err)
	assert.Equal(t, "1500.25", v.String())

	for _, in := range []AmountInput{Amount("0"), Amount("-5"), Amount("abc"), NullAmount(), {}} {
		_, err := ValidatePayment(in)
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	}
}

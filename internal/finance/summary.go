// AngelaMos | 2026
// summary.go

package finance

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Summary is the derived financial position of a project. Balance keeps its
// sign so over-payment is visible; PercentPaid is clamped for display.
type Summary struct {
	ContractSum  decimal.Decimal `json:"contract_sum"`
	CashReceived decimal.Decimal `json:"cash_received"`
	Balance      decimal.Decimal `json:"balance"`
	PercentPaid  int             `json:"percent_paid"`
	IsFullyPaid  bool            `json:"is_fully_paid"`
	IsOverpaid   bool            `json:"is_overpaid"`
	HasContract  bool            `json:"has_contract"`
	Formatted    Formatted       `json:"formatted"`
}

type Formatted struct {
	ContractSum  string `json:"contract_sum"`
	CashReceived string `json:"cash_received"`
	Balance      string `json:"balance"`
}

type Calculator struct {
	format *Formatter
}

func NewCalculator(format *Formatter) *Calculator {
	if format == nil {
		format = DefaultFormatter()
	}
	return &Calculator{format: format}
}

// Summarize derives the financial summary. It never fails: absent or
// negative inputs are read as zero, and an absent contract sum is never
// reported as fully paid.
func (c *Calculator) Summarize(contractSum, cashReceived decimal.NullDecimal) Summary {
	contract := nonNegative(contractSum)
	cash := nonNegative(cashReceived)
	balance := contract.Sub(cash)

	s := Summary{
		ContractSum:  contract,
		CashReceived: cash,
		Balance:      balance,
		HasContract:  contractSum.Valid,
		IsOverpaid:   balance.IsNegative(),
	}

	if contractSum.Valid {
		s.IsFullyPaid = !balance.IsPositive()
	}

	if contract.IsPositive() {
		pct := cash.Mul(hundred).Div(contract).Round(0).IntPart()
		s.PercentPaid = int(min(max(pct, 0), 100))
	}

	s.Formatted = Formatted{
		ContractSum:  c.format.Format(contract),
		CashReceived: c.format.Format(cash),
		Balance:      c.format.Format(balance),
	}

	return s
}

// Sum totals a payment ledger.
func Sum(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

func nonNegative(v decimal.NullDecimal) decimal.Decimal {
	if !v.Valid || v.Decimal.IsNegative() {
		return decimal.Zero
	}
	return v.Decimal
}

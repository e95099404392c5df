// AngelaMos | 2026
// format.go

package finance

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders amounts with locale digit grouping and a fixed
// currency label, e.g. "USD 350,000" or "USD 1,250.50".
type Formatter struct {
	label   string
	printer *message.Printer
}

func NewFormatter(label, locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.AmericanEnglish
	}
	return &Formatter{
		label:   label,
		printer: message.NewPrinter(tag),
	}
}

func DefaultFormatter() *Formatter {
	return NewFormatter("USD", "en-US")
}

func (f *Formatter) Format(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	digits := f.digits(d)

	if f.label == "" {
		return sign + digits
	}
	return sign + f.label + " " + digits
}

// digits works from the exact decimal string so cents survive at any
// magnitude. The printer only groups the whole part and supplies the
// locale's decimal separator.
func (f *Formatter) digits(d decimal.Decimal) string {
	if d.IsInteger() {
		return f.group(d.String())
	}

	whole, frac, _ := strings.Cut(d.StringFixed(2), ".")
	return f.group(whole) + f.fraction(frac)
}

func (f *Formatter) group(whole string) string {
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return whole
	}
	return f.printer.Sprintf("%d", n)
}

// fraction localizes ".NN" by printing 0.NN, which a float64 holds
// exactly enough for two places, and dropping the leading zero.
func (f *Formatter) fraction(frac string) string {
	v, err := strconv.ParseFloat("0."+frac, 64)
	if err != nil {
		return "." + frac
	}
	s := f.printer.Sprintf("%.2f", v)
	if i := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) }); i >= 0 {
		return s[i:]
	}
	return "." + frac
}

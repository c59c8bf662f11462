// Package format renders amounts, hours and dates for report documents.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/work-reports/pkg/models/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	DefaultLocale   = "en-US"
	DefaultCurrency = "USD"
)

// Formatter renders values with the CLDR separators and currency symbols of one locale.
type Formatter struct {
	locale   language.Tag
	currency currency.Unit
	printer  *message.Printer
	symbol   string
	// symbol after the amount, for locales with a decimal comma
	suffix bool
}

// New builds a formatter for a BCP 47 locale and an ISO 4217 currency code.
func New(locale, currencyCode string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("%w: locale %q: %v", domain.ErrInvalidArgument, locale, err)
	}
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("%w: currency %q: %v", domain.ErrInvalidArgument, currencyCode, err)
	}

	printer := message.NewPrinter(tag)
	return &Formatter{
		locale:   tag,
		currency: unit,
		printer:  printer,
		symbol:   printer.Sprint(currency.Symbol(unit)),
		suffix:   strings.Contains(printer.Sprint(number.Decimal(1.5, number.Scale(1))), ","),
	}, nil
}

// Default is the en-US / USD formatter.
func Default() *Formatter {
	f, err := New(DefaultLocale, DefaultCurrency)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Formatter) Locale() string {
	return f.locale.String()
}

func (f *Formatter) CurrencyCode() string {
	return f.currency.String()
}

// Currency formats an amount with two decimals, rounding half to even.
func (f *Formatter) Currency(amount decimal.Decimal) string {
	rounded := amount.RoundBank(2)
	digits := f.number(rounded.Abs())
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}

	if f.suffix {
		return sign + digits + " " + f.symbol
	}
	if len([]rune(f.symbol)) > 1 {
		return sign + f.symbol + " " + digits
	}
	return sign + f.symbol + digits
}

// Hours formats a quantity of hours with two decimals.
func (f *Formatter) Hours(hours decimal.Decimal) string {
	return hours.RoundBank(2).StringFixed(2)
}

func (f *Formatter) Date(t time.Time) string {
	return t.Format(domain.DateLayout)
}

// Month renders a period as "February 2025".
func (f *Formatter) Month(p domain.Period) string {
	return fmt.Sprintf("%s %d", p.Month, p.Year)
}

// number groups an already rounded, non-negative amount. The value is exact at two decimals,
// so the float handed to the printer formats back to the same digits.
func (f *Formatter) number(d decimal.Decimal) string {
	return f.printer.Sprint(number.Decimal(d.InexactFloat64(), number.Scale(2)))
}

package campaign

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currencies is the fixed set of payout currencies the portal accepts.
var Currencies = []string{"EUR", "USD"}

// DefaultCurrency is the currency preselected for new payout rows.
const DefaultCurrency = "EUR"

// DefaultCountry is the concrete country preselected when a form leaves
// worldwide mode or adds a country-specific row.
const DefaultCountry = "US"

// CountryCodes lists the countries offered by the payout country selector.
var CountryCodes = []string{
	"US", "CA", "GB", "DE", "FR", "IT", "ES", "AU",
	"JP", "BR", "MX", "IN", "CN", "RU", "KR",
}

// ValidCurrency reports whether code is one of the accepted currencies.
func ValidCurrency(code string) bool {
	for _, c := range Currencies {
		if c == code {
			return true
		}
	}
	return false
}

// CurrencySymbol returns the narrow symbol for a currency code, such as "€"
// for EUR. Unknown codes are returned unchanged.
func CurrencySymbol(code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return code
	}
	printer := message.NewPrinter(language.English)
	return printer.Sprint(currency.NarrowSymbol(unit))
}

// FormatAmount renders an amount with its currency symbol for list display.
func FormatAmount(amount float64, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return message.NewPrinter(language.English).Sprintf("%.2f %s", amount, code)
	}
	printer := message.NewPrinter(language.English)
	return printer.Sprintf("%v", currency.NarrowSymbol(unit.Amount(amount)))
}

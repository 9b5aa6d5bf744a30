package format

import (
    "strings"

    "golang.org/x/text/language"
    "golang.org/x/text/message"
    "golang.org/x/text/number"
)

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// Decimal formats an amount in minor units (centavos) with two decimals and
// the pt-BR decimal comma, without thousands grouping.
// Example: Decimal(123450) => "1234,50"
func Decimal(minor int64) string {
    return ptBR.Sprint(number.Decimal(float64(minor)/100, number.Scale(2), number.NoSeparator()))
}

// FmtCurrency formats amount in minor units for basic currencies.
// Example: FmtCurrency(3500, "BRL") => "R$ 35,00"
func FmtCurrency(minor int64, currency string) string {
    currency = strings.ToUpper(strings.TrimSpace(currency))
    switch currency {
    case "", "BRL":
        return "R$ " + Decimal(minor)
    default:
        return currency + " " + Decimal(minor)
    }
}

// Count renders an item count for the header badge.
func Count(n int) string {
    if n < 0 {
        n = 0
    }
    return ptBR.Sprint(number.Decimal(n, number.NoSeparator()))
}

package format

import "testing"

func TestDecimalUsesComma(t *testing.T) {
    cases := map[int64]string{
        0:     "0,00",
        5:     "0,05",
        2000:  "20,00",
        3500:  "35,00",
        12345: "123,45",
        123450: "1234,50",
        100000000: "1000000,00",
    }
    for in, want := range cases {
        if got := Decimal(in); got != want {
            t.Fatalf("Decimal(%d) = %q, want %q", in, got, want)
        }
    }
}

func TestFmtCurrency(t *testing.T) {
    if got := FmtCurrency(2500, "BRL"); got != "R$ 25,00" {
        t.Fatalf("expected R$ 25,00, got %q", got)
    }
    if got := FmtCurrency(2500, ""); got != "R$ 25,00" {
        t.Fatalf("expected default currency BRL, got %q", got)
    }
    if got := FmtCurrency(100, "usd"); got != "USD 1,00" {
        t.Fatalf("expected USD 1,00, got %q", got)
    }
}

func TestCountClampsNegative(t *testing.T) {
    if got := Count(-2); got != "0" {
        t.Fatalf("expected 0, got %q", got)
    }
    if got := Count(7); got != "7" {
        t.Fatalf("expected 7, got %q", got)
    }
    if got := Count(1001); got != "1001" {
        t.Fatalf("expected ungrouped 1001, got %q", got)
    }
}

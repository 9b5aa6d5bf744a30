package shipping

import (
	"errors"
	"testing"
)

func TestEstimateTable(t *testing.T) {
	cases := []struct {
		in       string
		cep      string
		price    int64
		leadTime string
		message  string
	}{
		{"01310100", "01310100", 2000, "2-3 dias úteis", "Frete para 01310100: R$ 20,00 (2-3 dias úteis)"},
		{"13083-970", "13083970", 2000, "2-3 dias úteis", "Frete para 13083970: R$ 20,00 (2-3 dias úteis)"},
		{"90000000", "90000000", 3500, "4-6 dias úteis", "Frete para 90000000: R$ 35,00 (4-6 dias úteis)"},
		{"30000000", "30000000", 2500, "5-7 dias úteis", "Frete para 30000000: R$ 25,00 (5-7 dias úteis)"},
		{" 70.040-010 ", "70040010", 2500, "5-7 dias úteis", "Frete para 70040010: R$ 25,00 (5-7 dias úteis)"},
	}
	for _, tc := range cases {
		q, err := Estimate(tc.in)
		if err != nil {
			t.Fatalf("Estimate(%q) returned error: %v", tc.in, err)
		}
		if q.PostalCode != tc.cep || q.Price != tc.price || q.LeadTime != tc.leadTime {
			t.Fatalf("Estimate(%q) = %+v", tc.in, q)
		}
		if got := q.Message(); got != tc.message {
			t.Fatalf("Message() = %q, want %q", got, tc.message)
		}
	}
}

func TestEstimateRejectsWrongLength(t *testing.T) {
	for _, in := range []string{"1234", "", "abcdefgh", "012345678"} {
		if _, err := Estimate(in); !errors.Is(err, ErrInvalidPostalCode) {
			t.Fatalf("Estimate(%q) error = %v, want ErrInvalidPostalCode", in, err)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("01.310-100"); got != "01310100" {
		t.Fatalf("unexpected normalized value %q", got)
	}
}

// Package shipping quotes a flat shipping price from the first digit of a CEP.
package shipping

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pulheze/Hafen/internal/format"
)

// PostalCodeLength is the digit count of a valid CEP.
const PostalCodeLength = 8

// ErrInvalidPostalCode is returned when fewer or more than 8 digits remain.
var ErrInvalidPostalCode = errors.New("invalid postal code")

// InvalidMessage is shown inline next to the CEP field.
const InvalidMessage = "Por favor, insira um CEP válido com 8 dígitos."

// Tier is one row of the price table.
type Tier struct {
	Price    int64
	LeadTime string
}

var (
	tierSoutheast = Tier{Price: 2000, LeadTime: "2-3 dias úteis"}
	tierSouth     = Tier{Price: 3500, LeadTime: "4-6 dias úteis"}
	tierDefault   = Tier{Price: 2500, LeadTime: "5-7 dias úteis"}
)

// Quote is the result of a successful estimate.
type Quote struct {
	PostalCode string
	Price      int64
	LeadTime   string
}

// Message renders the line shown under the CEP field.
func (q Quote) Message() string {
	return fmt.Sprintf("Frete para %s: R$ %s (%s)", q.PostalCode, format.Decimal(q.Price), q.LeadTime)
}

// Normalize strips everything except ASCII digits.
func Normalize(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Estimate quotes shipping for raw, which may contain separators ("01310-100").
func Estimate(raw string) (Quote, error) {
	cep := Normalize(raw)
	if len(cep) != PostalCodeLength {
		return Quote{}, fmt.Errorf("%w: %q has %d digits", ErrInvalidPostalCode, raw, len(cep))
	}
	tier := lookup(cep[0])
	return Quote{PostalCode: cep, Price: tier.Price, LeadTime: tier.LeadTime}, nil
}

func lookup(prefix byte) Tier {
	switch prefix {
	case '0', '1':
		return tierSoutheast
	case '9':
		return tierSouth
	default:
		return tierDefault
	}
}

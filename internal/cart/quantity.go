package cart

import (
	"errors"
	"strconv"
	"strings"
)

// MaxQuantity caps every quantity control value and cart line.
const MaxQuantity = 9999

// Coerce normalises a quantity control value. Anything that does not start
// with an integer, or whose integer is below 1, becomes 1.
func Coerce(value string) int {
	n, ok := leadingInt(value)
	if !ok || n < 1 {
		return 1
	}
	return n
}

// Increment returns the control value after a "+" click, saturating at
// MaxQuantity. Unparseable or negative values count as 0.
func Increment(value string) int {
	n, ok := leadingInt(value)
	if !ok || n < 0 {
		n = 0
	}
	if n >= MaxQuantity {
		return MaxQuantity
	}
	return n + 1
}

// Decrement returns the control value after a "-" click, never below 1.
func Decrement(value string) int {
	n, ok := leadingInt(value)
	if !ok || n <= 1 {
		return 1
	}
	return n - 1
}

// leadingInt parses an optional sign followed by decimal digits, ignoring
// surrounding whitespace and any trailing garbage ("3abc" => 3). The result
// is clamped to [-MaxQuantity, MaxQuantity].
func leadingInt(value string) (int, bool) {
	s := strings.TrimSpace(value)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	switch {
	case n > MaxQuantity:
		n = MaxQuantity
	case n < -MaxQuantity:
		n = -MaxQuantity
	}
	return n, true
}

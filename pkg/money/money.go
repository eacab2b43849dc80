// Package money handles on-chain amounts as signed base-10 integer strings
// in a currency's smallest unit. Amounts never touch floating point.
package money

import (
	"errors"
	"fmt"
	"math/big"
)

const Zero = "0"

var ErrInvalidAmount = errors.New("money: invalid integer amount")

// Parse validates s as a signed base-10 integer and returns it as a big.Int.
func Parse(s string) (*big.Int, error) {
	if s == "" {
		return nil, ErrInvalidAmount
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return n, nil
}

// Add returns a+b.
func Add(a, b string) (string, error) {
	x, err := Parse(a)
	if err != nil {
		return "", err
	}
	y, err := Parse(b)
	if err != nil {
		return "", err
	}
	return new(big.Int).Add(x, y).String(), nil
}

// Sub returns a-b.
func Sub(a, b string) (string, error) {
	x, err := Parse(a)
	if err != nil {
		return "", err
	}
	y, err := Parse(b)
	if err != nil {
		return "", err
	}
	return new(big.Int).Sub(x, y).String(), nil
}

// Neg returns -a.
func Neg(a string) (string, error) {
	x, err := Parse(a)
	if err != nil {
		return "", err
	}
	return new(big.Int).Neg(x).String(), nil
}

// Cmp returns -1, 0 or +1 for a<b, a==b, a>b.
func Cmp(a, b string) (int, error) {
	x, err := Parse(a)
	if err != nil {
		return 0, err
	}
	y, err := Parse(b)
	if err != nil {
		return 0, err
	}
	return x.Cmp(y), nil
}

// IsPositive reports whether a > 0.
func IsPositive(a string) bool {
	x, err := Parse(a)
	if err != nil {
		return false
	}
	return x.Sign() > 0
}

// GTE reports whether a >= b; malformed input counts as false.
func GTE(a, b string) bool {
	c, err := Cmp(a, b)
	if err != nil {
		return false
	}
	return c >= 0
}

// Package field holds helpers for BN254 scalar field elements, the integers
// every commitment and public signal is made of.
package field

import (
	"math/big"
	"strings"

	"github.com/iden3/go-anonymous-data/constants"
	"github.com/pkg/errors"
)

var (
	// R is the scalar field modulus.
	R, _ = new(big.Int).SetString(constants.R, 10)
	// Q is the base field modulus.
	Q, _ = new(big.Int).SetString(constants.Q, 10)
)

// ErrNotInField is returned when a value is negative or not below R.
var ErrNotInField = errors.New("value is not in the field")

// InField reports whether x is in [0, R).
func InField(x *big.Int) bool {
	return x != nil && x.Sign() >= 0 && x.Cmp(R) < 0
}

// InBaseField reports whether x is in [0, Q).
func InBaseField(x *big.Int) bool {
	return x != nil && x.Sign() >= 0 && x.Cmp(Q) < 0
}

// Reduce returns x mod R as a new integer.
func Reduce(x *big.Int) *big.Int {
	return new(big.Int).Mod(x, R)
}

// ParseInt parses a decimal or 0x-prefixed hex string without any range check.
func ParseInt(s string) (*big.Int, error) {
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		s = s[2:]
	}
	n, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, errors.Errorf("can not parse string to *big.Int: %q", s)
	}
	return n, nil
}

// ParseElement parses s and checks that it is a field element.
func ParseElement(s string) (*big.Int, error) {
	n, err := ParseInt(s)
	if err != nil {
		return nil, err
	}
	if !InField(n) {
		return nil, errors.Wrapf(ErrNotInField, "%s", s)
	}
	return n, nil
}

// ParseElements converts string array to array of field elements.
// It stops at the first invalid entry.
func ParseElements(s []string) ([]*big.Int, error) {
	o := make([]*big.Int, 0, len(s))
	for i := range s {
		n, err := ParseElement(s[i])
		if err != nil {
			return nil, errors.WithMessagef(err, "element %d", i)
		}
		o = append(o, n)
	}
	return o, nil
}

// Strings renders elements as decimal strings.
func Strings(elems []*big.Int) []string {
	out := make([]string, len(elems))
	for i, e := range elems {
		out[i] = e.String()
	}
	return out
}

// Equal compares two elements, treating nil as zero.
func Equal(a, b *big.Int) bool {
	if a == nil {
		a = new(big.Int)
	}
	if b == nil {
		b = new(big.Int)
	}
	return a.Cmp(b) == 0
}

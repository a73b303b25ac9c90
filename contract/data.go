package contract

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Unmarshaler converts contract output to provided interface
type Unmarshaler interface {
	Unmarshal([]interface{}) error
}

// Uint256 is a single uint256 output.
type Uint256 struct {
	*big.Int
}

func (s *Uint256) Unmarshal(data []interface{}) error {
	if len(data) == 0 || data[0] == nil {
		return errors.New("invalid data")
	}
	bi, ok := data[0].(*big.Int)
	if !ok {
		return errors.New("failed unmarshal to big.Int")
	}
	s.Int = bi
	return nil
}

// Address is a single address output.
type Address struct {
	common.Address
}

func (a *Address) Unmarshal(data []interface{}) error {
	if len(data) == 0 || data[0] == nil {
		return errors.New("invalid data")
	}
	addr, ok := data[0].(common.Address)
	if !ok {
		return errors.New("failed unmarshal to address")
	}
	a.Address = addr
	return nil
}

// Bool is a single bool output.
type Bool struct {
	Value bool
}

func (b *Bool) Unmarshal(data []interface{}) error {
	if len(data) == 0 || data[0] == nil {
		return errors.New("invalid data")
	}
	v, ok := data[0].(bool)
	if !ok {
		return errors.New("failed unmarshal to bool")
	}
	b.Value = v
	return nil
}

// Package domain provides the typed identifiers and value parsers shared by every layer.
package domain

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	dErrors "gatepass/pkg/domain-errors"
)

// PassID identifies an issued pass. Issued ids start at 1; zero is never issued.
type PassID uint64

// Parse functions - use at trust boundaries (handlers, CLI flags, JWT claims).

func ParsePassID(s string) (PassID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "pass ID cannot be empty")
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid pass ID format")
	}
	return PassID(v), nil
}

// ParseAddress parses a 0x-prefixed hex account address.
// The zero address is accepted here; callers that need a real account use RequireAddress.
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return common.Address{}, dErrors.New(dErrors.CodeInvalidInput, "address cannot be empty")
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, dErrors.New(dErrors.CodeInvalidInput, "invalid address format")
	}
	return common.HexToAddress(s), nil
}

// RequireAddress parses an address and rejects the zero address.
func RequireAddress(s, label string) (common.Address, error) {
	addr, err := ParseAddress(s)
	if err != nil {
		return common.Address{}, dErrors.New(dErrors.CodeInvalidInput, label+": "+err.Error())
	}
	if IsZeroAddress(addr) {
		return common.Address{}, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be the zero address")
	}
	return addr, nil
}

// ParseAmount parses a non-negative base-10 token amount in minor units.
func ParseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "amount cannot be empty")
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid amount format")
	}
	if v.Sign() < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "amount cannot be negative")
	}
	return v, nil
}

func (id PassID) String() string { return strconv.FormatUint(uint64(id), 10) }

func (id PassID) IsNil() bool { return id == 0 }

// BigInt converts the id for ledger calls that take uint256 token ids.
func (id PassID) BigInt() *big.Int { return new(big.Int).SetUint64(uint64(id)) }

func IsZeroAddress(addr common.Address) bool { return addr == (common.Address{}) }

package domain

import (
	"strings"

	dErrors "trellis/pkg/domain-errors"
)

// Address identifies a holder, agent, or owner on the ledger. It is an opaque
// identifier assigned by the surrounding platform; the ledger never interprets
// its contents beyond equality.
type Address string

// Zero is the absent address. Operations must never credit or debit it.
const Zero Address = ""

// ParseAddress validates an address at trust boundaries. Addresses are
// case-insensitive; the canonical form is lowercase with no surrounding
// whitespace.
func ParseAddress(raw string) (Address, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Zero, dErrors.New(dErrors.CodeInvalidInput, "address is required")
	}
	if len(trimmed) > 128 {
		return Zero, dErrors.New(dErrors.CodeInvalidInput, "address exceeds 128 characters")
	}
	if strings.ContainsAny(trimmed, " \t\n") {
		return Zero, dErrors.New(dErrors.CodeInvalidInput, "address must not contain whitespace")
	}
	return Address(strings.ToLower(trimmed)), nil
}

func (a Address) String() string {
	return string(a)
}

// IsZero reports whether the address is absent.
func (a Address) IsZero() bool {
	return a == Zero
}

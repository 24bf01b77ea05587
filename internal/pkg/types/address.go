package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gabapcia/faucet/internal/pkg/validator"
)

// ErrInvalidAddress is returned when a string is not a 0x-prefixed, 40 hex character account identifier.
var ErrInvalidAddress = errors.New("invalid address")

// addressTag is the validation expression every Address must satisfy.
const addressTag = "required,eth_addr"

// Address represents an account identifier on the target ledger (e.g., "0x3eD4...896b").
// It provides validation, JSON marshaling/unmarshaling, and lowercase normalization.
type Address string

// AddressFromString validates the input string and returns an Address if valid.
func AddressFromString(s string) (Address, error) {
	if err := validateAddress(s); err != nil {
		return "", err
	}
	return Address(s), nil
}

// validateAddress checks whether a string is a 0x-prefixed, 40 hex character address.
func validateAddress(s string) error {
	if err := validator.Var(s, addressTag); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	return nil
}

// Normalize returns the canonical lowercase form used for comparison and storage.
func (a Address) Normalize() Address {
	return Address(strings.ToLower(string(a)))
}

// String returns the address as a plain string.
func (a Address) String() string {
	return string(a)
}

// MarshalJSON encodes the Address as a JSON string.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(a))
}

// UnmarshalJSON parses and validates a JSON-encoded address.
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	if err := validateAddress(s); err != nil {
		return err
	}

	*a = Address(s)
	return nil
}

package types

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
)

// BigInt is a math/big.Int that marshals to and from JSON and CBOR as a
// decimal string, so it never loses precision and never appears as a JSON
// number in canonical digests.
type BigInt big.Int

// ToInt returns the *big.Int view of b.
func (b *BigInt) ToInt() *big.Int {
	return (*big.Int)(b)
}

// String returns the base-10 representation of b.
func (b *BigInt) String() string {
	if b == nil {
		return "<nil>"
	}
	return b.ToInt().String()
}

// SetString parses s as a base-10 integer into b.
func (b *BigInt) SetString(s string) error {
	i, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("invalid big integer: %q", s)
	}
	*b = BigInt(*i)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (b BigInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.ToInt().String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *BigInt) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("bigint: %w", err)
	}
	return b.SetString(s)
}

// MarshalCBOR implements cbor.Marshaler.
func (b BigInt) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(b.ToInt().String())
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (b *BigInt) UnmarshalCBOR(data []byte) error {
	var s string
	if err := cbor.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("bigint: %w", err)
	}
	return b.SetString(s)
}

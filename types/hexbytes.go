package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// HexBytes is a byte slice that marshals to and from JSON and CBOR as a
// "0x"-prefixed hex string.
type HexBytes []byte

// HexStringToHexBytes decodes a "0x"-prefixed or bare hex string into a
// HexBytes. It panics on invalid input, matching the teacher's convention
// for artifact-loading helpers that operate on trusted, compiled-in data.
func HexStringToHexBytes(s string) HexBytes {
	b, err := hex.DecodeString(trimHexPrefix(s))
	if err != nil {
		panic(fmt.Sprintf("invalid hex string %q: %v", s, err))
	}
	return HexBytes(b)
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// String returns the "0x"-prefixed hex representation of b.
func (b HexBytes) String() string {
	return "0x" + hex.EncodeToString(b)
}

// MarshalJSON implements json.Marshaler.
func (b HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *HexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("hexbytes: %w", err)
	}
	decoded, err := hex.DecodeString(trimHexPrefix(s))
	if err != nil {
		return fmt.Errorf("hexbytes: %w", err)
	}
	*b = decoded
	return nil
}

// MarshalCBOR implements cbor.Marshaler. HexBytes is already a []byte, so the
// default CBOR byte-string encoding is used rather than a hex string, keeping
// the wire format compact.
func (b HexBytes) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal([]byte(b))
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (b *HexBytes) UnmarshalCBOR(data []byte) error {
	var raw []byte
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("hexbytes: %w", err)
	}
	*b = raw
	return nil
}

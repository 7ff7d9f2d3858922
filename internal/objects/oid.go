package objects

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/KostasZigo/gitobj/internal/constants"
)

// Oid is the SHA-1 identifier of a Git object.
// It is a value type: comparable with == and usable as a map key.
type Oid [constants.HashByteLength]byte

// ZeroOid is the all-zero identifier, never produced by hashing real content.
var ZeroOid Oid

// OidFromBytes builds an Oid from exactly 20 raw bytes.
func OidFromBytes(raw []byte) (Oid, error) {
	var oid Oid
	if len(raw) != constants.HashByteLength {
		return oid, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidOidLength, constants.HashByteLength, len(raw))
	}
	copy(oid[:], raw)
	return oid, nil
}

// OidFromSum converts a digest produced by crypto/sha1.
func OidFromSum(sum [sha1.Size]byte) Oid {
	return Oid(sum)
}

// ParseOid decodes a 40-character hex string.
// Upper-case digits are accepted; String always emits lower-case.
func ParseOid(s string) (Oid, error) {
	var oid Oid
	if len(s) != constants.HashStringLength {
		return oid, fmt.Errorf("%w: %w: expected %d characters, got %d",
			ErrInvalidOidLength, ErrInvalidHexLength, constants.HashStringLength, len(s))
	}

	for i := range oid {
		hi, ok := fromHexChar(s[2*i])
		if !ok {
			return ZeroOid, fmt.Errorf("%w: %s at offset %d", ErrInvalidHexDigit, strconv.QuoteRune(rune(s[2*i])), 2*i)
		}
		lo, ok := fromHexChar(s[2*i+1])
		if !ok {
			return ZeroOid, fmt.Errorf("%w: %s at offset %d", ErrInvalidHexDigit, strconv.QuoteRune(rune(s[2*i+1])), 2*i+1)
		}
		oid[i] = hi<<4 | lo
	}

	return oid, nil
}

// MustParseOid is ParseOid for constants and tests. It panics on error.
func MustParseOid(s string) Oid {
	oid, err := ParseOid(s)
	if err != nil {
		panic(err)
	}
	return oid
}

func fromHexChar(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// ComputeOid hashes body the way Git does: SHA-1 over "<type> <size>\0<body>".
func ComputeOid(objectType ObjectType, body []byte) Oid {
	h := sha1.New()
	h.Write(envelopeHeader(objectType, len(body)))
	h.Write(body)

	var oid Oid
	copy(oid[:], h.Sum(nil))
	return oid
}

// String returns the lower-case 40-character hex form.
func (o Oid) String() string {
	return hex.EncodeToString(o[:])
}

// Bytes returns a copy of the raw 20 bytes.
func (o Oid) Bytes() []byte {
	raw := make([]byte, constants.HashByteLength)
	copy(raw, o[:])
	return raw
}

func (o Oid) IsZero() bool {
	return o == ZeroOid
}

// Short returns the abbreviated 7-character form used in CLI output.
func (o Oid) Short() string {
	return o.String()[:7]
}

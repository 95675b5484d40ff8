// Package c32 implements Crockford base32 with checksums (c32check), the encoding of Stacks addresses.
package c32

import (
	"bytes"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
)

const (
	alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

	checksumLength = 4

	// addressPrefix is prepended to every c32check string to form a Stacks address.
	addressPrefix = 'S'

	hash160Length = 20
)

var (
	ErrInvalidCharacter = errors.New("invalid c32 character")
	ErrInvalidChecksum  = errors.New("invalid c32check checksum")
	ErrInvalidVersion   = errors.New("invalid c32check version")
	ErrInvalidAddress   = errors.New("invalid stacks address")
)

// Encode encodes data as big-endian c32. Each leading zero byte is kept as a leading '0' character.
func Encode(data []byte) string {
	out := make([]byte, 0, len(data)*8/5+1)
	var (
		acc  uint16
		bits uint
	)
	for i := len(data) - 1; i >= 0; i-- {
		acc |= uint16(data[i]) << bits
		bits += 8
		for bits >= 5 {
			out = append(out, alphabet[acc&0x1f])
			acc >>= 5
			bits -= 5
		}
	}
	if bits > 0 {
		out = append(out, alphabet[acc&0x1f])
	}

	// out is little-endian, trim the most significant zero digits
	for len(out) > 0 && out[len(out)-1] == '0' {
		out = out[:len(out)-1]
	}
	for i := 0; i < len(data) && data[i] == 0; i++ {
		out = append(out, '0')
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

// Decode decodes a c32 string. Input is normalized first: lowercase letters are accepted, `O` reads as `0`,
// `I` and `L` read as `1`.
func Decode(s string) ([]byte, error) {
	s = normalize(s)

	out := make([]byte, 0, len(s)*5/8+1)
	var (
		acc  uint16
		bits uint
	)
	for i := len(s) - 1; i >= 0; i-- {
		digit := strings.IndexByte(alphabet, s[i])
		if digit < 0 {
			return nil, errors.Wrapf(ErrInvalidCharacter, "%q", s[i])
		}
		acc |= uint16(digit) << bits
		bits += 5
		if bits >= 8 {
			out = append(out, byte(acc))
			acc >>= 8
			bits -= 8
		}
	}
	if bits > 0 {
		out = append(out, byte(acc))
	}

	for len(out) > 0 && out[len(out)-1] == 0 {
		out = out[:len(out)-1]
	}
	for i := 0; i < len(s) && s[i] == '0'; i++ {
		out = append(out, 0)
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func normalize(s string) string {
	return strings.NewReplacer("O", "0", "L", "1", "I", "1").Replace(strings.ToUpper(s))
}

func checksum(version byte, data []byte) []byte {
	return chainhash.DoubleHashB(append([]byte{version}, data...))[:checksumLength]
}

// CheckEncode encodes data with a version and a 4-byte double-sha256 checksum.
func CheckEncode(version byte, data []byte) (string, error) {
	if int(version) >= len(alphabet) {
		return "", errors.Wrapf(ErrInvalidVersion, "version %d", version)
	}
	payload := append(append([]byte{}, data...), checksum(version, data)...)
	return string(alphabet[version]) + Encode(payload), nil
}

// CheckDecode decodes a c32check string into its version and data, verifying the checksum.
func CheckDecode(s string) (version byte, data []byte, err error) {
	s = normalize(s)
	if len(s) < 2 {
		return 0, nil, errors.Wrap(ErrInvalidCharacter, "input too short")
	}
	v := strings.IndexByte(alphabet, s[0])
	if v < 0 {
		return 0, nil, errors.Wrapf(ErrInvalidCharacter, "%q", s[0])
	}

	payload, err := Decode(s[1:])
	if err != nil {
		return 0, nil, errors.WithStack(err)
	}
	if len(payload) < checksumLength {
		return 0, nil, errors.Wrap(ErrInvalidChecksum, "payload too short")
	}
	data, sum := payload[:len(payload)-checksumLength], payload[len(payload)-checksumLength:]
	if !bytes.Equal(sum, checksum(byte(v), data)) {
		return 0, nil, errors.WithStack(ErrInvalidChecksum)
	}
	return byte(v), data, nil
}

// EncodeAddress returns the Stacks address of a hash160 under the given address version.
func EncodeAddress(version byte, hash160 []byte) (string, error) {
	if len(hash160) != hash160Length {
		return "", errors.Wrapf(ErrInvalidAddress, "hash160 must be %d bytes, got %d", hash160Length, len(hash160))
	}
	encoded, err := CheckEncode(version, hash160)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return string(addressPrefix) + encoded, nil
}

// DecodeAddress returns the version and hash160 of a standard Stacks address. Contract principals
// (`<address>.<name>`) are not addresses and are rejected.
func DecodeAddress(address string) (version byte, hash160 []byte, err error) {
	if len(address) < 2 || address[0] != addressPrefix {
		return 0, nil, errors.Wrapf(ErrInvalidAddress, "%q must start with %q", address, addressPrefix)
	}
	version, hash160, err = CheckDecode(address[1:])
	if err != nil {
		return 0, nil, errors.Wrapf(ErrInvalidAddress, "%q: %v", address, err)
	}
	if len(hash160) != hash160Length {
		return 0, nil, errors.Wrapf(ErrInvalidAddress, "%q decodes to %d bytes", address, len(hash160))
	}
	return version, hash160, nil
}

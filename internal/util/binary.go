package util

import (
	"encoding"
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// EncBinaryInt encodes i as a fixed 8-byte varint field. Used throughout
// internal/automaton and internal/grammar's MarshalBinary implementations to
// compose the artifact's on-disk DFA/grammar blob, following the
// length-prefixed composition style github.com/dekarrin/tunaq's
// internal/tunascript/binary.go uses to build AST MarshalBinary output from
// smaller encoded fields.
func EncBinaryInt(i int) []byte {
	enc := make([]byte, 8)
	enc = binary.AppendVarint(enc, int64(i))
	return enc
}

// DecBinaryInt decodes a value written by EncBinaryInt, returning it and the
// number of bytes consumed (always 8).
func DecBinaryInt(data []byte) (int, int, error) {
	if len(data) < 8 {
		return 0, 0, fmt.Errorf("util: decoding int: need 8 bytes, have %d", len(data))
	}
	val, read := binary.Varint(data[:8])
	if read <= 0 {
		return 0, 0, fmt.Errorf("util: decoding int: malformed varint")
	}
	return int(val), 8, nil
}

// EncBinaryBool encodes b as a single byte.
func EncBinaryBool(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}

// DecBinaryBool decodes a value written by EncBinaryBool.
func DecBinaryBool(data []byte) (bool, int, error) {
	if len(data) < 1 {
		return false, 0, fmt.Errorf("util: decoding bool: need 1 byte, have 0")
	}
	switch data[0] {
	case 0:
		return false, 1, nil
	case 1:
		return true, 1, nil
	default:
		return false, 0, fmt.Errorf("util: decoding bool: byte %d is not 0 or 1", data[0])
	}
}

// EncBinaryString encodes s as a rune count (EncBinaryInt) followed by its
// UTF-8 bytes, so the strings this package serializes (symbol names,
// lexemes) never need a raw byte-length guess during decode.
func EncBinaryString(s string) []byte {
	runeCount := 0
	body := make([]byte, 0, len(s))
	buf := make([]byte, utf8.UTFMax)
	for _, r := range s {
		n := utf8.EncodeRune(buf, r)
		body = append(body, buf[:n]...)
		runeCount++
	}
	return append(EncBinaryInt(runeCount), body...)
}

// DecBinaryString decodes a value written by EncBinaryString, returning it
// and the number of bytes consumed.
func DecBinaryString(data []byte) (string, int, error) {
	runeCount, read, err := DecBinaryInt(data)
	if err != nil {
		return "", 0, fmt.Errorf("util: decoding string: %w", err)
	}
	data = data[read:]
	consumed := read

	buf := make([]byte, 0, runeCount)
	for i := 0; i < runeCount; i++ {
		r, n := utf8.DecodeRune(data)
		if r == utf8.RuneError && n <= 1 {
			return "", 0, fmt.Errorf("util: decoding string: invalid UTF-8 at rune %d", i)
		}
		buf = utf8.AppendRune(buf, r)
		data = data[n:]
		consumed += n
	}
	return string(buf), consumed, nil
}

// EncBinaryStringSlice encodes a []string as a count followed by each
// element via EncBinaryString.
func EncBinaryStringSlice(sl []string) []byte {
	enc := EncBinaryInt(len(sl))
	for _, s := range sl {
		enc = append(enc, EncBinaryString(s)...)
	}
	return enc
}

// DecBinaryStringSlice decodes a value written by EncBinaryStringSlice.
func DecBinaryStringSlice(data []byte) ([]string, int, error) {
	count, read, err := DecBinaryInt(data)
	if err != nil {
		return nil, 0, fmt.Errorf("util: decoding string slice: %w", err)
	}
	data = data[read:]
	consumed := read

	sl := make([]string, 0, count)
	for i := 0; i < count; i++ {
		s, n, err := DecBinaryString(data)
		if err != nil {
			return nil, 0, fmt.Errorf("util: decoding string slice element %d: %w", i, err)
		}
		sl = append(sl, s)
		data = data[n:]
		consumed += n
	}
	return sl, consumed, nil
}

// EncBinary length-prefixes the result of b.MarshalBinary so the caller's
// decoder knows where the nested value ends without guessing its shape,
// matching github.com/dekarrin/tunaq's internal/tunascript/binary.go
// encBinary helper.
func EncBinary(b encoding.BinaryMarshaler) []byte {
	enc, _ := b.MarshalBinary()
	return append(EncBinaryInt(len(enc)), enc...)
}

// DecBinary decodes a value written by EncBinary into b, returning the total
// number of bytes consumed (including the length prefix).
func DecBinary(data []byte, b encoding.BinaryUnmarshaler) (int, error) {
	byteLen, read, err := DecBinaryInt(data)
	if err != nil {
		return 0, err
	}
	data = data[read:]
	if len(data) < byteLen {
		return 0, fmt.Errorf("util: decoding nested binary value: need %d bytes, have %d", byteLen, len(data))
	}
	if err := b.UnmarshalBinary(data[:byteLen]); err != nil {
		return 0, err
	}
	return read + byteLen, nil
}

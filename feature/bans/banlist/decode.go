package banlist

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

// Decode converts the raw ban file bytes to a string. The game server
// writes the file as UTF-16LE; exports and hand-edited copies show up as
// UTF-8 with or without a BOM, so the encoding is sniffed per file.
func Decode(raw []byte) (string, error) {
	switch {
	case bytes.HasPrefix(raw, []byte{0xFF, 0xFE}), bytes.HasPrefix(raw, []byte{0xFE, 0xFF}):
		return decodeUTF16(raw, unicode.UseBOM)
	case bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}):
		return string(raw[3:]), nil
	case looksUTF16LE(raw):
		return decodeUTF16(raw, unicode.IgnoreBOM)
	default:
		return string(raw), nil
	}
}

func decodeUTF16(raw []byte, policy unicode.BOMPolicy) (string, error) {
	decoder := unicode.UTF16(unicode.LittleEndian, policy).NewDecoder()
	decoded, err := decoder.Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("failed to decode UTF-16 ban file: %w", err)
	}
	return string(decoded), nil
}

// looksUTF16LE detects BOM-less UTF-16LE: ASCII-heavy content has a zero
// high byte for nearly every code unit.
func looksUTF16LE(raw []byte) bool {
	if len(raw) < 4 || len(raw)%2 != 0 {
		return false
	}
	zeros := 0
	for i := 1; i < len(raw); i += 2 {
		if raw[i] == 0 {
			zeros++
		}
	}
	return zeros*3 >= len(raw) // at least half the odd bytes are zero
}

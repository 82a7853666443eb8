package model

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// steamID64Base is the offset of the 64-bit individual-account ID space.
const steamID64Base int64 = 0x110000100000000

var (
	steamIDPattern    = regexp.MustCompile(`^STEAM_0:([01]):(\d+)$`)
	steam3Pattern     = regexp.MustCompile(`^\[U:1:(\d+)\]$`)
	profileURLPattern = regexp.MustCompile(`^https?://steamcommunity\.com/profiles/(\d+)/?$`)
)

// ErrInvalidSteamID is returned when an identity cannot be parsed.
var ErrInvalidSteamID = errors.New("invalid steam ID")

// SteamID is the canonical 64-bit player identity. Every accepted textual
// form (profile URL, STEAM_0:X:Y, raw decimal) maps to exactly one SteamID
// and can be recovered from it.
type SteamID int64

// ParseSteamID parses any accepted identity representation: profile URL,
// STEAM_0:X:Y, bracket form [U:1:N] and raw decimal. Raw decimal input
// below the 64-bit base is treated as a bare account UID and offset into
// the canonical space.
func ParseSteamID(s string) (SteamID, error) {
	s = strings.TrimSpace(s)

	if m := profileURLPattern.FindStringSubmatch(s); m != nil {
		v, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidSteamID, s)
		}
		return SteamID(v), nil
	}

	if m := steamIDPattern.FindStringSubmatch(s); m != nil {
		uid, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidSteamID, s)
		}
		parity, _ := strconv.ParseInt(m[1], 10, 64)
		return SteamID(uid*2 + parity + steamID64Base), nil
	}

	if m := steam3Pattern.FindStringSubmatch(s); m != nil {
		uid, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidSteamID, s)
		}
		return SteamID(uid + steamID64Base), nil
	}

	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSteamID, s)
	}
	if v >= steamID64Base {
		return SteamID(v), nil
	}
	return SteamID(v + steamID64Base), nil
}

// ID64 returns the canonical 64-bit value.
func (id SteamID) ID64() int64 {
	return int64(id)
}

// UID returns the account ID relative to the 64-bit base.
func (id SteamID) UID() int64 {
	return int64(id) - steamID64Base
}

// S64 returns the canonical value as a decimal string.
func (id SteamID) S64() string {
	return strconv.FormatInt(int64(id), 10)
}

// Format returns the short STEAM_0:X:Y form.
func (id SteamID) Format() string {
	parity := id.UID() % 2
	return fmt.Sprintf("STEAM_0:%d:%d", parity, (id.UID()-parity)/2)
}

// Steam3 returns the bracket form [U:1:N].
func (id SteamID) Steam3() string {
	return fmt.Sprintf("[U:1:%d]", id.UID())
}

// ProfileURL returns the community profile URL for this identity.
func (id SteamID) ProfileURL() string {
	return "https://steamcommunity.com/profiles/" + id.S64() + "/"
}

// NetIDAsString returns the hexadecimal net-ID form used in server ban files.
func (id SteamID) NetIDAsString() string {
	return fmt.Sprintf("0x%016X", uint64(id))
}

func (id SteamID) String() string {
	return id.S64()
}

// MarshalJSON encodes the ID as a decimal string to avoid precision loss in
// JSON consumers that treat numbers as floats.
func (id SteamID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(id.S64())), nil
}

// UnmarshalJSON accepts either a string or a bare number.
func (id *SteamID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSteamID, data)
	}
	*id = SteamID(v)
	return nil
}

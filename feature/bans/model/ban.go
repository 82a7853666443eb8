package model

import (
	"fmt"
	"strings"
	"time"
)

// Forever is the "banned until" sentinel for permanent bans.
var Forever = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

// Ban describes one ban as reported by the game server.
// EnactedTime and Duration are nil for legacy net-ID bans, which carry no
// metadata at all and are treated as permanent.
type Ban struct {
	ID          SteamID        `json:"id"`
	EnactedTime *time.Time     `json:"enacted_time,omitempty"`
	Duration    *time.Duration `json:"duration,omitempty"`
	IPPolicy    string         `json:"ip_policy,omitempty"`
	PlayerName  string         `json:"player_name,omitempty"`
	Reason      string         `json:"reason,omitempty"`
}

// BannedUntil derives the expiry of the ban. Missing enactment time or a
// non-positive duration means the ban never expires.
func (b Ban) BannedUntil() time.Time {
	if b.EnactedTime == nil || b.Duration == nil || *b.Duration <= 0 {
		return Forever
	}
	return b.EnactedTime.Add(*b.Duration)
}

// IsNetIDBan reports whether this is a legacy identity-only ban.
func (b Ban) IsNetIDBan() bool {
	return b.EnactedTime == nil
}

// Permanent reports whether the ban never expires on its own.
func (b Ban) Permanent() bool {
	return b.Duration == nil || *b.Duration <= 0
}

// Same reports snapshot-diff equality: identity, enactment time and
// duration. Name and reason changes do not make a "different" ban here;
// they only matter to the search-index fingerprint.
func (b Ban) Same(o Ban) bool {
	return b.ID == o.ID && equalTimes(b.EnactedTime, o.EnactedTime) && equalDurations(b.Duration, o.Duration)
}

func (b Ban) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %q", b.ID.Format(), b.PlayerName)
	if b.IsNetIDBan() {
		sb.WriteString(" (legacy net-ID ban)")
		return sb.String()
	}
	fmt.Fprintf(&sb, " banned %s", b.EnactedTime.UTC().Format(time.RFC3339))
	if b.Permanent() {
		sb.WriteString(" permanently")
	} else {
		fmt.Fprintf(&sb, " until %s", b.BannedUntil().UTC().Format(time.RFC3339))
	}
	if b.Reason != "" {
		fmt.Fprintf(&sb, " for %q", b.Reason)
	}
	return sb.String()
}

// CompareDurations orders ban durations with permanence ranking highest.
// Nil and non-positive durations are both treated as permanent.
func CompareDurations(a, b *time.Duration) int {
	permaA := a == nil || *a <= 0
	permaB := b == nil || *b <= 0

	switch {
	case permaA && permaB:
		return 0
	case permaA:
		return 1
	case permaB:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}

func equalTimes(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func equalDurations(a, b *time.Duration) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

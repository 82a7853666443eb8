package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func durPtr(d time.Duration) *time.Duration {
	return &d
}

func TestBan_BannedUntil(t *testing.T) {
	enacted := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		ban  Ban
		want time.Time
	}{
		{"Timed ban", Ban{EnactedTime: timePtr(enacted), Duration: durPtr(7 * 24 * time.Hour)}, enacted.Add(7 * 24 * time.Hour)},
		{"Zero duration is permanent", Ban{EnactedTime: timePtr(enacted), Duration: durPtr(0)}, Forever},
		{"Negative duration is permanent", Ban{EnactedTime: timePtr(enacted), Duration: durPtr(-time.Hour)}, Forever},
		{"Nil duration is permanent", Ban{EnactedTime: timePtr(enacted)}, Forever},
		{"Net-ID ban is permanent", Ban{}, Forever},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.ban.BannedUntil().Equal(tt.want))
		})
	}
}

func TestBan_Same(t *testing.T) {
	enacted := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)
	week := 7 * 24 * time.Hour

	base := Ban{ID: 76561197960287930, EnactedTime: timePtr(enacted), Duration: durPtr(week)}

	tests := []struct {
		name  string
		other Ban
		want  bool
	}{
		{"Identical", Ban{ID: 76561197960287930, EnactedTime: timePtr(enacted), Duration: durPtr(week)}, true},
		{"Name and reason ignored", Ban{ID: 76561197960287930, EnactedTime: timePtr(enacted), Duration: durPtr(week), PlayerName: "x", Reason: "y"}, true},
		{"Different identity", Ban{ID: 76561197960287931, EnactedTime: timePtr(enacted), Duration: durPtr(week)}, false},
		{"Different duration", Ban{ID: 76561197960287930, EnactedTime: timePtr(enacted), Duration: durPtr(2 * week)}, false},
		{"Different enactment", Ban{ID: 76561197960287930, EnactedTime: timePtr(enacted.Add(time.Hour)), Duration: durPtr(week)}, false},
		{"Nil vs set enactment", Ban{ID: 76561197960287930, Duration: durPtr(week)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Same(tt.other))
		})
	}
}

func TestCompareDurations(t *testing.T) {
	week := durPtr(7 * 24 * time.Hour)
	twoWeeks := durPtr(14 * 24 * time.Hour)

	tests := []struct {
		name string
		a, b *time.Duration
		want int
	}{
		{"Both permanent nil", nil, nil, 0},
		{"Zero is permanent", durPtr(0), nil, 0},
		{"Permanent beats timed", nil, week, 1},
		{"Timed loses to permanent", week, durPtr(-time.Second), -1},
		{"Shorter loses", week, twoWeeks, -1},
		{"Longer wins", twoWeeks, week, 1},
		{"Equal timed", week, durPtr(7 * 24 * time.Hour), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareDurations(tt.a, tt.b))
		})
	}
}

func TestFingerprint(t *testing.T) {
	enacted := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)
	week := 7 * 24 * time.Hour

	a := Ban{ID: 76561197960287930, EnactedTime: timePtr(enacted), Duration: durPtr(week), PlayerName: "alice", Reason: "griefing"}
	same := Ban{ID: 76561197960287930, EnactedTime: timePtr(enacted), Duration: durPtr(week), PlayerName: "alice", Reason: "griefing"}
	renamed := Ban{ID: 76561197960287930, EnactedTime: timePtr(enacted), Duration: durPtr(week), PlayerName: "alice2", Reason: "griefing"}

	assert.Equal(t, Fingerprint(a), Fingerprint(same))
	// Same ban re-logged with a corrected name is a distinct document.
	assert.NotEqual(t, Fingerprint(a), Fingerprint(renamed))
	assert.Len(t, Fingerprint(a), 32)
}

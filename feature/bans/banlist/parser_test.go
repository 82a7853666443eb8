package banlist

import (
	"testing"
	"time"

	"banledger/feature/bans/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleBanLine = `Bans=(DurationSeconds=604800,EnactedTime=(Year=2019,Month=5,DayOfWeek=3,Day=1,Hour=18,Min=23,Sec=51,MSec=917),IPPolicy="DENY,0.0.0.0",NetId=(Uid=(A=22202,B=17825793)),PlayerName="alice",Reason="griefing",NetIDAsString="0x01100001000056BA")`

func TestParseBans_FullRecord(t *testing.T) {
	bans := ParseBans(sampleBanLine, zap.NewNop())
	require.Len(t, bans, 1)

	ban := bans[0]
	assert.Equal(t, int64(76561197960287930), ban.ID.ID64())
	require.NotNil(t, ban.EnactedTime)
	assert.True(t, ban.EnactedTime.Equal(time.Date(2019, 5, 1, 18, 23, 51, 0, time.UTC)))
	require.NotNil(t, ban.Duration)
	assert.Equal(t, 7*24*time.Hour, *ban.Duration)
	assert.Equal(t, "DENY,0.0.0.0", ban.IPPolicy)
	assert.Equal(t, "alice", ban.PlayerName)
	assert.Equal(t, "griefing", ban.Reason)
	assert.False(t, ban.IsNetIDBan())
}

func TestParseBans_NetIDRecord(t *testing.T) {
	bans := ParseBans("BannedIDs=(Uid=(A=22202,B=17825793))", zap.NewNop())
	require.Len(t, bans, 1)

	ban := bans[0]
	assert.Equal(t, int64(76561197960287930), ban.ID.ID64())
	assert.True(t, ban.IsNetIDBan())
	assert.Nil(t, ban.Duration)
	assert.True(t, ban.BannedUntil().Equal(model.Forever))
}

func TestParseBans_EmptyQuotedFields(t *testing.T) {
	line := `Bans=(DurationSeconds=0,EnactedTime=(Year=2020,Month=1,DayOfWeek=3,Day=1,Hour=0,Min=0,Sec=0,MSec=0),IPPolicy=,NetId=(Uid=(A=22202,B=17825793)),PlayerName=,Reason=,NetIDAsString=)`
	bans := ParseBans(line, zap.NewNop())
	require.Len(t, bans, 1)

	ban := bans[0]
	assert.Empty(t, ban.IPPolicy)
	assert.Empty(t, ban.PlayerName)
	assert.Empty(t, ban.Reason)
	assert.True(t, ban.Permanent())
}

func TestParseBans_SkipsGarbage(t *testing.T) {
	text := "[/Script/Engine.GameSession]\r\n" +
		"MaxPlayers=64\r\n" +
		sampleBanLine + "\r\n" +
		"Bans=(DurationSeconds=notanumber)\r\n" +
		"BannedIDs=(Uid=(A=notanumber,B=17825793))\r\n"

	bans := ParseBans(text, zap.NewNop())
	// Only the well-formed ban line survives; the rest is skipped,
	// never aborting the batch.
	require.Len(t, bans, 1)
	assert.Equal(t, "alice", bans[0].PlayerName)
}

func TestParseBans_NegativeDurationIsPermanent(t *testing.T) {
	line := `Bans=(DurationSeconds=-1,EnactedTime=(Year=2020,Month=1,DayOfWeek=3,Day=1,Hour=0,Min=0,Sec=0,MSec=0),IPPolicy="DENY,0.0.0.0",NetId=(Uid=(A=22202,B=17825793)),PlayerName="bob",Reason="x",NetIDAsString="0x01100001000056BA")`
	bans := ParseBans(line, zap.NewNop())
	require.Len(t, bans, 1)
	assert.True(t, bans[0].Permanent())
}

func TestBanLine_RoundTrip(t *testing.T) {
	id := model.SteamID(76561197960287930)
	enacted := time.Date(2019, 5, 1, 18, 23, 51, 0, time.UTC)

	line := BanLine(id, 604800, &enacted, "alice", "griefing")

	bans := ParseBans(line, zap.NewNop())
	require.Len(t, bans, 1)

	ban := bans[0]
	assert.Equal(t, id, ban.ID)
	assert.True(t, ban.EnactedTime.Equal(enacted))
	assert.Equal(t, 7*24*time.Hour, *ban.Duration)
	assert.Equal(t, "DENY,0.0.0.0", ban.IPPolicy)
	assert.Equal(t, "alice", ban.PlayerName)
	assert.Equal(t, "griefing", ban.Reason)
}

func TestBanLine_DefaultsEnactedToNow(t *testing.T) {
	line := BanLine(model.SteamID(76561197960287930), 3600, nil, "bob", "spam")
	bans := ParseBans(line, zap.NewNop())
	require.Len(t, bans, 1)
	require.NotNil(t, bans[0].EnactedTime)
	assert.WithinDuration(t, time.Now().UTC(), *bans[0].EnactedTime, time.Minute)
}

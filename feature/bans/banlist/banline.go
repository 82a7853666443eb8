package banlist

import (
	"fmt"
	"time"

	"banledger/feature/bans/model"
)

// BanLine renders the Bans=(...) line an operator can paste into the game
// server's own ban file. The IP policy and the B component of the net ID
// are fixed by the server format.
func BanLine(id model.SteamID, seconds int64, enacted *time.Time, playerName, reason string) string {
	at := time.Now().UTC()
	if enacted != nil {
		at = enacted.UTC()
	}

	return fmt.Sprintf(
		"Bans=(DurationSeconds=%d,EnactedTime=%s,IPPolicy=\"DENY,0.0.0.0\",NetId=(Uid=(A=%d,B=17825793)),PlayerName=%q,Reason=%q,NetIDAsString=%q)",
		seconds, formatEnactedTime(at), id.UID(), playerName, reason, id.NetIDAsString())
}

func formatEnactedTime(t time.Time) string {
	// ISO day of week: Monday=1 .. Sunday=7.
	dow := int(t.Weekday())
	if dow == 0 {
		dow = 7
	}
	return fmt.Sprintf("(Year=%d,Month=%d,DayOfWeek=%d,Day=%d,Hour=%d,Min=%d,Sec=%d,MSec=%d)",
		t.Year(), int(t.Month()), dow, t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond()/1e6)
}

package banlist

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"banledger/feature/bans/model"

	"go.uber.org/zap"
)

var (
	netIDBanPattern = regexp.MustCompile(`^BannedIDs=\(Uid=\(A=(\d+),B=17825793\)\)$`)
	banPattern      = regexp.MustCompile(
		`^Bans=\(DurationSeconds=(-?\d+),` +
			`EnactedTime=\(Year=(\d+),Month=(\d+),DayOfWeek=(\d+),Day=(\d+),` +
			`Hour=(\d+),Min=(\d+),Sec=(\d+),MSec=(\d+)\),` +
			`IPPolicy=(?:|"([^"]*)"),` +
			`NetId=\(Uid=\(A=(\d+),B=\d+\)\),` +
			`PlayerName=(?:|"(.*)"),` +
			`Reason=(?:|"(.*)"),` +
			`NetIDAsString=(?:|"([^"]*)")\)$`)
)

// ParseBans parses a decoded ban list file into ban records. Lines that do
// not carry ban data are ignored; ban lines that fail to parse are logged
// at warn level and skipped, never aborting the batch.
func ParseBans(text string, logger *zap.Logger) []model.Ban {
	var bans []model.Ban
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.HasPrefix(line, "BannedIDs=(") && !strings.HasPrefix(line, "Bans=(") {
			continue
		}
		ban, err := parseBanLine(strings.TrimSpace(line))
		if err != nil {
			logger.Warn("Skipping unparseable ban line", zap.String("line", line), zap.Error(err))
			continue
		}
		bans = append(bans, ban)
	}
	return bans
}

func parseBanLine(line string) (model.Ban, error) {
	if m := netIDBanPattern.FindStringSubmatch(line); m != nil {
		id, err := model.ParseSteamID(m[1])
		if err != nil {
			return model.Ban{}, err
		}
		// Legacy net-ID ban: identity only, no enactment metadata.
		return model.Ban{ID: id}, nil
	}

	m := banPattern.FindStringSubmatch(line)
	if m == nil {
		return model.Ban{}, fmt.Errorf("line does not match the ban format")
	}

	id, err := model.ParseSteamID(m[11])
	if err != nil {
		return model.Ban{}, err
	}

	seconds, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return model.Ban{}, fmt.Errorf("bad duration: %w", err)
	}
	duration := time.Duration(seconds) * time.Second

	enacted, err := parseEnactedTime(m[2], m[3], m[5], m[6], m[7], m[8])
	if err != nil {
		return model.Ban{}, err
	}

	return model.Ban{
		ID:          id,
		EnactedTime: &enacted,
		Duration:    &duration,
		IPPolicy:    m[10],
		PlayerName:  m[12],
		Reason:      m[13],
	}, nil
}

// parseEnactedTime builds the enactment instant from the exploded UE date
// fields. DayOfWeek and MSec are redundant and ignored.
func parseEnactedTime(year, month, day, hour, minute, sec string) (time.Time, error) {
	fields := [6]int{}
	for i, s := range []string{year, month, day, hour, minute, sec} {
		v, err := strconv.Atoi(s)
		if err != nil {
			return time.Time{}, fmt.Errorf("bad enacted time field %q: %w", s, err)
		}
		fields[i] = v
	}

	if fields[1] < 1 || fields[1] > 12 || fields[2] < 1 || fields[2] > 31 ||
		fields[3] > 23 || fields[4] > 59 || fields[5] > 59 {
		return time.Time{}, fmt.Errorf("enacted time out of range: %s-%s-%s %s:%s:%s",
			year, month, day, hour, minute, sec)
	}

	return time.Date(fields[0], time.Month(fields[1]), fields[2],
		fields[3], fields[4], fields[5], 0, time.UTC), nil
}

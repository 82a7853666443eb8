package model

import "time"

// OfflineBan is an operator-staged ban that has not yet shown up in the
// live server snapshot. The reconciliation engine deletes it once a live
// ban of at least the same duration appears for the identity.
type OfflineBan struct {
	ID          SteamID        `json:"id"`
	EnactedTime *time.Time     `json:"enacted_time,omitempty"`
	Duration    *time.Duration `json:"duration,omitempty"`
	PlayerName  string         `json:"player_name,omitempty"`
	Reason      string         `json:"reason,omitempty"`
}

// EnactedOr returns the staged enactment time, or fallback when none was
// recorded. Used both when rendering ban lines and as the timeline sort key.
func (o OfflineBan) EnactedOr(fallback time.Time) time.Time {
	if o.EnactedTime != nil {
		return *o.EnactedTime
	}
	return fallback
}

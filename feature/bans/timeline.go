package bans

import (
	"sort"
	"time"

	"banledger/feature/bans/model"
)

// Timeline event kinds.
const (
	EventBanAdded   = "ban_added"
	EventBanRemoved = "ban_removed"
	EventMention    = "mention"
	EventOfflineBan = "offline_ban"
)

// TimelineEvent is one entry in a player's merged timeline. Exactly one
// of Ban, Mention and Offline is set, matching Kind.
type TimelineEvent struct {
	At      time.Time         `json:"at"`
	Kind    string            `json:"kind"`
	Ban     *model.Ban        `json:"ban,omitempty"`
	Mention *model.Mention    `json:"mention,omitempty"`
	Offline *model.OfflineBan `json:"offline,omitempty"`
}

// Timeline merges a player's ledger history, chat mentions and staged
// offline ban into one chronological view. An offline ban without an
// enactment time sorts at the current time, keeping it visible at the end.
func (s *Service) Timeline(id model.SteamID) ([]TimelineEvent, error) {
	var events []TimelineEvent

	history, err := s.store.History(id)
	if err != nil {
		return nil, err
	}
	for i := range history {
		entry := history[i]
		kind := EventBanAdded
		at := entry.DetectedAt
		if entry.Action == model.ActionRemove {
			kind = EventBanRemoved
		} else if entry.Ban.EnactedTime != nil {
			// The ban took effect when the server enacted it, which can be
			// well before the ledger first saw it (historic imports).
			at = *entry.Ban.EnactedTime
		}
		events = append(events, TimelineEvent{
			At:   at,
			Kind: kind,
			Ban:  &history[i].Ban,
		})
	}

	mentions, err := s.store.FindMentions(id)
	if err != nil {
		return nil, err
	}
	for i := range mentions {
		events = append(events, TimelineEvent{
			At:      mentions[i].MentionedAt,
			Kind:    EventMention,
			Mention: &mentions[i],
		})
	}

	offline, err := s.store.OfflineBans()
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range offline {
		if offline[i].ID != id {
			continue
		}
		events = append(events, TimelineEvent{
			At:      offline[i].EnactedOr(now),
			Kind:    EventOfflineBan,
			Offline: &offline[i],
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].At.Before(events[j].At)
	})
	return events, nil
}

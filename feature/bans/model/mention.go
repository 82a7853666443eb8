package model

import "time"

// Mention records a sighting of a player's profile link in a watched chat
// channel. IDs are the chat platform's message-stream identifiers, kept as
// opaque strings.
type Mention struct {
	PlayerID    SteamID   `json:"player_id"`
	MentionedAt time.Time `json:"mentioned_at"`
	GuildID     string    `json:"guild_id,omitempty"`
	ChannelID   string    `json:"channel_id"`
	MessageID   string    `json:"message_id"`
}

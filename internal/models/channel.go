package models

// Channel is a chat channel record stored at channels/{channelId}.
// The last-message summary is denormalized and overwritten on every send.
type Channel struct {
	ID           string   `json:"id"`
	Name         string   `json:"name,omitempty"`
	MembersUids  []string `json:"membersUids"`
	AdminUids    []string `json:"adminUids,omitempty"`
	CreationDate int64    `json:"creationDate"` // epoch seconds

	LastMessage          string `json:"lastMessage,omitempty"`
	LastMessageType      string `json:"lastMessageType,omitempty"`
	LastMessageTimestamp int64  `json:"lastMessageTimeStamp,omitempty"`
}

// IsGroupChat reports whether the channel has more than two members.
func (c *Channel) IsGroupChat() bool {
	return len(c.MembersUids) > 2
}

package model

import "time"

// ChatRole identifies who authored a chat message.
type ChatRole string

const (
	ChatRoleUser    ChatRole = "user"
	ChatRoleStylist ChatRole = "stylist"
)

// ChatMessage is one turn in a stylist conversation. ID is the local history
// row id; messages are grouped by ConversationID.
type ChatMessage struct {
	ID             int64
	ConversationID string
	Role           ChatRole
	Content        string
	CreatedAt      time.Time
}

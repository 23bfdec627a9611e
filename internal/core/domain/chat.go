package domain

import "time"

// ChatMessage is one turn in a conversation.
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationSummary is the listing view of one active conversation.
type ConversationSummary struct {
	ConversationID string    `json:"conversation_id"`
	MessageCount   int       `json:"message_count"`
	LastMessage    string    `json:"last_message"`
	LastTimestamp  time.Time `json:"last_timestamp"`
}

// ChatReply is the chatbot's answer to one message.
type ChatReply struct {
	Response       string  `json:"response"`
	ConversationID string  `json:"conversation_id"`
	GenerationTime float64 `json:"generation_time"`
	TimedOut       bool    `json:"-"`
}

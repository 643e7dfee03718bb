package chat

// Metadata carries per-message flags reported by the service.
type Metadata struct {
	SearchUsed bool `json:"search_used"`
}

// Message is a single entry in a conversation transcript.
type Message struct {
	ID        string    `json:"id,omitempty"`
	Role      string    `json:"role"` // "user" | "assistant"
	Content   string    `json:"content"`
	Metadata  *Metadata `json:"metadata,omitempty"`
	CreatedAt string    `json:"created_at,omitempty"`
}

// Summary is the lightweight listing entry for a conversation. Summaries
// are kept in the server-defined order and never re-sorted locally.
type Summary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	MessageCount int    `json:"message_count"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// Conversation is the full transcript for one conversation.
type Conversation struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Messages []Message `json:"messages"`
}

// SendResult is the outcome of a successful message send.
type SendResult struct {
	Conversation *Conversation
	Message      Message
	SearchUsed   bool
}

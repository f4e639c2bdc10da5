package chat

// Role tags the speaker of a transcript entry.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry. The transcript is sent to the provider as-is,
// so the field names follow the completion API wire shape.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Alignment positions a rendered entry in the message list.
type Alignment string

const (
	AlignLeft  Alignment = "left"
	AlignRight Alignment = "right"
)

// DisplayEntry is the renderer-facing projection of a visible transcript entry.
type DisplayEntry struct {
	SpeakerLabel string    `json:"speakerLabel"`
	Text         string    `json:"text"`
	Alignment    Alignment `json:"alignment"`
}

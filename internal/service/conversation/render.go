package conversation

import "github.com/zhouzirui/alex-chat/backend/internal/model/chat"

// Render projects a transcript onto the display list: system entries are
// dropped, user entries align right without a label, everything else aligns
// left under assistantLabel.
func Render(transcript []chat.Message, assistantLabel string) []chat.DisplayEntry {
	entries := make([]chat.DisplayEntry, 0, len(transcript))
	for _, msg := range transcript {
		if msg.Role == chat.RoleSystem {
			continue
		}

		entry := chat.DisplayEntry{
			SpeakerLabel: assistantLabel,
			Text:         msg.Content,
			Alignment:    chat.AlignLeft,
		}
		if msg.Role == chat.RoleUser {
			entry.SpeakerLabel = ""
			entry.Alignment = chat.AlignRight
		}
		entries = append(entries, entry)
	}
	return entries
}

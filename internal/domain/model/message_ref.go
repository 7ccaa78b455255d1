package model

// MessageRef locates a chat message that renders an entity.
type MessageRef struct {
	ChatID    int64  `json:"chat_id"`
	MessageID int    `json:"message_id"`
	HasPhoto  bool   `json:"has_photo"`
	Body      string `json:"body,omitempty"`
}

func (r MessageRef) IsZero() bool { return r.ChatID == 0 || r.MessageID == 0 }

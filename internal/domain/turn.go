package domain

import "time"

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one exchange unit in a session's conversation history.
type Turn struct {
	Role      string       `json:"role"`
	Content   string       `json:"content"`
	Timestamp time.Time    `json:"timestamp"`
	Context   *TurnContext `json:"context,omitempty"`
}

// TurnContext snapshots the artifact counts visible when a user turn was
// sent, kept for audit alongside the turn itself.
type TurnContext struct {
	ImagesCount    int `json:"images_count"`
	CSVsCount      int `json:"csvs_count"`
	DocumentsCount int `json:"documents_count"`
}

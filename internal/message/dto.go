// AngelaMos | 2026
// dto.go

package message

import (
	"time"
)

type PostMessageRequest struct {
	Body string `json:"body" validate:"required,min=1,max=5000"`
}

type ReplyRequest struct {
	Body         string `json:"body"          validate:"required,min=1,max=5000"`
	NotifyClient bool   `json:"notify_client"`
}

type MessageResponse struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Sender    string    `json:"sender"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type ThreadResponse struct {
	Messages    []MessageResponse `json:"messages"`
	UnreadCount int               `json:"unread_count"`
}

type InboxEntry struct {
	ProjectID   string `json:"project_id"`
	UnreadCount int    `json:"unread_count"`
}

// ToResponse reports Read from the point of view of viewer: the other
// party's read flag for the viewer's own messages, its own flag otherwise.
func ToResponse(m *Message, viewer string) MessageResponse {
	read := m.ReadBy(viewer)
	if m.Sender == viewer {
		read = m.ReadBy(other(viewer))
	}
	return MessageResponse{
		ID:        m.ID,
		ProjectID: m.ProjectID,
		Sender:    m.Sender,
		Body:      m.Body,
		Read:      read,
		CreatedAt: m.CreatedAt,
	}
}

func ToThreadResponse(msgs []Message, viewer string) ThreadResponse {
	out := make([]MessageResponse, 0, len(msgs))
	for i := range msgs {
		out = append(out, ToResponse(&msgs[i], viewer))
	}
	return ThreadResponse{
		Messages:    out,
		UnreadCount: CountUnread(msgs, viewer),
	}
}

func other(role string) string {
	if role == RoleClient {
		return RoleAdmin
	}
	return RoleClient
}

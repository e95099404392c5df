// AngelaMos | 2026
// entity.go

package message

import (
	"time"
)

const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

func ValidRole(role string) bool {
	return role == RoleClient || role == RoleAdmin
}

// Message is one entry in a project thread. Each side has its own read
// flag and only the side that did not send a message can have it unread.
type Message struct {
	ID           string    `db:"id"`
	ProjectID    string    `db:"project_id"`
	Sender       string    `db:"sender"`
	AccountID    *string   `db:"account_id"`
	Body         string    `db:"body"`
	ReadByClient bool      `db:"read_by_client"`
	ReadByAdmin  bool      `db:"read_by_admin"`
	CreatedAt    time.Time `db:"created_at"`
}

// ReadBy reports the read flag of the given party.
func (m *Message) ReadBy(role string) bool {
	if role == RoleClient {
		return m.ReadByClient
	}
	return m.ReadByAdmin
}

func (m *Message) setReadBy(role string) {
	if role == RoleClient {
		m.ReadByClient = true
		return
	}
	m.ReadByAdmin = true
}

// UnreadFor reports whether viewer has an unread copy of m. A party's own
// messages are never unread to it.
func (m *Message) UnreadFor(viewer string) bool {
	return ValidRole(viewer) && m.Sender != viewer && !m.ReadBy(viewer)
}

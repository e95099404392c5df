// AngelaMos | 2026
// unread.go

package message

import (
	"slices"
)

func CountUnread(msgs []Message, viewer string) int {
	n := 0
	for i := range msgs {
		if msgs[i].UnreadFor(viewer) {
			n++
		}
	}
	return n
}

// MarkRead returns a copy of msgs with viewer's read flag set on every
// message from the other party, plus the ids that changed. Running it on
// an already read thread changes nothing.
func MarkRead(msgs []Message, viewer string) ([]Message, []string) {
	out := slices.Clone(msgs)
	var changed []string
	for i := range out {
		if !out[i].UnreadFor(viewer) {
			continue
		}
		out[i].setReadBy(viewer)
		changed = append(changed, out[i].ID)
	}
	return out, changed
}

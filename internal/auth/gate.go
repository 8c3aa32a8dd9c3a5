// Package auth holds the static allow-list of Telegram users permitted to use
// the bot and to receive random notes.
package auth

// Gate is an immutable allow-list of user ids.
type Gate struct {
	allowed map[int64]struct{}
	ids     []int64
}

// NewGate builds a gate from ids. Duplicates are dropped; order is kept.
func NewGate(ids []int64) *Gate {
	g := &Gate{
		allowed: make(map[int64]struct{}, len(ids)),
		ids:     make([]int64, 0, len(ids)),
	}
	for _, id := range ids {
		if _, dup := g.allowed[id]; dup {
			continue
		}
		g.allowed[id] = struct{}{}
		g.ids = append(g.ids, id)
	}
	return g
}

// IsAuthorized reports whether senderID is on the allow-list.
func (g *Gate) IsAuthorized(senderID int64) bool {
	_, ok := g.allowed[senderID]
	return ok
}

// Recipients returns a copy of the allow-list in configured order.
func (g *Gate) Recipients() []int64 {
	out := make([]int64, len(g.ids))
	copy(out, g.ids)
	return out
}

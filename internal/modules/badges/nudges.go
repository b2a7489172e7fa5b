package badges

import (
	"hash/fnv"

	"github.com/yungbote/cbl-backend/internal/domain/cbl"
)

// Nudges returns the cards for phase; an invalid phase returns every card.
func (c *Catalog) Nudges(phase cbl.Phase) []Nudge {
	if c == nil {
		return nil
	}
	out := []Nudge{}
	for _, n := range c.nudges {
		if !phase.Valid() || n.Phase == phase {
			out = append(out, n)
		}
	}
	return out
}

// PickNudge chooses a card for phase. The same key always yields the same card.
func (c *Catalog) PickNudge(phase cbl.Phase, key string) (Nudge, bool) {
	deck := c.Nudges(phase)
	if len(deck) == 0 {
		return Nudge{}, false
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(string(phase) + ":" + key))
	return deck[int(h.Sum32()%uint32(len(deck)))], true
}
